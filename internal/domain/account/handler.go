package account

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
	"github.com/dentalcare/dentalcare/internal/platform/auth"
	"github.com/dentalcare/dentalcare/internal/platform/validate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts /auth routes. limit guards signup and signin; it
// may be nil.
func (h *Handler) RegisterRoutes(g *echo.Group, limit echo.MiddlewareFunc) {
	var guard []echo.MiddlewareFunc
	if limit != nil {
		guard = append(guard, limit)
	}
	g.POST("/signup", h.Signup, guard...)
	g.POST("/signin", h.Signin, guard...)
	g.GET("/me", h.Me)
}

type signupRequest struct {
	FirstName   string `json:"firstName" validate:"required,notblank"`
	LastName    string `json:"lastName" validate:"required,notblank"`
	Email       string `json:"email" validate:"required,email"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Password    string `json:"password" validate:"required,min=6"`
}

type signupResponse struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *Handler) Signup(c echo.Context) error {
	var req signupRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return apperr.Validation(map[string]string{"dateOfBirth": "must be a date in 2006-01-02 format"})
	}

	u, err := h.svc.Signup(c.Request().Context(), SignupInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		DateOfBirth: dob,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, signupResponse{ID: u.ID, Email: u.Email, Message: "User created successfully"})
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Signin(c echo.Context) error {
	var req signinRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	tok, err := h.svc.Signin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tok)
}

// Me echoes the identity carried by the bearer token.
func (h *Handler) Me(c echo.Context) error {
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return apperr.Unauthenticated("missing authorization header")
	}
	return c.JSON(http.StatusOK, id)
}
