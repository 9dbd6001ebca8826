package patient

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
	"github.com/dentalcare/dentalcare/internal/platform/validate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreatePatient)
	g.GET("", h.ListPatients)
	g.GET("/:email", h.GetPatient)
	g.PUT("/:id", h.UpdatePatient)
	g.DELETE("/:id", h.DeletePatient)
}

type createRequest struct {
	Name    string `json:"name" validate:"required,notblank"`
	Age     *int   `json:"age" validate:"required,min=0"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=6"`
	Address string `json:"address" validate:"required,min=6"`
	Status  string `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
}

type updateRequest struct {
	Name    *string `json:"name" validate:"omitempty,notblank"`
	Age     *int    `json:"age" validate:"omitempty,min=0"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,min=6"`
	Address *string `json:"address" validate:"omitempty,min=6"`
	Status  *string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req createRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	p := Patient{
		Name:    req.Name,
		Age:     *req.Age,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Status:  req.Status,
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, found, err := h.svc.GetPatientByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("patient")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	items, err := h.svc.ListPatients(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	var req updateRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	p, err := h.svc.UpdatePatient(c.Request().Context(), id, Update{
		Name:    req.Name,
		Age:     req.Age,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Status:  req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.DeletePatient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func patientID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(map[string]string{"id": "must be a positive integer"})
	}
	return id, nil
}
