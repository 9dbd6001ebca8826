package account

import (
	"net/http"

	"github.com/dentalcare/dentalcare/internal/platform/openapi"
)

// Document registers the /auth routes and their payloads.
func Document(g *openapi.Generator) {
	g.AddSchema("SignupRequest", openapi.Object(
		[]string{"firstName", "lastName", "email", "dateOfBirth", "password"},
		map[string]interface{}{
			"firstName":   openapi.String(),
			"lastName":    openapi.String(),
			"email":       openapi.StringFormat("email"),
			"dateOfBirth": openapi.StringFormat("date"),
			"password":    openapi.MinLength(6),
		}))
	g.AddSchema("SignupResponse", openapi.Object(nil, map[string]interface{}{
		"id":      openapi.Integer(),
		"email":   openapi.String(),
		"message": openapi.String(),
	}))
	g.AddSchema("SigninRequest", openapi.Object([]string{"email", "password"}, map[string]interface{}{
		"email":    openapi.StringFormat("email"),
		"password": openapi.String(),
	}))
	g.AddSchema("TokenResponse", openapi.Object(nil, map[string]interface{}{
		"access_token": openapi.String(),
		"token_type":   openapi.Enum("bearer"),
	}))
	g.AddSchema("Identity", openapi.Object(nil, map[string]interface{}{
		"email":           openapi.String(),
		"user_id":         openapi.Integer(),
		"chat_session_id": openapi.Integer(),
	}))

	errResp := func(desc string) openapi.Response {
		return openapi.Response{Description: desc, Schema: "Error"}
	}
	g.AddOperation(
		openapi.Operation{
			Method: http.MethodPost, Path: "/auth/signup", Tag: "auth",
			Summary: "Create an account and its chat session", OperationID: "signup",
			RequestSchema: "SignupRequest",
			Responses: map[int]openapi.Response{
				http.StatusCreated:         {Description: "Account created", Schema: "SignupResponse"},
				http.StatusBadRequest:      errResp("Validation failure or email already registered"),
				http.StatusTooManyRequests: errResp("Rate limited"),
			},
		},
		openapi.Operation{
			Method: http.MethodPost, Path: "/auth/signin", Tag: "auth",
			Summary: "Exchange credentials for a bearer token", OperationID: "signin",
			RequestSchema: "SigninRequest",
			Responses: map[int]openapi.Response{
				http.StatusOK:              {Description: "Token issued", Schema: "TokenResponse"},
				http.StatusUnauthorized:    errResp("Invalid email or password"),
				http.StatusTooManyRequests: errResp("Rate limited"),
			},
		},
		openapi.Operation{
			Method: http.MethodGet, Path: "/auth/me", Tag: "auth",
			Summary: "Identity carried by the bearer token", OperationID: "me",
			Secured: true,
			Responses: map[int]openapi.Response{
				http.StatusOK:           {Description: "Caller identity", Schema: "Identity"},
				http.StatusUnauthorized: errResp("Missing or invalid token"),
			},
		},
	)
}
