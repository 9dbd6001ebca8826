package patient

import (
	"net/http"

	"github.com/dentalcare/dentalcare/internal/platform/openapi"
)

func Document(g *openapi.Generator) {
	status := openapi.Enum(StatusActive, StatusInactive)
	g.AddSchema("PatientCreate", openapi.Object(
		[]string{"name", "age", "email", "phone", "address", "status"},
		map[string]interface{}{
			"name":    openapi.String(),
			"age":     openapi.MinInteger(0),
			"email":   openapi.StringFormat("email"),
			"phone":   openapi.MinLength(minContactLen),
			"address": openapi.MinLength(minContactLen),
			"status":  status,
		}))
	g.AddSchema("PatientUpdate", openapi.Object(nil, map[string]interface{}{
		"name":    openapi.String(),
		"age":     openapi.MinInteger(0),
		"email":   openapi.StringFormat("email"),
		"phone":   openapi.MinLength(minContactLen),
		"address": openapi.MinLength(minContactLen),
		"status":  status,
	}))
	g.AddSchema("Patient", openapi.Object(nil, map[string]interface{}{
		"id":        openapi.Integer(),
		"name":      openapi.String(),
		"age":       openapi.MinInteger(0),
		"email":     openapi.StringFormat("email"),
		"phone":     openapi.String(),
		"address":   openapi.String(),
		"status":    status,
		"createdAt": openapi.StringFormat("date-time"),
		"updatedAt": openapi.StringFormat("date-time"),
	}))

	idParam := []openapi.Param{{Name: "id", In: "path", Type: "integer", Description: "Patient id"}}
	errResp := func(desc string) openapi.Response {
		return openapi.Response{Description: desc, Schema: "Error"}
	}
	g.AddOperation(
		openapi.Operation{
			Method: http.MethodPost, Path: "/patients", Tag: "patients",
			Summary: "Create a patient", OperationID: "createPatient",
			RequestSchema: "PatientCreate",
			Responses: map[int]openapi.Response{
				http.StatusCreated:    {Description: "Created", Schema: "Patient"},
				http.StatusBadRequest: errResp("Validation failure or email already registered"),
			},
		},
		openapi.Operation{
			Method: http.MethodGet, Path: "/patients", Tag: "patients",
			Summary: "List all patients", OperationID: "listPatients",
			Responses: map[int]openapi.Response{
				http.StatusOK: {Description: "All patients", Schema: "Patient", Array: true},
			},
		},
		openapi.Operation{
			Method: http.MethodGet, Path: "/patients/:email", Tag: "patients",
			Summary: "Look up a patient by email", OperationID: "getPatientByEmail",
			Params: []openapi.Param{{Name: "email", In: "path", Type: "string", Description: "Patient email"}},
			Responses: map[int]openapi.Response{
				http.StatusOK:       {Description: "Found", Schema: "Patient"},
				http.StatusNotFound: errResp("No patient with that email"),
			},
		},
		openapi.Operation{
			Method: http.MethodPut, Path: "/patients/:id", Tag: "patients",
			Summary: "Update the supplied fields of a patient", OperationID: "updatePatient",
			Params: idParam, RequestSchema: "PatientUpdate",
			Responses: map[int]openapi.Response{
				http.StatusOK:         {Description: "Updated", Schema: "Patient"},
				http.StatusBadRequest: errResp("Validation failure or email already registered"),
				http.StatusNotFound:   errResp("Patient not found"),
			},
		},
		openapi.Operation{
			Method: http.MethodDelete, Path: "/patients/:id", Tag: "patients",
			Summary: "Delete a patient and return the removed record", OperationID: "deletePatient",
			Params: idParam,
			Responses: map[int]openapi.Response{
				http.StatusOK:       {Description: "Deleted", Schema: "Patient"},
				http.StatusNotFound: errResp("Patient not found"),
			},
		},
	)
}
