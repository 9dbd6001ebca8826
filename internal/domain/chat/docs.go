package chat

import (
	"net/http"

	"github.com/dentalcare/dentalcare/internal/platform/openapi"
)

func Document(g *openapi.Generator) {
	g.AddSchema("ChatMessageInput", openapi.Object([]string{"role", "content"}, map[string]interface{}{
		"role":    openapi.Enum(RoleUser, RoleAssistant, RoleSystem),
		"content": openapi.String(),
	}))
	g.AddSchema("ChatTurnRequest", openapi.Object([]string{"messages"}, map[string]interface{}{
		"messages": openapi.ArrayOf(openapi.Ref("ChatMessageInput")),
	}))
	g.AddSchema("ChatMessage", openapi.Object(nil, map[string]interface{}{
		"id":        openapi.Integer(),
		"role":      openapi.Enum(RoleUser, RoleAssistant),
		"content":   openapi.String(),
		"sessionId": openapi.Integer(),
		"createdAt": openapi.StringFormat("date-time"),
	}))

	sessionParam := []openapi.Param{{Name: "chatSessionId", In: "path", Type: "integer", Description: "Chat session id"}}
	errResp := func(desc string) openapi.Response {
		return openapi.Response{Description: desc, Schema: "Error"}
	}
	g.AddOperation(
		openapi.Operation{
			Method: http.MethodPost, Path: "/chat/:chatSessionId", Tag: "chat",
			Summary: "Send a transcript and store the model reply", OperationID: "chatTurn",
			Secured: true, Params: sessionParam, RequestSchema: "ChatTurnRequest",
			Responses: map[int]openapi.Response{
				http.StatusOK:           {Description: "Stored assistant reply", Schema: "ChatMessage"},
				http.StatusBadRequest:   errResp("Invalid transcript"),
				http.StatusUnauthorized: errResp("Missing or invalid token"),
				http.StatusNotFound:     errResp("Session not found for caller"),
				http.StatusBadGateway:   errResp("Inference service unavailable"),
			},
		},
		openapi.Operation{
			Method: http.MethodGet, Path: "/chat/:chatSessionId/history", Tag: "chat",
			Summary: "Messages of a session, oldest first", OperationID: "chatHistory",
			Secured: true, Params: sessionParam,
			Responses: map[int]openapi.Response{
				http.StatusOK:           {Description: "Ordered history", Schema: "ChatMessage", Array: true},
				http.StatusUnauthorized: errResp("Missing or invalid token"),
				http.StatusNotFound:     errResp("Session not found for caller"),
			},
		},
	)
}
