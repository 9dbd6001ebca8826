package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return apperr.KindOf(err).HTTPStatus()
}

// errorBody renders err for the client. Internal causes never leave the
// process: only the generic message is returned.
func errorBody(err error) (int, ErrorBody) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body := ErrorBody{Error: ae.Kind.Code(), Message: ae.Message, Fields: ae.Fields}
		if ae.Kind == apperr.KindInternal {
			body.Message = "internal server error"
		}
		return ae.Kind.HTTPStatus(), body
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && he.Code < 500 {
			msg = s
		} else if he.Code < 500 && he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, ErrorBody{Error: codeForStatus(he.Code), Message: msg}
	}

	return http.StatusInternalServerError, ErrorBody{Error: apperr.KindInternal.Code(), Message: "internal server error"}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperr.KindValidation.Code()
	case http.StatusUnauthorized:
		return apperr.KindUnauthenticated.Code()
	case http.StatusNotFound:
		return apperr.KindNotFound.Code()
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	if status >= 500 {
		return apperr.KindInternal.Code()
	}
	return "request_error"
}

// ErrorHandler is the echo HTTPErrorHandler for the server.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorBody(err)
		if status >= 500 {
			evt := logger.Error().Err(err).
				Str("request_id", requestIDOf(c)).
				Str("path", c.Request().URL.Path)
			msg := "request failed"
			var pe *PanicError
			if errors.As(err, &pe) {
				evt = evt.Str("stack", string(pe.Stack))
				msg = "panic recovered"
			}
			evt.Msg(msg)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}
