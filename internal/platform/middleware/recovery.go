package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
)

const panicStackSize = 8 << 10

// PanicError is a recovered handler panic with the stack that produced it.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Recovery turns a handler panic into an Internal error. Logging happens in
// ErrorHandler so the panic line carries the same request id as every other
// failed request.
func Recovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				buf := make([]byte, panicStackSize)
				buf = buf[:runtime.Stack(buf, false)]
				err = apperr.Internal(&PanicError{Value: r, Stack: buf})
			}()
			return next(c)
		}
	}
}
