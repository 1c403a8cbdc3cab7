package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"webolla/internal/core"
)

// RequestIDMiddleware assigns each request an ID, echoes it back in the
// response header, and stores it in the request context so backend calls can
// forward it. An inbound X-Request-ID is kept if the client supplied one.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			c.Response().Header().Set("X-Request-ID", requestID)
			c.SetRequest(req.WithContext(core.WithRequestID(req.Context(), requestID)))

			return next(c)
		}
	}
}
