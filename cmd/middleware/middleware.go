package middleware

import (
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/Macaies/Permit-app/internal/dto"
)

const roleKey = "staff_role"

// LoggingMiddleware logs one line per request.
func LoggingMiddleware() func(*ginext.Context) {
	return func(c *ginext.Context) {
		start := time.Now()
		c.Next()
		zlog.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

// RoleFromHeader copies the caller's role, as asserted by the fronting auth
// layer, into the request context. Identity is request-scoped on purpose:
// there is no process-global admin flag.
func RoleFromHeader() func(*ginext.Context) {
	return func(c *ginext.Context) {
		c.Set(roleKey, c.GetHeader("X-Staff-Role"))
		c.Next()
	}
}

// RequireStaff gates the review surface.
func RequireStaff() func(*ginext.Context) {
	return func(c *ginext.Context) {
		role := c.GetString(roleKey)
		if role != "staff" && role != "admin" {
			dto.ForbiddenError(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
