package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yacht-charter/internal/i18n"
)

// RoleChecker answers whether a user holds a role.
type RoleChecker interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// RequireRole lets the request through only when the user set by JWTAuth
// holds role.  Roles live in the database, not in the token, so revoking
// admin access takes effect immediately.
func RequireRole(roles RoleChecker, role string, log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := UserID(c)
			if uid == "" {
				return deny(c, http.StatusUnauthorized, i18n.Unauthorized)
			}
			ok, err := roles.HasRole(c.Request().Context(), uid, role)
			if err != nil {
				log.Error("role lookup failed", slog.String("user_id", uid), slog.String("error", err.Error()))
				return deny(c, http.StatusServiceUnavailable, i18n.TryAgain)
			}
			if !ok {
				return deny(c, http.StatusForbidden, i18n.Forbidden)
			}
			return next(c)
		}
	}
}
