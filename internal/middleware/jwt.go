package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yacht-charter/internal/i18n"
)

// Context keys set by this package.
const (
	CtxUserID    = "user_id"
	CtxSessionID = "session_id"
	CtxLang      = "lang"
)

// JWTAuth validates a Bearer HS256 token signed with secret and stores its
// subject under CtxUserID.  Tokens are issued by the identity provider;
// this service only verifies them.
func JWTAuth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return deny(c, http.StatusUnauthorized, i18n.Unauthorized)
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			tok, err := parser.Parse(raw, func(*jwt.Token) (interface{}, error) { return key, nil })
			if err != nil || !tok.Valid {
				return deny(c, http.StatusUnauthorized, i18n.Unauthorized)
			}
			sub, err := tok.Claims.GetSubject()
			if err != nil || sub == "" {
				return deny(c, http.StatusUnauthorized, i18n.Unauthorized)
			}
			c.Set(CtxUserID, sub)
			return next(c)
		}
	}
}

// UserID returns the authenticated subject, or "" outside JWTAuth.
func UserID(c echo.Context) string {
	s, _ := c.Get(CtxUserID).(string)
	return s
}

func deny(c echo.Context, status int, key i18n.Key) error {
	return c.JSON(status, echo.Map{"error": i18n.T(Lang(c), key)})
}
