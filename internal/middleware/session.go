package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yacht-charter/internal/i18n"
)

const (
	HeaderSessionID = "X-Session-ID"
	sessionCookie   = "sid"
)

// Session identifies an anonymous visitor.  The id comes from the
// X-Session-ID header, then the sid cookie; a new one is issued when
// neither holds a valid UUID.  The id is echoed in both so API clients and
// browsers can keep it.
func Session(maxAge time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := c.Request().Header.Get(HeaderSessionID)
			if sid == "" {
				if ck, err := c.Cookie(sessionCookie); err == nil {
					sid = ck.Value
				}
			}
			if _, err := uuid.Parse(sid); err != nil {
				sid = uuid.NewString()
			}
			c.Set(CtxSessionID, sid)
			c.Response().Header().Set(HeaderSessionID, sid)
			c.SetCookie(&http.Cookie{
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(maxAge / time.Second),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			return next(c)
		}
	}
}

// SessionID returns the visitor id set by Session.
func SessionID(c echo.Context) string {
	s, _ := c.Get(CtxSessionID).(string)
	return s
}

// Language picks the display language from ?lang= or Accept-Language.
func Language() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := pick(c)
			c.Set(CtxLang, lang)
			c.Response().Header().Set("Content-Language", string(lang))
			return next(c)
		}
	}
}

// Lang returns the language of the request, picking it on the fly when
// Language did not run.
func Lang(c echo.Context) i18n.Lang {
	if l, ok := c.Get(CtxLang).(i18n.Lang); ok {
		return l
	}
	return pick(c)
}

func pick(c echo.Context) i18n.Lang {
	return i18n.Pick(c.QueryParam("lang"), c.Request().Header.Get("Accept-Language"))
}
