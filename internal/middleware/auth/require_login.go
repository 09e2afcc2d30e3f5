package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/flash"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

const LoginPath = "/login"

type SessionGate struct {
	Secret       []byte
	CookieSecure bool
}

// RequireLogin lets the request through only with a valid session cookie.
// Anyone else is sent to the login page with a notice.
func (g *SessionGate) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ck, err := c.Cookie(tokens.SessionCookie)
		if err != nil || ck.Value == "" {
			return g.reject(c, false, "no session cookie")
		}

		claims, err := tokens.SessionClaimsFromToken(ck.Value, g.Secret)
		if err != nil {
			return g.reject(c, true, err.Error())
		}

		username := claims.Subject
		c.Set("user", username)
		c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), username)))

		return next(c)
	}
}

func (g *SessionGate) reject(c echo.Context, stale bool, reason string) error {
	logging.FromContext(c.Request().Context()).Info("session_rejected", "path", c.Path(), "reason", reason)

	if stale {
		c.SetCookie(tokens.DeleteCookie(tokens.SessionCookie, "/", g.CookieSecure))
	}
	flash.Add(c, flash.Danger, "Please login first")
	return c.Redirect(http.StatusFound, LoginPath)
}
