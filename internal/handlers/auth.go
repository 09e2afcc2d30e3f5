package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/flash"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

type AuthHandler struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, LoginTemplate, LoginPage{
		CSRFToken: csrfToken(c),
		Flashes:   flash.Pop(c),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "login")

	username := c.FormValue("username")
	res, ok, err := h.Svc.Login(ctx, username, c.FormValue("password"))
	if err != nil {
		l.Error("login_error", "status", http.StatusInternalServerError, "reason", "cannot verify credentials", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot verify credentials")
	}
	if !ok {
		flash.Add(c, flash.Danger, "Invalid username or password")
		return c.Redirect(http.StatusFound, "/login")
	}

	c.SetCookie(tokens.CreateCookie(tokens.SessionCookie, res.SessionToken, "/", res.SessionExp, h.CookieSecure))
	flash.Add(c, flash.Success, fmt.Sprintf("Welcome, %s!", res.Username))
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.SessionCookie, "/", h.CookieSecure))
	flash.Add(c, flash.Success, "Logged out successfully")
	return c.Redirect(http.StatusFound, "/login")
}
