package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/flash"
	"github.com/Skotchmaster/inventory/internal/middleware/csrf"
	"github.com/Skotchmaster/inventory/internal/service"
)

const (
	IndexTemplate = "index.html"
	LoginTemplate = "login.html"
)

type IndexPage struct {
	User      string
	CSRFToken string
	Flashes   []flash.Message
	View      service.InventoryView
}

type LoginPage struct {
	CSRFToken string
	Flashes   []flash.Message
}

func csrfToken(c echo.Context) string {
	tok, _ := c.Get(csrf.ContextKey).(string)
	return tok
}
