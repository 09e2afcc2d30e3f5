package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/inventory/internal/db"
	"github.com/Skotchmaster/inventory/internal/handlers"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/middleware/auth"
)

type Deps struct {
	DB               *gorm.DB
	InventoryHandler *handlers.InventoryHandler
	AuthHandler      *handlers.AuthHandler
	SessionGate      *auth.SessionGate
	CSRF             echo.MiddlewareFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", ready(d.DB))

	// CSRF sits behind the gate so anonymous posts get the login redirect.
	var forms []echo.MiddlewareFunc
	if d.CSRF != nil {
		forms = append(forms, d.CSRF)
	}

	e.GET("/login", d.AuthHandler.LoginPage, forms...)
	e.POST("/login", d.AuthHandler.Login, forms...)
	e.GET("/logout", d.AuthHandler.Logout)

	app := e.Group("", append([]echo.MiddlewareFunc{d.SessionGate.RequireLogin}, forms...)...)

	app.GET("/", d.InventoryHandler.Index)
	app.POST("/add", d.InventoryHandler.AddProduct)
	app.POST("/delete/:id", d.InventoryHandler.DeleteProduct)
	app.GET("/export_csv", d.InventoryHandler.ExportCSV)

	v1 := app.Group("/api/v1")

	v1.GET("/inventory", d.InventoryHandler.GetInventory)
}

func ready(gdb *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx, gdb); err != nil {
			logging.FromContext(ctx).Error("readiness_error", "status", http.StatusServiceUnavailable, "reason", "database unreachable", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	}
}
