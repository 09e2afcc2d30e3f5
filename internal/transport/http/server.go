package httpserver

import (
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/inventory/internal/flash"
	"github.com/Skotchmaster/inventory/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/inventory/internal/middleware/logging"
)

type Options struct {
	Logger        *slog.Logger
	SessionSecret []byte
	CookieSecure  bool
}

// New builds the echo instance with the global middleware chain and the
// template renderer; routes are added by Register.
func New(opts Options) (*echo.Echo, error) {
	if len(opts.SessionSecret) == 0 {
		return nil, errors.New("session secret is empty")
	}

	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(opts.Logger))
	e.Use(flash.Middleware(opts.SessionSecret, opts.CookieSecure))

	return e, nil
}

// CSRF returns the form protection for Register, or nil when disabled.
func CSRF(enabled, cookieSecure bool) echo.MiddlewareFunc {
	if !enabled {
		return nil
	}
	cfg := csrf.DefaultConfig()
	cfg.Secure = cookieSecure
	return csrf.Middleware(cfg)
}
