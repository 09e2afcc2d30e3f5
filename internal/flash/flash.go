// Package flash stores one-shot user notices in a signed cookie session
// until the next page render consumes them.
package flash

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/logging"
)

const (
	CookieName = "flash"

	Success = "success"
	Danger  = "danger"
)

type Message struct {
	Category string
	Text     string
}

func init() {
	gob.Register(Message{})
}

// Middleware installs the cookie store Add and Pop read from. The store is
// signed with secret; tampered cookies are treated as empty.
func Middleware(secret []byte, secure bool) echo.MiddlewareFunc {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return session.Middleware(store)
}

func Add(c echo.Context, category, text string) {
	sess := get(c)
	if sess == nil {
		return
	}
	sess.AddFlash(Message{Category: category, Text: text})
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		logging.FromContext(c.Request().Context()).Error("flash_save_error", "error", err)
	}
}

// Pop returns the pending messages and clears them.
func Pop(c echo.Context) []Message {
	sess := get(c)
	if sess == nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}

	msgs := make([]Message, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(Message); ok {
			msgs = append(msgs, m)
		}
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		logging.FromContext(c.Request().Context()).Error("flash_save_error", "error", err)
	}
	return msgs
}

func get(c echo.Context) *sessions.Session {
	sess, err := session.Get(CookieName, c)
	if err != nil {
		// a cookie that fails verification still yields a fresh session
		logging.FromContext(c.Request().Context()).Debug("flash_cookie_rejected", "error", err)
	}
	return sess
}
