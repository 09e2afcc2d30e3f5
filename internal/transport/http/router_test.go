package httpserver

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/inventory/internal/db"
	"github.com/Skotchmaster/inventory/internal/handlers"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/middleware/auth"
	"github.com/Skotchmaster/inventory/internal/migrate"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/service"
)

var testSecret = []byte("router-secret")

type testApp struct {
	e          *echo.Echo
	db         *gorm.DB
	exportPath string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, migrate.Run(context.Background(), gdb, migrate.Options{AdminUsername: "admin", AdminPassword: "password"}))

	var logs bytes.Buffer
	e, err := New(Options{Logger: logging.NewWithWriter(&logs, "debug"), SessionSecret: testSecret})
	require.NoError(t, err)

	r := &repo.GormRepo{DB: gdb}
	exportPath := filepath.Join(t.TempDir(), "inventory_export.csv")
	Register(e, &Deps{
		DB: gdb,
		InventoryHandler: &handlers.InventoryHandler{Svc: &service.InventoryService{
			Repo:       r,
			ExportPath: exportPath,
		}},
		AuthHandler: &handlers.AuthHandler{Svc: &service.AuthService{
			Repo:          r,
			SessionSecret: testSecret,
			SessionTTL:    time.Hour,
		}},
		SessionGate: &auth.SessionGate{Secret: testSecret},
		CSRF:        CSRF(true, false),
	})

	return &testApp{e: e, db: gdb, exportPath: exportPath}
}

// browser keeps cookies between requests the way a user agent would.
type browser struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, app *testApp) *browser {
	return &browser{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()

	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	b.app.e.ServeHTTP(rec, req)

	for _, ck := range (&http.Response{Header: rec.Header()}).Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()

	if b.cookies["XSRF-TOKEN"] == nil {
		b.get("/login")
	}
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", b.cookies["XSRF-TOKEN"].Value)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("Origin", "http://example.com")
	return b.do(req)
}

func (b *browser) login() {
	b.t.Helper()

	rec := b.post("/login", url.Values{"username": {"admin"}, "password": {"password"}})
	require.Equal(b.t, http.StatusFound, rec.Code)
	require.Equal(b.t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)

	assert.Equal(t, http.StatusOK, b.get("/health/live").Code)
	assert.Equal(t, http.StatusOK, b.get("/health/ready").Code)

	require.NoError(t, db.Close(app.db))
	assert.Equal(t, http.StatusServiceUnavailable, b.get("/health/ready").Code)
}

func TestUnauthenticatedIndexRedirects(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)

	_, err := (&repo.GormRepo{DB: app.db}).CreateProduct(context.Background(), &models.Product{Name: "SecretWidget", Category: "Tools", Stock: 1, Price: 1})
	require.NoError(t, err)

	rec := b.get("/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.NotContains(t, rec.Body.String(), "SecretWidget")

	rec = b.get("/api/v1/inventory")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "SecretWidget")

	rec = b.get("/login")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please login first")

	rec = b.get("/login")
	assert.NotContains(t, rec.Body.String(), "Please login first")
}

func TestLoginAddDeleteFlow(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)

	b.login()

	rec := b.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome, admin!")
	assert.Contains(t, rec.Body.String(), "No products")

	rec = b.post("/add", url.Values{"pname": {"Widget"}, "pstock": {"5"}, "pprice": {"2.5"}})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = b.get("/")
	body := rec.Body.String()
	assert.Contains(t, body, "Product added successfully!")
	assert.Contains(t, body, "Widget")
	assert.Contains(t, body, "General")
	assert.Contains(t, body, `<strong id="low-stock">1</strong>`)
	assert.Contains(t, body, `<strong id="inventory-value">12.50</strong>`)

	items, err := (&repo.GormRepo{DB: app.db}).ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	rec = b.post("/delete/"+strconv.Itoa(items[0].ID), nil)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = b.get("/")
	assert.Contains(t, rec.Body.String(), "Product deleted successfully!")
	assert.NotContains(t, rec.Body.String(), "Widget")

	assert.Equal(t, http.StatusNotFound, b.post("/delete/abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, b.post("/add", url.Values{"pname": {"x"}, "pstock": {"x"}, "pprice": {"1"}}).Code)
}

func TestSearchQuery(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)
	b.login()

	b.post("/add", url.Values{"pname": {"Laptop"}, "pcategory": {"Electronics"}, "pstock": {"3"}, "pprice": {"900"}})
	b.post("/add", url.Values{"pname": {"Desk"}, "pcategory": {"Furniture"}, "pstock": {"12"}, "pprice": {"150"}})

	rec := b.get("/?q=FURN")
	body := rec.Body.String()
	assert.Contains(t, body, "Desk")
	assert.NotContains(t, body, "Laptop")
	assert.Contains(t, body, `value="furn"`)

	rec = b.get("/api/v1/inventory?q=lap")
	assert.Contains(t, rec.Body.String(), `"total_products":1`)
}

func TestExportFlow(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)
	b.login()

	b.post("/add", url.Values{"pname": {"Widget"}, "pcategory": {"Tools"}, "pstock": {"5"}, "pprice": {"2.5"}})

	rec := b.get("/export_csv")
	require.Equal(t, http.StatusFound, rec.Code)

	raw, err := os.ReadFile(app.exportPath)
	require.NoError(t, err)
	assert.Equal(t, "id,name,category,stock,price\n1,Widget,Tools,5,2.5\n", string(raw))

	assert.Contains(t, b.get("/").Body.String(), "Inventory exported to CSV!")
}

func TestPostWithoutCSRFTokenRejected(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)
	b.login()

	req := httptest.NewRequest(http.MethodPost, "/add", strings.NewReader("pname=x&pstock=1&pprice=1"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("Origin", "http://example.com")
	rec := b.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)
	b.login()

	rec := b.get("/logout")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	assert.Contains(t, b.get("/login").Body.String(), "Logged out successfully")
	assert.Equal(t, http.StatusFound, b.get("/").Code)
}

func TestBadLogin(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)

	rec := b.post("/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, b.get("/login").Body.String(), "Invalid username or password")
	assert.Equal(t, http.StatusFound, b.get("/").Code)
}

func TestUnauthenticatedPostRedirectsBeforeCSRF(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)

	req := httptest.NewRequest(http.MethodPost, "/add", strings.NewReader("pname=x&pstock=1&pprice=1"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := b.do(req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, b.get("/login").Body.String(), "Please login first")

	items, err := (&repo.GormRepo{DB: app.db}).ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoginRequiresCSRFToken(t *testing.T) {
	app := newTestApp(t)
	b := newBrowser(t, app)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=admin&password=password"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("Origin", "http://example.com")
	rec := b.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, http.StatusFound, b.get("/").Code)
}

func TestNewRejectsEmptySecret(t *testing.T) {
	_, err := New(Options{Logger: logging.NewWithWriter(&bytes.Buffer{}, "info")})
	assert.Error(t, err)
}

func TestCSRFDisabled(t *testing.T) {
	assert.Nil(t, CSRF(false, false))
	assert.NotNil(t, CSRF(true, true))
}
