package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/flash"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/util"
)

type InventoryHandler struct {
	Svc *service.InventoryService
}

func (h *InventoryHandler) Index(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := c.Get("user").(string)
	page := IndexPage{
		User:      user,
		CSRFToken: csrfToken(c),
		Flashes:   flash.Pop(c),
		View:      h.Svc.View(ctx, c.QueryParam("q")),
	}
	return c.Render(http.StatusOK, IndexTemplate, page)
}

type InventoryResponse struct {
	service.InventoryView
	Page int `json:"page,omitempty"`
	Size int `json:"size,omitempty"`
}

// GetInventory returns the filtered view as JSON. With page or size set only
// that window of rows is returned; the metrics always cover the whole
// filtered set.
func (h *InventoryHandler) GetInventory(c echo.Context) error {
	resp := InventoryResponse{InventoryView: h.Svc.View(c.Request().Context(), c.QueryParam("q"))}

	if c.QueryParam("page") != "" || c.QueryParam("size") != "" {
		page, _ := strconv.Atoi(c.QueryParam("page"))
		size, _ := strconv.Atoi(c.QueryParam("size"))
		resp.Page, resp.Size = util.Normalize(page, size)

		from, to := util.Window(len(resp.Products), resp.Page, resp.Size)
		resp.Products = resp.Products[from:to]
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) AddProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "add_product")

	in, err := service.ParseProductInput(
		c.FormValue("pname"),
		c.FormValue("pstock"),
		c.FormValue("pprice"),
		c.FormValue("pcategory"),
	)
	if err != nil {
		l.Warn("add_product_error", "status", http.StatusBadRequest, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	prod, err := h.Svc.AddProduct(ctx, in)
	if err != nil {
		l.Error("add_product_error", "status", http.StatusInternalServerError, "reason", "cannot insert product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add product")
	}

	l.Info("product_added", "productID", prod.ID)
	flash.Add(c, flash.Success, "Product added successfully!")
	return c.Redirect(http.StatusFound, "/")
}

func (h *InventoryHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("delete_product_error", "status", http.StatusNotFound, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		l.Error("delete_product_error", "status", http.StatusInternalServerError, "reason", "cannot delete product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product")
	}

	flash.Add(c, flash.Success, "Product deleted successfully!")
	return c.Redirect(http.StatusFound, "/")
}

func (h *InventoryHandler) ExportCSV(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "export_csv")

	res, err := h.Svc.Export(ctx)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrValidation) {
			status = http.StatusBadRequest
		}
		l.Error("export_csv_error", "status", status, "reason", "cannot write export", "error", err)
		return echo.NewHTTPError(status, "cannot export inventory")
	}

	l.Info("inventory_exported", "path", res.Path, "rows", res.Rows)
	flash.Add(c, flash.Success, "Inventory exported to CSV!")
	return c.Redirect(http.StatusFound, "/")
}
