package car

import (
	"log/slog"
	"net/http"
	"strings"

	"carsharing/app/echoServer/controller"
	carsvc "carsharing/service/car"
	"carsharing/service/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type Controller struct {
	Svc carsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/cars  (manager)
func (h *Controller) Create(c echo.Context) error {
	var req CreateCarReq
	if err := c.Bind(&req); err != nil {
		return controller.BadRequest(c, "invalid json")
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	car, err := h.Svc.Create(c.Request().Context(), req.toModel())
	if err != nil {
		return controller.Fail(c, h.Log, "car create", err)
	}
	return c.JSON(http.StatusCreated, car)
}

// PATCH /v1/cars/:id  (manager)
func (h *Controller) Update(c echo.Context) error {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return controller.BadRequest(c, "invalid id")
	}
	var req UpdateCarReq
	if err := c.Bind(&req); err != nil {
		return controller.BadRequest(c, "invalid json")
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	car, err := h.Svc.Update(c.Request().Context(), id, req.toPatch())
	if err != nil {
		return controller.Fail(c, h.Log, "car update", err)
	}
	return c.JSON(http.StatusOK, car)
}

// DELETE /v1/cars/:id  (manager)
func (h *Controller) Delete(c echo.Context) error {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return controller.BadRequest(c, "invalid id")
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return controller.Fail(c, h.Log, "car delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/cars/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return controller.BadRequest(c, "invalid id")
	}
	car, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return controller.Fail(c, h.Log, "car detail", err)
	}
	return c.JSON(http.StatusOK, car)
}

// GET /v1/cars
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.ListAvailable(c.Request().Context(), controller.PageOf(c))
	if err != nil {
		return controller.Fail(c, h.Log, "car list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/cars/search?models=&brands=&types=&prices=
// Each parameter may repeat or hold a comma-separated list.
func (h *Controller) Search(c echo.Context) error {
	q := c.QueryParams()
	sp := carsvc.SearchParams{
		Models: splitList(q["models"]),
		Brands: splitList(q["brands"]),
		Types:  splitList(q["types"]),
	}
	for _, raw := range splitList(q["prices"]) {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return controller.Fail(c, h.Log, "car search", errs.Wrap(errs.CodeInvalidSearch, err, "invalid price %q", raw))
		}
		sp.Prices = append(sp.Prices, d)
	}
	rows, err := h.Svc.Search(c.Request().Context(), sp, controller.PageOf(c))
	if err != nil {
		return controller.Fail(c, h.Log, "car search", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
