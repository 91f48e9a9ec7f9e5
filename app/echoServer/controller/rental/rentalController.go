package rental

import (
	"log/slog"
	"net/http"
	"strconv"

	"carsharing/app/echoServer/controller"
	rs "carsharing/service/rental"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/rentals
func (h *Controller) Create(c echo.Context) error {
	var req CreateRentalReq
	if err := c.Bind(&req); err != nil {
		return controller.BadRequest(c, "invalid JSON")
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	out, err := h.Svc.Create(c.Request().Context(), controller.UserID(c), req.CarID, req.DaysToRent)
	if err != nil {
		return controller.Fail(c, h.Log, "rental create", err)
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /v1/rentals/return
func (h *Controller) Return(c echo.Context) error {
	out, err := h.Svc.Return(c.Request().Context(), controller.UserID(c))
	if err != nil {
		return controller.Fail(c, h.Log, "rental return", err)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /v1/rentals/cancel
func (h *Controller) Cancel(c echo.Context) error {
	if err := h.Svc.Cancel(c.Request().Context(), controller.UserID(c)); err != nil {
		return controller.Fail(c, h.Log, "rental cancel", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Your rental was canceled"})
}

// GET /v1/rentals/:id (manager)
func (h *Controller) Detail(c echo.Context) error {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return controller.BadRequest(c, "invalid id")
	}
	out, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return controller.Fail(c, h.Log, "rental detail", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/rentals/my
func (h *Controller) MyHistory(c echo.Context) error {
	rows, err := h.Svc.Mine(c.Request().Context(), controller.UserID(c), controller.PageOf(c))
	if err != nil {
		return controller.Fail(c, h.Log, "rental history", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/rentals?user_id=&is_active=  (manager)
func (h *Controller) ByUser(c echo.Context) error {
	uid, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	if err != nil || uid <= 0 {
		return controller.BadRequest(c, "invalid user_id")
	}
	active := true
	if raw := c.QueryParam("is_active"); raw != "" {
		if active, err = strconv.ParseBool(raw); err != nil {
			return controller.BadRequest(c, "invalid is_active")
		}
	}
	rows, err := h.Svc.ByUser(c.Request().Context(), uid, active, controller.PageOf(c))
	if err != nil {
		return controller.Fail(c, h.Log, "rentals by user", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/rentals/active  (manager)
func (h *Controller) Active(c echo.Context) error {
	rows, err := h.Svc.AllActive(c.Request().Context(), controller.PageOf(c))
	if err != nil {
		return controller.Fail(c, h.Log, "active rentals", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
