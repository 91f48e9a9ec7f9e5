package payment

import (
	"log/slog"
	"net/http"
	"strconv"

	"carsharing/app/echoServer/controller"
	paymentsvc "carsharing/service/payment"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// POST /v1/payments
func (h *Controller) Create(c echo.Context) error {
	p, err := h.Svc.Create(c.Request().Context(), controller.UserID(c))
	if err != nil {
		return controller.Fail(c, h.Log, "payment create", err)
	}
	return c.JSON(http.StatusCreated, p)
}

// GET /v1/payments/success is the gateway's success redirect.
func (h *Controller) Success(c echo.Context) error {
	p, err := h.Svc.Success(c.Request().Context(), controller.UserID(c))
	if err != nil {
		return controller.Fail(c, h.Log, "payment success", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Payment was successful", "payment": p})
}

// GET /v1/payments/cancel is the gateway's cancel redirect.
func (h *Controller) Cancel(c echo.Context) error {
	if err := h.Svc.Cancel(c.Request().Context(), controller.UserID(c)); err != nil {
		return controller.Fail(c, h.Log, "payment cancel", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Payment was canceled"})
}

// GET /v1/payments/pending
func (h *Controller) Pending(c echo.Context) error {
	p, err := h.Svc.MyPending(c.Request().Context(), controller.UserID(c))
	if err != nil {
		return controller.Fail(c, h.Log, "pending payment", err)
	}
	return c.JSON(http.StatusOK, p)
}

// GET /v1/payments/my
func (h *Controller) Mine(c echo.Context) error {
	return h.list(c, controller.UserID(c))
}

// GET /v1/payments?user_id=  (manager)
func (h *Controller) ByUser(c echo.Context) error {
	uid, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	if err != nil || uid <= 0 {
		return controller.BadRequest(c, "invalid user_id")
	}
	return h.list(c, uid)
}

func (h *Controller) list(c echo.Context, uid int64) error {
	rows, err := h.Svc.ListByUser(c.Request().Context(), uid, controller.PageOf(c))
	if err != nil {
		return controller.Fail(c, h.Log, "payment list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
