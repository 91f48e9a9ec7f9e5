package controller

import (
	"log/slog"
	"net/http"
	"strconv"

	"carsharing/app/echoServer/jwtx"
	"carsharing/model"
	"carsharing/service/errs"

	"github.com/labstack/echo/v4"
)

const maxPageSize = 100

var statusByKind = map[errs.Kind]int{
	errs.KindNotFound:    http.StatusNotFound,
	errs.KindConflict:    http.StatusConflict,
	errs.KindUnavailable: http.StatusConflict,
	errs.KindValidation:  http.StatusBadRequest,
	errs.KindExternal:    http.StatusBadGateway,
	errs.KindAuth:        http.StatusUnauthorized,
}

// StatusOf maps a service error to its HTTP status.
func StatusOf(err error) int {
	if st, ok := statusByKind[errs.KindOf(err)]; ok {
		return st
	}
	return http.StatusInternalServerError
}

// Fail writes err as a JSON error body. Uncoded errors are logged and hidden.
func Fail(c echo.Context, log *slog.Logger, op string, err error) error {
	st := StatusOf(err)
	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	if st == http.StatusInternalServerError || st == http.StatusBadGateway {
		log.Error(op, "err", err, "req_id", rid, "path", c.Path())
	} else {
		log.Warn(op, "code", errs.Code(err), "req_id", rid)
	}
	body := echo.Map{"message": errs.Message(err)}
	if code := errs.Code(err); code != "" {
		body["code"] = code
	}
	return c.JSON(st, body)
}

func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
}

// UserID is the caller id set by the auth middleware.
func UserID(c echo.Context) int64 {
	uid, _ := jwtx.UserIDFromContext(c)
	return uid
}

// ParamID parses a positive path id.
func ParamID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// PageOf reads ?page=&size=, zero-based, with size capped.
func PageOf(c echo.Context) model.Page {
	p := model.Page{Size: model.DefaultPageSize}
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(c.QueryParam("size")); err == nil && n > 0 {
		p.Size = min(n, maxPageSize)
	}
	return p
}
