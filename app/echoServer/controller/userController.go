package controller

import (
	"log/slog"
	"net/http"

	usersvc "carsharing/service/user"

	"github.com/labstack/echo/v4"
)

type UserController struct {
	s   usersvc.Service
	log *slog.Logger
}

func NewUserController(s usersvc.Service, log *slog.Logger) *UserController {
	return &UserController{s: s, log: log}
}

type UpdateRoleReq struct {
	Role string `json:"role" validate:"required,oneof=CUSTOMER MANAGER customer manager"`
}

// Me
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.User
// @Failure      404  {object}  map[string]any
// @Router       /v1/users/me [get]
func (ct *UserController) Me(c echo.Context) error {
	u, err := ct.s.Get(c.Request().Context(), UserID(c))
	if err != nil {
		return Fail(c, ct.log, "user me", err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateRole
// @Summary      Set a user's role
// @Description  Manager only. Role is CUSTOMER or MANAGER.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int            true  "User id"
// @Param        payload  body  UpdateRoleReq  true  "Role payload"
// @Success      200  {object}  model.User
// @Failure      400  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/users/{id}/role [put]
func (ct *UserController) UpdateRole(c echo.Context) error {
	id, ok := ParamID(c, "id")
	if !ok {
		return BadRequest(c, "invalid id")
	}
	var req UpdateRoleReq
	if err := c.Bind(&req); err != nil {
		ct.log.Warn("bind failed", "path", c.Path(), "err", err)
		return BadRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequest(c, "role must be CUSTOMER or MANAGER")
	}
	u, err := ct.s.UpdateRole(c.Request().Context(), id, req.Role)
	if err != nil {
		return Fail(c, ct.log, "update role", err)
	}
	return c.JSON(http.StatusOK, u)
}
