package jwtx

import (
	"net/http"

	"carsharing/model"
	jwtutil "carsharing/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	keyUserID = "user_id"
	keyRole   = "role"
)

// Claims copies sub and role off the token echo-jwt stored under "user".
func Claims() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			tok, _ := c.Get("user").(*jwt.Token)
			cl, err := jwtutil.FromToken(tok)
			if err != nil {
				c.Logger().Warnf("[AUTH] %v req_id=%s ip=%s", err, rid, c.RealIP())
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			c.Set(keyUserID, cl.UserID)
			c.Set(keyRole, model.Role(cl.Role))
			return next(c)
		}
	}
}

func UserIDFromContext(c echo.Context) (int64, bool) {
	uid, ok := c.Get(keyUserID).(int64)
	return uid, ok
}

func RoleFromContext(c echo.Context) model.Role {
	r, _ := c.Get(keyRole).(model.Role)
	return r
}

// RequireRole rejects callers whose token carries another role.
func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if RoleFromContext(c) != role {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			return next(c)
		}
	}
}
