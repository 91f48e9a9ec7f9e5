package echoServer

import (
	"carsharing/app/echoServer/controller"
	"carsharing/app/echoServer/controller/auth"
	"carsharing/app/echoServer/controller/car"
	"carsharing/app/echoServer/controller/payment"
	"carsharing/app/echoServer/controller/rental"
	"carsharing/app/echoServer/jwtx"
	"carsharing/model"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Car       *car.Controller
	Rental    *rental.Controller
	Payment   *payment.Controller
	User      *controller.UserController
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	api := e.Group("/v1")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization:Bearer ",
	}))
	api.Use(jwtx.Claims())
	manager := jwtx.RequireRole(model.RoleManager)

	// Cars
	api.GET("/cars", c.Car.List)
	api.GET("/cars/search", c.Car.Search)
	api.GET("/cars/:id", c.Car.Detail)
	api.POST("/cars", c.Car.Create, manager)
	api.PATCH("/cars/:id", c.Car.Update, manager)
	api.DELETE("/cars/:id", c.Car.Delete, manager)

	// Rentals
	api.POST("/rentals", c.Rental.Create)
	api.POST("/rentals/return", c.Rental.Return)
	api.POST("/rentals/cancel", c.Rental.Cancel)
	api.GET("/rentals/my", c.Rental.MyHistory)
	api.GET("/rentals/active", c.Rental.Active, manager)
	api.GET("/rentals", c.Rental.ByUser, manager)
	api.GET("/rentals/:id", c.Rental.Detail, manager)

	// Payments
	api.POST("/payments", c.Payment.Create)
	api.GET("/payments/success", c.Payment.Success)
	api.GET("/payments/cancel", c.Payment.Cancel)
	api.GET("/payments/pending", c.Payment.Pending)
	api.GET("/payments/my", c.Payment.Mine)
	api.GET("/payments", c.Payment.ByUser, manager)

	// Users
	api.GET("/users/me", c.User.Me)
	api.PUT("/users/:id/role", c.User.UpdateRole, manager)
}
