// Package main car sharing API.
//
// @title           Car Sharing API
// @version         1.0
// @description     car rentals, payments and the car catalog.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carsharing/app/echoServer"
	"carsharing/app/echoServer/controller"
	authctrl "carsharing/app/echoServer/controller/auth"
	carctrl "carsharing/app/echoServer/controller/car"
	paymentctrl "carsharing/app/echoServer/controller/payment"
	rentalctrl "carsharing/app/echoServer/controller/rental"
	"carsharing/app/echoServer/validation"
	"carsharing/app/scheduler"
	"carsharing/config"
	carrepo "carsharing/repository/car"
	"carsharing/repository/memory"
	paymentrepo "carsharing/repository/payment"
	rentalrepo "carsharing/repository/rental"
	striperepo "carsharing/repository/stripe"
	userrepo "carsharing/repository/user"
	xenditrepo "carsharing/repository/xendit"
	authsvc "carsharing/service/auth"
	carsvc "carsharing/service/car"
	"carsharing/service/inventory"
	"carsharing/service/notify"
	paymentsvc "carsharing/service/payment"
	rentalsvc "carsharing/service/rental"
	usersvc "carsharing/service/user"
	"carsharing/util/database"
	"carsharing/util/httpx"
	"carsharing/util/observability"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v76"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const shutdownTimeout = 15 * time.Second

type stores struct {
	tx       database.TxRunner
	cars     carrepo.Repo
	rentals  rentalrepo.Repo
	payments paymentrepo.Repo
	users    userrepo.Repo
	close    func()
}

func openStores(ctx context.Context, cfg config.App) (stores, error) {
	if cfg.Env == config.EnvMemory {
		st := memory.New()
		return stores{
			tx: st, cars: st.Cars(), rentals: st.Rentals(), payments: st.Payments(), users: st.Users(),
			close: func() {},
		}, nil
	}
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	return stores{
		tx: db, cars: carrepo.New(db), rentals: rentalrepo.New(db), payments: paymentrepo.New(db), users: userrepo.New(db),
		close: db.Close,
	}, nil
}

func newGateway(cfg config.Payment) paymentsvc.Gateway {
	client := httpx.New(cfg.Timeout)
	if cfg.Gateway == config.GatewayXendit {
		return xenditrepo.NewHTTP(cfg.XenditAPIKey, cfg.SuccessURL, cfg.CancelURL, client)
	}
	return striperepo.New(cfg.StripeAPIKey, cfg.SuccessURL, cfg.CancelURL, stripe.NewBackends(client))
}

// newSender picks every configured channel; the log sender is the fallback.
func newSender(cfg config.Notify, log *slog.Logger) (notify.Sender, func(), error) {
	var (
		senders notify.Fanout
		closers []func()
	)
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, "", cfg.AdminChatID, httpx.New(cfg.Timeout))
		if err != nil {
			return nil, nil, err
		}
		senders = append(senders, tg)
	}
	if len(cfg.KafkaBrokers) > 0 {
		k := notify.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		senders = append(senders, k)
		closers = append(closers, func() {
			if err := k.Close(); err != nil {
				log.Error("kafka close", "err", err)
			}
		})
	}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	switch len(senders) {
	case 0:
		return notify.LogSender{Log: log}, closeAll, nil
	case 1:
		return senders[0], closeAll, nil
	}
	return senders, closeAll, nil
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTelEndpoint)
	if err != nil {
		log.Error("tracing setup failed", "err", err)
		os.Exit(1)
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer st.close()

	sender, closeSender, err := newSender(cfg.Notify, log)
	if err != nil {
		log.Error("notifier setup failed", "err", err)
		os.Exit(1)
	}
	dispatcher := notify.NewDispatcher(sender, cfg.Notify.Buffer, cfg.Notify.Timeout, log)
	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		dispatcher.Run(ctx)
	}()

	// services
	tr := &rentalsvc.Transitions{Rentals: st.rentals, Payments: st.payments, Ledger: inventory.New(st.cars)}
	ps := paymentsvc.New(paymentsvc.Deps{
		Tx: st.tx, Payments: st.payments, Rentals: st.rentals, Cars: st.cars,
		Transitions: tr, Gateway: newGateway(cfg.Payment), Notifier: dispatcher,
	})
	rs := rentalsvc.New(rentalsvc.Deps{
		Tx: st.tx, Rentals: st.rentals, Cars: st.cars, Payments: st.payments,
		Transitions: tr, Fines: ps, Notifier: dispatcher,
	})
	cs := carsvc.New(st.cars, dispatcher)
	us := usersvc.New(st.users, dispatcher)
	as := authsvc.New(st.users, cfg.JWTSecret)

	cron, err := scheduler.New(ctx, scheduler.Jobs{
		Cleaner:  rentalsvc.NewCleaner(st.tx, tr, log),
		Reminder: rentalsvc.NewReminder(st.rentals, dispatcher),
	}, scheduler.Schedule{Sweep: cfg.SweepSchedule, Overdue: cfg.OverdueSchedule}, log)
	if err != nil {
		log.Error("scheduler setup failed", "err", err)
		os.Exit(1)
	}
	cron.Start()

	// controllers
	v := validator.New()

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e, log)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:    &authctrl.Controller{Svc: as, V: v, Log: log},
		Car:     &carctrl.Controller{Svc: cs, V: v, Log: log},
		Rental:  &rentalctrl.Controller{Svc: rs, V: v, Log: log},
		Payment: &paymentctrl.Controller{Svc: ps, Log: log},
		User:    controller.NewUserController(us, log),

		JWTSecret: cfg.JWTSecret,
	})

	log.Info("starting server", "port", cfg.Port, "env", cfg.Env, "gateway", cfg.Payment.Gateway)
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	<-cron.Stop().Done()
	<-dispatched
	closeSender()
	if err := shutdownTracing(sctx); err != nil {
		log.Error("tracing shutdown", "err", err)
	}
}
