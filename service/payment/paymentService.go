// Package paymentsvc reconciles payment records with the rental they pay
// for and with the external checkout gateway.
package paymentsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carsharing/model"
	carrepo "carsharing/repository/car"
	paymentrepo "carsharing/repository/payment"
	rentalrepo "carsharing/repository/rental"
	"carsharing/service/errs"
	"carsharing/service/fee"
	"carsharing/service/notify"
	rentalsvc "carsharing/service/rental"
	"carsharing/util/database"
	"carsharing/util/observability"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("carsharing/service/payment")

// Gateway opens a hosted checkout session. Stripe and Xendit clients both
// satisfy it.
type Gateway interface {
	CreateSession(ctx context.Context, req model.CheckoutReq) (*model.CheckoutSession, error)
}

type Service interface {
	rentalsvc.FineIssuer

	// Create opens the PAYMENT obligation for the user's PENDING rental.
	Create(ctx context.Context, userID int64) (*model.Payment, error)
	// Success applies a gateway success callback.
	Success(ctx context.Context, userID int64) (*model.Payment, error)
	// Cancel applies a gateway cancel callback.
	Cancel(ctx context.Context, userID int64) error

	MyPending(ctx context.Context, userID int64) (*model.Payment, error)
	ListByUser(ctx context.Context, userID int64, p model.Page) ([]model.Payment, error)
}

type Deps struct {
	Tx          database.TxRunner
	Payments    paymentrepo.Repo
	Rentals     rentalrepo.Repo
	Cars        carrepo.Repo
	Transitions *rentalsvc.Transitions
	Gateway     Gateway
	Notifier    notify.Notifier
}

type service struct {
	d Deps
}

func New(d Deps) Service {
	if d.Notifier == nil {
		d.Notifier = notify.Discard
	}
	return &service{d: d}
}

// open computes the amount, opens the checkout session and returns the
// unsaved PENDING payment.
func (s *service) open(ctx context.Context, r *model.Rental, car *model.Car, t model.PaymentType, days int64) (*model.Payment, error) {
	minor, err := fee.Amount(t, car.DailyFee, days)
	if err != nil {
		return nil, err
	}

	sess, err := s.d.Gateway.CreateSession(ctx, model.CheckoutReq{
		ExternalID:  fmt.Sprintf("%s:%d:%d", t, r.ID, time.Now().UnixNano()),
		AmountMinor: fee.MinorInt(minor),
		Label:       car.Label(),
	})
	if err != nil {
		return nil, errs.Wrap(errs.CodeGatewayFailed, err, "payment gateway is unavailable")
	}

	return &model.Payment{
		UserID:      r.UserID,
		RentalID:    r.ID,
		Type:        t,
		Status:      model.PaymentPending,
		AmountToPay: fee.ToMajor(minor),
		SessionID:   sess.ID,
		SessionURL:  sess.URL,
	}, nil
}

func (s *service) PrepareFine(ctx context.Context, r *model.Rental, car *model.Car, overdueDays int64) (_ *model.Payment, err error) {
	ctx, span := tracer.Start(ctx, "payment.prepare_fine", trace.WithAttributes(
		attribute.Int64("rental_id", r.ID), attribute.Int64("overdue_days", overdueDays)))
	defer func() { observability.End(span, err) }()

	if _, err := s.d.Payments.PendingByUserAndType(ctx, nil, r.UserID, model.PaymentTypeFine); err == nil {
		return nil, errs.ErrAlreadyPending
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return s.open(ctx, r, car, model.PaymentTypeFine, overdueDays)
}

func (s *service) Create(ctx context.Context, userID int64) (_ *model.Payment, err error) {
	ctx, span := tracer.Start(ctx, "payment.create", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer func() { observability.End(span, err) }()

	// checked before talking to the gateway and again under the user lock
	if err := s.ensureNoPending(ctx, nil, userID); err != nil {
		return nil, err
	}

	r, err := s.d.Rentals.ByUserAndStatus(ctx, userID, model.RentalPending)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNoPendingRental
	}
	if err != nil {
		return nil, err
	}
	car, err := s.d.Cars.GetByID(ctx, r.CarID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrCarNotFound
	}
	if err != nil {
		return nil, err
	}

	p, err := s.open(ctx, r, car, model.PaymentTypePayment, r.RentalDays())
	if err != nil {
		return nil, err
	}

	err = s.d.Tx.InUserTx(ctx, userID, func(tx pgx.Tx) error {
		if err := s.ensureNoPending(ctx, tx, userID); err != nil {
			return err
		}
		cur, err := s.d.Rentals.GetForUpdate(ctx, tx, r.ID)
		if err != nil {
			return err
		}
		if cur.Status != model.RentalPending {
			return errs.ErrNoPendingRental
		}
		return s.d.Payments.Insert(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ensureNoPending(ctx context.Context, tx pgx.Tx, userID int64) error {
	_, err := s.d.Payments.PendingByUserAndType(ctx, tx, userID, model.PaymentTypePayment)
	switch {
	case err == nil:
		return errs.ErrAlreadyPending
	case errors.Is(err, pgx.ErrNoRows):
		return nil
	default:
		return err
	}
}

func (s *service) Success(ctx context.Context, userID int64) (_ *model.Payment, err error) {
	ctx, span := tracer.Start(ctx, "payment.success", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer func() { observability.End(span, err) }()

	var (
		p         *model.Payment
		confirmed *model.Rental
	)
	err = s.d.Tx.InUserTx(ctx, userID, func(tx pgx.Tx) error {
		var err error
		p, err = s.d.Payments.PendingByUser(ctx, tx, userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNoPendingPayment
		}
		if err != nil {
			return err
		}

		ok, err := s.d.Payments.SetStatus(ctx, tx, p.ID, model.PaymentPending, model.PaymentPaid, false)
		if err != nil {
			return err
		}
		if !ok {
			return errs.ErrNoPendingPayment
		}
		p.Status = model.PaymentPaid

		if p.Type != model.PaymentTypePayment {
			return nil
		}
		r, err := s.d.Rentals.GetForUpdate(ctx, tx, p.RentalID)
		if err != nil {
			return err
		}
		ok, err = s.d.Transitions.ConfirmPayment(ctx, tx, r.ID)
		if err != nil {
			return err
		}
		if ok {
			r.Status = model.RentalLasting
			confirmed = r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if confirmed != nil {
		s.d.Notifier.Notify(ctx, notify.Event{Kind: notify.RentalCreated, Rental: confirmed})
	}
	s.d.Notifier.Notify(ctx, notify.Event{Kind: notify.PaymentSucceeded, Payment: p})
	return p, nil
}

func (s *service) Cancel(ctx context.Context, userID int64) (err error) {
	ctx, span := tracer.Start(ctx, "payment.cancel", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer func() { observability.End(span, err) }()

	return s.d.Tx.InUserTx(ctx, userID, func(tx pgx.Tx) error {
		p, err := s.d.Payments.PendingByUserAndType(ctx, tx, userID, model.PaymentTypePayment)
		if errors.Is(err, pgx.ErrNoRows) {
			if _, ferr := s.d.Payments.PendingByUserAndType(ctx, tx, userID, model.PaymentTypeFine); ferr == nil {
				return errs.ErrFineNotCancelable
			}
			return errs.ErrNoPendingPayment
		}
		if err != nil {
			return err
		}

		r, err := s.d.Rentals.GetForUpdate(ctx, tx, p.RentalID)
		if err != nil {
			return err
		}
		if r.Status == model.RentalPending {
			// cancels the payment along with the rental
			if _, err := s.d.Transitions.CancelPending(ctx, tx, r); err != nil {
				return err
			}
			return nil
		}

		_, err = s.d.Payments.SetStatus(ctx, tx, p.ID, model.PaymentPending, model.PaymentCanceled, true)
		return err
	})
}

func (s *service) MyPending(ctx context.Context, userID int64) (*model.Payment, error) {
	p, err := s.d.Payments.PendingByUser(ctx, nil, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNoPendingPayment
	}
	return p, err
}

func (s *service) ListByUser(ctx context.Context, userID int64, p model.Page) ([]model.Payment, error) {
	return s.d.Payments.ListByUser(ctx, userID, p)
}
