package rental

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
	"carsharing/service/notify"
	"carsharing/util/database"
	"carsharing/util/observability"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("carsharing/service/rental")

// FineIssuer opens the FINE obligation for an overdue return. The gateway
// session is created before the return transaction starts and the returned
// payment is saved inside it, so the return and its fine commit together.
type FineIssuer interface {
	PrepareFine(ctx context.Context, r *model.Rental, car *model.Car, overdueDays int64) (*model.Payment, error)
}

// View is a rental as shown to callers.
type View struct {
	model.Rental
	ReturnStatus string         `json:"return_status"`
	Fine         *model.Payment `json:"fine,omitempty"`
}

const (
	statusNotReturned = "The car is not returned yet. Return it in time or you will pay 3x for each day after required day."
	statusNotActive   = "Your rental is not active yet. Pay for that first."
	statusLateSuffix  = ". Car is returned not in required time. You should pay fine. You can't rent a new car until you pay."
)

func NewView(r model.Rental, today time.Time) View {
	return View{Rental: r, ReturnStatus: returnStatus(r, today)}
}

func returnStatus(r model.Rental, today time.Time) string {
	if r.ActualReturnDate == nil {
		if r.Status == model.RentalLasting {
			return statusNotReturned
		}
		return statusNotActive
	}
	date := r.ActualReturnDate.Format(time.DateOnly)
	if !r.RequiredReturnDate.Before(today) {
		return date
	}
	return date + statusLateSuffix
}

type Service interface {
	// Create reserves a unit of carID and opens a PENDING rental for days.
	Create(ctx context.Context, userID, carID int64, days int) (*View, error)
	// Return closes the user's LASTING rental and fines a late return.
	Return(ctx context.Context, userID int64) (*View, error)
	// Cancel drops the user's PENDING rental. A LASTING one must be returned.
	Cancel(ctx context.Context, userID int64) error

	Get(ctx context.Context, id int64) (*View, error)
	Mine(ctx context.Context, userID int64, p model.Page) ([]View, error)
	// ByUser returns the single LASTING rental when active, else the
	// user's returned rentals.
	ByUser(ctx context.Context, userID int64, active bool, p model.Page) ([]View, error)
	AllActive(ctx context.Context, p model.Page) ([]View, error)
}

type Deps struct {
	Tx          database.TxRunner
	Rentals     rentalrepo.Repo
	Cars        carrepo.Repo
	Payments    paymentrepo.Repo
	Transitions *Transitions
	Fines       FineIssuer
	Notifier    notify.Notifier
	Now         func() time.Time
}

type service struct {
	d Deps
}

func New(d Deps) Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Notifier == nil {
		d.Notifier = notify.Discard
	}
	return &service{d: d}
}

func (s *service) today() time.Time { return model.DateOf(s.d.Now()) }

func (s *service) Create(ctx context.Context, userID, carID int64, days int) (_ *View, err error) {
	ctx, span := tracer.Start(ctx, "rental.create", trace.WithAttributes(
		attribute.Int64("user_id", userID), attribute.Int64("car_id", carID), attribute.Int("days", days)))
	defer func() { observability.End(span, err) }()

	if days < 0 {
		return nil, errs.Invalid("days to rent must not be negative")
	}

	today := s.today()
	r := &model.Rental{
		UserID:             userID,
		CarID:              carID,
		RentalDate:         today,
		RequiredReturnDate: today.AddDate(0, 0, days),
		Status:             model.RentalPending,
	}

	err = s.d.Tx.InUserTx(ctx, userID, func(tx pgx.Tx) error {
		if _, err := s.d.Rentals.ActiveByUser(ctx, tx, userID); err == nil {
			return errs.ErrConflictingRental
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		if _, err := s.d.Payments.PendingByUserAndType(ctx, tx, userID, model.PaymentTypeFine); err == nil {
			return errs.ErrUnpaidFine
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		if _, err := s.d.Transitions.Ledger.Reserve(ctx, tx, carID); err != nil {
			return err
		}

		if err := s.d.Rentals.Insert(ctx, tx, r); err != nil {
			if errors.Is(err, rentalrepo.ErrActiveExists) {
				return errs.ErrConflictingRental
			}
			return fmt.Errorf("insert rental: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	v := NewView(*r, s.today())
	return &v, nil
}

func (s *service) Return(ctx context.Context, userID int64) (_ *View, err error) {
	ctx, span := tracer.Start(ctx, "rental.return", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer func() { observability.End(span, err) }()

	r, err := s.d.Rentals.ByUserAndStatus(ctx, userID, model.RentalLasting)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNoActiveRental
	}
	if err != nil {
		return nil, err
	}

	today := s.today()
	var fine *model.Payment
	if overdue := r.OverdueDays(today); overdue > 0 {
		car, err := s.d.Cars.GetByID(ctx, r.CarID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrCarNotFound
		}
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Int64("overdue_days", overdue))
		if fine, err = s.d.Fines.PrepareFine(ctx, r, car, overdue); err != nil {
			return nil, err
		}
	}

	err = s.d.Tx.InUserTx(ctx, userID, func(tx pgx.Tx) error {
		ok, err := s.d.Rentals.MarkReturned(ctx, tx, r.ID, today)
		if err != nil {
			return err
		}
		if !ok {
			return errs.ErrNoActiveRental
		}
		if _, err := s.d.Transitions.Ledger.Release(ctx, tx, r.CarID); err != nil {
			return err
		}
		if fine != nil {
			if err := s.d.Payments.Insert(ctx, tx, fine); err != nil {
				return fmt.Errorf("insert fine: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.Status = model.RentalReturned
	r.ActualReturnDate = &today
	s.d.Notifier.Notify(ctx, notify.Event{Kind: notify.RentalReturned, Rental: r})

	v := NewView(*r, today)
	v.Fine = fine
	return &v, nil
}

func (s *service) Cancel(ctx context.Context, userID int64) (err error) {
	ctx, span := tracer.Start(ctx, "rental.cancel", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer func() { observability.End(span, err) }()

	return s.d.Tx.InUserTx(ctx, userID, func(tx pgx.Tx) error {
		r, err := s.d.Rentals.ActiveByUser(ctx, tx, userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNoActiveRental
		}
		if err != nil {
			return err
		}
		if r.Status == model.RentalLasting {
			return errs.ErrCannotCancelActive
		}

		ok, err := s.d.Transitions.CancelPending(ctx, tx, r)
		if err != nil {
			return err
		}
		if !ok {
			return errs.ErrNoActiveRental
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, id int64) (*View, error) {
	r, err := s.d.Rentals.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrRentalNotFound
	}
	if err != nil {
		return nil, err
	}
	v := NewView(*r, s.today())
	return &v, nil
}

func (s *service) Mine(ctx context.Context, userID int64, p model.Page) ([]View, error) {
	rs, err := s.d.Rentals.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return views(rs, s.today()), nil
}

func (s *service) ByUser(ctx context.Context, userID int64, active bool, p model.Page) ([]View, error) {
	if active {
		r, err := s.d.Rentals.ByUserAndStatus(ctx, userID, model.RentalLasting)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNoActiveRental
		}
		if err != nil {
			return nil, err
		}
		return []View{NewView(*r, s.today())}, nil
	}

	rs, err := s.d.Rentals.ListReturnedByUser(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return views(rs, s.today()), nil
}

func (s *service) AllActive(ctx context.Context, p model.Page) ([]View, error) {
	rs, err := s.d.Rentals.ListByStatus(ctx, model.RentalLasting, p)
	if err != nil {
		return nil, err
	}
	return views(rs, s.today()), nil
}

func views(rs []model.Rental, today time.Time) []View {
	out := make([]View, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewView(r, today))
	}
	return out
}
