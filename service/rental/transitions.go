package rental

import (
	"context"
	"errors"

	"carsharing/model"
	paymentrepo "carsharing/repository/payment"
	rentalrepo "carsharing/repository/rental"
	"carsharing/service/inventory"

	"github.com/jackc/pgx/v5"
)

// Transitions are the state changes shared by the rental service, the
// payment reconciler and the sweeper. Each runs inside the caller's
// transaction and reports false, changing nothing, when the rental has
// already left the expected state.
type Transitions struct {
	Rentals  rentalrepo.Repo
	Payments paymentrepo.Repo
	Ledger   inventory.Ledger
}

// ConfirmPayment moves a paid rental from PENDING to LASTING.
func (t *Transitions) ConfirmPayment(ctx context.Context, tx pgx.Tx, rentalID int64) (bool, error) {
	return t.Rentals.SetStatus(ctx, tx, rentalID, model.RentalPending, model.RentalLasting, false)
}

// CancelPending cancels a PENDING rental, returns its car and cancels its
// pending PAYMENT.
func (t *Transitions) CancelPending(ctx context.Context, tx pgx.Tx, r *model.Rental) (bool, error) {
	return t.closePending(ctx, tx, r, model.PaymentCanceled)
}

// Expire is CancelPending for a rental that was never paid in time; its
// PAYMENT ends EXPIRED instead of CANCELED. FINE payments are left alone.
func (t *Transitions) Expire(ctx context.Context, tx pgx.Tx, r *model.Rental) (bool, error) {
	return t.closePending(ctx, tx, r, model.PaymentExpired)
}

func (t *Transitions) closePending(ctx context.Context, tx pgx.Tx, r *model.Rental, paymentTo model.PaymentStatus) (bool, error) {
	ok, err := t.Rentals.SetStatus(ctx, tx, r.ID, model.RentalPending, model.RentalCanceled, true)
	if err != nil || !ok {
		return false, err
	}
	if _, err := t.Ledger.Release(ctx, tx, r.CarID); err != nil {
		return false, err
	}

	p, err := t.Payments.ByRental(ctx, tx, r.ID, model.PaymentTypePayment)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	// a PAID or already closed payment stays as it is
	if _, err := t.Payments.SetStatus(ctx, tx, p.ID, model.PaymentPending, paymentTo, true); err != nil {
		return false, err
	}
	return true, nil
}
