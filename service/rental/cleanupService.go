package rental

import (
	"context"
	"log/slog"
	"time"

	"carsharing/model"
	rentalrepo "carsharing/repository/rental"
	"carsharing/util/database"
	"carsharing/util/observability"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

// Cleaner expires PENDING rentals that were never paid.
type Cleaner interface {
	ReleaseExpired(ctx context.Context) (int64, error)
}

type cleaner struct {
	tx      database.TxRunner
	rentals rentalrepo.Repo
	tr      *Transitions
	log     *slog.Logger
	now     func() time.Time
}

func NewCleaner(tx database.TxRunner, tr *Transitions, log *slog.Logger) Cleaner {
	return &cleaner{tx: tx, rentals: tr.Rentals, tr: tr, log: log, now: time.Now}
}

// ReleaseExpired cancels every PENDING rental booked a day or more ago.
// Each rental gets its own transaction; a failure is logged and the sweep
// moves on. Re-running it is a no-op for rentals already handled.
func (c *cleaner) ReleaseExpired(ctx context.Context) (n int64, err error) {
	ctx, span := tracer.Start(ctx, "rental.sweep")
	defer func() {
		span.SetAttributes(attribute.Int64("expired", n))
		observability.End(span, err)
	}()

	cutoff := model.DateOf(c.now()).AddDate(0, 0, -1)
	stale, err := c.rentals.ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	for _, r := range stale {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		expired, err := c.expire(ctx, r)
		if err != nil {
			c.log.Error("expire rental failed", "rental_id", r.ID, "user_id", r.UserID, "err", err)
			continue
		}
		if expired {
			n++
		}
	}
	return n, nil
}

func (c *cleaner) expire(ctx context.Context, stale model.Rental) (bool, error) {
	var expired bool
	err := c.tx.InUserTx(ctx, stale.UserID, func(tx pgx.Tx) error {
		// the user may have paid or canceled since the listing
		r, err := c.rentals.GetForUpdate(ctx, tx, stale.ID)
		if err != nil {
			return err
		}
		if r.Status != model.RentalPending {
			return nil
		}
		expired, err = c.tr.Expire(ctx, tx, r)
		return err
	})
	return expired, err
}
