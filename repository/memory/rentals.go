package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"carsharing/model"
	rentalrepo "carsharing/repository/rental"

	"github.com/jackc/pgx/v5"
)

type Rentals struct{ s *Store }

func (r *Rentals) Insert(ctx context.Context, tx pgx.Tx, rt *model.Rental) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.rentals {
		if other.UserID == rt.UserID && other.Status.Active() {
			return rentalrepo.ErrActiveExists
		}
	}
	rt.ID = r.s.nextID()
	r.s.rentals[rt.ID] = *rt
	return nil
}

func (r *Rentals) GetByID(ctx context.Context, id int64) (*model.Rental, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rt, ok := r.s.rentals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &rt, nil
}

func (r *Rentals) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Rental, error) {
	return r.GetByID(ctx, id)
}

func (r *Rentals) ActiveByUser(ctx context.Context, tx pgx.Tx, userID int64) (*model.Rental, error) {
	return r.first(func(rt model.Rental) bool { return rt.UserID == userID && rt.Status.Active() })
}

func (r *Rentals) ByUserAndStatus(ctx context.Context, userID int64, status model.RentalStatus) (*model.Rental, error) {
	return r.first(func(rt model.Rental) bool {
		return rt.UserID == userID && rt.Status == status && !rt.Archived
	})
}

func (r *Rentals) SetStatus(ctx context.Context, tx pgx.Tx, id int64, from, to model.RentalStatus, archive bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.rentals[id]
	if !ok || rt.Status != from {
		return false, nil
	}
	rt.Status = to
	rt.Archived = rt.Archived || archive
	r.s.rentals[id] = rt
	return true, nil
}

func (r *Rentals) MarkReturned(ctx context.Context, tx pgx.Tx, id int64, on time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.rentals[id]
	if !ok || rt.Status != model.RentalLasting || rt.ActualReturnDate != nil {
		return false, nil
	}
	rt.Status = model.RentalReturned
	rt.ActualReturnDate = ptr(on)
	r.s.rentals[id] = rt
	return true, nil
}

func (r *Rentals) ListByUser(ctx context.Context, userID int64, p model.Page) ([]model.Rental, error) {
	return r.page(p, true, func(rt model.Rental) bool { return rt.UserID == userID }), nil
}

func (r *Rentals) ListReturnedByUser(ctx context.Context, userID int64, p model.Page) ([]model.Rental, error) {
	return r.page(p, true, func(rt model.Rental) bool {
		return rt.UserID == userID && rt.ActualReturnDate != nil && !rt.Archived
	}), nil
}

func (r *Rentals) ListByStatus(ctx context.Context, status model.RentalStatus, p model.Page) ([]model.Rental, error) {
	return r.page(p, false, func(rt model.Rental) bool { return rt.Status == status && !rt.Archived }), nil
}

func (r *Rentals) ListStalePending(ctx context.Context, bookedOnOrBefore time.Time) ([]model.Rental, error) {
	return r.all(func(rt model.Rental) bool {
		return rt.Status == model.RentalPending && !rt.RentalDate.After(bookedOnOrBefore)
	}), nil
}

func (r *Rentals) ListOverdue(ctx context.Context, today time.Time) ([]model.Rental, error) {
	return r.all(func(rt model.Rental) bool {
		return rt.ActualReturnDate == nil && rt.RequiredReturnDate.Before(today) && rt.Status == model.RentalLasting
	}), nil
}

func (r *Rentals) first(match func(model.Rental) bool) (*model.Rental, error) {
	out := r.all(match)
	if len(out) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &out[0], nil
}

func (r *Rentals) page(p model.Page, newestFirst bool, match func(model.Rental) bool) []model.Rental {
	out := r.all(match)
	if newestFirst {
		slices.Reverse(out)
	}
	from, to := p.Window(len(out))
	return out[from:to]
}

func (r *Rentals) all(match func(model.Rental) bool) []model.Rental {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.Rental
	for _, rt := range r.s.rentals {
		if match(rt) {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
