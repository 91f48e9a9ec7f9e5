package memory

import (
	"context"
	"sort"

	"carsharing/model"

	"github.com/jackc/pgx/v5"
)

type Payments struct{ s *Store }

func (p *Payments) Insert(ctx context.Context, tx pgx.Tx, pm *model.Payment) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	pm.ID = p.s.nextID()
	p.s.payments[pm.ID] = *pm
	return nil
}

func (p *Payments) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	pm, ok := p.s.payments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &pm, nil
}

func (p *Payments) PendingByUser(ctx context.Context, tx pgx.Tx, userID int64) (*model.Payment, error) {
	return p.first(false, func(pm model.Payment) bool {
		return pm.UserID == userID && pm.Status == model.PaymentPending
	})
}

func (p *Payments) PendingByUserAndType(ctx context.Context, tx pgx.Tx, userID int64, t model.PaymentType) (*model.Payment, error) {
	return p.first(false, func(pm model.Payment) bool {
		return pm.UserID == userID && pm.Type == t && pm.Status == model.PaymentPending
	})
}

func (p *Payments) ByRental(ctx context.Context, tx pgx.Tx, rentalID int64, t model.PaymentType) (*model.Payment, error) {
	return p.first(true, func(pm model.Payment) bool { return pm.RentalID == rentalID && pm.Type == t })
}

func (p *Payments) SetStatus(ctx context.Context, tx pgx.Tx, id int64, from, to model.PaymentStatus, archive bool) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	pm, ok := p.s.payments[id]
	if !ok || pm.Status != from {
		return false, nil
	}
	pm.Status = to
	pm.Archived = pm.Archived || archive
	p.s.payments[id] = pm
	return true, nil
}

func (p *Payments) ListByUser(ctx context.Context, userID int64, pg model.Page) ([]model.Payment, error) {
	out := p.all(func(pm model.Payment) bool { return pm.UserID == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	from, to := pg.Window(len(out))
	return out[from:to], nil
}

func (p *Payments) first(newest bool, match func(model.Payment) bool) (*model.Payment, error) {
	out := p.all(match)
	if len(out) == 0 {
		return nil, pgx.ErrNoRows
	}
	if newest {
		return &out[len(out)-1], nil
	}
	return &out[0], nil
}

func (p *Payments) all(match func(model.Payment) bool) []model.Payment {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	var out []model.Payment
	for _, pm := range p.s.payments {
		if match(pm) {
			out = append(out, pm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
