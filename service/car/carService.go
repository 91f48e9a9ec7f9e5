package carsvc

import (
	"context"
	"errors"
	"strings"

	"carsharing/model"
	carrepo "carsharing/repository/car"
	"carsharing/service/errs"
	"carsharing/service/notify"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// SearchParams is a raw catalog query. Prices holds either one upper bound
// or a [from, to] pair.
type SearchParams struct {
	Models []string
	Brands []string
	Types  []string
	Prices []decimal.Decimal
}

type Service interface {
	Create(ctx context.Context, c model.Car) (*model.Car, error)
	Update(ctx context.Context, id int64, patch model.CarPatch) (*model.Car, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.Car, error)
	ListAvailable(ctx context.Context, p model.Page) ([]model.Car, error)
	Search(ctx context.Context, sp SearchParams, p model.Page) ([]model.Car, error)
}

type service struct {
	r carrepo.Repo
	n notify.Notifier
}

func New(r carrepo.Repo, n notify.Notifier) Service {
	if n == nil {
		n = notify.Discard
	}
	return &service{r: r, n: n}
}

func validate(c model.Car) error {
	switch {
	case strings.TrimSpace(c.Brand) == "" || strings.TrimSpace(c.Model) == "":
		return errs.Invalid("brand and model are required")
	case c.Inventory < 0:
		return errs.Invalid("inventory must not be negative")
	case c.DailyFee.IsNegative():
		return errs.Invalid("daily fee must not be negative")
	}
	if _, err := model.ParseCarType(string(c.Type)); err != nil {
		return errs.Invalid("%s", err.Error())
	}
	return nil
}

func (s *service) Create(ctx context.Context, c model.Car) (*model.Car, error) {
	c.ID, c.Archived = 0, false
	if err := validate(c); err != nil {
		return nil, err
	}
	if err := s.r.Create(ctx, &c); err != nil {
		return nil, err
	}
	s.n.Notify(ctx, notify.Event{Kind: notify.CarCreated, Car: &c})
	return &c, nil
}

func (s *service) Update(ctx context.Context, id int64, patch model.CarPatch) (*model.Car, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *cur
	patch.Apply(&next)
	if err := validate(next); err != nil {
		return nil, err
	}

	// inventory moves by difference so units reserved meanwhile are kept
	if err := s.r.Update(ctx, &next, next.Inventory-cur.Inventory); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.Invalid("car %d can't be updated: it was removed or inventory would go negative", id)
		}
		return nil, err
	}
	s.n.Notify(ctx, notify.Event{Kind: notify.CarUpdated, Car: &next})
	return &next, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	err := s.r.Archive(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrCarNotFound
	}
	if err != nil {
		return err
	}
	s.n.Notify(ctx, notify.Event{Kind: notify.CarDeleted, Car: &model.Car{ID: id}})
	return nil
}

// Get hides archived cars.
func (s *service) Get(ctx context.Context, id int64) (*model.Car, error) {
	c, err := s.r.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && c.Archived) {
		return nil, errs.ErrCarNotFound
	}
	return c, err
}

func (s *service) ListAvailable(ctx context.Context, p model.Page) ([]model.Car, error) {
	return s.r.ListAvailable(ctx, p)
}

func (s *service) Search(ctx context.Context, sp SearchParams, p model.Page) ([]model.Car, error) {
	f, err := BuildFilter(sp)
	if err != nil {
		return nil, err
	}
	return s.r.Search(ctx, f, p)
}

// BuildFilter validates sp. A single price means [0, price]; from must be
// strictly below to.
func BuildFilter(sp SearchParams) (model.CarFilter, error) {
	if len(sp.Models) == 0 && len(sp.Brands) == 0 && len(sp.Types) == 0 && len(sp.Prices) == 0 {
		return model.CarFilter{}, errs.New(errs.CodeInvalidSearch, "search needs at least one parameter")
	}

	f := model.CarFilter{Models: sp.Models, Brands: sp.Brands}
	for _, raw := range sp.Types {
		t, err := model.ParseCarType(raw)
		if err != nil {
			return model.CarFilter{}, errs.Wrap(errs.CodeInvalidSearch, err, "invalid car type")
		}
		f.Types = append(f.Types, t)
	}

	var from, to decimal.Decimal
	switch len(sp.Prices) {
	case 0:
		return f, nil
	case 1:
		from, to = decimal.Zero, sp.Prices[0]
	case 2:
		from, to = sp.Prices[0], sp.Prices[1]
	default:
		return model.CarFilter{}, errs.New(errs.CodeInvalidSearch, "price takes one bound or a from,to pair")
	}
	if from.GreaterThanOrEqual(to) {
		return model.CarFilter{}, errs.New(errs.CodeInvalidSearch, "price 'from' must be less than 'to'")
	}
	f.PriceMin, f.PriceMax = &from, &to
	return f, nil
}
