// Package inventory keeps each car's available unit count. Every change
// runs inside the caller's transaction so it commits with the rental
// transition that caused it.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"carsharing/model"
	carrepo "carsharing/repository/car"
	"carsharing/service/errs"

	"github.com/jackc/pgx/v5"
)

type Ledger interface {
	// Reserve takes one unit of carID.
	Reserve(ctx context.Context, tx pgx.Tx, carID int64) (*model.Car, error)
	// Release returns one unit. Each call must match exactly one earlier Reserve.
	Release(ctx context.Context, tx pgx.Tx, carID int64) (*model.Car, error)
}

type ledger struct {
	cars carrepo.Repo
}

func New(cars carrepo.Repo) Ledger { return &ledger{cars: cars} }

func (l *ledger) Reserve(ctx context.Context, tx pgx.Tx, carID int64) (*model.Car, error) {
	car, err := l.cars.DecrementInventory(ctx, tx, carID)
	if err == nil {
		return car, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("reserve car %d: %w", carID, err)
	}

	// nothing decremented: tell a missing car from an empty one
	cur, err := l.cars.GetByID(ctx, carID)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && cur.Archived) {
		return nil, errs.ErrCarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reserve car %d: %w", carID, err)
	}
	return nil, errs.ErrCarUnavailable
}

func (l *ledger) Release(ctx context.Context, tx pgx.Tx, carID int64) (*model.Car, error) {
	car, err := l.cars.IncrementInventory(ctx, tx, carID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrCarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("release car %d: %w", carID, err)
	}
	return car, nil
}
