// Package memory is an in-process store implementing the repository
// interfaces. Transactions are serialized and rolled back by snapshot.
package memory

import (
	"context"
	"maps"
	"sync"

	"carsharing/model"

	"github.com/jackc/pgx/v5"
)

type Store struct {
	txMu sync.Mutex   // held for the whole of InTx
	mu   sync.RWMutex // guards the maps

	cars     map[int64]model.Car
	rentals  map[int64]model.Rental
	payments map[int64]model.Payment
	users    map[int64]model.User
	seq      int64
}

func New() *Store {
	return &Store{
		cars:     map[int64]model.Car{},
		rentals:  map[int64]model.Rental{},
		payments: map[int64]model.Payment{},
		users:    map[int64]model.User{},
	}
}

func (s *Store) Cars() *Cars         { return &Cars{s} }
func (s *Store) Rentals() *Rentals   { return &Rentals{s} }
func (s *Store) Payments() *Payments { return &Payments{s} }
func (s *Store) Users() *Users       { return &Users{s} }

type snapshot struct {
	cars     map[int64]model.Car
	rentals  map[int64]model.Rental
	payments map[int64]model.Payment
	users    map[int64]model.User
	seq      int64
}

// InTx passes a nil pgx.Tx; the memory repositories ignore it.
func (s *Store) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snap := snapshot{
		cars:     maps.Clone(s.cars),
		rentals:  maps.Clone(s.rentals),
		payments: maps.Clone(s.payments),
		users:    maps.Clone(s.users),
		seq:      s.seq,
	}
	s.mu.RUnlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.cars, s.rentals, s.payments, s.users, s.seq = snap.cars, snap.rentals, snap.payments, snap.users, snap.seq
		s.mu.Unlock()
		return err
	}
	return nil
}

// InUserTx needs no extra lock since InTx already serializes everything.
func (s *Store) InUserTx(ctx context.Context, userID int64, fn func(tx pgx.Tx) error) error {
	return s.InTx(ctx, fn)
}

// Seed helpers for tests and local runs.

func (s *Store) PutCar(c model.Car) model.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.nextID()
	}
	s.cars[c.ID] = c
	return c
}

func (s *Store) PutRental(r model.Rental) model.Rental {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.nextID()
	}
	s.rentals[r.ID] = r
	return r
}

func (s *Store) PutPayment(p model.Payment) model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID()
	}
	s.payments[p.ID] = p
	return p
}

func (s *Store) PutUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextID()
	}
	s.users[u.ID] = u
	return u
}

// caller holds mu
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func ptr[T any](v T) *T { return &v }
