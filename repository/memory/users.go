package memory

import (
	"context"

	"carsharing/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Users struct{ s *Store }

// Create rejects a taken email the way the users_email_key constraint does.
func (u *Users) Create(ctx context.Context, usr *model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, other := range u.s.users {
		if other.Email == usr.Email {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
		}
	}
	usr.ID = u.s.nextID()
	if usr.Role == "" {
		usr.Role = model.RoleCustomer
	}
	u.s.users[usr.ID] = *usr
	return nil
}

func (u *Users) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, usr := range u.s.users {
		if usr.Email == email {
			return &usr, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (u *Users) ByID(ctx context.Context, id int64) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	usr, ok := u.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &usr, nil
}

func (u *Users) UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	usr.Role = role
	u.s.users[id] = usr
	return &usr, nil
}
