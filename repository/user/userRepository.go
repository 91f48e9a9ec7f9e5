package userrepo

import (
	"context"

	"carsharing/model"
	"carsharing/util/database"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

// Create inserts u and fills its id and role. A taken email surfaces as a
// unique_violation on users_email_key.
func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO users(first_name, last_name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, role`,
		u.FirstName, u.LastName, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.Role)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, `
        SELECT id, first_name, last_name, email, role, password_hash
        FROM users
        WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.PasswordHash)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, `
        SELECT id, first_name, last_name, email, role
        FROM users
        WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE users SET role = $2
		WHERE id = $1
		RETURNING id, first_name, last_name, email, role`,
		id, role,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role)
	if err != nil {
		return nil, err
	}
	return u, nil
}
