package rental

import (
	"context"
	"errors"
	"time"

	"carsharing/model"
	"carsharing/util/database"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrActiveExists is returned by Insert when the one-active-rental-per-user
// index rejects the row.
var ErrActiveExists = errors.New("user already has an active rental")

type Repo interface {
	Insert(ctx context.Context, tx pgx.Tx, r *model.Rental) error

	// Lookups by id include archived rentals.
	GetByID(ctx context.Context, id int64) (*model.Rental, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Rental, error)
	// ActiveByUser returns the user's PENDING or LASTING rental. tx may be nil.
	ActiveByUser(ctx context.Context, tx pgx.Tx, userID int64) (*model.Rental, error)
	ByUserAndStatus(ctx context.Context, userID int64, status model.RentalStatus) (*model.Rental, error)

	// SetStatus moves id from -> to and reports false when the rental was no
	// longer in from.
	SetStatus(ctx context.Context, tx pgx.Tx, id int64, from, to model.RentalStatus, archive bool) (bool, error)
	MarkReturned(ctx context.Context, tx pgx.Tx, id int64, on time.Time) (bool, error)

	// Listings.
	ListByUser(ctx context.Context, userID int64, p model.Page) ([]model.Rental, error)
	ListReturnedByUser(ctx context.Context, userID int64, p model.Page) ([]model.Rental, error)
	ListByStatus(ctx context.Context, status model.RentalStatus, p model.Page) ([]model.Rental, error)
	ListStalePending(ctx context.Context, bookedOnOrBefore time.Time) ([]model.Rental, error)
	ListOverdue(ctx context.Context, today time.Time) ([]model.Rental, error)
}

type repo struct {
	db *database.DB
}

func New(db *database.DB) Repo { return &repo{db: db} }

const rentalCols = `id, user_id, car_id, rental_date, required_return_date, actual_return_date, status, is_archived`

func scanRental(row pgx.Row) (*model.Rental, error) {
	var r model.Rental
	if err := row.Scan(
		&r.ID, &r.UserID, &r.CarID, &r.RentalDate, &r.RequiredReturnDate,
		&r.ActualReturnDate, &r.Status, &r.Archived,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.Rental, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rt)
	}
	return out, rows.Err()
}

func (r *repo) Insert(ctx context.Context, tx pgx.Tx, rt *model.Rental) error {
	const q = `
		INSERT INTO rentals (user_id, car_id, rental_date, required_return_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := tx.QueryRow(ctx, q, rt.UserID, rt.CarID, rt.RentalDate, rt.RequiredReturnDate, rt.Status).Scan(&rt.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrActiveExists
	}
	return err
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.Rental, error) {
	return scanRental(r.db.Pool.QueryRow(ctx, `SELECT `+rentalCols+` FROM rentals WHERE id = $1`, id))
}

func (r *repo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Rental, error) {
	const q = `
		SELECT ` + rentalCols + `
		FROM rentals
		WHERE id = $1
		FOR UPDATE`
	return scanRental(tx.QueryRow(ctx, q, id))
}

func (r *repo) ActiveByUser(ctx context.Context, tx pgx.Tx, userID int64) (*model.Rental, error) {
	const q = `
		SELECT ` + rentalCols + `
		FROM rentals
		WHERE user_id = $1
		AND status IN ('PENDING', 'LASTING')
		ORDER BY id DESC
		LIMIT 1
		FOR UPDATE`
	return scanRental(r.db.Q(tx).QueryRow(ctx, q, userID))
}

func (r *repo) ByUserAndStatus(ctx context.Context, userID int64, status model.RentalStatus) (*model.Rental, error) {
	const q = `
		SELECT ` + rentalCols + `
		FROM rentals
		WHERE user_id = $1
		AND status = $2
		AND NOT is_archived
		ORDER BY id DESC
		LIMIT 1`
	return scanRental(r.db.Pool.QueryRow(ctx, q, userID, status))
}

func (r *repo) SetStatus(ctx context.Context, tx pgx.Tx, id int64, from, to model.RentalStatus, archive bool) (bool, error) {
	const q = `
		UPDATE rentals
		SET status = $3,
			is_archived = is_archived OR $4
		WHERE id = $1
		AND status = $2`
	tag, err := tx.Exec(ctx, q, id, from, to, archive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) MarkReturned(ctx context.Context, tx pgx.Tx, id int64, on time.Time) (bool, error) {
	const q = `
		UPDATE rentals
		SET status = 'RETURNED',
			actual_return_date = $2
		WHERE id = $1
		AND status = 'LASTING'
		AND actual_return_date IS NULL`
	tag, err := tx.Exec(ctx, q, id, on)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Listings

func (r *repo) ListByUser(ctx context.Context, userID int64, p model.Page) ([]model.Rental, error) {
	const q = `
			SELECT ` + rentalCols + `
			FROM rentals
			WHERE user_id = $1
			ORDER BY rental_date DESC, id DESC
			LIMIT $2 OFFSET $3`
	return r.list(ctx, q, userID, p.Limit(), p.Offset())
}

func (r *repo) ListReturnedByUser(ctx context.Context, userID int64, p model.Page) ([]model.Rental, error) {
	const q = `
			SELECT ` + rentalCols + `
			FROM rentals
			WHERE user_id = $1
			AND actual_return_date IS NOT NULL
			AND NOT is_archived
			ORDER BY actual_return_date DESC, id DESC
			LIMIT $2 OFFSET $3`
	return r.list(ctx, q, userID, p.Limit(), p.Offset())
}

func (r *repo) ListByStatus(ctx context.Context, status model.RentalStatus, p model.Page) ([]model.Rental, error) {
	const q = `
			SELECT ` + rentalCols + `
			FROM rentals
			WHERE status = $1
			AND NOT is_archived
			ORDER BY id
			LIMIT $2 OFFSET $3`
	return r.list(ctx, q, status, p.Limit(), p.Offset())
}

func (r *repo) ListStalePending(ctx context.Context, bookedOnOrBefore time.Time) ([]model.Rental, error) {
	const q = `
			SELECT ` + rentalCols + `
			FROM rentals
			WHERE status = 'PENDING'
			AND rental_date <= $1
			ORDER BY id`
	return r.list(ctx, q, bookedOnOrBefore)
}

func (r *repo) ListOverdue(ctx context.Context, today time.Time) ([]model.Rental, error) {
	const q = `
			SELECT ` + rentalCols + `
			FROM rentals
			WHERE actual_return_date IS NULL
			AND required_return_date < $1
			AND status = 'LASTING'
			ORDER BY required_return_date, id`
	return r.list(ctx, q, today)
}
