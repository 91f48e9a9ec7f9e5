package paymentrepo

import (
	"context"

	"carsharing/model"
	"carsharing/util/database"

	"github.com/jackc/pgx/v5"
)

type Repo interface {
	Insert(ctx context.Context, tx pgx.Tx, p *model.Payment) error
	GetByID(ctx context.Context, id int64) (*model.Payment, error)

	// Reads taking a tx lock the row; tx may be nil outside a transaction.

	// PendingByUser returns the oldest PENDING payment of the user, any type.
	PendingByUser(ctx context.Context, tx pgx.Tx, userID int64) (*model.Payment, error)
	PendingByUserAndType(ctx context.Context, tx pgx.Tx, userID int64, t model.PaymentType) (*model.Payment, error)
	ByRental(ctx context.Context, tx pgx.Tx, rentalID int64, t model.PaymentType) (*model.Payment, error)

	// SetStatus moves id from -> to and reports false when it was no longer in from.
	SetStatus(ctx context.Context, tx pgx.Tx, id int64, from, to model.PaymentStatus, archive bool) (bool, error)

	ListByUser(ctx context.Context, userID int64, p model.Page) ([]model.Payment, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const paymentCols = `id, user_id, rental_id, type, status, amount_to_pay, session_id, session_url, is_archived`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	if err := row.Scan(&p.ID, &p.UserID, &p.RentalID, &p.Type, &p.Status, &p.AmountToPay,
		&p.SessionID, &p.SessionURL, &p.Archived); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) Insert(ctx context.Context, tx pgx.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (user_id, rental_id, type, status, amount_to_pay, session_id, session_url)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id`
	return tx.QueryRow(ctx, q, p.UserID, p.RentalID, p.Type, p.Status, p.AmountToPay, p.SessionID, p.SessionURL).Scan(&p.ID)
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	return scanPayment(r.db.Pool.QueryRow(ctx, `SELECT `+paymentCols+` FROM payments WHERE id=$1`, id))
}

func (r *repo) PendingByUser(ctx context.Context, tx pgx.Tx, userID int64) (*model.Payment, error) {
	const q = `
SELECT ` + paymentCols + `
FROM payments
WHERE user_id=$1 AND status='PENDING'
ORDER BY id
LIMIT 1
FOR UPDATE`
	return scanPayment(r.db.Q(tx).QueryRow(ctx, q, userID))
}

func (r *repo) PendingByUserAndType(ctx context.Context, tx pgx.Tx, userID int64, t model.PaymentType) (*model.Payment, error) {
	const q = `
SELECT ` + paymentCols + `
FROM payments
WHERE user_id=$1 AND type=$2 AND status='PENDING'
ORDER BY id
LIMIT 1
FOR UPDATE`
	return scanPayment(r.db.Q(tx).QueryRow(ctx, q, userID, t))
}

func (r *repo) ByRental(ctx context.Context, tx pgx.Tx, rentalID int64, t model.PaymentType) (*model.Payment, error) {
	const q = `
SELECT ` + paymentCols + `
FROM payments
WHERE rental_id=$1 AND type=$2
ORDER BY id DESC
LIMIT 1
FOR UPDATE`
	return scanPayment(r.db.Q(tx).QueryRow(ctx, q, rentalID, t))
}

func (r *repo) SetStatus(ctx context.Context, tx pgx.Tx, id int64, from, to model.PaymentStatus, archive bool) (bool, error) {
	const q = `
UPDATE payments
SET status=$3, is_archived = is_archived OR $4
WHERE id=$1 AND status=$2`
	tag, err := tx.Exec(ctx, q, id, from, to, archive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64, p model.Page) ([]model.Payment, error) {
	const q = `
SELECT ` + paymentCols + `
FROM payments
WHERE user_id=$1
ORDER BY id DESC
LIMIT $2 OFFSET $3`
	rows, err := r.db.Pool.Query(ctx, q, userID, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
