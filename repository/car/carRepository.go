package carrepo

import (
	"context"
	"fmt"
	"strings"

	"carsharing/model"
	"carsharing/util/database"

	"github.com/jackc/pgx/v5"
)

type Repo interface {
	Create(ctx context.Context, c *model.Car) error
	// Update writes c's descriptive fields and shifts inventory by
	// inventoryDelta, refusing (pgx.ErrNoRows) to take it below zero. c is
	// refreshed from the stored row.
	Update(ctx context.Context, c *model.Car, inventoryDelta int) error
	Archive(ctx context.Context, id int64) error

	// GetByID includes archived cars.
	GetByID(ctx context.Context, id int64) (*model.Car, error)
	ListAvailable(ctx context.Context, p model.Page) ([]model.Car, error)
	Search(ctx context.Context, f model.CarFilter, p model.Page) ([]model.Car, error)

	// Inventory. Decrement returns pgx.ErrNoRows when the car is missing,
	// archived, or has no unit left.
	DecrementInventory(ctx context.Context, tx pgx.Tx, id int64) (*model.Car, error)
	IncrementInventory(ctx context.Context, tx pgx.Tx, id int64) (*model.Car, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const carCols = `id, brand, model, type, inventory, daily_fee, is_archived`

func scanCar(row pgx.Row) (*model.Car, error) {
	var c model.Car
	if err := row.Scan(&c.ID, &c.Brand, &c.Model, &c.Type, &c.Inventory, &c.DailyFee, &c.Archived); err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCars(rows pgx.Rows) ([]model.Car, error) {
	defer rows.Close()
	var out []model.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repo) Create(ctx context.Context, c *model.Car) error {
	const q = `
INSERT INTO cars (brand, model, type, inventory, daily_fee)
VALUES ($1,$2,$3,$4,$5)
RETURNING id`
	return r.db.Pool.QueryRow(ctx, q, c.Brand, c.Model, c.Type, c.Inventory, c.DailyFee).Scan(&c.ID)
}

func (r *repo) Update(ctx context.Context, c *model.Car, inventoryDelta int) error {
	const q = `
UPDATE cars
SET brand=$2, model=$3, type=$4, inventory = inventory + $5, daily_fee=$6
WHERE id=$1 AND NOT is_archived AND inventory + $5 >= 0
RETURNING ` + carCols
	got, err := scanCar(r.db.Pool.QueryRow(ctx, q, c.ID, c.Brand, c.Model, c.Type, inventoryDelta, c.DailyFee))
	if err != nil {
		return err
	}
	*c = *got
	return nil
}

func (r *repo) Archive(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE cars SET is_archived = TRUE WHERE id=$1 AND NOT is_archived`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.Car, error) {
	return scanCar(r.db.Pool.QueryRow(ctx, `SELECT `+carCols+` FROM cars WHERE id=$1`, id))
}

func (r *repo) ListAvailable(ctx context.Context, p model.Page) ([]model.Car, error) {
	const q = `
SELECT ` + carCols + `
FROM cars
WHERE inventory > 0 AND NOT is_archived
ORDER BY id
LIMIT $1 OFFSET $2`
	rows, err := r.db.Pool.Query(ctx, q, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	return collectCars(rows)
}

func (r *repo) Search(ctx context.Context, f model.CarFilter, p model.Page) ([]model.Car, error) {
	where := []string{"NOT is_archived"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if len(f.Models) > 0 {
		where = append(where, "model = ANY("+arg(f.Models)+")")
	}
	if len(f.Brands) > 0 {
		where = append(where, "brand = ANY("+arg(f.Brands)+")")
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		where = append(where, "type = ANY("+arg(types)+")")
	}
	if f.PriceMin != nil && f.PriceMax != nil {
		where = append(where, "daily_fee BETWEEN "+arg(*f.PriceMin)+" AND "+arg(*f.PriceMax))
	}
	q := `SELECT ` + carCols + ` FROM cars WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY id LIMIT ` + arg(p.Limit()) + ` OFFSET ` + arg(p.Offset())

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectCars(rows)
}

func (r *repo) DecrementInventory(ctx context.Context, tx pgx.Tx, id int64) (*model.Car, error) {
	// The row lock taken by UPDATE serializes racing reservations on the same car.
	const q = `
UPDATE cars
SET inventory = inventory - 1
WHERE id=$1 AND inventory > 0 AND NOT is_archived
RETURNING ` + carCols
	return scanCar(tx.QueryRow(ctx, q, id))
}

func (r *repo) IncrementInventory(ctx context.Context, tx pgx.Tx, id int64) (*model.Car, error) {
	const q = `
UPDATE cars
SET inventory = inventory + 1
WHERE id=$1
RETURNING ` + carCols
	return scanCar(tx.QueryRow(ctx, q, id))
}
