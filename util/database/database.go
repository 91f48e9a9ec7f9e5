package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct{ Pool *pgxpool.Pool }

// TxRunner runs fn inside one transaction, committing when fn returns nil.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	// InUserTx also holds userID's lock until the transaction ends. Every
	// transition that reads then writes a user's rentals or payments uses it.
	InUserTx(ctx context.Context, userID int64, fn func(tx pgx.Tx) error) error
}

func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return &DB{Pool: p}, nil
}

func (db *DB) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginTxFunc(ctx, db.Pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (db *DB) InUserTx(ctx context.Context, userID int64, fn func(tx pgx.Tx) error) error {
	return db.InTx(ctx, func(tx pgx.Tx) error {
		if err := LockUser(ctx, tx, userID); err != nil {
			return err
		}
		return fn(tx)
	})
}

// Querier is satisfied by both the pool and a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Q returns tx, or the pool when tx is nil.
func (db *DB) Q(tx pgx.Tx) Querier {
	if tx == nil {
		return db.Pool
	}
	return tx
}

func (db *DB) Close() { db.Pool.Close() }

// LockUser takes a transaction-scoped advisory lock on the user id.
func LockUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, userID)
	return err
}
