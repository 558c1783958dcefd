package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/optomall/optomall/internal/platform/db"
	"github.com/optomall/optomall/internal/platform/httpx"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	GetOrder(ctx context.Context, id string) (*Order, error)
	RecordPayment(ctx context.Context, p Payment, settle bool) error
	SetOrderQR(ctx context.Context, orderID, url string) error
	BulkUpdateStatus(ctx context.Context, entity string, ids []string, status string) (int64, error)
	BulkDelete(ctx context.Context, entity string, ids []string) (int64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// bulkTables whitelists the entities bulk actions may touch. Table names are
// interpolated into SQL, so nothing outside this map may ever reach the
// query builder.
var bulkTables = map[string]string{
	"products":  "products",
	"shipments": "shipments",
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository builds Repository instance.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) GetOrder(ctx context.Context, id string) (*Order, error) {
	const query = `
		SELECT id, session_key, status, total, currency, COALESCE(qr_url, ''), created_at, updated_at
		FROM orders WHERE id = $1`

	var o Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.SessionKey, &o.Status, &o.Total, &o.Currency, &o.QRURL, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %s", httpx.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("orders: get order: %w", err)
	}
	return &o, nil
}

// RecordPayment inserts the payment row; when settle is set the order status
// update commits in the same transaction, so a crash never leaves a settled
// payment against an unpaid order.
func (r *repository) RecordPayment(ctx context.Context, p Payment, settle bool) error {
	if !settle {
		return insertPayment(ctx, r.db, p)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertPayment(ctx, tx, p); err != nil {
			return err
		}
		return markOrderPaid(ctx, tx, p.OrderID)
	})
}

func insertPayment(ctx context.Context, q dbtx, p Payment) error {
	const query = `
		INSERT INTO payments (id, order_id, provider, provider_payment_id, status, amount, currency, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := q.Exec(ctx, query,
		p.ID, p.OrderID, p.Provider, p.ProviderPaymentID, p.Status, p.Amount, p.Currency, p.ReceivedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: payment %s", httpx.ErrDuplicate, p.ProviderPaymentID)
		}
		return fmt.Errorf("orders: insert payment: %w", err)
	}
	return nil
}

func markOrderPaid(ctx context.Context, q dbtx, orderID string) error {
	tag, err := q.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		StatusPaid, time.Now().UTC(), orderID,
	)
	if err != nil {
		return fmt.Errorf("orders: mark paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", httpx.ErrNotFound, orderID)
	}
	return nil
}

func (r *repository) SetOrderQR(ctx context.Context, orderID, url string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET qr_url = $1, updated_at = $2 WHERE id = $3`,
		url, time.Now().UTC(), orderID,
	)
	if err != nil {
		return fmt.Errorf("orders: set qr url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", httpx.ErrNotFound, orderID)
	}
	return nil
}

func (r *repository) BulkUpdateStatus(ctx context.Context, entity string, ids []string, status string) (int64, error) {
	table, ok := bulkTables[entity]
	if !ok {
		return 0, fmt.Errorf("%w: entity %q", httpx.ErrValidation, entity)
	}
	query := fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = $2 WHERE id = ANY($3)`, table)
	tag, err := r.db.Exec(ctx, query, status, time.Now().UTC(), ids)
	if err != nil {
		return 0, fmt.Errorf("orders: bulk update %s: %w", entity, err)
	}
	return tag.RowsAffected(), nil
}

func (r *repository) BulkDelete(ctx context.Context, entity string, ids []string) (int64, error) {
	table, ok := bulkTables[entity]
	if !ok {
		return 0, fmt.Errorf("%w: entity %q", httpx.ErrValidation, entity)
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, table)
	tag, err := r.db.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("orders: bulk delete %s: %w", entity, err)
	}
	return tag.RowsAffected(), nil
}
