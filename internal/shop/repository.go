package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/optomall/optomall/internal/platform/httpx"
)

// Repository mirrors guest session state into Postgres. The redis store is
// authoritative; the mirror is best effort and read back only when a device
// returns with a cookie but cold caches.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertSnapshot writes the session record, replacing any previous state.
func (r *Repository) UpsertSnapshot(ctx context.Context, snap *Snapshot) error {
	cart, err := json.Marshal(snap.Cart)
	if err != nil {
		return err
	}
	favorites, err := json.Marshal(snap.Favorites)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO shop_sessions (session_key, cart, favorites, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_key)
		DO UPDATE SET cart = EXCLUDED.cart, favorites = EXCLUDED.favorites, updated_at = EXCLUDED.updated_at`
	if _, err := r.pool.Exec(ctx, query, snap.SessionKey, cart, favorites, snap.UpdatedAt); err != nil {
		return fmt.Errorf("shop: upsert session: %w", err)
	}
	return nil
}

// GetSnapshot loads a mirrored session.
func (r *Repository) GetSnapshot(ctx context.Context, sessionKey string) (*Snapshot, error) {
	const query = `SELECT session_key, cart, favorites, updated_at FROM shop_sessions WHERE session_key = $1`

	var (
		snap            Snapshot
		cartRaw, favRaw []byte
	)
	err := r.pool.QueryRow(ctx, query, sessionKey).Scan(&snap.SessionKey, &cartRaw, &favRaw, &snap.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", httpx.ErrNotFound, sessionKey)
	}
	if err != nil {
		return nil, fmt.Errorf("shop: get session: %w", err)
	}
	if err := json.Unmarshal(cartRaw, &snap.Cart); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(favRaw, &snap.Favorites); err != nil {
		return nil, err
	}
	return &snap, nil
}

// DeleteStale removes mirrors idle longer than the retention window.
func (r *Repository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shop_sessions WHERE updated_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("shop: delete stale sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
