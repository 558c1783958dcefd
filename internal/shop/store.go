package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store owns cart and favorites state. All mutation goes through these
// operations; handlers never touch the underlying keys directly.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore builds a Store. Entries share the guest session TTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

// Cart returns the session's cart lines, empty when none exist.
func (s *Store) Cart(ctx context.Context, sessionKey string) ([]CartLine, error) {
	var lines []CartLine
	if err := s.getJSON(ctx, cartKeyPrefix+sessionKey, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// AddToCart inserts a line, merging quantity when the product is already in
// the cart.
func (s *Store) AddToCart(ctx context.Context, sessionKey string, line CartLine) ([]CartLine, error) {
	if line.ProductID == "" {
		return nil, errors.New("shop: product id required")
	}
	if line.Qty <= 0 {
		line.Qty = 1
	}

	lines, err := s.Cart(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Qty += line.Qty
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, line)
	}

	if err := s.setJSON(ctx, cartKeyPrefix+sessionKey, lines); err != nil {
		return nil, err
	}
	return lines, s.markDirty(ctx, sessionKey)
}

// RemoveFromCart drops every line for the product id.
func (s *Store) RemoveFromCart(ctx context.Context, sessionKey, productID string) ([]CartLine, error) {
	lines, err := s.Cart(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	kept := lines[:0]
	for _, line := range lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}

	if err := s.setJSON(ctx, cartKeyPrefix+sessionKey, kept); err != nil {
		return nil, err
	}
	return kept, s.markDirty(ctx, sessionKey)
}

// ClearCart empties the session's cart.
func (s *Store) ClearCart(ctx context.Context, sessionKey string) error {
	if err := s.setJSON(ctx, cartKeyPrefix+sessionKey, []CartLine{}); err != nil {
		return err
	}
	return s.markDirty(ctx, sessionKey)
}

// Favorites returns the favorite product ids in insertion order.
func (s *Store) Favorites(ctx context.Context, sessionKey string) ([]string, error) {
	var ids []string
	if err := s.getJSON(ctx, favoritesKeyPrefix+sessionKey, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// ToggleFavorite flips membership for the id and reports whether it is a
// favorite afterwards. Toggling twice restores the original set.
func (s *Store) ToggleFavorite(ctx context.Context, sessionKey, productID string) (bool, error) {
	if productID == "" {
		return false, errors.New("shop: product id required")
	}

	ids, err := s.Favorites(ctx, sessionKey)
	if err != nil {
		return false, err
	}

	now := false
	kept := ids[:0]
	removed := false
	for _, id := range ids {
		if id == productID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		kept = append(kept, productID)
		now = true
	}

	if err := s.setJSON(ctx, favoritesKeyPrefix+sessionKey, kept); err != nil {
		return false, err
	}
	return now, s.markDirty(ctx, sessionKey)
}

// IsFavorite reports membership without mutating.
func (s *Store) IsFavorite(ctx context.Context, sessionKey, productID string) (bool, error) {
	ids, err := s.Favorites(ctx, sessionKey)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

// Snapshot captures the session state for mirroring.
func (s *Store) Snapshot(ctx context.Context, sessionKey string) (*Snapshot, error) {
	cart, err := s.Cart(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	favs, err := s.Favorites(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		SessionKey: sessionKey,
		Cart:       cart,
		Favorites:  favs,
		UpdatedAt:  time.Now().UTC(),
	}, nil
}

// Seen reports whether the session has any state in redis at all. A cleared
// cart still counts as seen, only a brand-new or expired session does not.
func (s *Store) Seen(ctx context.Context, sessionKey string) (bool, error) {
	n, err := s.client.Exists(ctx, cartKeyPrefix+sessionKey, favoritesKeyPrefix+sessionKey).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Restore writes mirrored state back into redis. The session is not marked
// dirty; the mirror already holds this exact state.
func (s *Store) Restore(ctx context.Context, snap *Snapshot) error {
	if err := s.setJSON(ctx, cartKeyPrefix+snap.SessionKey, snap.Cart); err != nil {
		return err
	}
	return s.setJSON(ctx, favoritesKeyPrefix+snap.SessionKey, snap.Favorites)
}

// DirtySessions drains the set of sessions mutated since the last mirror
// flush.
func (s *Store) DirtySessions(ctx context.Context) ([]string, error) {
	keys, err := s.client.SPopN(ctx, dirtySessionsKey, 100).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return keys, nil
}

func (s *Store) markDirty(ctx context.Context, sessionKey string) error {
	return s.client.SAdd(ctx, dirtySessionsKey, sessionKey).Err()
}

func (s *Store) getJSON(ctx context.Context, key string, dest any) error {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("shop: get %s: %w", key, err)
	}
	return json.Unmarshal(payload, dest)
}

func (s *Store) setJSON(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}
