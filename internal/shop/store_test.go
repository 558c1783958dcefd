package shop

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, time.Hour)
}

func line(id string, price float64, qty int) CartLine {
	return CartLine{ProductID: id, Name: "p-" + id, Price: decimal.NewFromFloat(price), Qty: qty}
}

func TestCartAddAndMerge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lines, err := store.AddToCart(ctx, "sess", line("1", 9.5, 2))
	require.NoError(t, err)
	require.Len(t, lines, 1)

	lines, err = store.AddToCart(ctx, "sess", line("1", 9.5, 3))
	require.NoError(t, err)
	require.Len(t, lines, 1, "same product merges into one line")
	assert.Equal(t, 5, lines[0].Qty)

	lines, err = store.AddToCart(ctx, "sess", line("2", 4.0, 1))
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestCartRemoveAndClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddToCart(ctx, "sess", line("1", 1, 1))
	require.NoError(t, err)
	_, err = store.AddToCart(ctx, "sess", line("2", 2, 1))
	require.NoError(t, err)

	lines, err := store.RemoveFromCart(ctx, "sess", "1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "2", lines[0].ProductID)

	require.NoError(t, store.ClearCart(ctx, "sess"))
	lines, err = store.Cart(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartIsolatedPerSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddToCart(ctx, "a", line("1", 1, 1))
	require.NoError(t, err)

	lines, err := store.Cart(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.ToggleFavorite(ctx, "sess", "10")
	require.NoError(t, err)
	before, err := store.Favorites(ctx, "sess")
	require.NoError(t, err)

	// Toggling twice restores the original contents.
	on, err := store.ToggleFavorite(ctx, "sess", "42")
	require.NoError(t, err)
	assert.True(t, on)
	off, err := store.ToggleFavorite(ctx, "sess", "42")
	require.NoError(t, err)
	assert.False(t, off)

	after, err := store.Favorites(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestIsFavorite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.IsFavorite(ctx, "sess", "7")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.ToggleFavorite(ctx, "sess", "7")
	require.NoError(t, err)
	ok, err = store.IsFavorite(ctx, "sess", "7")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDirtySessionsDrained(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddToCart(ctx, "s1", line("1", 1, 1))
	require.NoError(t, err)
	_, err = store.ToggleFavorite(ctx, "s2", "9")
	require.NoError(t, err)

	dirty, err := store.DirtySessions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, dirty)

	dirty, err = store.DirtySessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, dirty, "drain removes the set")
}

func TestSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddToCart(ctx, "sess", line("1", 2.5, 4))
	require.NoError(t, err)
	_, err = store.ToggleFavorite(ctx, "sess", "1")
	require.NoError(t, err)

	snap, err := store.Snapshot(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, "sess", snap.SessionKey)
	require.Len(t, snap.Cart, 1)
	assert.Equal(t, []string{"1"}, snap.Favorites)
	assert.False(t, snap.UpdatedAt.IsZero())
}

func TestSeenAndRestore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seen, err := store.Seen(ctx, "sess")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Restore(ctx, &Snapshot{
		SessionKey: "sess",
		Cart:       []CartLine{line("1", 2, 3)},
		Favorites:  []string{"1"},
	}))

	seen, err = store.Seen(ctx, "sess")
	require.NoError(t, err)
	assert.True(t, seen)

	lines, err := store.Cart(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	// Restoring mirrored state must not mark the session dirty again.
	dirty, err := store.DirtySessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, dirty)
}

func TestWriteCartCSV(t *testing.T) {
	var sb strings.Builder
	err := WriteCartCSV(&sb, []CartLine{
		line("1", 9.5, 2),
		{ProductID: "2", Name: `said "best", really`, Price: decimal.NewFromInt(3), Qty: 1},
	})
	require.NoError(t, err)

	out := sb.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "productId,name,price,qty,total", lines[0])
	assert.Equal(t, "1,p-1,9.5,2,19", lines[1])
	assert.Contains(t, lines[2], `"said ""best"", really"`)
}
