package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/copperline/gatehouse/internal/auth/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, time.Hour), mr
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	view := domain.PublicUser{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
		Enabled:  true,
		Roles:    []string{domain.RoleStandardUser},
		Accounts: []string{},
	}
	require.NoError(t, store.Put(ctx, view.ID, view))

	got, err := store.Get(ctx, view.ID)
	require.NoError(t, err)
	require.Equal(t, view, got)
}

func TestGetMissingSession(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.Put(ctx, "user-1", domain.PublicUser{ID: "user-1"}))
	require.NoError(t, store.Delete(ctx, "user-1"))

	_, err := store.Get(ctx, "user-1")
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting again is a no-op.
	require.NoError(t, store.Delete(ctx, "user-1"))
}

func TestSessionExpires(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Put(ctx, "user-1", domain.PublicUser{ID: "user-1"}))

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "user-1")
	require.ErrorIs(t, err, ErrNotFound)
}
