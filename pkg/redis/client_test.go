package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/vendorcart-backend/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return NewFromClient(raw), mr
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	require.NoError(t, client.Set(ctx, "vc:key", "value", time.Minute))
	got, err := client.Get(ctx, "vc:key")
	require.NoError(t, err)
	require.Equal(t, "value", got)
	require.Equal(t, time.Minute, mr.TTL("vc:key"))

	require.NoError(t, client.Del(ctx, "vc:key"))
	_, err = client.Get(ctx, "vc:key")
	require.ErrorIs(t, err, redis.Nil)
}

func TestSetNX(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	ok, err := client.SetNX(ctx, "vc:lock", "a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.SetNX(ctx, "vc:lock", "b", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdateAppliesFunction(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	require.NoError(t, client.Set(ctx, "vc:counter", "1", time.Minute))

	err := client.Update(ctx, "vc:counter", 2*time.Minute, func(current string) (string, error) {
		return current + "1", nil
	})
	require.NoError(t, err)

	got, err := client.Get(ctx, "vc:counter")
	require.NoError(t, err)
	require.Equal(t, "11", got)
	require.Equal(t, 2*time.Minute, mr.TTL("vc:counter"))
}

func TestUpdateMissingKey(t *testing.T) {
	client, _ := newTestClient(t)

	err := client.Update(context.Background(), "vc:missing", time.Minute, func(current string) (string, error) {
		return current, nil
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateConflictWhenKeyChangesInsideWatch(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	require.NoError(t, client.Set(ctx, "vc:session", "rev-1", time.Minute))

	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer other.Close()

	err := client.Update(ctx, "vc:session", time.Minute, func(current string) (string, error) {
		require.NoError(t, other.Set(ctx, "vc:session", "rev-2", time.Minute).Err())
		return "rev-1-updated", nil
	})
	require.ErrorIs(t, err, ErrConflict)

	got, err := client.Get(ctx, "vc:session")
	require.NoError(t, err)
	require.Equal(t, "rev-2", got)
}

func TestUpdatePropagatesCallbackError(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	require.NoError(t, client.Set(ctx, "vc:session", "x", time.Minute))

	boom := errors.New("boom")
	err := client.Update(ctx, "vc:session", time.Minute, func(string) (string, error) {
		return "", boom
	})
	require.ErrorIs(t, err, boom)
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "vc:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.CheckoutSessionKey("buyer", "sess"); got != "vc:checkout_session:buyer:sess" {
		t.Fatalf("unexpected session key %s", got)
	}
	if got := client.CheckoutSessionKey("buyer", ""); got != "vc:checkout_session:buyer" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	ctx := context.Background()
	require.ErrorIs(t, client.Ping(ctx), errNotInitialized)
	require.ErrorIs(t, client.Set(ctx, "k", "v", time.Minute), errNotInitialized)
	_, err := client.Get(ctx, "k")
	require.ErrorIs(t, err, errNotInitialized)
	_, err = client.SetNX(ctx, "k", "v", time.Minute)
	require.ErrorIs(t, err, errNotInitialized)
	_, err = client.DeleteIfEquals(ctx, "k", "v")
	require.ErrorIs(t, err, errNotInitialized)
	require.ErrorIs(t, client.Del(ctx, "k"), errNotInitialized)
	require.NoError(t, client.Close())
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/3", PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	require.Equal(t, 3, opts.DB)
	require.Equal(t, 7, opts.PoolSize)
	require.Equal(t, time.Second, opts.DialTimeout)
}

func TestDeleteIfEquals(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	require.NoError(t, client.Set(ctx, "vc:cron_lock:dev", "owner-a", time.Minute))

	deleted, err := client.DeleteIfEquals(ctx, "vc:cron_lock:dev", "owner-b")
	require.NoError(t, err)
	require.False(t, deleted)
	require.True(t, mr.Exists("vc:cron_lock:dev"))

	deleted, err = client.DeleteIfEquals(ctx, "vc:cron_lock:dev", "owner-a")
	require.NoError(t, err)
	require.True(t, deleted)
	require.False(t, mr.Exists("vc:cron_lock:dev"))
}

func TestCronLockKey(t *testing.T) {
	client := &Client{}
	require.Equal(t, "vc:cron_lock:prod", client.CronLockKey("prod"))
	require.Equal(t, "vc:cron_lock:local", client.CronLockKey(" "))
}
