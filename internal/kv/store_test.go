package kv

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFixture is a backend under test; advance moves its clock (nil when
// the backend cannot fake time).
type storeFixture struct {
	store   Store
	advance func(time.Duration)
}

func newMemoryFixture(t *testing.T) storeFixture {
	s := NewMemoryStore()
	now := time.Now()
	var mu sync.Mutex
	s.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	})
	return storeFixture{store: s, advance: func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}}
}

func newRedisFixture(t *testing.T) storeFixture {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(client)
	t.Cleanup(func() { _ = s.Close() })
	return storeFixture{store: s, advance: mr.FastForward}
}

func TestMemoryStoreContract(t *testing.T) { runStoreContract(t, newMemoryFixture) }

func TestRedisStoreContract(t *testing.T) { runStoreContract(t, newRedisFixture) }

func runStoreContract(t *testing.T, fixture func(t *testing.T) storeFixture) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		f := fixture(t)
		_, err := f.store.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set get delete", func(t *testing.T) {
		f := fixture(t)
		require.NoError(t, f.store.Set(ctx, "k", []byte("v1"), 0))
		v, err := f.store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v1", string(v))

		require.NoError(t, f.store.Set(ctx, "k", []byte("v2"), 0))
		v, err = f.store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v2", string(v))

		require.NoError(t, f.store.Delete(ctx, "k"))
		_, err = f.store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("setnx once", func(t *testing.T) {
		f := fixture(t)
		ok, err := f.store.SetNX(ctx, "once", []byte("a"), 0)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = f.store.SetNX(ctx, "once", []byte("b"), 0)
		require.NoError(t, err)
		assert.False(t, ok)

		v, _ := f.store.Get(ctx, "once")
		assert.Equal(t, "a", string(v))
	})

	t.Run("ttl expiry", func(t *testing.T) {
		f := fixture(t)
		if f.advance == nil {
			t.Skip("backend has no fake clock")
		}
		require.NoError(t, f.store.Set(ctx, "tmp", []byte("x"), time.Minute))
		f.advance(2 * time.Minute)
		_, err := f.store.Get(ctx, "tmp")
		assert.ErrorIs(t, err, ErrNotFound)

		ok, err := f.store.SetNX(ctx, "tmp", []byte("y"), 0)
		require.NoError(t, err)
		assert.True(t, ok, "expired key must not block SetNX")
	})

	t.Run("update creates and modifies", func(t *testing.T) {
		f := fixture(t)
		err := f.store.Update(ctx, "u", 0, func(cur []byte, exists bool) ([]byte, error) {
			assert.False(t, exists)
			assert.Nil(t, cur)
			return []byte("1"), nil
		})
		require.NoError(t, err)

		err = f.store.Update(ctx, "u", 0, func(cur []byte, exists bool) ([]byte, error) {
			assert.True(t, exists)
			return append(cur, '2'), nil
		})
		require.NoError(t, err)

		v, _ := f.store.Get(ctx, "u")
		assert.Equal(t, "12", string(v))
	})

	t.Run("update abort leaves value", func(t *testing.T) {
		f := fixture(t)
		require.NoError(t, f.store.Set(ctx, "a", []byte("keep"), 0))
		boom := errors.New("boom")
		err := f.store.Update(ctx, "a", 0, func([]byte, bool) ([]byte, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)

		err = f.store.Update(ctx, "a", 0, func([]byte, bool) ([]byte, error) { return nil, nil })
		require.NoError(t, err)

		v, _ := f.store.Get(ctx, "a")
		assert.Equal(t, "keep", string(v))
	})

	t.Run("update json concurrent increments", func(t *testing.T) {
		f := fixture(t)
		const workers = 10
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := UpdateJSON(ctx, f.store, "counter", 0, func(n *int, _ bool) error {
					*n++
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		var n int
		require.NoError(t, GetJSON(ctx, f.store, "counter", &n))
		assert.Equal(t, workers, n)
	})

	t.Run("update json no change", func(t *testing.T) {
		f := fixture(t)
		require.NoError(t, SetJSON(ctx, f.store, "list", []string{"a"}, 0))
		got, err := UpdateJSON(ctx, f.store, "list", 0, func(v *[]string, exists bool) error {
			require.True(t, exists)
			return ErrNoChange
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, got)
	})

	t.Run("ping", func(t *testing.T) {
		f := fixture(t)
		assert.NoError(t, f.store.Ping(ctx))
		assert.NotEmpty(t, f.store.Backend())
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:42", UserKey(42))
	assert.Equal(t, "progress:42", ProgressKey(42))
	assert.Equal(t, "artifacts:42", ArtifactsKey(42))
	assert.Equal(t, "referrals:42", ReferralsKey(42))
	assert.Equal(t, "available_missions:42", AvailableMissionsKey(42))
	assert.Equal(t, "ref:1:2", ReferralPairKey(1, 2))
	assert.Equal(t, ReferralPairKey(1, 2), ReferralPairKey(2, 1))

	day := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("MSK", 3*3600))
	assert.Equal(t, "daily_light:7:2024-03-09", DailyLightKey(7, day))
}

func TestMemoryStorePurgeExpired(t *testing.T) {
	f := newMemoryFixture(t)
	ms := f.store.(*MemoryStore)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, ms.Set(ctx, "k"+strconv.Itoa(i), []byte("v"), time.Second))
	}
	require.NoError(t, ms.Set(ctx, "forever", []byte("v"), 0))
	f.advance(time.Minute)

	n, err := ms.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	assert.Equal(t, 1, ms.Len())
}

func TestOpenAutoFallsBackToMemory(t *testing.T) {
	s, err := Open(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, s.Backend())

	s, err = Open(context.Background(), Options{RedisAddr: "127.0.0.1:1"})
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, s.Backend())
}

func TestOpenExplicitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := Open(context.Background(), Options{Backend: BackendRedis, RedisURL: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, BackendRedis, s.Backend())

	_, err = Open(context.Background(), Options{Backend: BackendRedis, RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)

	_, err = Open(context.Background(), Options{Backend: "etcd"})
	assert.Error(t, err)
}
