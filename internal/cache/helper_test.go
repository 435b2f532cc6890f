package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestUserKey(t *testing.T) {
	assert.Equal(t, "user:42", UserKey(42))
	assert.Equal(t, "user:0", UserKey(0))
}

func TestSetGetJSON(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	in := cachedThing{Name: "widget", Count: 3}
	require.NoError(t, SetJSON(ctx, "thing:1", in, time.Minute))

	var out cachedThing
	found, err := GetJSON(ctx, "thing:1", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestGetJSON_Miss(t *testing.T) {
	setupMiniredis(t)

	var out cachedThing
	found, err := GetJSON(context.Background(), "nope", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSON_NoClient(t *testing.T) {
	SetClient(nil)

	var out cachedThing
	found, err := GetJSON(context.Background(), "anything", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "gone:1", cachedThing{Name: "x"}, time.Minute))
	require.True(t, mr.Exists("gone:1"))

	Invalidate(ctx, "gone:1")
	assert.False(t, mr.Exists("gone:1"))
}

func TestAside_MissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			dest.Name = "fetched"
			dest.Count = calls
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, "aside:1", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "fetched", first.Name)

	// Second read is served from the cache; the loader stays cold
	var second cachedThing
	require.NoError(t, Aside(ctx, "aside:1", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestAside_FetchError(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	boom := errors.New("store down")
	var out cachedThing
	err := Aside(ctx, "aside:err", &out, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	// A failed load must not poison the cache
	assert.False(t, mr.Exists("aside:err"))
}

func TestAside_DeadCacheFailsOpen(t *testing.T) {
	mr := setupMiniredis(t)
	mr.Close()

	var out cachedThing
	err := Aside(context.Background(), "aside:dead", &out, time.Minute, func() error {
		out.Name = "from store"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "from store", out.Name)
}

func TestAside_TTLExpiry(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	load := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			dest.Name = "loaded"
			return nil
		}
	}

	var out cachedThing
	require.NoError(t, Aside(ctx, "aside:ttl", &out, time.Second, load(&out)))
	require.Equal(t, 1, calls)

	mr.FastForward(2 * time.Second)

	var again cachedThing
	require.NoError(t, Aside(ctx, "aside:ttl", &again, time.Second, load(&again)))
	assert.Equal(t, 2, calls)
}
