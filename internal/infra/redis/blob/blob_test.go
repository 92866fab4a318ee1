package infra_redis_blob

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type BlobSuite struct {
	suite.Suite
}

type resources struct {
	mr     *miniredis.Miniredis
	driver *Driver
	ctx    context.Context
}

func initResources(t provider.T) *resources {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &resources{
		mr:     mr,
		driver: New(client, "candidates"),
		ctx:    context.Background(),
	}
}

func (s *BlobSuite) TestGetSet(t provider.T) {
	t.Parallel()

	t.Run("Should report a miss for absent keys", func(t provider.T) {
		r := initResources(t)

		val, ok, err := r.driver.Get(r.ctx, "absent")

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("Should store under prefixed key with ttl", func(t provider.T) {
		r := initResources(t)

		err := r.driver.Set(r.ctx, "abc", []byte(`{"id":1}`), time.Hour)
		require.NoError(t, err)

		assert.True(t, r.mr.Exists("candidates:abc"))
		assert.Equal(t, time.Hour, r.mr.TTL("candidates:abc"))

		val, ok, err := r.driver.Get(r.ctx, "abc")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"id":1}`, string(val))
	})

	t.Run("Should expire entries", func(t provider.T) {
		r := initResources(t)

		require.NoError(t, r.driver.Set(r.ctx, "abc", []byte("x"), time.Minute))
		r.mr.FastForward(2 * time.Minute)

		_, ok, err := r.driver.Get(r.ctx, "abc")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should surface connection errors", func(t provider.T) {
		r := initResources(t)
		r.mr.Close()

		_, ok, err := r.driver.Get(r.ctx, "abc")
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func (s *BlobSuite) TestDelete(t provider.T) {
	t.Parallel()

	t.Run("Should drop the entry under its prefix only", func(t provider.T) {
		r := initResources(t)
		other := New(redis.NewClient(&redis.Options{Addr: r.mr.Addr()}), "sessions")
		require.NoError(t, r.driver.Set(r.ctx, "abc", []byte("x"), time.Hour))
		require.NoError(t, other.Set(r.ctx, "abc", []byte("y"), time.Hour))

		require.NoError(t, r.driver.Delete(r.ctx, "abc"))

		assert.False(t, r.mr.Exists("candidates:abc"))
		val, ok, err := other.Get(r.ctx, "abc")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("y"), val)
	})

	t.Run("Should treat deleting an absent key as done", func(t provider.T) {
		r := initResources(t)

		assert.NoError(t, r.driver.Delete(r.ctx, "absent"))
	})
}

func TestBlobSuite(t *testing.T) {
	suite.RunSuite(t, new(BlobSuite))
}
