package session_auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	infra_memory "github.com/humanbelnik/movienight/internal/infra/memory"
	infra_redis_blob "github.com/humanbelnik/movienight/internal/infra/redis/blob"
	"github.com/humanbelnik/movienight/internal/model"
	service_membership "github.com/humanbelnik/movienight/internal/service/membership"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type SessionAuthSuite struct {
	suite.Suite
}

type resources struct {
	service *Service
	mr      *miniredis.Miniredis
	member  model.Member
	ctx     context.Context
}

const secret = "popcorn"

func initResources(t provider.T) *resources {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := infra_memory.New()
	group := model.Group{ID: uuid.New(), Name: "Flat 4"}
	member := model.Member{ID: uuid.New(), GroupID: group.ID, DisplayName: "Alice", Role: model.RoleMember}
	store.PutGroup(group, member)

	return &resources{
		service: New(secret, time.Hour, service_membership.New(store), infra_redis_blob.New(client, "sessions")),
		mr:      mr,
		member:  member,
		ctx:     context.Background(),
	}
}

func (s *SessionAuthSuite) TestLogin(t provider.T) {
	t.Parallel()

	t.Run("Should issue a token that resolves to the member", func(t provider.T) {
		r := initResources(t)

		session, err := r.service.Login(r.ctx, secret, r.member.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, time.Hour, r.mr.TTL("sessions:"+session.Token))

		member, err := r.service.Resolve(r.ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, r.member.ID, member.ID)
		assert.Equal(t, r.member.GroupID, member.GroupID)
	})

	t.Run("Should reject a wrong code", func(t provider.T) {
		r := initResources(t)

		_, err := r.service.Login(r.ctx, "butter", r.member.ID)

		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("Should reject unknown members", func(t provider.T) {
		r := initResources(t)

		_, err := r.service.Login(r.ctx, secret, uuid.New())

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func (s *SessionAuthSuite) TestResolve(t provider.T) {
	t.Parallel()

	t.Run("Should reject unknown tokens", func(t provider.T) {
		r := initResources(t)

		_, err := r.service.Resolve(r.ctx, uuid.NewString())

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject expired tokens", func(t provider.T) {
		r := initResources(t)
		session, err := r.service.Login(r.ctx, secret, r.member.ID)
		require.NoError(t, err)

		r.mr.FastForward(2 * time.Hour)

		_, err = r.service.Resolve(r.ctx, session.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject tokens after logout", func(t provider.T) {
		r := initResources(t)
		session, err := r.service.Login(r.ctx, secret, r.member.ID)
		require.NoError(t, err)

		require.NoError(t, r.service.Logout(r.ctx, session.Token))

		_, err = r.service.Resolve(r.ctx, session.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should surface store failures as internal", func(t provider.T) {
		r := initResources(t)
		r.mr.Close()

		_, err := r.service.Resolve(r.ctx, uuid.NewString())

		assert.ErrorIs(t, err, apperr.ErrInternal)
	})
}

func TestSessionAuthSuite(t *testing.T) {
	suite.RunSuite(t, new(SessionAuthSuite))
}
