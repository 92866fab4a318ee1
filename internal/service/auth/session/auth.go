package session_auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	"github.com/humanbelnik/movienight/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const defaultTokenTTL = 24 * time.Hour

type MemberFetcher interface {
	Member(ctx context.Context, memberID uuid.UUID) (model.Member, error)
}

type SessionCache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	secret  string
	ttl     time.Duration
	members MemberFetcher
	cache   SessionCache
	now     func() time.Time
}

func New(
	secret string,
	ttl time.Duration,
	members MemberFetcher,
	cache SessionCache,
) *Service {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Service{
		secret:  secret,
		ttl:     ttl,
		members: members,
		cache:   cache,
		now:     time.Now,
	}
}

type Session struct {
	Token     string
	Member    model.Member
	ExpiresAt time.Time
}

// Login trades the household secret and a member ID for a session token.
func (s *Service) Login(ctx context.Context, code string, memberID uuid.UUID) (Session, error) {
	if subtle.ConstantTimeCompare([]byte(code), []byte(s.secret)) != 1 {
		return Session{}, apperr.Forbidden("wrong code")
	}

	member, err := s.members.Member(ctx, memberID)
	if err != nil {
		return Session{}, err
	}

	token := uuid.New().String()
	if err := s.cache.Set(ctx, token, []byte(member.ID.String()), s.ttl); err != nil {
		return Session{}, apperr.Internal("failed to store session", err)
	}

	return Session{
		Token:     token,
		Member:    member,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}, nil
}

// Resolve returns the member behind a token.
func (s *Service) Resolve(ctx context.Context, token string) (model.Member, error) {
	raw, ok, err := s.cache.Get(ctx, token)
	if err != nil {
		return model.Member{}, apperr.Internal("failed to read session", err)
	}
	if !ok {
		return model.Member{}, ErrInvalidToken
	}

	memberID, err := uuid.ParseBytes(raw)
	if err != nil {
		return model.Member{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	member, err := s.members.Member(ctx, memberID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return model.Member{}, ErrInvalidToken
		}
		return model.Member{}, err
	}
	return member, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.cache.Delete(ctx, token); err != nil {
		return apperr.Internal("failed to drop session", err)
	}
	return nil
}
