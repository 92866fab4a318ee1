package service_candidate

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/humanbelnik/movienight/internal/metrics"
	"github.com/humanbelnik/movienight/internal/model"
	"golang.org/x/sync/singleflight"
)

const (
	DiscoverTTL  = 24 * time.Hour
	DetailTTL    = 24 * time.Hour
	ProvidersTTL = 12 * time.Hour
)

// A shared fetch outlives the caller that started it, so it carries its own bound.
const sharedFetchTimeout = 15 * time.Second

//go:generate mockery --name=Client --output=../../../mocks/candidate --filename=client.go
type Client interface {
	Discover(ctx context.Context, q model.DiscoverQuery) ([]model.CandidateMovie, error)
	WatchProviders(ctx context.Context, movieID model.MovieID) ([]model.Provider, error)
	Detail(ctx context.Context, movieID model.MovieID) (model.MovieDetail, error)
}

//go:generate mockery --name=Cache --output=../../../mocks/candidate --filename=cache.go
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Source is the movie metadata provider fronted by a shared TTL cache.
// The cache is best effort: read failures count as misses and write failures
// are logged and dropped.
type Source struct {
	client Client
	cache  Cache
	group  singleflight.Group
	logger *slog.Logger
}

type SourceOption func(*Source)

func WithLogger(logger *slog.Logger) SourceOption {
	return func(s *Source) {
		s.logger = logger
	}
}

func New(client Client, cache Cache, opts ...SourceOption) *Source {
	s := &Source{
		client: client,
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Discover(ctx context.Context, q model.DiscoverQuery) ([]model.CandidateMovie, error) {
	return cached(ctx, s, "discover", q, DiscoverTTL, func(ctx context.Context) ([]model.CandidateMovie, error) {
		return s.client.Discover(ctx, q)
	})
}

func (s *Source) WatchProviders(ctx context.Context, movieID model.MovieID) ([]model.Provider, error) {
	return cached(ctx, s, "providers", movieID, ProvidersTTL, func(ctx context.Context) ([]model.Provider, error) {
		return s.client.WatchProviders(ctx, movieID)
	})
}

func (s *Source) Detail(ctx context.Context, movieID model.MovieID) (model.MovieDetail, error) {
	return cached(ctx, s, "detail", movieID, DetailTTL, func(ctx context.Context) (model.MovieDetail, error) {
		return s.client.Detail(ctx, movieID)
	})
}

func cached[T any](
	ctx context.Context,
	s *Source,
	method string,
	params any,
	ttl time.Duration,
	fetch func(ctx context.Context) (T, error),
) (T, error) {
	key := GenerateKey(method, params)

	if v, ok := lookup[T](ctx, s, method, key); ok {
		return v, nil
	}

	// Callers joining the same key each wait on their own ctx; the fetch itself
	// is detached from whichever caller started it.
	ch := s.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		v, err := fetch(fetchCtx)
		if err != nil {
			return v, err
		}
		s.store(fetchCtx, method, key, v, ttl)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func lookup[T any](ctx context.Context, s *Source, method, key string) (T, bool) {
	var v T

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("candidate cache read failed",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		metrics.CandidateCacheLookups.WithLabelValues(method, "error").Inc()
		return v, false
	}
	if !ok {
		metrics.CandidateCacheLookups.WithLabelValues(method, "miss").Inc()
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("candidate cache entry undecodable",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		metrics.CandidateCacheLookups.WithLabelValues(method, "error").Inc()
		return v, false
	}
	metrics.CandidateCacheLookups.WithLabelValues(method, "hit").Inc()
	return v, true
}

func (s *Source) store(ctx context.Context, method, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("candidate cache encode failed",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		s.logger.Warn("candidate cache write failed",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
	}
}

// GenerateKey hashes the JSON form of params so equal queries share one entry.
func GenerateKey(method string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash)
}
