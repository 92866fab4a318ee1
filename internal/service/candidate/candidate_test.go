package service_candidate

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/humanbelnik/movienight/internal/apperr"
	"github.com/humanbelnik/movienight/internal/model"
	mocks "github.com/humanbelnik/movienight/mocks/candidate"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type CandidateSourceSuite struct {
	suite.Suite
}

type resources struct {
	client *mocks.Client
	cache  *mocks.Cache
	source *Source
	ctx    context.Context
}

func initResources(t provider.T) *resources {
	client := mocks.NewClient(t)
	cache := mocks.NewCache(t)
	return &resources{
		client: client,
		cache:  cache,
		source: New(client, cache),
		ctx:    context.Background(),
	}
}

func validQuery() model.DiscoverQuery {
	return model.DiscoverQuery{
		LikedGenres:   []string{"Comedy", "Drama"},
		RatingCeiling: model.ContentRatingPG13,
		MinVoteCount:  50,
	}
}

func validMovies() []model.CandidateMovie {
	return []model.CandidateMovie{
		{ID: 1, Title: "First", Genres: []string{"Comedy"}, Popularity: 10},
		{ID: 2, Title: "Second", Genres: []string{"Drama"}, Popularity: 20},
	}
}

func (s *CandidateSourceSuite) TestGenerateKey(t provider.T) {
	t.Parallel()

	a := GenerateKey("discover", validQuery())
	b := GenerateKey("discover", validQuery())
	other := validQuery()
	other.MinVoteCount = 10

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, GenerateKey("discover", other))
	assert.NotEqual(t, a, GenerateKey("detail", validQuery()))
	assert.Contains(t, a, "discover:")
}

func (s *CandidateSourceSuite) TestDiscover(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		setupMocks  func(r *resources)
		expected    []model.CandidateMovie
		expectError bool
	}{
		{
			name: "Should serve from cache on hit",
			setupMocks: func(r *resources) {
				raw, _ := json.Marshal(validMovies())
				r.cache.On("Get", r.ctx, GenerateKey("discover", validQuery())).
					Return(raw, true, nil).Once()
			},
			expected: validMovies(),
		},
		{
			name: "Should fetch and fill cache on miss",
			setupMocks: func(r *resources) {
				key := GenerateKey("discover", validQuery())
				r.cache.On("Get", r.ctx, key).Return(nil, false, nil).Once()
				r.client.On("Discover", mock.Anything, validQuery()).Return(validMovies(), nil).Once()
				r.cache.On("Set", mock.Anything, key, mock.AnythingOfType("[]uint8"), DiscoverTTL).
					Return(nil).Once()
			},
			expected: validMovies(),
		},
		{
			name: "Should treat cache read failure as miss",
			setupMocks: func(r *resources) {
				key := GenerateKey("discover", validQuery())
				r.cache.On("Get", r.ctx, key).Return(nil, false, errors.New("connection refused")).Once()
				r.client.On("Discover", mock.Anything, validQuery()).Return(validMovies(), nil).Once()
				r.cache.On("Set", mock.Anything, key, mock.Anything, DiscoverTTL).Return(nil).Once()
			},
			expected: validMovies(),
		},
		{
			name: "Should ignore cache write failure",
			setupMocks: func(r *resources) {
				key := GenerateKey("discover", validQuery())
				r.cache.On("Get", r.ctx, key).Return(nil, false, nil).Once()
				r.client.On("Discover", mock.Anything, validQuery()).Return(validMovies(), nil).Once()
				r.cache.On("Set", mock.Anything, key, mock.Anything, DiscoverTTL).
					Return(errors.New("read only replica")).Once()
			},
			expected: validMovies(),
		},
		{
			name: "Should not cache upstream failures",
			setupMocks: func(r *resources) {
				key := GenerateKey("discover", validQuery())
				r.cache.On("Get", r.ctx, key).Return(nil, false, nil).Once()
				r.client.On("Discover", mock.Anything, validQuery()).Return(nil, errors.New("timeout")).Once()
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			movies, err := r.source.Discover(r.ctx, validQuery())

			if tc.expectError {
				assert.Error(t, err)
				assert.Nil(t, movies)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, movies)
			}
		})
	}
}

func (s *CandidateSourceSuite) TestProvidersAndDetail(t provider.T) {
	t.Parallel()

	t.Run("Should cache providers with the shorter ttl", func(t provider.T) {
		r := initResources(t)
		key := GenerateKey("providers", 42)
		providers := []model.Provider{{ID: 8, Name: "Netflix"}}

		r.cache.On("Get", r.ctx, key).Return(nil, false, nil).Once()
		r.client.On("WatchProviders", mock.Anything, 42).Return(providers, nil).Once()
		r.cache.On("Set", mock.Anything, key, mock.Anything, ProvidersTTL).Return(nil).Once()

		got, err := r.source.WatchProviders(r.ctx, 42)

		assert.NoError(t, err)
		assert.Equal(t, providers, got)
	})

	t.Run("Should pass not found through", func(t provider.T) {
		r := initResources(t)
		key := GenerateKey("detail", 7)

		r.cache.On("Get", r.ctx, key).Return(nil, false, nil).Once()
		r.client.On("Detail", mock.Anything, 7).Return(model.MovieDetail{}, apperr.NotFound("movie not found")).Once()

		_, err := r.source.Detail(r.ctx, 7)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func (s *CandidateSourceSuite) TestSharedFetch(t provider.T) {
	t.Parallel()

	t.Run("Should finish the fetch after its first caller gives up", func(t provider.T) {
		r := initResources(t)
		q := validQuery()
		key := GenerateKey("discover", q)

		started := make(chan struct{})
		release := make(chan struct{})
		fetchCtxErr := make(chan error, 1)
		stored := make(chan struct{})

		r.cache.On("Get", mock.Anything, key).Return(nil, false, nil).Once()
		r.client.On("Discover", mock.Anything, q).
			Run(func(args mock.Arguments) {
				close(started)
				<-release
				fetchCtxErr <- args.Get(0).(context.Context).Err()
			}).
			Return(validMovies(), nil).Once()
		r.cache.On("Set", mock.Anything, key, mock.Anything, DiscoverTTL).
			Run(func(mock.Arguments) { close(stored) }).
			Return(nil).Once()

		ctx, cancel := context.WithCancel(r.ctx)
		done := make(chan error, 1)
		go func() {
			_, err := r.source.Discover(ctx, q)
			done <- err
		}()

		<-started
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)

		close(release)
		assert.NoError(t, <-fetchCtxErr)
		<-stored
	})
}

func TestCandidateSourceSuite(t *testing.T) {
	suite.RunSuite(t, new(CandidateSourceSuite))
}
