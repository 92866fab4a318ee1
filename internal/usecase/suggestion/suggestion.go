package usecase_suggestion

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	"github.com/humanbelnik/movienight/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	MinCandidates  = 3
	MaxSuggestions = 5

	defaultVoteFloor = 50
	relaxedVoteFloor = 10

	popularReasonThreshold = 0.8
	ratedReasonThreshold   = 7.5

	providerLookupLimit = 5
)

var (
	defaultReleaseFloor = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)
	relaxedReleaseFloor = time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC)
)

const (
	RelaxExpandedGenres         = "expanded_genres"
	RelaxLoweredPopularityFloor = "lowered_popularity_floor"
	RelaxIncludedOlderMovies    = "included_older_movies"
)

type relaxation struct {
	name  string
	apply func(q *model.DiscoverQuery)
}

// Applied in order. Each step keeps the previous ones in effect.
var ladder = []relaxation{
	{
		name: RelaxExpandedGenres,
		apply: func(q *model.DiscoverQuery) {
			q.LikedGenres = nil
			q.DislikedGenres = nil
		},
	},
	{
		name: RelaxLoweredPopularityFloor,
		apply: func(q *model.DiscoverQuery) {
			q.MinVoteCount = relaxedVoteFloor
		},
	},
	{
		name: RelaxIncludedOlderMovies,
		apply: func(q *model.DiscoverQuery) {
			q.MinReleaseDate = relaxedReleaseFloor
		},
	},
}

//go:generate mockery --name=Aggregator --output=../../../mocks/suggestion --filename=aggregator.go
type Aggregator interface {
	Summarize(ctx context.Context, groupID uuid.UUID) (model.TasteProfile, int, error)
	SummarizeFor(ctx context.Context, groupID uuid.UUID, memberIDs []uuid.UUID) (model.TasteProfile, int, error)
}

//go:generate mockery --name=CandidateSource --output=../../../mocks/suggestion --filename=candidate_source.go
type CandidateSource interface {
	Discover(ctx context.Context, q model.DiscoverQuery) ([]model.CandidateMovie, error)
	WatchProviders(ctx context.Context, movieID model.MovieID) ([]model.Provider, error)
}

//go:generate mockery --name=WatchedStore --output=../../../mocks/suggestion --filename=watched_store.go
type WatchedStore interface {
	AllWatchedMovieIDs(ctx context.Context, groupID uuid.UUID) (map[model.MovieID]struct{}, error)
}

//go:generate mockery --name=GroupProvider --output=../../../mocks/suggestion --filename=group_provider.go
type GroupProvider interface {
	GetGroup(ctx context.Context, groupID uuid.UUID) (model.Group, error)
}

type Usecase struct {
	aggregator Aggregator
	candidates CandidateSource
	watched    WatchedStore
	groups     GroupProvider
	logger     *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(
	aggregator Aggregator,
	candidates CandidateSource,
	watched WatchedStore,
	groups GroupProvider,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		aggregator: aggregator,
		candidates: candidates,
		watched:    watched,
		groups:     groups,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type Result struct {
	Suggestions []model.Suggestion
	// Names of the relaxation steps applied, in ladder order.
	Relaxed []string
	// Movies excluded as already watched or requested by the caller.
	Excluded map[model.MovieID]struct{}
}

func (u *Usecase) Suggest(
	ctx context.Context,
	groupID uuid.UUID,
	exclude []model.MovieID,
	attendees []uuid.UUID,
) (Result, error) {
	profile, err := u.profile(ctx, groupID, attendees)
	if err != nil {
		return Result{}, err
	}

	group, err := u.groups.GetGroup(ctx, groupID)
	if err != nil {
		return Result{}, err
	}

	excluded, err := u.watched.AllWatchedMovieIDs(ctx, groupID)
	if err != nil {
		return Result{}, apperr.Internal("failed to load watched movies", err)
	}
	if excluded == nil {
		excluded = make(map[model.MovieID]struct{}, len(exclude))
	}
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	q := model.DiscoverQuery{
		LikedGenres:    profile.LikedGenres,
		DislikedGenres: profile.DislikedGenres,
		RatingCeiling:  profile.ContentCeiling,
		MinVoteCount:   defaultVoteFloor,
		MinReleaseDate: defaultReleaseFloor,
	}

	candidates, err := u.discover(ctx, q, excluded)
	if err != nil {
		return Result{}, err
	}

	relaxed := []string{}
	for _, step := range ladder {
		if len(candidates) >= MinCandidates {
			break
		}
		step.apply(&q)
		relaxed = append(relaxed, step.name)

		candidates, err = u.discover(ctx, q, excluded)
		if err != nil {
			return Result{}, err
		}
	}

	u.attachStreaming(ctx, candidates, group.StreamingServices)

	return Result{
		Suggestions: Rank(candidates, profile, group.StreamingServices),
		Relaxed:     relaxed,
		Excluded:    excluded,
	}, nil
}

func (u *Usecase) profile(ctx context.Context, groupID uuid.UUID, attendees []uuid.UUID) (model.TasteProfile, error) {
	var (
		profile model.TasteProfile
		err     error
	)
	if len(attendees) > 0 {
		profile, _, err = u.aggregator.SummarizeFor(ctx, groupID, attendees)
	} else {
		profile, _, err = u.aggregator.Summarize(ctx, groupID)
	}
	return profile, err
}

func (u *Usecase) discover(ctx context.Context, q model.DiscoverQuery, excluded map[model.MovieID]struct{}) ([]model.CandidateMovie, error) {
	movies, err := u.candidates.Discover(ctx, q)
	if err != nil {
		return nil, apperr.Internal("failed to fetch candidates", err)
	}

	seen := make(map[model.MovieID]struct{}, len(movies))
	out := make([]model.CandidateMovie, 0, len(movies))
	for _, m := range movies {
		if _, ok := excluded[m.ID]; ok {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}

// attachStreaming fills Streaming for every candidate. Lookup failures leave the
// candidate without providers.
func (u *Usecase) attachStreaming(ctx context.Context, candidates []model.CandidateMovie, services []string) {
	if len(services) == 0 || len(candidates) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(providerLookupLimit)
	for i := range candidates {
		g.Go(func() error {
			providers, err := u.candidates.WatchProviders(gctx, candidates[i].ID)
			if err != nil {
				u.logger.Warn("watch provider lookup failed",
					slog.Int("movie_id", candidates[i].ID),
					slog.String("error", err.Error()),
				)
				return nil
			}
			names := make([]string, 0, len(providers))
			for _, p := range providers {
				names = append(names, p.Name)
			}
			candidates[i].Streaming = names
			return nil
		})
	}
	_ = g.Wait()
}

type scored struct {
	movie          model.CandidateMovie
	score          float64
	popularityNorm float64
	matched        []string
	service        string
}

// Rank scores, orders and truncates candidates. It is deterministic for a given
// input regardless of candidate order.
func Rank(candidates []model.CandidateMovie, profile model.TasteProfile, services []string) []model.Suggestion {
	if len(candidates) == 0 {
		return []model.Suggestion{}
	}

	var maxPopularity float64
	for _, c := range candidates {
		maxPopularity = max(maxPopularity, c.Popularity)
	}

	items := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		s := scored{movie: c}

		if maxPopularity > 0 {
			s.popularityNorm = c.Popularity / maxPopularity
		}

		var streamingBoost float64
		if len(services) > 0 {
			if svc, ok := streamingMatch(c.Streaming, services); ok {
				streamingBoost = 1
				s.service = svc
			}
		}

		var genreMatch float64
		if len(c.Genres) > 0 {
			for _, g := range c.Genres {
				if profile.Likes(g) {
					s.matched = append(s.matched, g)
				}
			}
			genreMatch = float64(len(s.matched)) / float64(len(c.Genres))
		}

		s.score = 0.5*s.popularityNorm + 0.3*streamingBoost + 0.2*genreMatch
		items = append(items, s)
	}

	slices.SortFunc(items, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.movie.VoteAverage, a.movie.VoteAverage); c != 0 {
			return c
		}
		return cmp.Compare(a.movie.ID, b.movie.ID)
	})

	if len(items) > MaxSuggestions {
		items = items[:MaxSuggestions]
	}

	out := make([]model.Suggestion, 0, len(items))
	for i, s := range items {
		out = append(out, model.Suggestion{
			Movie:    s.movie,
			Score:    s.score,
			Reason:   reason(s),
			Source:   model.SourceAlgorithm,
			Position: i,
		})
	}
	return out
}

func streamingMatch(available, services []string) (string, bool) {
	for _, svc := range services {
		for _, a := range available {
			if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(svc)) {
				return svc, true
			}
		}
	}
	return "", false
}

func reason(s scored) string {
	var parts []string
	if len(s.matched) > 0 {
		parts = append(parts, "matches "+strings.Join(s.matched, ", "))
	}
	if s.service != "" {
		parts = append(parts, "streaming on "+s.service)
	}
	if s.popularityNorm >= popularReasonThreshold {
		parts = append(parts, "popular right now")
	}
	if s.movie.VoteAverage >= ratedReasonThreshold {
		parts = append(parts, fmt.Sprintf("highly rated (%.1f)", s.movie.VoteAverage))
	}
	if len(parts) == 0 {
		return "Fits the group's content ceiling"
	}
	first := parts[0]
	parts[0] = strings.ToUpper(first[:1]) + first[1:]
	return strings.Join(parts, "; ")
}
