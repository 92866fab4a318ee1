package service_watchlist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/humanbelnik/movienight/internal/storage"
)

type Repository interface {
	WatchlistByGroup(ctx context.Context, groupID uuid.UUID) ([]model.WatchlistItem, error)
	AddWatchlistItem(ctx context.Context, item model.WatchlistItem) error
	AddWatched(ctx context.Context, w model.WatchedMovie) error
	DirectWatched(ctx context.Context, groupID uuid.UUID) ([]model.WatchedMovie, error)
	WatchedPicks(ctx context.Context, groupID uuid.UUID) ([]model.WatchedMovie, error)
}

type MovieDetailer interface {
	Detail(ctx context.Context, movieID model.MovieID) (model.MovieDetail, error)
}

type MembershipProvider interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (model.Member, error)
}

type Service struct {
	repository Repository
	movies     MovieDetailer
	membership MembershipProvider
	now        func() time.Time
}

func New(repository Repository, movies MovieDetailer, membership MembershipProvider) *Service {
	return &Service{
		repository: repository,
		movies:     movies,
		membership: membership,
		now:        time.Now,
	}
}

// GetWatchlist returns the group's watchlist in insertion order.
func (s *Service) GetWatchlist(ctx context.Context, groupID uuid.UUID) ([]model.WatchlistItem, error) {
	items, err := s.repository.WatchlistByGroup(ctx, groupID)
	if err != nil {
		return nil, apperr.Internal("failed to load watchlist", err)
	}
	return items, nil
}

// Watched merges direct records with watched picks. Direct records win.
func (s *Service) Watched(ctx context.Context, groupID uuid.UUID) ([]model.WatchedMovie, error) {
	direct, err := s.repository.DirectWatched(ctx, groupID)
	if err != nil {
		return nil, apperr.Internal("failed to load watched movies", err)
	}
	viaPicks, err := s.repository.WatchedPicks(ctx, groupID)
	if err != nil {
		return nil, apperr.Internal("failed to load watched picks", err)
	}
	return model.MergeWatched(direct, viaPicks), nil
}

func (s *Service) AllWatchedMovieIDs(ctx context.Context, groupID uuid.UUID) (map[model.MovieID]struct{}, error) {
	watched, err := s.Watched(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ids := make(map[model.MovieID]struct{}, len(watched))
	for _, w := range watched {
		ids[w.MovieID] = struct{}{}
	}
	return ids, nil
}

// Add appends a movie to the group's watchlist, resolving its metadata first.
func (s *Service) Add(ctx context.Context, groupID, memberID uuid.UUID, movieID model.MovieID) (model.WatchlistItem, error) {
	if _, err := s.membership.IsMember(ctx, groupID, memberID); err != nil {
		return model.WatchlistItem{}, err
	}
	if movieID <= 0 {
		return model.WatchlistItem{}, apperr.Validation("movie id must be positive")
	}

	detail, err := s.movies.Detail(ctx, movieID)
	if err != nil {
		return model.WatchlistItem{}, apperr.Internal("failed to resolve movie", err)
	}

	item := model.WatchlistItem{
		GroupID:     groupID,
		MovieID:     movieID,
		Title:       detail.Title,
		PosterPath:  detail.PosterPath,
		Genres:      detail.Genres,
		ReleaseYear: detail.ReleaseYear,
		Popularity:  detail.Popularity,
		AddedBy:     memberID,
		AddedAt:     s.now().UTC(),
	}
	if err := s.repository.AddWatchlistItem(ctx, item); err != nil {
		if errors.Is(err, storage.ErrConditionFailed) {
			return model.WatchlistItem{}, apperr.Conflict("movie %d is already on the watchlist", movieID)
		}
		return model.WatchlistItem{}, apperr.Internal("failed to store watchlist item", err)
	}
	return item, nil
}

func (s *Service) MarkWatched(ctx context.Context, groupID, memberID uuid.UUID, movieID model.MovieID) (model.WatchedMovie, error) {
	if _, err := s.membership.IsMember(ctx, groupID, memberID); err != nil {
		return model.WatchedMovie{}, err
	}
	if movieID <= 0 {
		return model.WatchedMovie{}, apperr.Validation("movie id must be positive")
	}

	w := model.WatchedMovie{
		GroupID:   groupID,
		MovieID:   movieID,
		Source:    model.WatchedDirect,
		WatchedAt: s.now().UTC(),
	}
	if err := s.repository.AddWatched(ctx, w); err != nil {
		return model.WatchedMovie{}, apperr.Internal("failed to store watched movie", err)
	}
	return w, nil
}
