package infra_memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/humanbelnik/movienight/internal/storage"
)

func (s *Store) WatchlistByGroup(ctx context.Context, groupID uuid.UUID) ([]model.WatchlistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.watchlist[groupID]), nil
}

func (s *Store) AddWatchlistItem(ctx context.Context, item model.WatchlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.watchlist[item.GroupID] {
		if existing.MovieID == item.MovieID {
			return storage.ErrConditionFailed
		}
	}
	item.Genres = slices.Clone(item.Genres)
	s.watchlist[item.GroupID] = append(s.watchlist[item.GroupID], item)
	return nil
}

func (s *Store) AddWatched(ctx context.Context, w model.WatchedMovie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.watched[w.GroupID]
	for i, existing := range list {
		if existing.MovieID == w.MovieID {
			list[i] = w
			return nil
		}
	}
	s.watched[w.GroupID] = append(list, w)
	return nil
}

func (s *Store) DirectWatched(ctx context.Context, groupID uuid.UUID) ([]model.WatchedMovie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.watched[groupID]), nil
}

// WatchedPicks derives watched records from picks whose round was watched.
func (s *Store) WatchedPicks(ctx context.Context, groupID uuid.UUID) ([]model.WatchedMovie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.WatchedMovie
	for _, p := range s.picks {
		if p.GroupID != groupID || !p.Watched {
			continue
		}
		w := model.WatchedMovie{
			GroupID: groupID,
			MovieID: p.MovieID,
			Source:  model.WatchedPick,
		}
		if p.WatchedAt != nil {
			w.WatchedAt = *p.WatchedAt
		}
		out = append(out, w)
	}
	slices.SortFunc(out, func(a, b model.WatchedMovie) int {
		return a.WatchedAt.Compare(b.WatchedAt)
	})
	return out, nil
}
