// Package infra_memory is a process-local store implementing every repository
// with the same conditional-write semantics as the postgres drivers. It backs
// STORE_DRIVER=memory and the concurrency tests.
package infra_memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/humanbelnik/movienight/internal/storage"
)

type preferenceKey struct {
	groupID  uuid.UUID
	memberID uuid.UUID
}

type voteKey struct {
	roundID uuid.UUID
	movieID model.MovieID
	voterID uuid.UUID
}

type ratingKey struct {
	roundID  uuid.UUID
	memberID uuid.UUID
}

type Store struct {
	mu sync.RWMutex

	groups  map[uuid.UUID]model.Group
	members map[uuid.UUID]model.Member

	preferences map[preferenceKey]model.Preference

	rounds      map[uuid.UUID]model.Round
	suggestions map[uuid.UUID][]model.Suggestion
	picks       map[uuid.UUID]model.Pick // by round

	votes     map[voteKey]model.Vote
	voteOrder []voteKey

	ratings     map[ratingKey]model.Rating
	ratingOrder []ratingKey

	watchlist map[uuid.UUID][]model.WatchlistItem
	watched   map[uuid.UUID][]model.WatchedMovie
}

func New() *Store {
	return &Store{
		groups:      make(map[uuid.UUID]model.Group),
		members:     make(map[uuid.UUID]model.Member),
		preferences: make(map[preferenceKey]model.Preference),
		rounds:      make(map[uuid.UUID]model.Round),
		suggestions: make(map[uuid.UUID][]model.Suggestion),
		picks:       make(map[uuid.UUID]model.Pick),
		votes:       make(map[voteKey]model.Vote),
		ratings:     make(map[ratingKey]model.Rating),
		watchlist:   make(map[uuid.UUID][]model.WatchlistItem),
		watched:     make(map[uuid.UUID][]model.WatchedMovie),
	}
}

// PutGroup seeds a household. Membership management lives outside this service.
func (s *Store) PutGroup(g model.Group, members ...model.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.StreamingServices = slices.Clone(g.StreamingServices)
	s.groups[g.ID] = g
	for _, m := range members {
		m.GroupID = g.ID
		s.members[m.ID] = m
	}
}

func (s *Store) MemberByID(ctx context.Context, memberID uuid.UUID) (model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[memberID]
	if !ok {
		return model.Member{}, storage.ErrNotFound
	}
	return m, nil
}

// MembersByGroup returns members ordered by display name then ID.
func (s *Store) MembersByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Member
	for _, m := range s.members {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b model.Member) int {
		if a.DisplayName != b.DisplayName {
			if a.DisplayName < b.DisplayName {
				return -1
			}
			return 1
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}

func (s *Store) GroupByID(ctx context.Context, groupID uuid.UUID) (model.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[groupID]
	if !ok {
		return model.Group{}, storage.ErrNotFound
	}
	g.StreamingServices = slices.Clone(g.StreamingServices)
	return g, nil
}

func (s *Store) UpsertPreference(ctx context.Context, p model.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.LikedGenres = slices.Clone(p.LikedGenres)
	p.DislikedGenres = slices.Clone(p.DislikedGenres)
	s.preferences[preferenceKey{p.GroupID, p.MemberID}] = p
	return nil
}

func (s *Store) PreferenceByMember(ctx context.Context, groupID, memberID uuid.UUID) (model.Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.preferences[preferenceKey{groupID, memberID}]
	if !ok {
		return model.Preference{}, storage.ErrNotFound
	}
	return clonePreference(p), nil
}

func (s *Store) PreferencesByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Preference
	for k, p := range s.preferences {
		if k.groupID == groupID {
			out = append(out, clonePreference(p))
		}
	}
	slices.SortFunc(out, func(a, b model.Preference) int {
		return slices.Compare(a.MemberID[:], b.MemberID[:])
	})
	return out, nil
}

func clonePreference(p model.Preference) model.Preference {
	p.LikedGenres = slices.Clone(p.LikedGenres)
	p.DislikedGenres = slices.Clone(p.DislikedGenres)
	return p
}
