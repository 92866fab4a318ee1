package infra_memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/humanbelnik/movienight/internal/storage"
)

// CreateRoundIfAbsent stores the round with its suggestions unless the ID is
// taken or the group already has a voting round.
func (s *Store) CreateRoundIfAbsent(ctx context.Context, round model.Round, suggestions []model.Suggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rounds[round.ID]; ok {
		return storage.ErrConditionFailed
	}
	if round.Status == model.StatusVoting {
		for _, r := range s.rounds {
			if r.GroupID == round.GroupID && r.Status == model.StatusVoting {
				return storage.ErrConditionFailed
			}
		}
	}

	s.rounds[round.ID] = cloneRound(round)
	s.suggestions[round.ID] = slices.Clone(suggestions)
	return nil
}

func (s *Store) RoundByID(ctx context.Context, roundID uuid.UUID) (model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rounds[roundID]
	if !ok {
		return model.Round{}, storage.ErrNotFound
	}
	return cloneRound(r), nil
}

// RoundsByGroup returns the group's rounds newest first.
func (s *Store) RoundsByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Round, error) {
	return s.roundsWhere(func(r model.Round) bool {
		return r.GroupID == groupID
	}), nil
}

func (s *Store) VotingRounds(ctx context.Context, groupID uuid.UUID) ([]model.Round, error) {
	return s.roundsWhere(func(r model.Round) bool {
		return r.GroupID == groupID && r.Status == model.StatusVoting
	}), nil
}

func (s *Store) roundsWhere(pred func(model.Round) bool) []model.Round {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Round
	for _, r := range s.rounds {
		if pred(r) {
			out = append(out, cloneRound(r))
		}
	}
	slices.SortFunc(out, func(a, b model.Round) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(b.ID[:], a.ID[:])
	})
	return out
}

func (s *Store) CompareAndSetStatus(ctx context.Context, change storage.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rounds[change.RoundID]
	if !ok {
		return storage.ErrNotFound
	}
	if !slices.Contains(change.From, r.Status) {
		return storage.ErrConditionFailed
	}

	s.applyStatus(r, change)
	return nil
}

// applyStatus writes the change; the caller holds the write lock.
func (s *Store) applyStatus(r model.Round, change storage.StatusChange) {
	at := change.At
	r.Status = change.To
	switch change.To {
	case model.StatusClosed:
		r.ClosedAt = &at
	case model.StatusWatched:
		r.WatchedAt = &at
		if p, ok := s.picks[r.ID]; ok {
			p.Watched = true
			p.WatchedAt = &at
			s.picks[r.ID] = p
		}
	case model.StatusRated:
		r.RatedAt = &at
	}
	if change.PickID != nil {
		id := *change.PickID
		r.PickID = &id
	}
	s.rounds[r.ID] = r
}

func (s *Store) SuggestionsByRound(ctx context.Context, roundID uuid.UUID) ([]model.Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.suggestions[roundID]), nil
}

// LockPick stores the pick and selects the round under one lock.
func (s *Store) LockPick(ctx context.Context, pick model.Pick, from []model.RoundStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rounds[pick.RoundID]
	if !ok {
		return storage.ErrNotFound
	}
	if _, ok := s.picks[pick.RoundID]; ok {
		return storage.ErrConditionFailed
	}
	if !slices.Contains(from, r.Status) {
		return storage.ErrConditionFailed
	}

	s.picks[pick.RoundID] = pick
	s.applyStatus(r, storage.StatusChange{
		RoundID: r.ID,
		From:    from,
		To:      model.StatusSelected,
		At:      pick.LockedAt,
		PickID:  &pick.ID,
	})
	return nil
}

func (s *Store) PickByRound(ctx context.Context, roundID uuid.UUID) (model.Pick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.picks[roundID]
	if !ok {
		return model.Pick{}, storage.ErrNotFound
	}
	return p, nil
}

func cloneRound(r model.Round) model.Round {
	r.Attendees = slices.Clone(r.Attendees)
	if r.PickID != nil {
		id := *r.PickID
		r.PickID = &id
	}
	return r
}
