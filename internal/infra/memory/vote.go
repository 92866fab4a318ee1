package infra_memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/model"
)

func (s *Store) UpsertVote(ctx context.Context, v model.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := voteKey{v.RoundID, v.MovieID, v.VoterID}
	if _, ok := s.votes[k]; !ok {
		s.voteOrder = append(s.voteOrder, k)
	}
	s.votes[k] = v
	return nil
}

func (s *Store) VotesByRound(ctx context.Context, roundID uuid.UUID) ([]model.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Vote
	for _, k := range s.voteOrder {
		if k.roundID == roundID {
			out = append(out, s.votes[k])
		}
	}
	return out, nil
}
