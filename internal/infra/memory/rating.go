package infra_memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/model"
)

func (s *Store) UpsertRating(ctx context.Context, r model.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := ratingKey{r.RoundID, r.MemberID}
	if _, ok := s.ratings[k]; !ok {
		s.ratingOrder = append(s.ratingOrder, k)
	}
	s.ratings[k] = r
	return nil
}

func (s *Store) RatingsByRound(ctx context.Context, roundID uuid.UUID) ([]model.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Rating
	for _, k := range s.ratingOrder {
		if k.roundID == roundID {
			out = append(out, s.ratings[k])
		}
	}
	return out, nil
}
