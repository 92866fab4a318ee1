package infra_postgres_rating

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/jmoiron/sqlx"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type ratingDTO struct {
	RoundID  uuid.UUID `db:"round_id"`
	MemberID uuid.UUID `db:"member_id"`
	Value    string    `db:"value"`
	RatedAt  time.Time `db:"rated_at"`
}

func (d *Driver) UpsertRating(ctx context.Context, r model.Rating) error {
	dto := ratingDTO{
		RoundID:  r.RoundID,
		MemberID: r.MemberID,
		Value:    string(r.Value),
		RatedAt:  r.RatedAt,
	}

	query := `
		INSERT INTO ratings (round_id, member_id, value, rated_at)
		VALUES (:round_id, :member_id, :value, :rated_at)
		ON CONFLICT (round_id, member_id)
		DO UPDATE SET value = EXCLUDED.value, rated_at = EXCLUDED.rated_at
	`

	if _, err := d.db.NamedExecContext(ctx, query, dto); err != nil {
		return fmt.Errorf("failed to upsert rating: %w", err)
	}
	return nil
}

func (d *Driver) RatingsByRound(ctx context.Context, roundID uuid.UUID) ([]model.Rating, error) {
	var dtos []ratingDTO

	query := `
		SELECT round_id, member_id, value, rated_at
		FROM ratings
		WHERE round_id = $1
		ORDER BY rated_at
	`

	if err := d.db.SelectContext(ctx, &dtos, query, roundID); err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}

	ratings := make([]model.Rating, 0, len(dtos))
	for _, dto := range dtos {
		ratings = append(ratings, model.Rating{
			RoundID:  dto.RoundID,
			MemberID: dto.MemberID,
			Value:    model.RatingValue(dto.Value),
			RatedAt:  dto.RatedAt,
		})
	}
	return ratings, nil
}
