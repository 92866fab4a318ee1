package infra_postgres_vote

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

type voteDTO struct {
	RoundID uuid.UUID `db:"round_id"`
	MovieID int       `db:"movie_id"`
	VoterID uuid.UUID `db:"voter_id"`
	Value   string    `db:"value"`
	VotedAt time.Time `db:"voted_at"`
}

// UpsertVote keeps one row per (round, movie, voter); the latest write wins.
func (d *Driver) UpsertVote(ctx context.Context, v model.Vote) error {
	dto := voteDTO{
		RoundID: v.RoundID,
		MovieID: v.MovieID,
		VoterID: v.VoterID,
		Value:   string(v.Value),
		VotedAt: v.VotedAt,
	}

	query := `
		INSERT INTO votes (round_id, movie_id, voter_id, value, voted_at)
		VALUES (:round_id, :movie_id, :voter_id, :value, :voted_at)
		ON CONFLICT (round_id, movie_id, voter_id)
		DO UPDATE SET value = EXCLUDED.value, voted_at = EXCLUDED.voted_at
	`

	if _, err := d.db.NamedExecContext(ctx, query, dto); err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

func (d *Driver) VotesByRound(ctx context.Context, roundID uuid.UUID) ([]model.Vote, error) {
	var dtos []voteDTO

	query := `
		SELECT round_id, movie_id, voter_id, value, voted_at
		FROM votes
		WHERE round_id = $1
		ORDER BY voted_at, voter_id
	`

	if err := d.db.SelectContext(ctx, &dtos, query, roundID); err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}

	votes := make([]model.Vote, 0, len(dtos))
	for _, dto := range dtos {
		votes = append(votes, model.Vote{
			RoundID: dto.RoundID,
			MovieID: dto.MovieID,
			VoterID: dto.VoterID,
			Value:   model.VoteValue(dto.Value),
			VotedAt: dto.VotedAt,
		})
	}
	return votes, nil
}
