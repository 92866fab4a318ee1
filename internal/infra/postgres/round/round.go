package infra_postgres_round

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/humanbelnik/movienight/internal/storage"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Old rows may still carry this status; it is matched wherever selected is.
const legacyPicked = "picked"

const roundColumns = `id, group_id, status, started_by, attendees, pick_id, created_at, closed_at, watched_at, rated_at`

const suggestionColumns = `round_id, movie_id, title, release_year, genres, popularity, vote_average,
	vote_count, poster_path, overview, streaming, score, reason, source, position`

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

// CreateRoundIfAbsent inserts the round and its suggestions in one transaction.
// The partial unique index on voting rounds makes the insert a no-op when the
// group already has one.
func (d *Driver) CreateRoundIfAbsent(ctx context.Context, round model.Round, suggestions []model.Suggestion) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO rounds (id, group_id, status, started_by, attendees, pick_id, created_at)
		VALUES (:id, :group_id, :status, :started_by, :attendees, :pick_id, :created_at)
		ON CONFLICT DO NOTHING
	`

	result, err := tx.NamedExecContext(ctx, query, roundFromDomain(round))
	if err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return storage.ErrConditionFailed
	}

	if err := d.insertSuggestions(ctx, tx, suggestions); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *Driver) insertSuggestions(ctx context.Context, tx *sqlx.Tx, suggestions []model.Suggestion) error {
	query := `
		INSERT INTO suggestions (` + suggestionColumns + `)
		VALUES (:round_id, :movie_id, :title, :release_year, :genres, :popularity, :vote_average,
			:vote_count, :poster_path, :overview, :streaming, :score, :reason, :source, :position)
	`

	for _, s := range suggestions {
		if _, err := tx.NamedExecContext(ctx, query, suggestionFromDomain(s)); err != nil {
			return fmt.Errorf("failed to insert suggestion %d: %w", s.Movie.ID, err)
		}
	}
	return nil
}

func (d *Driver) RoundByID(ctx context.Context, roundID uuid.UUID) (model.Round, error) {
	var dto roundDTO

	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`

	err := d.db.GetContext(ctx, &dto, query, roundID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Round{}, storage.ErrNotFound
		}
		return model.Round{}, err
	}

	return dto.ToDomain()
}

func (d *Driver) RoundsByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Round, error) {
	query := `
		SELECT ` + roundColumns + `
		FROM rounds
		WHERE group_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return d.selectRounds(ctx, query, groupID)
}

func (d *Driver) VotingRounds(ctx context.Context, groupID uuid.UUID) ([]model.Round, error) {
	query := `
		SELECT ` + roundColumns + `
		FROM rounds
		WHERE group_id = $1 AND status = 'voting'
		ORDER BY created_at, id
	`
	return d.selectRounds(ctx, query, groupID)
}

func (d *Driver) selectRounds(ctx context.Context, query string, args ...any) ([]model.Round, error) {
	var dtos []roundDTO
	if err := d.db.SelectContext(ctx, &dtos, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}

	rounds := make([]model.Round, 0, len(dtos))
	for _, dto := range dtos {
		r, err := dto.ToDomain()
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	return rounds, nil
}

var stampColumns = map[model.RoundStatus]string{
	model.StatusClosed:  "closed_at",
	model.StatusWatched: "watched_at",
	model.StatusRated:   "rated_at",
}

// CompareAndSetStatus updates the round only while its status is one of
// change.From. A missed guard is told apart from a missing round with a
// follow-up existence check. Moving to watched flags the pick in the same
// transaction.
func (d *Driver) CompareAndSetStatus(ctx context.Context, change storage.StatusChange) error {
	if change.To != model.StatusWatched {
		return setStatus(ctx, d.db, change)
	}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := setStatus(ctx, tx, change); err != nil {
		return err
	}

	query := `
		UPDATE picks
		SET watched = TRUE, watched_at = $2
		WHERE round_id = $1
	`
	if _, err := tx.ExecContext(ctx, query, change.RoundID, change.At); err != nil {
		return fmt.Errorf("failed to mark pick watched: %w", err)
	}

	return tx.Commit()
}

func setStatus(ctx context.Context, q sqlx.ExtContext, change storage.StatusChange) error {
	set := "status = $1, pick_id = COALESCE($2, pick_id)"
	args := []any{string(change.To), change.PickID, change.RoundID, pq.StringArray(statusValues(change.From))}
	if col, ok := stampColumns[change.To]; ok {
		set += ", " + col + " = $5"
		args = append(args, change.At)
	}

	query := `UPDATE rounds SET ` + set + ` WHERE id = $3 AND status = ANY($4)`

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update round status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM rounds WHERE id = $1)`, change.RoundID); err != nil {
		return fmt.Errorf("failed to check round: %w", err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return storage.ErrConditionFailed
}

func statusValues(statuses []model.RoundStatus) []string {
	out := make([]string, 0, len(statuses)+1)
	for _, s := range statuses {
		out = append(out, string(s))
		if s == model.StatusSelected {
			out = append(out, legacyPicked)
		}
	}
	return out
}

func (d *Driver) SuggestionsByRound(ctx context.Context, roundID uuid.UUID) ([]model.Suggestion, error) {
	var dtos []suggestionDTO

	query := `
		SELECT ` + suggestionColumns + `
		FROM suggestions
		WHERE round_id = $1
		ORDER BY position
	`

	if err := d.db.SelectContext(ctx, &dtos, query, roundID); err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}

	suggestions := make([]model.Suggestion, 0, len(dtos))
	for _, dto := range dtos {
		suggestions = append(suggestions, dto.ToDomain())
	}
	return suggestions, nil
}

// LockPick selects the round and inserts its pick in one transaction. The
// unique round_id column turns a second pick into an empty insert, which rolls
// the status change back.
func (d *Driver) LockPick(ctx context.Context, pick model.Pick, from []model.RoundStatus) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = setStatus(ctx, tx, storage.StatusChange{
		RoundID: pick.RoundID,
		From:    from,
		To:      model.StatusSelected,
		At:      pick.LockedAt,
		PickID:  &pick.ID,
	})
	if err != nil {
		return err
	}

	query := `
		INSERT INTO picks (id, round_id, group_id, movie_id, picked_by, locked_at, watched, watched_at)
		VALUES (:id, :round_id, :group_id, :movie_id, :picked_by, :locked_at, :watched, :watched_at)
		ON CONFLICT (round_id) DO NOTHING
	`

	result, err := tx.NamedExecContext(ctx, query, pickFromDomain(pick))
	if err != nil {
		return fmt.Errorf("failed to insert pick: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return storage.ErrConditionFailed
	}

	return tx.Commit()
}

func (d *Driver) PickByRound(ctx context.Context, roundID uuid.UUID) (model.Pick, error) {
	var dto pickDTO

	query := `
		SELECT id, round_id, group_id, movie_id, picked_by, locked_at, watched, watched_at
		FROM picks
		WHERE round_id = $1
	`

	err := d.db.GetContext(ctx, &dto, query, roundID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Pick{}, storage.ErrNotFound
		}
		return model.Pick{}, err
	}
	return dto.ToDomain(), nil
}
