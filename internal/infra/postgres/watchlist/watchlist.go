package infra_postgres_watchlist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/humanbelnik/movienight/internal/storage"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type itemDTO struct {
	GroupID     uuid.UUID      `db:"group_id"`
	MovieID     int            `db:"movie_id"`
	Title       string         `db:"title"`
	PosterPath  string         `db:"poster_path"`
	Genres      pq.StringArray `db:"genres"`
	ReleaseYear int            `db:"release_year"`
	Popularity  float64        `db:"popularity"`
	AddedBy     uuid.UUID      `db:"added_by"`
	AddedAt     time.Time      `db:"added_at"`
}

type watchedDTO struct {
	GroupID   uuid.UUID `db:"group_id"`
	MovieID   int       `db:"movie_id"`
	WatchedAt time.Time `db:"watched_at"`
}

func (d *Driver) WatchlistByGroup(ctx context.Context, groupID uuid.UUID) ([]model.WatchlistItem, error) {
	var dtos []itemDTO

	query := `
		SELECT group_id, movie_id, title, poster_path, genres, release_year, popularity, added_by, added_at
		FROM watchlist
		WHERE group_id = $1
		ORDER BY added_at, movie_id
	`

	if err := d.db.SelectContext(ctx, &dtos, query, groupID); err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}

	items := make([]model.WatchlistItem, 0, len(dtos))
	for _, dto := range dtos {
		items = append(items, model.WatchlistItem{
			GroupID:     dto.GroupID,
			MovieID:     dto.MovieID,
			Title:       dto.Title,
			PosterPath:  dto.PosterPath,
			Genres:      []string(dto.Genres),
			ReleaseYear: dto.ReleaseYear,
			Popularity:  dto.Popularity,
			AddedBy:     dto.AddedBy,
			AddedAt:     dto.AddedAt,
		})
	}
	return items, nil
}

func (d *Driver) AddWatchlistItem(ctx context.Context, item model.WatchlistItem) error {
	genres := item.Genres
	if genres == nil {
		genres = []string{}
	}
	dto := itemDTO{
		GroupID:     item.GroupID,
		MovieID:     item.MovieID,
		Title:       item.Title,
		PosterPath:  item.PosterPath,
		Genres:      pq.StringArray(genres),
		ReleaseYear: item.ReleaseYear,
		Popularity:  item.Popularity,
		AddedBy:     item.AddedBy,
		AddedAt:     item.AddedAt,
	}

	query := `
		INSERT INTO watchlist (group_id, movie_id, title, poster_path, genres, release_year, popularity, added_by, added_at)
		VALUES (:group_id, :movie_id, :title, :poster_path, :genres, :release_year, :popularity, :added_by, :added_at)
		ON CONFLICT (group_id, movie_id) DO NOTHING
	`

	result, err := d.db.NamedExecContext(ctx, query, dto)
	if err != nil {
		return fmt.Errorf("failed to insert watchlist item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return storage.ErrConditionFailed
	}
	return nil
}

func (d *Driver) AddWatched(ctx context.Context, w model.WatchedMovie) error {
	query := `
		INSERT INTO watched (group_id, movie_id, watched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (group_id, movie_id) DO UPDATE SET watched_at = EXCLUDED.watched_at
	`

	if _, err := d.db.ExecContext(ctx, query, w.GroupID, w.MovieID, w.WatchedAt); err != nil {
		return fmt.Errorf("failed to upsert watched movie: %w", err)
	}
	return nil
}

func (d *Driver) DirectWatched(ctx context.Context, groupID uuid.UUID) ([]model.WatchedMovie, error) {
	query := `
		SELECT group_id, movie_id, watched_at
		FROM watched
		WHERE group_id = $1
		ORDER BY watched_at
	`
	return d.selectWatched(ctx, query, model.WatchedDirect, groupID)
}

func (d *Driver) WatchedPicks(ctx context.Context, groupID uuid.UUID) ([]model.WatchedMovie, error) {
	query := `
		SELECT group_id, movie_id, COALESCE(watched_at, locked_at) AS watched_at
		FROM picks
		WHERE group_id = $1 AND watched
		ORDER BY watched_at
	`
	return d.selectWatched(ctx, query, model.WatchedPick, groupID)
}

func (d *Driver) selectWatched(ctx context.Context, query string, source model.WatchedSource, groupID uuid.UUID) ([]model.WatchedMovie, error) {
	var dtos []watchedDTO
	if err := d.db.SelectContext(ctx, &dtos, query, groupID); err != nil {
		return nil, fmt.Errorf("failed to query watched movies: %w", err)
	}

	out := make([]model.WatchedMovie, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, model.WatchedMovie{
			GroupID:   dto.GroupID,
			MovieID:   dto.MovieID,
			Source:    source,
			WatchedAt: dto.WatchedAt,
		})
	}
	return out, nil
}
