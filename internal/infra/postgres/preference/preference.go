package infra_postgres_preference

import (
	"context"
	"database/sql"
	"errors"
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

type preferenceDTO struct {
	GroupID          uuid.UUID      `db:"group_id"`
	MemberID         uuid.UUID      `db:"member_id"`
	LikedGenres      pq.StringArray `db:"liked_genres"`
	DislikedGenres   pq.StringArray `db:"disliked_genres"`
	MaxContentRating string         `db:"max_content_rating"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (p *preferenceDTO) ToDomain() model.Preference {
	return model.Preference{
		GroupID:          p.GroupID,
		MemberID:         p.MemberID,
		LikedGenres:      []string(p.LikedGenres),
		DislikedGenres:   []string(p.DislikedGenres),
		MaxContentRating: model.ContentRating(p.MaxContentRating),
		UpdatedAt:        p.UpdatedAt,
	}
}

func FromDomain(p model.Preference) preferenceDTO {
	liked, disliked := p.LikedGenres, p.DislikedGenres
	if liked == nil {
		liked = []string{}
	}
	if disliked == nil {
		disliked = []string{}
	}
	return preferenceDTO{
		GroupID:          p.GroupID,
		MemberID:         p.MemberID,
		LikedGenres:      pq.StringArray(liked),
		DislikedGenres:   pq.StringArray(disliked),
		MaxContentRating: string(p.MaxContentRating),
		UpdatedAt:        p.UpdatedAt,
	}
}

func (d *Driver) UpsertPreference(ctx context.Context, p model.Preference) error {
	query := `
		INSERT INTO preferences (group_id, member_id, liked_genres, disliked_genres, max_content_rating, updated_at)
		VALUES (:group_id, :member_id, :liked_genres, :disliked_genres, :max_content_rating, :updated_at)
		ON CONFLICT (group_id, member_id)
		DO UPDATE SET
			liked_genres = EXCLUDED.liked_genres,
			disliked_genres = EXCLUDED.disliked_genres,
			max_content_rating = EXCLUDED.max_content_rating,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := d.db.NamedExecContext(ctx, query, FromDomain(p)); err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}
	return nil
}

func (d *Driver) PreferenceByMember(ctx context.Context, groupID, memberID uuid.UUID) (model.Preference, error) {
	var dto preferenceDTO

	query := `
		SELECT group_id, member_id, liked_genres, disliked_genres, max_content_rating, updated_at
		FROM preferences
		WHERE group_id = $1 AND member_id = $2
	`

	err := d.db.GetContext(ctx, &dto, query, groupID, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Preference{}, storage.ErrNotFound
		}
		return model.Preference{}, err
	}
	return dto.ToDomain(), nil
}

func (d *Driver) PreferencesByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Preference, error) {
	var dtos []preferenceDTO

	query := `
		SELECT group_id, member_id, liked_genres, disliked_genres, max_content_rating, updated_at
		FROM preferences
		WHERE group_id = $1
		ORDER BY member_id
	`

	if err := d.db.SelectContext(ctx, &dtos, query, groupID); err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}

	prefs := make([]model.Preference, 0, len(dtos))
	for _, dto := range dtos {
		prefs = append(prefs, dto.ToDomain())
	}
	return prefs, nil
}
