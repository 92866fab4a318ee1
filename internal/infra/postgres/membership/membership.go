package infra_postgres_membership

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

// Driver reads households and their members. Both are owned by an external
// onboarding flow; this driver only writes them for seeding.
type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type memberDTO struct {
	ID          uuid.UUID `db:"id"`
	GroupID     uuid.UUID `db:"group_id"`
	DisplayName string    `db:"display_name"`
	Role        string    `db:"role"`
}

func (m *memberDTO) ToDomain() model.Member {
	return model.Member{
		ID:          m.ID,
		GroupID:     m.GroupID,
		DisplayName: m.DisplayName,
		Role:        model.Role(m.Role),
	}
}

type groupDTO struct {
	ID                uuid.UUID      `db:"id"`
	Name              string         `db:"name"`
	StreamingServices pq.StringArray `db:"streaming_services"`
}

func (d *Driver) MemberByID(ctx context.Context, memberID uuid.UUID) (model.Member, error) {
	var dto memberDTO

	query := `SELECT id, group_id, display_name, role FROM members WHERE id = $1`

	err := d.db.GetContext(ctx, &dto, query, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Member{}, storage.ErrNotFound
		}
		return model.Member{}, err
	}
	return dto.ToDomain(), nil
}

func (d *Driver) MembersByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Member, error) {
	var dtos []memberDTO

	query := `
		SELECT id, group_id, display_name, role
		FROM members
		WHERE group_id = $1
		ORDER BY display_name, id
	`

	if err := d.db.SelectContext(ctx, &dtos, query, groupID); err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}

	members := make([]model.Member, 0, len(dtos))
	for _, dto := range dtos {
		members = append(members, dto.ToDomain())
	}
	return members, nil
}

func (d *Driver) GroupByID(ctx context.Context, groupID uuid.UUID) (model.Group, error) {
	var dto groupDTO

	query := `SELECT id, name, streaming_services FROM groups WHERE id = $1`

	err := d.db.GetContext(ctx, &dto, query, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Group{}, storage.ErrNotFound
		}
		return model.Group{}, err
	}
	return model.Group{
		ID:                dto.ID,
		Name:              dto.Name,
		StreamingServices: []string(dto.StreamingServices),
	}, nil
}

// PutGroup upserts a household with its members in one transaction.
func (d *Driver) PutGroup(ctx context.Context, g model.Group, members ...model.Member) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	services := g.StreamingServices
	if services == nil {
		services = []string{}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO groups (id, name, streaming_services)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, streaming_services = EXCLUDED.streaming_services
	`, g.ID, g.Name, pq.StringArray(services))
	if err != nil {
		return fmt.Errorf("failed to upsert group: %w", err)
	}

	for _, m := range members {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO members (id, group_id, display_name, role)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, role = EXCLUDED.role
		`, m.ID, g.ID, m.DisplayName, string(m.Role))
		if err != nil {
			return fmt.Errorf("failed to upsert member %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}
