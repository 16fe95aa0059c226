// internal/registry/postgres.go
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github-digest-reporter/internal/model"
)

// PostgresSource is the production registry, backed by the registrations table.
type PostgresSource struct {
	dbpool *pgxpool.Pool
}

// NewPostgresSource creates a Source backed by the given connection pool.
func NewPostgresSource(dbpool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{dbpool: dbpool}
}

// List returns all registrations ordered by id.
func (s *PostgresSource) List(ctx context.Context) ([]model.Registration, error) {
	rows, err := s.dbpool.Query(ctx, `
		SELECT id, repo, team, name, webhook, members, updated_members_at
		FROM registrations
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		var updatedAt *time.Time
		if err := rows.Scan(&reg.ID, &reg.Repo, &reg.Team, &reg.Name, &reg.Webhook, &reg.Members, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning registration: %w", err)
		}
		if updatedAt != nil {
			reg.MembersUpdatedAt = *updatedAt
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading registrations: %w", err)
	}

	return regs, nil
}

// Upsert inserts a registration or updates its metadata, leaving the
// membership columns to the refresh job.
func (s *PostgresSource) Upsert(ctx context.Context, reg model.Registration) error {
	_, err := s.dbpool.Exec(ctx, `
		INSERT INTO registrations (id, repo, team, name, webhook)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET repo = EXCLUDED.repo,
		    team = EXCLUDED.team,
		    name = EXCLUDED.name,
		    webhook = EXCLUDED.webhook`,
		reg.ID, reg.Repo, reg.Team, reg.Name, reg.Webhook)
	if err != nil {
		return fmt.Errorf("upserting registration %q: %w", reg.ID, err)
	}
	return nil
}

// UpdateMembers replaces the member set and refresh timestamp for a
// registration.
func (s *PostgresSource) UpdateMembers(ctx context.Context, id string, members []string, updatedAt time.Time) error {
	tag, err := s.dbpool.Exec(ctx, `
		UPDATE registrations
		SET members = $2, updated_members_at = $3
		WHERE id = $1`,
		id, members, updatedAt)
	if err != nil {
		return fmt.Errorf("updating members for %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating members for %q: %w", id, pgx.ErrNoRows)
	}
	return nil
}
