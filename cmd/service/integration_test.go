//go:build integration

// cmd/service/integration_test.go
package main

import (
	"context"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github-digest-reporter/internal/model"
	"github-digest-reporter/internal/registry"
)

func setupTestDatabase(ctx context.Context, t *testing.T) (*pgxpool.Pool, func()) {
	// Start a postgres container
	pgContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)

	// Get the connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Run migrations
	m, err := migrate.New("file://../../migrations", connStr)
	require.NoError(t, err)
	err = m.Up()
	require.NoError(t, err)

	// Create a connection pool
	dbpool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	// Teardown function to be called by the test
	teardown := func() {
		dbpool.Close()
		err := pgContainer.Terminate(ctx)
		require.NoError(t, err)
	}

	return dbpool, teardown
}

func TestPostgresRegistry_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbpool, teardown := setupTestDatabase(ctx, t)
	defer teardown()

	source := registry.NewPostgresSource(dbpool)

	// --- ACT ---
	err := source.Upsert(ctx, model.Registration{
		ID:      "widgets",
		Repo:    "widgets",
		Team:    "team-widgets",
		Name:    "Widgets",
		Webhook: "https://hooks.example.com/widgets",
	})
	require.NoError(t, err)

	err = source.Upsert(ctx, model.Registration{
		ID:      "gadgets",
		Repo:    "gadgets",
		Team:    "team-gadgets",
		Name:    "Gadgets",
		Webhook: "https://hooks.example.com/gadgets",
	})
	require.NoError(t, err)

	refreshedAt := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)
	err = source.UpdateMembers(ctx, "widgets", []string{"alice", "bob"}, refreshedAt)
	require.NoError(t, err)

	// Re-register with a new webhook; membership must survive.
	err = source.Upsert(ctx, model.Registration{
		ID:      "widgets",
		Repo:    "widgets",
		Team:    "team-widgets",
		Name:    "Widgets",
		Webhook: "https://hooks.example.com/widgets-v2",
	})
	require.NoError(t, err)

	// --- ASSERT ---
	regs, err := source.List(ctx)
	require.NoError(t, err)
	require.Len(t, regs, 2)

	// Ordered by id
	assert.Equal(t, "gadgets", regs[0].ID)
	assert.Equal(t, "widgets", regs[1].ID)

	widgets := regs[1]
	assert.Equal(t, "https://hooks.example.com/widgets-v2", widgets.Webhook)
	assert.Equal(t, []string{"alice", "bob"}, widgets.Members)
	assert.True(t, widgets.MembersUpdatedAt.Equal(refreshedAt))

	assert.Empty(t, regs[0].Members)

	// Updating members of an unknown id fails loudly.
	err = source.UpdateMembers(ctx, "missing", []string{"carol"}, refreshedAt)
	assert.Error(t, err)
}
