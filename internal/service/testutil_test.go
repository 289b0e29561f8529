package service

import (
	"context"
	"testing"

	"github.com/tlin/geoscore/internal/middleware"
	"github.com/tlin/geoscore/internal/store"
	users "github.com/tlin/geoscore/internal/user"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

// organizerContext registers a user and returns a context carrying their id,
// the way RequireAuth would populate it.
func organizerContext(t *testing.T, db *sqlx.DB) context.Context {
	t.Helper()

	userStore := store.NewUserStore(db)
	user := &users.User{
		ID:       uuid.New(),
		Username: "organizer-" + uuid.NewString()[:8],
	}
	require.NoError(t, userStore.CreateUser(context.Background(), user))

	return context.WithValue(context.Background(), middleware.UserIDKey, user.ID)
}

// fakeNotifier records score-update pokes for assertions.
type fakeNotifier struct {
	calls []notifyCall
}

type notifyCall struct {
	competitionID uuid.UUID
	roundID       uuid.UUID
}

func (f *fakeNotifier) NotifyScoreUpdate(competitionID, roundID uuid.UUID) {
	f.calls = append(f.calls, notifyCall{competitionID: competitionID, roundID: roundID})
}
