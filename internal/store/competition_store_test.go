package store

import (
	"context"
	"testing"
	"time"

	"github.com/tlin/geoscore/internal/comp"
	users "github.com/tlin/geoscore/internal/user"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
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

func createTestUser(t *testing.T, db *sqlx.DB) uuid.UUID {
	t.Helper()

	userStore := NewUserStore(db)
	user := &users.User{
		ID:       uuid.New(),
		Username: "organizer-" + uuid.NewString()[:8],
	}
	require.NoError(t, userStore.CreateUser(context.Background(), user))
	return user.ID
}

func createTestCompetition(t *testing.T, db *sqlx.DB, creatorID uuid.UUID) *comp.Competition {
	t.Helper()

	s := NewCompetitionStore(db)
	competition := &comp.Competition{
		ID:        uuid.New(),
		CreatorID: creatorID,
		Name:      "Test Competition",
		Status:    comp.CompetitionActive,
	}

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, s.CreateCompetition(context.Background(), tx, competition))
	require.NoError(t, tx.Commit())

	return competition
}

func TestCreateCompetition(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewCompetitionStore(db)
	creatorID := createTestUser(t, db)
	competition := createTestCompetition(t, db, creatorID)

	fetched, err := s.GetCompetition(context.Background(), competition.ID.String())
	require.NoError(t, err)

	assert.Equal(t, competition.ID, fetched.ID)
	assert.Equal(t, creatorID, fetched.CreatorID)
	assert.Equal(t, competition.Name, fetched.Name)
	assert.Equal(t, comp.CompetitionActive, fetched.Status)
}

func TestUpsertPlayerReusesName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewCompetitionStore(db)
	ctx := context.Background()

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)

	first, err := s.UpsertPlayer(ctx, tx, "alice")
	require.NoError(t, err)
	second, err := s.UpsertPlayer(ctx, tx, "alice")
	require.NoError(t, err)
	other, err := s.UpsertPlayer(ctx, tx, "bob")
	require.NoError(t, err)

	require.NoError(t, tx.Commit())

	assert.Equal(t, first.ID, second.ID, "same name must resolve to the same player")
	assert.NotEqual(t, first.ID, other.ID)
}

func TestGetCompetitionPlayer(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewCompetitionStore(db)
	ctx := context.Background()

	creatorID := createTestUser(t, db)
	competition := createTestCompetition(t, db, creatorID)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	player, err := s.UpsertPlayer(ctx, tx, "alice")
	require.NoError(t, err)
	link := &comp.CompetitionPlayer{ID: uuid.New(), CompetitionID: competition.ID, PlayerID: player.ID}
	require.NoError(t, s.LinkPlayer(ctx, tx, link))
	require.NoError(t, tx.Commit())

	fetched, err := s.GetCompetitionPlayer(ctx, competition.ID, player.ID)
	require.NoError(t, err)
	assert.Equal(t, link.ID, fetched.ID)

	_, err = s.GetCompetitionPlayer(ctx, competition.ID, uuid.New())
	assert.Error(t, err)
}

func TestScoreRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewCompetitionStore(db)
	ctx := context.Background()

	creatorID := createTestUser(t, db)
	competition := createTestCompetition(t, db, creatorID)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	player, err := s.UpsertPlayer(ctx, tx, "alice")
	require.NoError(t, err)
	link := &comp.CompetitionPlayer{ID: uuid.New(), CompetitionID: competition.ID, PlayerID: player.ID}
	require.NoError(t, s.LinkPlayer(ctx, tx, link))
	require.NoError(t, tx.Commit())

	round := &comp.Round{
		ID:            uuid.New(),
		CompetitionID: competition.ID,
		RoundNumber:   1,
		MapName:       "A Community World",
		MapType:       comp.MapMoving,
		GameCount:     3,
	}
	require.NoError(t, s.CreateRound(ctx, round))

	score := &comp.Score{
		ID:                  uuid.New(),
		RoundID:             round.ID,
		CompetitionPlayerID: link.ID,
		GameIndex:           1,
		InputTotalScore:     1000,
		CalculatedGameScore: 1000,
		EntryTimestamp:      time.Now().UTC(),
	}
	require.NoError(t, s.CreateScore(ctx, score))

	fetched, err := s.GetScore(ctx, link.ID, round.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, score.ID, fetched.ID)
	assert.Equal(t, 1000, fetched.InputTotalScore)

	fetched.InputTotalScore = 1200
	fetched.CalculatedGameScore = 1200
	fetched.EntryTimestamp = time.Now().UTC()
	require.NoError(t, s.UpdateScore(ctx, fetched))

	updated, err := s.GetScore(ctx, link.ID, round.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1200, updated.InputTotalScore)

	scores, err := s.GetScoresForRound(ctx, round.ID.String())
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestDeleteCompetitionCascades(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewCompetitionStore(db)
	ctx := context.Background()

	creatorID := createTestUser(t, db)
	competition := createTestCompetition(t, db, creatorID)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	player, err := s.UpsertPlayer(ctx, tx, "alice")
	require.NoError(t, err)
	link := &comp.CompetitionPlayer{ID: uuid.New(), CompetitionID: competition.ID, PlayerID: player.ID}
	require.NoError(t, s.LinkPlayer(ctx, tx, link))
	require.NoError(t, tx.Commit())

	round := &comp.Round{
		ID:            uuid.New(),
		CompetitionID: competition.ID,
		RoundNumber:   1,
		MapName:       "World",
		MapType:       comp.MapNMPZ,
		GameCount:     1,
	}
	require.NoError(t, s.CreateRound(ctx, round))

	score := &comp.Score{
		ID:                  uuid.New(),
		RoundID:             round.ID,
		CompetitionPlayerID: link.ID,
		GameIndex:           1,
		InputTotalScore:     500,
		CalculatedGameScore: 500,
		EntryTimestamp:      time.Now().UTC(),
	}
	require.NoError(t, s.CreateScore(ctx, score))

	tx, err = db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.DeleteCompetitionTx(ctx, tx, competition.ID.String()))
	require.NoError(t, tx.Commit())

	_, err = s.GetCompetition(ctx, competition.ID.String())
	assert.Error(t, err)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM scores"))
	assert.Zero(t, count)
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM rounds"))
	assert.Zero(t, count)
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM competition_players"))
	assert.Zero(t, count)

	// Global player identity survives competition deletion.
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM players"))
	assert.Equal(t, 1, count)
}

func TestListCompetitionsCounts(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewCompetitionStore(db)
	ctx := context.Background()

	creatorID := createTestUser(t, db)
	competition := createTestCompetition(t, db, creatorID)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	for _, name := range []string{"alice", "bob"} {
		player, err := s.UpsertPlayer(ctx, tx, name)
		require.NoError(t, err)
		link := &comp.CompetitionPlayer{ID: uuid.New(), CompetitionID: competition.ID, PlayerID: player.ID}
		require.NoError(t, s.LinkPlayer(ctx, tx, link))
	}
	require.NoError(t, tx.Commit())

	round := &comp.Round{
		ID:            uuid.New(),
		CompetitionID: competition.ID,
		RoundNumber:   1,
		MapName:       "World",
		MapType:       comp.MapNoMove,
		GameCount:     5,
	}
	require.NoError(t, s.CreateRound(ctx, round))

	summaries, err := s.ListCompetitions(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].PlayerCount)
	assert.Equal(t, 1, summaries[0].RoundCount)
}
