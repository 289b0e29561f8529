package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tlin/geoscore/internal/comp"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CompetitionStore struct {
	db *sqlx.DB
}

func NewCompetitionStore(db *sqlx.DB) *CompetitionStore {
	return &CompetitionStore{db: db}
}

func (s *CompetitionStore) CreateCompetition(ctx context.Context, tx *sqlx.Tx, competition *comp.Competition) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO competitions (id, creator_id, name, status)
        VALUES (:id, :creator_id, :name, :status)`, competition)
	return err
}

// UpsertPlayer finds a player by display name, creating one if absent. Player
// identity is global, so the same name always resolves to the same row.
func (s *CompetitionStore) UpsertPlayer(ctx context.Context, tx *sqlx.Tx, name string) (*comp.Player, error) {
	var player comp.Player
	err := tx.GetContext(ctx, &player, "SELECT * FROM players WHERE name = ?", name)
	if err == nil {
		return &player, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	player = comp.Player{ID: uuid.New(), Name: name}
	_, err = tx.NamedExecContext(ctx, "INSERT INTO players (id, name) VALUES (:id, :name)", player)
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *CompetitionStore) LinkPlayer(ctx context.Context, tx *sqlx.Tx, link *comp.CompetitionPlayer) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO competition_players (id, competition_id, player_id)
        VALUES (:id, :competition_id, :player_id)`, link)
	return err
}

func (s *CompetitionStore) GetCompetition(ctx context.Context, id string) (*comp.Competition, error) {
	var competition comp.Competition
	err := s.db.GetContext(ctx, &competition, "SELECT * FROM competitions WHERE id = ?", id)
	return &competition, err
}

func (s *CompetitionStore) ListCompetitions(ctx context.Context) ([]comp.CompetitionSummary, error) {
	var competitions []comp.CompetitionSummary
	err := s.db.SelectContext(ctx, &competitions, `
        SELECT c.*,
            (SELECT COUNT(*) FROM competition_players cp WHERE cp.competition_id = c.id) AS player_count,
            (SELECT COUNT(*) FROM rounds r WHERE r.competition_id = c.id) AS round_count
        FROM competitions c
        ORDER BY c.created_at DESC`)
	return competitions, err
}

func (s *CompetitionStore) UpdateCompetitionStatus(ctx context.Context, id string, status comp.CompetitionStatus) error {
	_, err := s.db.ExecContext(ctx, "UPDATE competitions SET status = ? WHERE id = ?", status, id)
	return err
}

// DeleteCompetitionTx removes a competition and everything hanging off it, in
// dependency order so foreign keys stay satisfied mid-transaction.
func (s *CompetitionStore) DeleteCompetitionTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM scores WHERE round_id IN
        (SELECT id FROM rounds WHERE competition_id = ?)`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM rounds WHERE competition_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM competition_players WHERE competition_id = ?", id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM competitions WHERE id = ?", id)
	return err
}

func (s *CompetitionStore) GetCompetitionPlayers(ctx context.Context, competitionID string) ([]comp.CompetitionPlayerEntry, error) {
	var entries []comp.CompetitionPlayerEntry
	err := s.db.SelectContext(ctx, &entries, `
        SELECT cp.*, p.name AS player_name
        FROM competition_players cp
        JOIN players p ON p.id = cp.player_id
        WHERE cp.competition_id = ?
        ORDER BY p.name ASC`, competitionID)
	return entries, err
}

func (s *CompetitionStore) GetCompetitionPlayer(ctx context.Context, competitionID, playerID uuid.UUID) (*comp.CompetitionPlayer, error) {
	var link comp.CompetitionPlayer
	err := s.db.GetContext(ctx, &link, `SELECT * FROM competition_players
        WHERE competition_id = ? AND player_id = ?`, competitionID, playerID)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *CompetitionStore) CreateRound(ctx context.Context, round *comp.Round) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO rounds (id, competition_id, round_number, map_name, map_type, game_count, join_code)
        VALUES (:id, :competition_id, :round_number, :map_name, :map_type, :game_count, :join_code)`, round)
	return err
}

func (s *CompetitionStore) UpdateRound(ctx context.Context, round *comp.Round) error {
	_, err := s.db.NamedExecContext(ctx, `UPDATE rounds SET
        map_name = :map_name,
        map_type = :map_type,
        game_count = :game_count,
        join_code = :join_code
        WHERE id = :id`, round)
	return err
}

func (s *CompetitionStore) GetRound(ctx context.Context, id string) (*comp.Round, error) {
	var round comp.Round
	err := s.db.GetContext(ctx, &round, "SELECT * FROM rounds WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (s *CompetitionStore) GetRounds(ctx context.Context, competitionID string) ([]comp.Round, error) {
	var rounds []comp.Round
	err := s.db.SelectContext(ctx, &rounds, `SELECT * FROM rounds
        WHERE competition_id = ? ORDER BY round_number ASC`, competitionID)
	return rounds, err
}

func (s *CompetitionStore) GetScore(ctx context.Context, competitionPlayerID, roundID uuid.UUID, gameIndex int) (*comp.Score, error) {
	var score comp.Score
	err := s.db.GetContext(ctx, &score, `SELECT * FROM scores
        WHERE competition_player_id = ? AND round_id = ? AND game_index = ?`,
		competitionPlayerID, roundID, gameIndex)
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (s *CompetitionStore) CreateScore(ctx context.Context, score *comp.Score) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO scores (id, round_id, competition_player_id, game_index, input_total_score, calculated_game_score, is_rejoin, entry_timestamp)
        VALUES (:id, :round_id, :competition_player_id, :game_index, :input_total_score, :calculated_game_score, :is_rejoin, :entry_timestamp)`, score)
	return err
}

func (s *CompetitionStore) UpdateScore(ctx context.Context, score *comp.Score) error {
	_, err := s.db.NamedExecContext(ctx, `UPDATE scores SET
        input_total_score = :input_total_score,
        calculated_game_score = :calculated_game_score,
        is_rejoin = :is_rejoin,
        entry_timestamp = :entry_timestamp
        WHERE id = :id`, score)
	return err
}

func (s *CompetitionStore) GetScoresForRound(ctx context.Context, roundID string) ([]comp.Score, error) {
	var scores []comp.Score
	err := s.db.SelectContext(ctx, &scores, `SELECT * FROM scores
        WHERE round_id = ? ORDER BY game_index ASC`, roundID)
	return scores, err
}

func (s *CompetitionStore) GetScoresForCompetition(ctx context.Context, competitionID string) ([]comp.Score, error) {
	var scores []comp.Score
	err := s.db.SelectContext(ctx, &scores, `
        SELECT sc.* FROM scores sc
        JOIN rounds r ON r.id = sc.round_id
        WHERE r.competition_id = ?
        ORDER BY r.round_number ASC, sc.game_index ASC`, competitionID)
	return scores, err
}
