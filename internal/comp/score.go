package comp

import (
	"time"

	"github.com/google/uuid"
)

// Score is one player's entry for one game of a round. InputTotalScore is the
// raw cumulative value the submitter typed in; CalculatedGameScore is the
// derived per-game delta, which may be negative when inputs are inconsistent.
// At most one row exists per (round, competition player, game index).
type Score struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	RoundID             uuid.UUID `db:"round_id" json:"roundId"`
	CompetitionPlayerID uuid.UUID `db:"competition_player_id" json:"competitionPlayerId"`
	GameIndex           int       `db:"game_index" json:"gameIndex"`
	InputTotalScore     int       `db:"input_total_score" json:"inputTotalScore"`
	CalculatedGameScore int       `db:"calculated_game_score" json:"calculatedGameScore"`
	IsRejoin            bool      `db:"is_rejoin" json:"isRejoin"`
	EntryTimestamp      time.Time `db:"entry_timestamp" json:"entryTimestamp"`
}
