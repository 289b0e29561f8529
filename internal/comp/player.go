package comp

import "github.com/google/uuid"

// Player is a global identity reused across competitions, keyed by name.
type Player struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

// CompetitionPlayer links one Player into one Competition. All score rows
// reference this id rather than the raw player id.
type CompetitionPlayer struct {
	ID            uuid.UUID `db:"id" json:"id"`
	CompetitionID uuid.UUID `db:"competition_id" json:"competitionId"`
	PlayerID      uuid.UUID `db:"player_id" json:"playerId"`
}

// CompetitionPlayerEntry is a CompetitionPlayer joined with the player's name,
// as returned to viewers of a competition.
type CompetitionPlayerEntry struct {
	CompetitionPlayer
	PlayerName string `db:"player_name" json:"playerName"`
}
