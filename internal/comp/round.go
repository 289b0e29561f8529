package comp

import (
	"time"

	"github.com/google/uuid"
)

type MapType string

const (
	MapMoving MapType = "Moving"
	MapNoMove MapType = "NoMove"
	MapNMPZ   MapType = "NMPZ"
)

func ValidMapType(t MapType) bool {
	switch t {
	case MapMoving, MapNoMove, MapNMPZ:
		return true
	}
	return false
}

type Round struct {
	ID            uuid.UUID `db:"id" json:"id"`
	CompetitionID uuid.UUID `db:"competition_id" json:"competitionId"`

	// Caller-assigned ordinal, unique within the competition but not
	// required to be sequential.
	RoundNumber int `db:"round_number" json:"roundNumber"`

	MapName   string    `db:"map_name" json:"mapName"`
	MapType   MapType   `db:"map_type" json:"mapType"`
	GameCount int       `db:"game_count" json:"gameCount"`
	JoinCode  *string   `db:"join_code" json:"joinCode,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
