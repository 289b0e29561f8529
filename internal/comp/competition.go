package comp

import (
	"time"

	"github.com/google/uuid"
)

type CompetitionStatus string

const (
	CompetitionActive    CompetitionStatus = "ACTIVE"
	CompetitionCompleted CompetitionStatus = "COMPLETED"
)

type Competition struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	CreatorID uuid.UUID         `db:"creator_id" json:"creatorId"`
	Name      string            `db:"name" json:"name"`
	Status    CompetitionStatus `db:"status" json:"status"`
	CreatedAt time.Time         `db:"created_at" json:"createdAt"`
}

func (c *Competition) IsCreator(userID uuid.UUID) bool {
	return c.CreatorID == userID
}

// CompetitionSummary is a Competition plus the counts shown on the listing page.
type CompetitionSummary struct {
	Competition
	PlayerCount int `db:"player_count" json:"playerCount"`
	RoundCount  int `db:"round_count" json:"roundCount"`
}
