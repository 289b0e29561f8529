package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tlin/geoscore/internal/comp"
	"github.com/tlin/geoscore/internal/middleware"
	"github.com/tlin/geoscore/internal/store"
	"github.com/tlin/geoscore/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrCompetitionNotActive = errors.New("competition is not active")

type RoundService struct {
	db    *sqlx.DB
	store *store.CompetitionStore
}

func NewRoundService(db *sqlx.DB, store *store.CompetitionStore) *RoundService {
	return &RoundService{db: db, store: store}
}

type RoundInput struct {
	RoundNumber int          `json:"roundNumber"`
	MapName     string       `json:"mapName"`
	MapType     comp.MapType `json:"mapType"`
	GameCount   int          `json:"gameCount"`
	JoinCode    string       `json:"joinCode"`
}

// CreateRound adds a numbered round to an active competition. Creator-only.
func (s *RoundService) CreateRound(ctx context.Context, competitionID uuid.UUID, input RoundInput) (*comp.Round, error) {
	competition, err := s.requireActiveAndCreator(ctx, competitionID.String())
	if err != nil {
		return nil, err
	}

	gameCount := input.GameCount
	if gameCount < 1 {
		gameCount = 1
	}

	round := &comp.Round{
		ID:            uuid.New(),
		CompetitionID: competition.ID,
		RoundNumber:   input.RoundNumber,
		MapName:       input.MapName,
		MapType:       input.MapType,
		GameCount:     gameCount,
		JoinCode:      utils.StringOrNil(input.JoinCode),
	}

	if err := s.store.CreateRound(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}
	return round, nil
}

// UpdateRound edits a round's map, game count, and join code. The round
// number is fixed once assigned. Creator-only, competition must be active.
func (s *RoundService) UpdateRound(ctx context.Context, roundID string, input RoundInput) (*comp.Round, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}

	if _, err := s.requireActiveAndCreator(ctx, round.CompetitionID.String()); err != nil {
		return nil, err
	}

	round.MapName = input.MapName
	round.MapType = input.MapType
	if input.GameCount >= 1 {
		round.GameCount = input.GameCount
	}
	round.JoinCode = utils.StringOrNil(input.JoinCode)

	if err := s.store.UpdateRound(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to update round: %w", err)
	}
	return round, nil
}

type RoundData struct {
	Round  *comp.Round  `json:"round"`
	Scores []comp.Score `json:"scores"`
}

func (s *RoundService) GetRoundData(ctx context.Context, roundID string) (*RoundData, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}

	scores, err := s.store.GetScoresForRound(ctx, roundID)
	if err != nil {
		return nil, err
	}

	return &RoundData{Round: round, Scores: scores}, nil
}

func (s *RoundService) requireActiveAndCreator(ctx context.Context, competitionID string) (*comp.Competition, error) {
	competition, err := s.store.GetCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok || !competition.IsCreator(userID) {
		return nil, ErrForbidden
	}
	if competition.Status != comp.CompetitionActive {
		return nil, ErrCompetitionNotActive
	}

	return competition, nil
}
