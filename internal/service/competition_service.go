package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tlin/geoscore/internal/comp"
	"github.com/tlin/geoscore/internal/middleware"
	"github.com/tlin/geoscore/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrForbidden marks a creator-only mutation attempted by someone else.
var ErrForbidden = errors.New("only the creator may modify this competition")

type CompetitionService struct {
	db    *sqlx.DB
	store *store.CompetitionStore
}

func NewCompetitionService(db *sqlx.DB, store *store.CompetitionStore) *CompetitionService {
	return &CompetitionService{db: db, store: store}
}

type CompetitionData struct {
	Competition *comp.Competition             `json:"competition"`
	Players     []comp.CompetitionPlayerEntry `json:"players"`
	Rounds      []comp.Round                  `json:"rounds"`
	Scores      []comp.Score                  `json:"scores"`
}

// CreateCompetition creates the competition, upserts each named player and
// links them, all in one transaction.
func (s *CompetitionService) CreateCompetition(ctx context.Context, name string, playerNames []string) (*comp.Competition, error) {
	creatorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user ID not found in the context")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	competition := &comp.Competition{
		ID:        uuid.New(),
		CreatorID: creatorID,
		Name:      name,
		Status:    comp.CompetitionActive,
	}

	if err := s.store.CreateCompetition(ctx, tx, competition); err != nil {
		return nil, err
	}

	for _, playerName := range playerNames {
		player, err := s.store.UpsertPlayer(ctx, tx, playerName)
		if err != nil {
			return nil, err
		}

		link := &comp.CompetitionPlayer{
			ID:            uuid.New(),
			CompetitionID: competition.ID,
			PlayerID:      player.ID,
		}
		if err := s.store.LinkPlayer(ctx, tx, link); err != nil {
			return nil, err
		}
	}

	return competition, tx.Commit()
}

func (s *CompetitionService) ListCompetitions(ctx context.Context) ([]comp.CompetitionSummary, error) {
	return s.store.ListCompetitions(ctx)
}

// GetCompetitionData returns everything a viewer needs to render standings:
// the competition, its players, rounds, and the full score grid. Clients call
// this again whenever the realtime layer pokes them.
func (s *CompetitionService) GetCompetitionData(ctx context.Context, id string) (*CompetitionData, error) {
	competition, err := s.store.GetCompetition(ctx, id)
	if err != nil {
		return nil, err
	}

	players, err := s.store.GetCompetitionPlayers(ctx, id)
	if err != nil {
		return nil, err
	}

	rounds, err := s.store.GetRounds(ctx, id)
	if err != nil {
		return nil, err
	}

	scores, err := s.store.GetScoresForCompetition(ctx, id)
	if err != nil {
		return nil, err
	}

	return &CompetitionData{
		Competition: competition,
		Players:     players,
		Rounds:      rounds,
		Scores:      scores,
	}, nil
}

func (s *CompetitionService) UpdateStatus(ctx context.Context, id string, status comp.CompetitionStatus) (*comp.Competition, error) {
	competition, err := s.requireCreator(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateCompetitionStatus(ctx, id, status); err != nil {
		return nil, err
	}

	competition.Status = status
	return competition, nil
}

func (s *CompetitionService) DeleteCompetition(ctx context.Context, id string) error {
	if _, err := s.requireCreator(ctx, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.DeleteCompetitionTx(ctx, tx, id); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *CompetitionService) requireCreator(ctx context.Context, id string) (*comp.Competition, error) {
	competition, err := s.store.GetCompetition(ctx, id)
	if err != nil {
		return nil, err
	}

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok || !competition.IsCreator(userID) {
		return nil, ErrForbidden
	}

	return competition, nil
}
