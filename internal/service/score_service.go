package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tlin/geoscore/internal/comp"
	"github.com/tlin/geoscore/internal/scoring"
	"github.com/tlin/geoscore/internal/store"

	"github.com/google/uuid"
)

var ErrRoundNotFound = errors.New("round not found")

// Notifier receives a poke after a score batch has been written. The realtime
// hub satisfies this; tests substitute their own.
type Notifier interface {
	NotifyScoreUpdate(competitionID, roundID uuid.UUID)
}

// ScoreService holds no transaction handle: each row's find-then-upsert is
// deliberately independent, so it only needs the store.
type ScoreService struct {
	store    *store.CompetitionStore
	notifier Notifier
}

func NewScoreService(store *store.CompetitionStore, notifier Notifier) *ScoreService {
	return &ScoreService{store: store, notifier: notifier}
}

// ScoreInput is one player's cumulative total for one game of a round.
type ScoreInput struct {
	PlayerID        uuid.UUID `json:"playerId"`
	InputTotalScore int       `json:"inputTotalScore"`
	IsRejoin        bool      `json:"isRejoin"`
	GameIndex       int       `json:"gameIndex"`
}

// SubmitScores reconciles a batch of cumulative totals into per-game score
// rows. Rows are processed independently: one that fails to resolve its
// player linkage is dropped from the result, logged, and does not block the
// rest. Each row is a find-then-update-or-insert keyed on (competition
// player, round, game index), so resubmitting a batch overwrites in place
// rather than duplicating. One notification is emitted per call, after the
// whole batch, not per row.
func (s *ScoreService) SubmitScores(ctx context.Context, roundID uuid.UUID, inputs []ScoreInput) ([]comp.Score, error) {
	round, err := s.store.GetRound(ctx, roundID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	results := make([]comp.Score, 0, len(inputs))

	for _, input := range inputs {
		compPlayer, err := s.store.GetCompetitionPlayer(ctx, round.CompetitionID, input.PlayerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				slog.Warn("skipping score row: player not in competition",
					"playerID", input.PlayerID, "competitionID", round.CompetitionID)
				continue
			}
			return nil, fmt.Errorf("failed to resolve competition player: %w", err)
		}

		gameIndex := input.GameIndex
		if gameIndex == 0 {
			gameIndex = 1
		}

		// The anchor is the previous game's raw input total, when one was
		// recorded. Absence means first-game semantics, not zero.
		var previousTotal *int
		if gameIndex > 1 {
			previous, err := s.store.GetScore(ctx, compPlayer.ID, round.ID, gameIndex-1)
			if err == nil {
				previousTotal = &previous.InputTotalScore
			} else if !errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("failed to get previous score: %w", err)
			}
		}

		calculated := scoring.ComputeGameScore(input.InputTotalScore, previousTotal, input.IsRejoin)

		existing, err := s.store.GetScore(ctx, compPlayer.ID, round.ID, gameIndex)
		switch {
		case err == nil:
			existing.InputTotalScore = input.InputTotalScore
			existing.CalculatedGameScore = calculated
			existing.IsRejoin = input.IsRejoin
			existing.EntryTimestamp = time.Now().UTC()
			if err := s.store.UpdateScore(ctx, existing); err != nil {
				return nil, fmt.Errorf("failed to update score: %w", err)
			}
			results = append(results, *existing)
		case errors.Is(err, sql.ErrNoRows):
			score := &comp.Score{
				ID:                  uuid.New(),
				RoundID:             round.ID,
				CompetitionPlayerID: compPlayer.ID,
				GameIndex:           gameIndex,
				InputTotalScore:     input.InputTotalScore,
				CalculatedGameScore: calculated,
				IsRejoin:            input.IsRejoin,
				EntryTimestamp:      time.Now().UTC(),
			}
			if err := s.store.CreateScore(ctx, score); err != nil {
				return nil, fmt.Errorf("failed to create score: %w", err)
			}
			results = append(results, *score)
		default:
			return nil, fmt.Errorf("failed to look up existing score: %w", err)
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyScoreUpdate(round.CompetitionID, round.ID)
	}

	return results, nil
}
