package logic

import (
	"context"

	"github.com/ufcml/predict-api/internal/models"
)

// PredictionService is the request coordinator behind POST /api/predict.
type PredictionService interface {
	Request(ctx context.Context, fighter1, fighter2 string) (*PredictionOutcome, error)
}

// FightHistoryService serves the fight-history cards.
type FightHistoryService interface {
	Recent(name string, limit int) []models.FightHistoryEntry
}
