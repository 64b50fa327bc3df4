package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/ufcml/predict-api/internal/models"
)

const defaultTopFeatures = 10

// Engine is the inference collaborator used by the worker.
type Engine struct {
	profiles *ProfileIndex
	model    *Model
	cards    CardRepository
	topN     int
	logger   *zap.SugaredLogger
}

type EngineConfig struct {
	Profiles *ProfileIndex
	Model    *Model
	Cards    CardRepository // optional; cards degrade to placeholders without it
	TopN     int
	Logger   *zap.Logger
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.TopN <= 0 {
		cfg.TopN = defaultTopFeatures
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Engine{
		profiles: cfg.Profiles,
		model:    cfg.Model,
		cards:    cfg.Cards,
		topN:     cfg.TopN,
		logger:   cfg.Logger.Sugar(),
	}
}

// ModelVersion is the tag stored with every history record.
func (e *Engine) ModelVersion() string {
	return e.model.Version
}

// Predict scores fighter1 (red) against fighter2 (blue). It returns an error
// wrapping ErrFighterNotFound when either name does not resolve.
func (e *Engine) Predict(ctx context.Context, fighter1, fighter2 string) (*models.PredictionResult, error) {
	red, err := e.profiles.Find(fighter1)
	if err != nil {
		return nil, err
	}
	blue, err := e.profiles.Find(fighter2)
	if err != nil {
		return nil, err
	}

	pRed, contrib := e.model.Score(BuildVector(red, blue))

	probRed := round(pRed, 3)
	winner := fighter2
	if pRed >= 0.5 {
		winner = fighter1
	}

	return &models.PredictionResult{
		Fighter1: e.card(ctx, fighter1),
		Fighter2: e.card(ctx, fighter2),
		Winner:   winner,
		Probability: models.Probability{
			Red:  probRed,
			Blue: round(1-probRed, 3),
		},
		Shap: e.topContributions(contrib),
	}, nil
}

func (e *Engine) card(ctx context.Context, name string) models.FighterCard {
	if e.cards == nil {
		return models.PlaceholderCard(name)
	}
	card, err := e.cards.Card(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrCardNotFound) {
			e.logger.Warnw("Fighter card lookup failed", "fighter", name, "error", err)
		}
		return models.PlaceholderCard(name)
	}
	return card
}

// topContributions keeps the topN features by absolute attribution, largest first.
func (e *Engine) topContributions(contrib []float64) []models.FeatureContribution {
	order := make([]int, len(contrib))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(contrib[order[a]]) > math.Abs(contrib[order[b]])
	})

	n := min(e.topN, len(order))
	out := make([]models.FeatureContribution, 0, n)
	for _, i := range order[:n] {
		out = append(out, models.FeatureContribution{
			Feature: prettyFeature(e.model.Features[i].Name),
			Value:   round(contrib[i], 4),
		})
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func (e *Engine) String() string {
	return fmt.Sprintf("inference.Engine{model=%s profiles=%d}", e.model.Version, e.profiles.Len())
}
