// Package history appends every completed prediction to an audit store.
// Records are never updated or deleted here.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"github.com/ufcml/predict-api/internal/models"
)

const maxShapTop = 10

// Store is the append-only sink for history records.
type Store interface {
	Append(ctx context.Context, rec *models.HistoryRecord) error
}

// NewRecord wraps a result for the audit log.
func NewRecord(res *models.PredictionResult, modelVersion string, now time.Time) *models.HistoryRecord {
	top := res.Shap
	if len(top) > maxShapTop {
		top = top[:maxShapTop]
	}
	return &models.HistoryRecord{
		ID:           uuid.NewString(),
		FighterRed:   res.Fighter1.Name,
		FighterBlue:  res.Fighter2.Name,
		Winner:       res.Winner,
		Probability:  res.Probability,
		ShapTop:      append([]models.FeatureContribution(nil), top...),
		ModelVersion: modelVersion,
		CreatedAt:    now.UTC(),
	}
}

// ClickHouseStore writes records into ufc_ml.predictions.
type ClickHouseStore struct {
	conn driver.Conn
}

func NewClickHouseStore(conn driver.Conn) *ClickHouseStore {
	return &ClickHouseStore{conn: conn}
}

const insertPrediction = `
	INSERT INTO ufc_ml.predictions (
		id, fighter_red, fighter_blue, winner, prob_red, prob_blue,
		shap_features, shap_values, model_version, created_at
	)`

func (s *ClickHouseStore) Append(ctx context.Context, rec *models.HistoryRecord) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return fmt.Errorf("history record id: %w", err)
	}

	features := make([]string, len(rec.ShapTop))
	values := make([]float64, len(rec.ShapTop))
	for i, c := range rec.ShapTop {
		features[i] = c.Feature
		values[i] = c.Value
	}

	batch, err := s.conn.PrepareBatch(ctx, insertPrediction)
	if err != nil {
		return fmt.Errorf("prepare history insert: %w", err)
	}
	if err := batch.Append(
		id,
		rec.FighterRed,
		rec.FighterBlue,
		rec.Winner,
		rec.Probability.Red,
		rec.Probability.Blue,
		features,
		values,
		rec.ModelVersion,
		rec.CreatedAt,
	); err != nil {
		_ = batch.Abort()
		return fmt.Errorf("append history record: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send history record: %w", err)
	}
	return nil
}

func (s *ClickHouseStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}
