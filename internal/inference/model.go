package inference

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// ModelFeature is one input of the logistic model. Mean is the training-set
// average, used as the baseline for attributions.
type ModelFeature struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Mean   float64 `json:"mean"`
}

// Model is a logistic regression over the engineered matchup vector. The
// output is the probability that the red corner wins.
type Model struct {
	Version   string         `json:"version"`
	Intercept float64        `json:"intercept"`
	Features  []ModelFeature `json:"features"`
}

func LoadModel(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func LoadModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model %s: %w", path, err)
	}
	defer f.Close()
	return LoadModel(f)
}

func (m *Model) validate() error {
	if m.Version == "" {
		return fmt.Errorf("%w: missing version", ErrInvalidModel)
	}
	if len(m.Features) == 0 {
		return fmt.Errorf("%w: no features", ErrInvalidModel)
	}
	seen := make(map[string]struct{}, len(m.Features))
	for _, f := range m.Features {
		if f.Name == "" {
			return fmt.Errorf("%w: unnamed feature", ErrInvalidModel)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate feature %q", ErrInvalidModel, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// Score returns P(red wins) and one attribution per model feature, in model
// order. For a linear model in log-odds space w*(x-mean) is the exact SHAP value.
func (m *Model) Score(vec map[string]float64) (float64, []float64) {
	z := m.Intercept
	contrib := make([]float64, len(m.Features))
	for i, f := range m.Features {
		x := vec[f.Name]
		z += f.Weight * x
		contrib[i] = f.Weight * (x - f.Mean)
	}
	return sigmoid(z), contrib
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
