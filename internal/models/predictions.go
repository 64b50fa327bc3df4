package models

import "time"

// FighterCard is the short profile shown next to a prediction.
type FighterCard struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Record   string `json:"record"` // "W-L-D"
	Height   string `json:"height"`
	Reach    string `json:"reach"`
	Stance   string `json:"stance"`
	Weight   string `json:"weight"`
}

// PlaceholderCard is returned when the fighter has no card on file.
func PlaceholderCard(name string) FighterCard {
	return FighterCard{
		Name:     name,
		Nickname: "",
		Record:   "-",
		Height:   "-",
		Reach:    "-",
		Stance:   "-",
		Weight:   "-",
	}
}

// Probability holds the red (fighter 1) and blue (fighter 2) win chances.
type Probability struct {
	Red  float64 `json:"red"`
	Blue float64 `json:"blue"`
}

// FeatureContribution is one signed entry of the model explanation.
type FeatureContribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// PredictionResult is the cached payload for a matchup. Immutable once produced.
type PredictionResult struct {
	Fighter1    FighterCard           `json:"fighter_1"`
	Fighter2    FighterCard           `json:"fighter_2"`
	Winner      string                `json:"winner"`
	Probability Probability           `json:"probability"`
	Shap        []FeatureContribution `json:"shap"`
}

// HistoryRecord is the audit copy written after each completed prediction.
type HistoryRecord struct {
	ID           string                `json:"id"`
	FighterRed   string                `json:"fighter_red"`
	FighterBlue  string                `json:"fighter_blue"`
	Winner       string                `json:"winner"`
	Probability  Probability           `json:"probability"`
	ShapTop      []FeatureContribution `json:"shap_top"`
	ModelVersion string                `json:"model_version"`
	CreatedAt    time.Time             `json:"created_at"`
}
