package inference

import "strings"

var baseLabels = map[string]string{
	"Ht.":              "height",
	"Wt.":              "weight",
	"Reach":            "reach",
	"fight_count":      "fight count",
	"winrate":          "win rate",
	"avg_kd":           "avg knockdowns",
	"avg_str":          "avg strikes",
	"avg_td":           "avg takedowns",
	"avg_sub":          "avg submission attempts",
	"avg_ctrl":         "avg control time",
	"avg_sig":          "avg significant strikes",
	"last_winrate":     "recent win rate",
	"last_avg_str":     "recent avg strikes",
	"elo":              "Elo rating",
	"finish_rate":      "finish rate",
	"pct_finish_r1":    "round 1 finishes",
	"pct_finish_r2":    "round 2 finishes",
	"pct_finish_r3p":   "round 3+ finishes",
	"avg_finish_round": "avg finish round",
}

// prettyFeature maps a model column name to the label shown to users.
// Unknown names are returned unchanged.
func prettyFeature(name string) string {
	switch {
	case strings.HasPrefix(name, "DIFF_"):
		if l, ok := baseLabels[strings.TrimPrefix(name, "DIFF_")]; ok {
			return capitalize(l) + " difference"
		}
	case strings.HasPrefix(name, "R_Stance_"):
		return "Red stance: " + strings.TrimPrefix(name, "R_Stance_")
	case strings.HasPrefix(name, "B_Stance_"):
		return "Blue stance: " + strings.TrimPrefix(name, "B_Stance_")
	case strings.HasPrefix(name, "R_Fighting Style_"):
		return "Red style: " + strings.TrimPrefix(name, "R_Fighting Style_")
	case strings.HasPrefix(name, "B_Fighting Style_"):
		return "Blue style: " + strings.TrimPrefix(name, "B_Fighting Style_")
	case strings.HasPrefix(name, "Weight_Class_"):
		return "Weight class: " + strings.TrimPrefix(name, "Weight_Class_")
	case strings.HasPrefix(name, "R_"):
		if l, ok := baseLabels[strings.TrimPrefix(name, "R_")]; ok {
			return "Red " + l
		}
	case strings.HasPrefix(name, "B_"):
		if l, ok := baseLabels[strings.TrimPrefix(name, "B_")]; ok {
			return "Blue " + l
		}
	}
	return name
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
