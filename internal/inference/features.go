package inference

import "fmt"

var (
	finishFields = []string{
		"finish_rate",
		"pct_finish_r1",
		"pct_finish_r2",
		"pct_finish_r3p",
		"avg_finish_round",
	}

	numericFields = []string{
		"Ht.", "Wt.", "Reach",
		"fight_count", "winrate",
		"avg_kd", "avg_str", "avg_td",
		"avg_sub", "avg_ctrl", "avg_sig",
		"last_winrate", "last_avg_str",
		"elo",
	}

	stances = []string{"Orthodox", "Southpaw", "Switch", "Sideways", "Unknown"}

	weightClasses = []string{
		"Catch Weight", "Featherweight", "Flyweight", "Heavyweight",
		"Light Heavyweight", "Lightweight", "Middleweight",
		"Welterweight", "Women's Strawweight",
	}

	styles = []string{"No Clear Style", "Striker", "Wrestler", "Unknown"}
)

// BuildVector lays out red (fighter 1) against blue (fighter 2). Features the
// model expects but this map lacks are read as 0 by the model.
func BuildVector(red, blue *Profile) map[string]float64 {
	row := make(map[string]float64, 3*(len(finishFields)+len(numericFields))+2*len(stances)+len(weightClasses)+2*len(styles))

	for _, group := range [][]string{finishFields, numericFields} {
		for _, field := range group {
			r := red.Float(field)
			b := blue.Float(field)
			row["R_"+field] = r
			row["B_"+field] = b
			row["DIFF_"+field] = r - b
		}
	}

	redStance := red.String("Stance", "Unknown")
	blueStance := blue.String("Stance", "Unknown")
	for _, s := range stances {
		row["R_Stance_"+s] = indicator(redStance == s)
		row["B_Stance_"+s] = indicator(blueStance == s)
	}

	// Weight class comes from the red corner only; both fighters share a bout.
	wc := red.String("Weight_Class", "")
	for _, w := range weightClasses {
		row["Weight_Class_"+w] = indicator(wc == w)
	}

	redStyle := red.String("Fighting Style", "Unknown")
	blueStyle := blue.String("Fighting Style", "Unknown")
	for _, st := range styles {
		row[fmt.Sprintf("R_Fighting Style_%s", st)] = indicator(redStyle == st)
		row[fmt.Sprintf("B_Fighting Style_%s", st)] = indicator(blueStyle == st)
	}

	return row
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
