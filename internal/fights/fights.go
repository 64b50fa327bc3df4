// Package fights builds the short fight-history cards from the static fights dataset.
//
// The dataset's own result columns are not trusted. The winner of each bout is
// estimated from weighted round statistics instead, so the cards are indicative only.
package fights

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ufcml/predict-api/internal/dataset"
	"github.com/ufcml/predict-api/internal/matchup"
	"github.com/ufcml/predict-api/internal/models"
)

const DefaultLimit = 5

// Scoring weights for the winner heuristic.
const (
	knockdownWeight  = 10.0
	strikeWeight     = 1.0
	takedownWeight   = 5.0
	submissionWeight = 5.0
	controlWeight    = 0.1
)

// Corner is one side's statistics in a bout.
type Corner struct {
	Name        string // normalized
	Knockdowns  float64
	Strikes     float64
	Takedowns   float64
	Submissions float64
	Control     float64
}

func (c Corner) score() float64 {
	return c.Knockdowns*knockdownWeight +
		c.Strikes*strikeWeight +
		c.Takedowns*takedownWeight +
		c.Submissions*submissionWeight +
		c.Control*controlWeight
}

// Fight is one row of the dataset.
type Fight struct {
	First  Corner
	Second Corner
	Method string
	Round  int
	Time   string
}

// Winner returns the winning and losing corner names. Ties go to the first-listed fighter.
func (f Fight) Winner() (winner, loser string) {
	if f.First.score() >= f.Second.score() {
		return f.First.Name, f.Second.Name
	}
	return f.Second.Name, f.First.Name
}

// Index is the in-memory fights dataset, kept in file order (newest first).
type Index struct {
	fights []Fight
}

func Load(r io.Reader) (*Index, error) {
	records, err := dataset.Read(r)
	if err != nil {
		return nil, fmt.Errorf("load fights: %w", err)
	}
	return newIndex(records), nil
}

func LoadFile(path string) (*Index, error) {
	records, err := dataset.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load fights %s: %w", path, err)
	}
	return newIndex(records), nil
}

func newIndex(records []dataset.Record) *Index {
	idx := &Index{fights: make([]Fight, 0, len(records))}
	for _, rec := range records {
		idx.fights = append(idx.fights, Fight{
			First:  corner(rec, "1"),
			Second: corner(rec, "2"),
			Method: rec.String("Method", ""),
			Round:  rec.Int("Round"),
			Time:   rec.String("Fight_Time", ""),
		})
	}
	return idx
}

func corner(rec dataset.Record, side string) Corner {
	return Corner{
		Name:        matchup.Normalize(rec["Fighter_"+side]),
		Knockdowns:  rec.Float("KD_" + side),
		Strikes:     rec.Float("STR_" + side),
		Takedowns:   rec.Float("TD_" + side),
		Submissions: rec.Float("SUB_" + side),
		Control:     controlSeconds(rec.String("Ctrl_"+side, "")),
	}
}

// controlSeconds accepts either a plain number of seconds or "M:SS".
func controlSeconds(v string) float64 {
	if v == "" {
		return 0
	}
	if m, s, ok := strings.Cut(v, ":"); ok {
		mins, err1 := strconv.Atoi(strings.TrimSpace(m))
		secs, err2 := strconv.Atoi(strings.TrimSpace(s))
		if err1 != nil || err2 != nil {
			return 0
		}
		return float64(mins*60 + secs)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// Recent returns up to limit history entries for name, in dataset order.
func (idx *Index) Recent(name string, limit int) []models.FightHistoryEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	key := matchup.Normalize(name)
	history := make([]models.FightHistoryEntry, 0, limit)
	if key == "" {
		return history
	}

	// A Caser keeps state, so each call gets its own.
	title := cases.Title(language.English)

	for _, f := range idx.fights {
		if len(history) == limit {
			break
		}
		if f.First.Name != key && f.Second.Name != key {
			continue
		}

		winner, loser := f.Winner()
		entry := models.FightHistoryEntry{
			Method: NormalizeMethod(f.Method),
			Round:  f.Round,
			Time:   f.Time,
		}
		if key == winner {
			entry.Result = "WIN"
			entry.Opponent = displayName(title, loser)
		} else {
			entry.Result = "LOSS"
			entry.Opponent = displayName(title, winner)
		}
		history = append(history, entry)
	}
	return history
}

// displayName title-cases a lowercased fighter name. A single-letter prefix
// before an apostrophe starts a new capitalised part: o'malley is O'Malley.
func displayName(title cases.Caser, name string) string {
	r := []rune(title.String(name))
	for i := 2; i < len(r); i++ {
		if r[i-1] != '\'' && r[i-1] != '\u2019' {
			continue
		}
		if i == 2 || !unicode.IsLetter(r[i-3]) {
			r[i] = unicode.ToUpper(r[i])
		}
	}
	return string(r)
}

// NormalizeMethod folds the free-text finish method into KO/TKO, SUB or DEC.
func NormalizeMethod(method string) string {
	m := strings.ToLower(method)
	switch {
	case strings.Contains(m, "ko"):
		return "KO/TKO"
	case strings.Contains(m, "sub"):
		return "SUB"
	case strings.Contains(m, "dec"):
		return "DEC"
	}
	return strings.ToUpper(method)
}

func (idx *Index) Len() int { return len(idx.fights) }
