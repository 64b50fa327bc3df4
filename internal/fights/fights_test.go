package fights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ufcml/predict-api/internal/models"
)

const fightsCSV = `Fighter_1,Fighter_2,KD_1,KD_2,STR_1,STR_2,TD_1,TD_2,SUB_1,SUB_2,Ctrl_1,Ctrl_2,Method,Round,Fight_Time
Jon Jones,Stipe Miocic,0,0,20,5,1,0,0,0,120,0,KO/TKO,3,4:29
Jon Jones,Ciryl Gane,0,0,5,2,1,0,1,0,60,0,Submission,1,2:04
Glover Teixeira,Jon Jones,0,0,40,0,0,0,0,0,0,0,U-DEC,5,5:00
Alex Pereira,Israel Adesanya,1,0,30,40,0,0,0,0,0:00,0:00,KO/TKO,2,4:21
Jon Jones,Dominick Reyes,0,0,10,10,0,0,0,0,0,0,S-DEC,5,5:00
Jon Jones,Thiago Santos,0,0,50,0,0,0,0,0,0,0,Overturned,5,5:00
Jon Jones,Anthony Smith,0,0,50,0,0,0,0,0,0,0,DQ,5,5:00
`

func testIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Load(strings.NewReader(fightsCSV))
	require.NoError(t, err)
	return idx
}

func TestRecent(t *testing.T) {
	got := testIndex(t).Recent("  JON jones ", DefaultLimit)

	want := []models.FightHistoryEntry{
		{Result: "WIN", Opponent: "Stipe Miocic", Method: "KO/TKO", Round: 3, Time: "4:29"},
		{Result: "WIN", Opponent: "Ciryl Gane", Method: "SUB", Round: 1, Time: "2:04"},
		{Result: "LOSS", Opponent: "Glover Teixeira", Method: "DEC", Round: 5, Time: "5:00"},
		{Result: "WIN", Opponent: "Dominick Reyes", Method: "DEC", Round: 5, Time: "5:00"},
		{Result: "WIN", Opponent: "Thiago Santos", Method: "OVERTURNED", Round: 5, Time: "5:00"},
	}
	assert.Equal(t, want, got)
}

func TestRecent_TieFavoursFirstListed(t *testing.T) {
	got := testIndex(t).Recent("Dominick Reyes", DefaultLimit)
	require.Len(t, got, 1)
	assert.Equal(t, "LOSS", got[0].Result)
	assert.Equal(t, "Jon Jones", got[0].Opponent)
}

func TestRecent_KnockdownWeight(t *testing.T) {
	// 1 KD (10) + 30 strikes = 40 vs 40 strikes: tie goes to Pereira, listed first.
	got := testIndex(t).Recent("Israel Adesanya", DefaultLimit)
	require.Len(t, got, 1)
	assert.Equal(t, "LOSS", got[0].Result)
	assert.Equal(t, "Alex Pereira", got[0].Opponent)
}

func TestRecent_Limit(t *testing.T) {
	idx := testIndex(t)
	assert.Len(t, idx.Recent("Jon Jones", 2), 2)
	assert.Len(t, idx.Recent("Jon Jones", 0), DefaultLimit)
}

func TestRecent_Unknown(t *testing.T) {
	got := testIndex(t).Recent("Nobody", DefaultLimit)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, testIndex(t).Recent("", DefaultLimit))
}

func TestRecent_ApostropheNames(t *testing.T) {
	const csv = `Fighter_1,Fighter_2,KD_1,KD_2,STR_1,STR_2,TD_1,TD_2,SUB_1,SUB_2,Ctrl_1,Ctrl_2,Method,Round,Fight_Time
Sean O'Malley,Marlon Vera,0,0,10,50,0,0,0,0,0,0,U-DEC,5,5:00
Sean O'Malley,Petr Yan,0,0,60,10,0,0,0,0,0,0,S-DEC,3,5:00
`
	idx, err := Load(strings.NewReader(csv))
	require.NoError(t, err)

	got := idx.Recent("Marlon Vera", DefaultLimit)
	require.Len(t, got, 1)
	assert.Equal(t, "WIN", got[0].Result)
	assert.Equal(t, "Sean O'Malley", got[0].Opponent)

	got = idx.Recent("petr yan", DefaultLimit)
	require.Len(t, got, 1)
	assert.Equal(t, "LOSS", got[0].Result)
	assert.Equal(t, "Sean O'Malley", got[0].Opponent)
}

func TestDisplayName(t *testing.T) {
	title := cases.Title(language.English)
	tests := map[string]string{
		"sean o'malley":         "Sean O'Malley",
		"d'arce":                "D'Arce",
		"jean-paul o\u2019neil": "Jean-Paul O\u2019Neil",
		"israel adesanya":       "Israel Adesanya",
		"doctor's":              "Doctor's",
	}
	for in, want := range tests {
		assert.Equal(t, want, displayName(title, in), in)
	}
}

func TestNormalizeMethod(t *testing.T) {
	tests := map[string]string{
		"KO/TKO":                  "KO/TKO",
		"TKO - Doctor's Stoppage": "KO/TKO",
		"Submission":              "SUB",
		"U-DEC":                   "DEC",
		"Decision - Split":        "DEC",
		"dq":                      "DQ",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeMethod(in), in)
	}
}

func TestControlSeconds(t *testing.T) {
	assert.Equal(t, 125.0, controlSeconds("2:05"))
	assert.Equal(t, 90.0, controlSeconds("90"))
	assert.Equal(t, 0.0, controlSeconds("--"))
	assert.Equal(t, 0.0, controlSeconds("a:b"))
}

func TestFight_Winner(t *testing.T) {
	f := Fight{
		First:  Corner{Name: "a", Control: 100},
		Second: Corner{Name: "b", Takedowns: 3},
	}
	// 10 vs 15
	w, l := f.Winner()
	assert.Equal(t, "b", w)
	assert.Equal(t, "a", l)
}
