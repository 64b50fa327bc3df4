package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	in := "\ufeffname, elo ,Stance\nJon Jones,1850.5,Orthodox\nShort Row,NaN\n"
	recs, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Jon Jones", recs[0].String("name", ""))
	assert.Equal(t, 1850.5, recs[0].Float("elo"))
	assert.Equal(t, "Orthodox", recs[0].String("Stance", "Unknown"))

	assert.Equal(t, 0.0, recs[1].Float("elo"), "NaN reads as zero")
	assert.Equal(t, "Unknown", recs[1].String("Stance", "Unknown"), "missing column falls back")
}

func TestRecord_Int(t *testing.T) {
	r := Record{"Round": "3.0", "Bad": "x"}
	assert.Equal(t, 3, r.Int("Round"))
	assert.Equal(t, 0, r.Int("Bad"))
	assert.Equal(t, 0, r.Int("Missing"))
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.Error(t, err)
}
