package inference

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVCards(t *testing.T) {
	in := `full_name,nickname,wins,losses,draws,height,reach,stance,weight
jon jones,Bones,27,1,0,"6' 4""",84.5,Orthodox,248
Alex Pereira,,11.0,2.0,0.0,,79,Orthodox,
`
	cards, err := LoadCSVCards(strings.NewReader(in))
	require.NoError(t, err)

	c, err := cards.Card(context.Background(), "Jon Jones")
	require.NoError(t, err)
	assert.Equal(t, "Jon Jones", c.Name)
	assert.Equal(t, "Bones", c.Nickname)
	assert.Equal(t, "27-1-0", c.Record)
	assert.Equal(t, `6' 4"`, c.Height)

	c, err = cards.Card(context.Background(), "alex pereira")
	require.NoError(t, err)
	assert.Equal(t, "", c.Nickname)
	assert.Equal(t, "11-2-0", c.Record)
	assert.Equal(t, "-", c.Height)
	assert.Equal(t, "-", c.Weight)

	_, err = cards.Card(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error { return m.scanFunc(dest...) }

type mockQuerier struct {
	sql  string
	args []any
	row  *mockRow
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.sql = sql
	m.args = args
	return m.row
}

func TestPostgresCards(t *testing.T) {
	nick := "Poatan"
	reach := "79"
	wins, losses, draws := 11, 2, 0

	q := &mockQuerier{row: &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = "Alex Pereira"
		*(dest[1].(**string)) = &nick
		*(dest[4].(**string)) = &reach
		*(dest[6].(**int)) = &wins
		*(dest[7].(**int)) = &losses
		*(dest[8].(**int)) = &draws
		return nil
	}}}

	card, err := NewPostgresCards(q).Card(context.Background(), "Alex Pereira|Poatan")
	require.NoError(t, err)

	assert.Contains(t, q.sql, "LOWER(nickname) = LOWER($2)")
	assert.Equal(t, []any{"Alex Pereira", "Poatan"}, q.args)
	assert.Equal(t, "Poatan", card.Nickname)
	assert.Equal(t, "11-2-0", card.Record)
	assert.Equal(t, "79", card.Reach)
	assert.Equal(t, "-", card.Height)
}

func TestPostgresCards_NoNickname(t *testing.T) {
	q := &mockQuerier{row: &mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}}

	_, err := NewPostgresCards(q).Card(context.Background(), "Jon Jones")
	assert.ErrorIs(t, err, ErrCardNotFound)
	assert.NotContains(t, q.sql, "nickname) = LOWER")
	assert.Equal(t, []any{"Jon Jones"}, q.args)
}

func TestPostgresCards_QueryError(t *testing.T) {
	q := &mockQuerier{row: &mockRow{scanFunc: func(dest ...any) error { return errors.New("boom") }}}

	_, err := NewPostgresCards(q).Card(context.Background(), "Jon Jones")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCardNotFound)
}
