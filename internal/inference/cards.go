package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ufcml/predict-api/internal/dataset"
	"github.com/ufcml/predict-api/internal/matchup"
	"github.com/ufcml/predict-api/internal/models"
)

// ErrCardNotFound is returned by a CardRepository with no card for the name.
var ErrCardNotFound = errors.New("fighter card not found")

// CardRepository looks up the display card of a fighter.
type CardRepository interface {
	Card(ctx context.Context, name string) (models.FighterCard, error)
}

// CSVCards serves cards from the Fighters.csv export.
type CSVCards struct {
	byName map[string]dataset.Record
}

func LoadCSVCards(r io.Reader) (*CSVCards, error) {
	records, err := dataset.Read(r)
	if err != nil {
		return nil, fmt.Errorf("load fighter cards: %w", err)
	}
	return newCSVCards(records), nil
}

func LoadCSVCardsFile(path string) (*CSVCards, error) {
	records, err := dataset.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load fighter cards %s: %w", path, err)
	}
	return newCSVCards(records), nil
}

func newCSVCards(records []dataset.Record) *CSVCards {
	c := &CSVCards{byName: make(map[string]dataset.Record, len(records))}
	for _, rec := range records {
		key := matchup.Normalize(rec["full_name"])
		if key == "" {
			continue
		}
		if _, dup := c.byName[key]; !dup {
			c.byName[key] = rec
		}
	}
	return c
}

func (c *CSVCards) Card(_ context.Context, name string) (models.FighterCard, error) {
	rec, ok := c.byName[matchup.Normalize(name)]
	if !ok {
		return models.FighterCard{}, ErrCardNotFound
	}
	return models.FighterCard{
		Name:     name,
		Nickname: rec.String("nickname", ""),
		Record:   fmt.Sprintf("%d-%d-%d", rec.Int("wins"), rec.Int("losses"), rec.Int("draws")),
		Height:   rec.String("height", "-"),
		Reach:    rec.String("reach", "-"),
		Stance:   rec.String("stance", "-"),
		Weight:   rec.String("weight", "-"),
	}, nil
}

// PgQuerier is the part of pgxpool.Pool the Postgres repository uses.
type PgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresCards reads cards from the fighters table. A name of the form
// "Full Name|Nickname" narrows the lookup to that nickname.
type PostgresCards struct {
	db PgQuerier
}

func NewPostgresCards(db PgQuerier) *PostgresCards {
	return &PostgresCards{db: db}
}

const cardQuery = `
	SELECT full_name, nickname, height, weight, reach, stance, wins, losses, draws
	FROM fighters
	WHERE LOWER(full_name) = LOWER($1)`

func (p *PostgresCards) Card(ctx context.Context, name string) (models.FighterCard, error) {
	fullName, nickname, hasNick := strings.Cut(name, "|")
	fullName = strings.TrimSpace(fullName)

	query := cardQuery
	args := []any{fullName}
	if hasNick && strings.TrimSpace(nickname) != "" {
		query += " AND LOWER(nickname) = LOWER($2)"
		args = append(args, strings.TrimSpace(nickname))
	}
	query += " LIMIT 1"

	var (
		dbName                          string
		nick, height, weight, reach, st *string
		wins, losses, draws             *int
	)
	err := p.db.QueryRow(ctx, query, args...).Scan(&dbName, &nick, &height, &weight, &reach, &st, &wins, &losses, &draws)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.FighterCard{}, ErrCardNotFound
	}
	if err != nil {
		return models.FighterCard{}, fmt.Errorf("query fighter card: %w", err)
	}

	return models.FighterCard{
		Name:     name,
		Nickname: orDefault(nick, ""),
		Record:   fmt.Sprintf("%d-%d-%d", intOrZero(wins), intOrZero(losses), intOrZero(draws)),
		Height:   orDefault(height, "-"),
		Reach:    orDefault(reach, "-"),
		Stance:   orDefault(st, "-"),
		Weight:   orDefault(weight, "-"),
	}, nil
}

func orDefault(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

func intOrZero(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
