package inference

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ufcml/predict-api/internal/dataset"
	"github.com/ufcml/predict-api/internal/matchup"
)

// Profile is one row of the engineered fighter profile table.
type Profile struct {
	Name   string
	fields dataset.Record
}

func (p *Profile) Float(field string) float64 { return p.fields.Float(field) }

func (p *Profile) String(field, fallback string) string { return p.fields.String(field, fallback) }

// ProfileIndex resolves user-typed names to profiles.
type ProfileIndex struct {
	byName map[string]*Profile
	names  []string // sorted, for deterministic substring scans
}

// LoadProfiles reads a profile CSV with a "name" column. The first row wins
// when a name appears twice.
func LoadProfiles(r io.Reader) (*ProfileIndex, error) {
	records, err := dataset.Read(r)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	return newProfileIndex(records)
}

func LoadProfilesFile(path string) (*ProfileIndex, error) {
	records, err := dataset.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profiles %s: %w", path, err)
	}
	return newProfileIndex(records)
}

func newProfileIndex(records []dataset.Record) (*ProfileIndex, error) {
	idx := &ProfileIndex{byName: make(map[string]*Profile, len(records))}
	for _, rec := range records {
		name := matchup.Normalize(rec["name"])
		if name == "" {
			continue
		}
		if _, dup := idx.byName[name]; dup {
			continue
		}
		idx.byName[name] = &Profile{Name: name, fields: rec}
		idx.names = append(idx.names, name)
	}
	if len(idx.byName) == 0 {
		return nil, fmt.Errorf("load profiles: no named rows")
	}
	sort.Strings(idx.names)
	return idx, nil
}

// Find tries an exact case-insensitive match, then a substring match that must
// be unique. Anything else is ErrFighterNotFound.
func (idx *ProfileIndex) Find(name string) (*Profile, error) {
	key := matchup.Normalize(name)
	if key == "" {
		return nil, fmt.Errorf("%w: empty name", ErrFighterNotFound)
	}
	if p, ok := idx.byName[key]; ok {
		return p, nil
	}

	var match *Profile
	for _, n := range idx.names {
		if !strings.Contains(n, key) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: %q is ambiguous", ErrFighterNotFound, name)
		}
		match = idx.byName[n]
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrFighterNotFound, name)
	}
	return match, nil
}

func (idx *ProfileIndex) Len() int { return len(idx.byName) }
