package features

import (
	"fmt"
	"sort"

	"github.com/notiabet/courtedge/internal/domain/models"
)

// Column name suffixes. The away side carries the ".1" tag on every column
// so home and away columns never collide; the trailing-ten and advanced
// tags compose after it ("PTS.1_ADV_L10").
const (
	awayTag = ".1"
	l10Tag  = "_L10"
	advTag  = "_ADV"
)

const (
	restHomeName = "Days-Rest-Home"
	restAwayName = "Days-Rest-Away"
)

// Build assembles the model input vector for one game. The column set is
// the union of both teams' stat groups, derived efficiency metrics, and the
// two rest scalars; the binding column order is the alphabetical sort of
// the names, not the group concatenation order. includeAdvanced must match
// what the scoring model was trained with: a snapshot missing an advanced
// group the model expects is a schema mismatch, never a silent narrowing.
func Build(home, away *models.TeamStatsSnapshot, rest models.RestDays, includeAdvanced bool) (*models.FeatureVector, error) {
	if home == nil || away == nil {
		return nil, fmt.Errorf("%w: team snapshot missing", models.ErrDataUnavailable)
	}
	if includeAdvanced && (!home.HasAdvanced() || !away.HasAdvanced()) {
		return nil, &models.SchemaMismatchError{
			Kind:   "advanced",
			Detail: fmt.Sprintf("advanced stats expected but absent for %s vs %s", home.TeamName, away.TeamName),
		}
	}

	cols := make(map[string]float64)
	add := func(name string, value float64) error {
		if _, dup := cols[name]; dup {
			return &models.SchemaMismatchError{
				Kind:   "assembly",
				Detail: fmt.Sprintf("duplicate feature column %q", name),
			}
		}
		cols[name] = value
		return nil
	}

	addGroup := func(rec models.StatRecord, suffix string, derive bool) error {
		for _, name := range rec.Columns {
			if err := add(name+suffix, rec.Get(name)); err != nil {
				return err
			}
		}
		if !derive {
			return nil
		}
		for name, v := range efficiencyMetrics(rec) {
			if err := add(name+suffix, v); err != nil {
				return err
			}
		}
		return nil
	}

	type group struct {
		rec    models.StatRecord
		suffix string
		derive bool // efficiency metrics come from base box-score groups only
	}
	groups := []group{
		{home.Season, "", true},
		{home.LastTen, l10Tag, true},
		{away.Season, awayTag, true},
		{away.LastTen, awayTag + l10Tag, true},
	}
	if includeAdvanced {
		groups = append(groups,
			group{*home.AdvSeason, advTag, false},
			group{*home.AdvLastTen, advTag + l10Tag, false},
			group{*away.AdvSeason, awayTag + advTag, false},
			group{*away.AdvLastTen, awayTag + advTag + l10Tag, false},
		)
	}
	for _, g := range groups {
		if err := addGroup(g.rec, g.suffix, g.derive); err != nil {
			return nil, err
		}
	}

	if err := add(restHomeName, float64(rest.Home)); err != nil {
		return nil, err
	}
	if err := add(restAwayName, float64(rest.Away)); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = cols[name]
	}

	return &models.FeatureVector{Names: names, Values: values}, nil
}

// Validate checks the vector's column sequence against a model's training
// schema. Position matters, not just membership: the model consumes values
// by index.
func Validate(vec *models.FeatureVector, schema []string, kind string) error {
	if vec.Len() != len(schema) {
		return &models.SchemaMismatchError{
			Kind:     kind,
			Expected: len(schema),
			Got:      vec.Len(),
			Detail:   "column count differs",
		}
	}
	for i, want := range schema {
		if vec.Names[i] != want {
			return &models.SchemaMismatchError{
				Kind:     kind,
				Expected: len(schema),
				Got:      vec.Len(),
				Detail:   fmt.Sprintf("column %d is %q, want %q", i, vec.Names[i], want),
			}
		}
	}
	return nil
}
