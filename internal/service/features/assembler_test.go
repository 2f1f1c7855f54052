package features

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/notiabet/courtedge/internal/domain/models"
)

func record(cols map[string]float64) models.StatRecord {
	names := make([]string, 0, len(cols))
	for n := range cols {
		names = append(names, n)
	}
	sort.Strings(names)
	return models.StatRecord{Columns: names, Values: cols}
}

func snapshot(name string, pts float64, advanced bool) *models.TeamStatsSnapshot {
	base := map[string]float64{
		"PTS": pts, "FGA": 88, "FTA": 20, "FGM": 41,
		"FG3M": 13, "AST": 26, "TOV": 13, "OREB": 10,
	}
	l10 := map[string]float64{
		"PTS": pts - 2, "FGA": 86, "FTA": 18, "FGM": 40,
		"FG3M": 12, "AST": 25, "TOV": 12, "OREB": 9,
	}
	s := &models.TeamStatsSnapshot{
		TeamName: name,
		Season:   record(base),
		LastTen:  record(l10),
	}
	if advanced {
		adv := record(map[string]float64{"OFF_RATING": 116.2, "PACE": 99.1})
		advL10 := record(map[string]float64{"OFF_RATING": 114.8, "PACE": 98.4})
		s.AdvSeason = &adv
		s.AdvLastTen = &advL10
	}
	return s
}

func TestBuildAlphabeticalOrderIsBinding(t *testing.T) {
	home := snapshot("Boston Celtics", 118, true)
	away := snapshot("New York Knicks", 112, true)

	vec, err := Build(home, away, models.RestDays{Home: 2, Away: 1}, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !sort.StringsAreSorted(vec.Names) {
		t.Fatalf("names not alphabetically sorted: %v", vec.Names)
	}
	if len(vec.Names) != len(vec.Values) {
		t.Fatalf("names/values misaligned: %d vs %d", len(vec.Names), len(vec.Values))
	}

	// 8 base + 5 derived per base group, 4 base groups; 2 advanced columns
	// per advanced group, 4 advanced groups; 2 rest scalars.
	want := 4*(8+5) + 4*2 + 2
	if vec.Len() != want {
		t.Fatalf("column count = %d, want %d", vec.Len(), want)
	}
}

func TestBuildSuffixContract(t *testing.T) {
	home := snapshot("Boston Celtics", 118, true)
	away := snapshot("New York Knicks", 112, true)

	vec, err := Build(home, away, models.RestDays{Home: 3, Away: 2}, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	byName := make(map[string]float64, vec.Len())
	for i, n := range vec.Names {
		byName[n] = vec.Values[i]
	}

	cases := map[string]float64{
		"PTS":                118,
		"PTS_L10":            116,
		"PTS.1":              112,
		"PTS.1_L10":          110,
		"OFF_RATING_ADV":     116.2,
		"OFF_RATING_ADV_L10": 114.8,
		"OFF_RATING.1_ADV":   116.2,
		"PACE.1_ADV_L10":     98.4,
		"Days-Rest-Home":     3,
		"Days-Rest-Away":     2,
	}
	for name, want := range cases {
		got, ok := byName[name]
		if !ok {
			t.Errorf("column %q missing", name)
			continue
		}
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}

	// Derived metrics exist per base group but never for advanced groups.
	for _, name := range []string{"TS_PCT", "TS_PCT_L10", "TS_PCT.1", "TS_PCT.1_L10"} {
		if _, ok := byName[name]; !ok {
			t.Errorf("derived column %q missing", name)
		}
	}
	for _, name := range []string{"TS_PCT_ADV", "TS_PCT.1_ADV", "OFF_EFF_ADV_L10"} {
		if _, ok := byName[name]; ok {
			t.Errorf("derived column %q must not exist for advanced groups", name)
		}
	}
}

func TestBuildEfficiencyValues(t *testing.T) {
	home := snapshot("Boston Celtics", 118, false)
	away := snapshot("New York Knicks", 112, false)

	vec, err := Build(home, away, models.RestDays{Home: 1, Away: 1}, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	byName := make(map[string]float64, vec.Len())
	for i, n := range vec.Names {
		byName[n] = vec.Values[i]
	}

	// Home season group: FGA 88, FTA 20, PTS 118.
	tsAttempts := 2 * (88 + 0.44*20)
	if got, want := byName["TS_PCT"], 118/tsAttempts; math.Abs(got-want) > 1e-12 {
		t.Errorf("TS_PCT = %v, want %v", got, want)
	}
	if got, want := byName["EFG_PCT"], (41+0.5*13)/88.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("EFG_PCT = %v, want %v", got, want)
	}
	if got, want := byName["AST_TOV"], 2.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("AST_TOV = %v, want %v", got, want)
	}
	pace := 88 + 0.44*20 - 10 + 13
	if got := byName["PACE_EST"]; math.Abs(got-pace) > 1e-12 {
		t.Errorf("PACE_EST = %v, want %v", got, pace)
	}
	if got, want := byName["OFF_EFF"], 118/pace*100; math.Abs(got-want) > 1e-12 {
		t.Errorf("OFF_EFF = %v, want %v", got, want)
	}
}

func TestEfficiencyDivisionGuards(t *testing.T) {
	m := efficiencyMetrics(record(map[string]float64{"PTS": 0, "FGA": 0, "AST": 7, "TOV": 0}))
	if m["TS_PCT"] != 0 || m["EFG_PCT"] != 0 || m["OFF_EFF"] != 0 {
		t.Fatalf("guarded metrics nonzero: %+v", m)
	}
	if m["AST_TOV"] != 7 {
		t.Fatalf("AST_TOV with zero turnovers = %v, want assist count", m["AST_TOV"])
	}
}

func TestBuildDeterministic(t *testing.T) {
	home := snapshot("Boston Celtics", 118, true)
	away := snapshot("New York Knicks", 112, true)
	rest := models.RestDays{Home: 2, Away: 1}

	a, err := Build(home, away, rest, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(home, away, rest, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := range a.Names {
		if a.Names[i] != b.Names[i] || a.Values[i] != b.Values[i] {
			t.Fatalf("non-deterministic assembly at %d: %s=%v vs %s=%v",
				i, a.Names[i], a.Values[i], b.Names[i], b.Values[i])
		}
	}
}

func TestBuildAdvancedExpectedButAbsent(t *testing.T) {
	home := snapshot("Boston Celtics", 118, true)
	away := snapshot("New York Knicks", 112, false)

	_, err := Build(home, away, models.RestDays{}, true)
	if !errors.Is(err, models.ErrSchemaMismatch) {
		t.Fatalf("err = %v, want schema mismatch", err)
	}
}

func TestBuildNilSnapshot(t *testing.T) {
	_, err := Build(nil, snapshot("New York Knicks", 112, false), models.RestDays{}, false)
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("err = %v, want data unavailable", err)
	}
}

func TestValidate(t *testing.T) {
	vec := &models.FeatureVector{Names: []string{"A", "B", "C"}, Values: []float64{1, 2, 3}}

	if err := Validate(vec, []string{"A", "B", "C"}, "moneyline"); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	err := Validate(vec, []string{"A", "B"}, "moneyline")
	if !errors.Is(err, models.ErrSchemaMismatch) {
		t.Fatalf("count mismatch err = %v", err)
	}

	err = Validate(vec, []string{"A", "X", "C"}, "moneyline")
	var sm *models.SchemaMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("name mismatch err = %v", err)
	}
	if sm.Kind != "moneyline" {
		t.Fatalf("kind = %q", sm.Kind)
	}
}
