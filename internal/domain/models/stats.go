package models

import "time"

// StatRecord is one table row for one team: named numeric columns in the
// order the provider returned them. Identity fields never appear here.
type StatRecord struct {
	Columns []string           `json:"columns"`
	Values  map[string]float64 `json:"values"`
}

// Get returns a column value, defaulting to 0 when absent. Scoring models
// require dense numeric input, so a missing field is a zero, not a null.
func (r StatRecord) Get(name string) float64 {
	return r.Values[name]
}

// TeamStatsSnapshot is one team's statistical state at a fetch instant.
// Season and LastTen are always present; the advanced groups are a typed
// optional so presence is visible state, never inferred from column names.
type TeamStatsSnapshot struct {
	TeamID     int64       `json:"team_id"`
	TeamName   string      `json:"team_name"`
	Season     StatRecord  `json:"season"`
	LastTen    StatRecord  `json:"last_ten"`
	AdvSeason  *StatRecord `json:"adv_season,omitempty"`
	AdvLastTen *StatRecord `json:"adv_last_ten,omitempty"`
}

// HasAdvanced reports whether both advanced groups are present.
func (s *TeamStatsSnapshot) HasAdvanced() bool {
	return s.AdvSeason != nil && s.AdvLastTen != nil
}

// SnapshotSet is one aggregator refresh cycle's worth of snapshots, shared
// by every game evaluated in that cycle. Immutable once constructed.
type SnapshotSet struct {
	Teams     map[string]*TeamStatsSnapshot `json:"teams"`
	FetchedAt time.Time                     `json:"fetched_at"`
	// Advanced is true only when every team in the set carries both
	// advanced groups; a partially-advanced set degrades to base-only.
	Advanced bool `json:"advanced"`
}

// Lookup resolves a snapshot by team name.
func (s *SnapshotSet) Lookup(team string) (*TeamStatsSnapshot, bool) {
	if s == nil {
		return nil, false
	}
	snap, ok := s.Teams[team]
	return snap, ok
}

// Empty reports whether the set holds no teams.
func (s *SnapshotSet) Empty() bool {
	return s == nil || len(s.Teams) == 0
}
