package models

import "time"

// ScheduleEntry is one scheduled game. Loaded once from the schedule source
// and read-only thereafter.
type ScheduleEntry struct {
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	StartUTC time.Time `json:"start_utc"`
	Venue    string    `json:"venue"`
}

// Key returns the game's "Home:Away" lookup key shared with the odds and
// live-score providers.
func (e ScheduleEntry) Key() string {
	return e.HomeTeam + ":" + e.AwayTeam
}

// RestDays carries both teams' days of rest going into a game.
type RestDays struct {
	Home int `json:"home"`
	Away int `json:"away"`
}
