package schedule

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/notiabet/courtedge/internal/domain/models"
	"github.com/notiabet/courtedge/pkg/util"
)

// leagueShift moves a UTC instant into the league's logical game day.
// Evening tip-offs in the league's home time zone land after midnight UTC,
// so the UTC calendar date over-rotates by one for late games.
const leagueShift = -6 * time.Hour

// LeagueDay buckets an instant into its logical league day. Every piece of
// day arithmetic in the system must go through this one function; applying
// the shift at some call sites but not others is an off-by-one-day bug.
func LeagueDay(t time.Time) time.Time {
	s := t.UTC().Add(leagueShift)
	return time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
}

// LeagueDayKey is LeagueDay rendered as YYYY-MM-DD.
func LeagueDayKey(t time.Time) string {
	return util.DateKey(LeagueDay(t))
}

const fullyRestedDays = 7

// Resolver answers schedule questions from a season schedule CSV loaded
// once at startup. The schedule is static for the season; no reload path.
type Resolver struct {
	entries []models.ScheduleEntry
	byTeam  map[string][]time.Time
}

// NewResolver loads the schedule CSV at path. Expected columns: Date
// (dd/mm/yyyy HH:MM, UTC), Home Team, Away Team and optionally Location.
func NewResolver(path string) (*Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schedule: %w", err)
	}
	defer f.Close()
	return parseSchedule(f)
}

func parseSchedule(r io.Reader) (*Resolver, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read schedule header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[h] = i
	}
	for _, required := range []string{"Date", "Home Team", "Away Team"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("schedule missing column %q", required)
		}
	}
	locIdx, hasLoc := idx["Location"]

	res := &Resolver{byTeam: make(map[string][]time.Time)}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read schedule line %d: %w", line, err)
		}

		start, err := time.Parse(util.ScheduleTimeLayout, rec[idx["Date"]])
		if err != nil {
			return nil, fmt.Errorf("schedule line %d: bad date %q: %w", line, rec[idx["Date"]], err)
		}

		entry := models.ScheduleEntry{
			HomeTeam: rec[idx["Home Team"]],
			AwayTeam: rec[idx["Away Team"]],
			StartUTC: start.UTC(),
		}
		if hasLoc && locIdx < len(rec) {
			entry.Venue = rec[locIdx]
		}

		res.entries = append(res.entries, entry)
		res.byTeam[entry.HomeTeam] = append(res.byTeam[entry.HomeTeam], entry.StartUTC)
		res.byTeam[entry.AwayTeam] = append(res.byTeam[entry.AwayTeam], entry.StartUTC)
	}

	sort.Slice(res.entries, func(i, j int) bool {
		return res.entries[i].StartUTC.Before(res.entries[j].StartUTC)
	})
	for _, starts := range res.byTeam {
		sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	}

	return res, nil
}

// GamesForDay returns the games whose league day matches day's league day.
func (r *Resolver) GamesForDay(day time.Time) []models.ScheduleEntry {
	want := LeagueDay(day)
	var out []models.ScheduleEntry
	for _, e := range r.entries {
		if LeagueDay(e.StartUTC).Equal(want) {
			out = append(out, e)
		}
	}
	return out
}

// DaysRest returns the rest count for team as of asOf: one plus the whole
// days elapsed since the team's most recent game strictly before asOf. A
// team with no prior game in the schedule is treated as fully rested.
func (r *Resolver) DaysRest(team string, asOf time.Time) int {
	starts := r.byTeam[team]
	asOf = asOf.UTC()

	var last time.Time
	// starts is sorted ascending; walk back to the first strictly-before.
	for i := len(starts) - 1; i >= 0; i-- {
		if starts[i].Before(asOf) {
			last = starts[i]
			break
		}
	}
	if last.IsZero() {
		return fullyRestedDays
	}

	return int((asOf.Sub(last) + 24*time.Hour).Hours() / 24)
}
