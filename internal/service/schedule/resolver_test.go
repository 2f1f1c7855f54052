package schedule

import (
	"strings"
	"testing"
	"time"
)

const scheduleCSV = `Match Number,Date,Location,Home Team,Away Team
1,22/10/2025 23:30,TD Garden,Boston Celtics,New York Knicks
2,23/10/2025 02:00,Crypto.com Arena,Los Angeles Lakers,Golden State Warriors
3,24/10/2025 00:00,Madison Square Garden,New York Knicks,Chicago Bulls
4,26/10/2025 23:00,TD Garden,Boston Celtics,Los Angeles Lakers
`

func load(t *testing.T) *Resolver {
	t.Helper()
	r, err := parseSchedule(strings.NewReader(scheduleCSV))
	if err != nil {
		t.Fatalf("parseSchedule: %v", err)
	}
	return r
}

func TestLeagueDayShiftsEarlyUTCGames(t *testing.T) {
	// 02:00 UTC on the 23rd is an evening game of the 22nd's slate.
	late := time.Date(2025, 10, 23, 2, 0, 0, 0, time.UTC)
	early := time.Date(2025, 10, 22, 23, 30, 0, 0, time.UTC)

	if !LeagueDay(late).Equal(LeagueDay(early)) {
		t.Fatalf("late = %v, early = %v; want same league day", LeagueDay(late), LeagueDay(early))
	}
	if got := LeagueDayKey(late); got != "2025-10-22" {
		t.Fatalf("LeagueDayKey = %q, want 2025-10-22", got)
	}
}

func TestGamesForDayGroupsAcrossUTCMidnight(t *testing.T) {
	r := load(t)

	games := r.GamesForDay(time.Date(2025, 10, 22, 12, 0, 0, 0, time.UTC))
	if len(games) != 2 {
		t.Fatalf("games = %d, want 2", len(games))
	}
	if games[0].HomeTeam != "Boston Celtics" || games[1].HomeTeam != "Los Angeles Lakers" {
		t.Fatalf("unexpected slate: %+v", games)
	}
}

func TestGamesForDayQueryInstantWithinSameBucket(t *testing.T) {
	r := load(t)

	// Two query instants inside the same league day must see the same slate.
	a := r.GamesForDay(time.Date(2025, 10, 22, 7, 0, 0, 0, time.UTC))
	b := r.GamesForDay(time.Date(2025, 10, 23, 5, 59, 0, 0, time.UTC))
	if len(a) != len(b) {
		t.Fatalf("slate sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Key() != b[i].Key() {
			t.Fatalf("slates differ at %d: %s vs %s", i, a[i].Key(), b[i].Key())
		}
	}
}

func TestDaysRest(t *testing.T) {
	r := load(t)

	// Celtics played 22/10 23:30; as of 26/10 20:00 that's 3 whole days
	// plus one.
	asOf := time.Date(2025, 10, 26, 20, 0, 0, 0, time.UTC)
	if got := r.DaysRest("Boston Celtics", asOf); got != 4 {
		t.Fatalf("DaysRest = %d, want 4", got)
	}

	// Knicks played 24/10 00:00; as of 26/10 20:00 that's 2 whole days
	// plus one.
	if got := r.DaysRest("New York Knicks", asOf); got != 3 {
		t.Fatalf("DaysRest = %d, want 3", got)
	}
}

func TestDaysRestStrictlyBefore(t *testing.T) {
	r := load(t)

	// A lookup at the exact tip-off instant must not count that game as a
	// prior one.
	tip := time.Date(2025, 10, 22, 23, 30, 0, 0, time.UTC)
	if got := r.DaysRest("Boston Celtics", tip); got != fullyRestedDays {
		t.Fatalf("DaysRest at tip-off = %d, want %d", got, fullyRestedDays)
	}
}

func TestDaysRestDefaultsWhenNoPriorGame(t *testing.T) {
	r := load(t)

	if got := r.DaysRest("Miami Heat", time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC)); got != fullyRestedDays {
		t.Fatalf("DaysRest = %d, want %d", got, fullyRestedDays)
	}
}

func TestParseScheduleMissingColumn(t *testing.T) {
	_, err := parseSchedule(strings.NewReader("Date,Home Team\n22/10/2025 23:30,Boston Celtics\n"))
	if err == nil {
		t.Fatal("expected missing column error")
	}
}
