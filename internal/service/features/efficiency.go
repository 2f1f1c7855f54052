package features

import "github.com/notiabet/courtedge/internal/domain/models"

// efficiencyMetrics derives the shooting/possession efficiency columns from
// one stat group (season or trailing-ten, either team). Every division is
// guarded: an undefined ratio is 0, not a NaN that would poison the model
// input.
func efficiencyMetrics(rec models.StatRecord) map[string]float64 {
	pts := rec.Get("PTS")
	fga := rec.Get("FGA")
	fta := rec.Get("FTA")
	fgm := rec.Get("FGM")
	fg3m := rec.Get("FG3M")
	ast := rec.Get("AST")
	tov := rec.Get("TOV")
	oreb := rec.Get("OREB")

	var tsPct float64
	if tsAttempts := 2 * (fga + 0.44*fta); tsAttempts > 0 {
		tsPct = pts / tsAttempts
	}

	var efgPct float64
	if fga > 0 {
		efgPct = (fgm + 0.5*fg3m) / fga
	}

	// Zero turnovers leaves the ratio undefined; the assist count itself
	// is the conventional stand-in.
	astTov := ast
	if tov > 0 {
		astTov = ast / tov
	}

	paceEst := fga + 0.44*fta - oreb + tov

	var offEff float64
	if paceEst > 0 {
		offEff = pts / paceEst * 100
	}

	return map[string]float64{
		"TS_PCT":   tsPct,
		"EFG_PCT":  efgPct,
		"AST_TOV":  astTov,
		"PACE_EST": paceEst,
		"OFF_EFF":  offEff,
	}
}
