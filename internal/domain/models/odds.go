package models

// OddsQuote is one game's market prices. Moneyline prices are signed
// American-style integers; 0 means the market was unavailable, which
// converts to decimal 1.0 and can never clear the eligibility floor.
type OddsQuote struct {
	HomePrice int     `json:"home_price"`
	AwayPrice int     `json:"away_price"`
	TotalLine float64 `json:"total_line"`
	StartTime string  `json:"start_time,omitempty"`
}

// LiveScore is a scoreboard entry for an in-progress or finished game.
type LiveScore struct {
	Status    string `json:"status"` // SCHEDULED, LIVE, FINAL
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

const (
	GameStatusScheduled = "SCHEDULED"
	GameStatusLive      = "LIVE"
	GameStatusFinal     = "FINAL"
)
