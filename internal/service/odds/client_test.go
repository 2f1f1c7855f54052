package odds

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/notiabet/courtedge/pkg/http"
	"github.com/notiabet/courtedge/pkg/logger"
)

func TestAmericanToDecimal(t *testing.T) {
	cases := []struct {
		american int
		want     float64
	}{
		{150, 2.50},
		{-110, 1.9090909090909092},
		{100, 2.00},
		{-100, 2.00},
		{0, 1.00},
	}
	for _, tc := range cases {
		got := AmericanToDecimal(tc.american)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("AmericanToDecimal(%d) = %v, want %v", tc.american, got, tc.want)
		}
	}
}

func TestQuotesDefaultsAbsentLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sportsbook"); got != "fanduel" {
			t.Errorf("sportsbook = %q, want fanduel", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"games": [
			{"home_team": "Boston Celtics", "away_team": "New York Knicks",
			 "home_ml": -150, "away_ml": 130, "total": 224.5,
			 "start_time": "2025-10-22T23:30:00Z"},
			{"home_team": "Los Angeles Lakers", "away_team": "Golden State Warriors"}
		]}`))
	}))
	defer srv.Close()

	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	c := NewClient(pkghttp.NewClient(), log, srv.URL, "fanduel", 220)

	quotes, err := c.Quotes(context.Background())
	if err != nil {
		t.Fatalf("Quotes: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("quotes = %d, want 2", len(quotes))
	}

	q := quotes["Boston Celtics:New York Knicks"]
	if q.HomePrice != -150 || q.AwayPrice != 130 {
		t.Fatalf("moneylines = %d/%d", q.HomePrice, q.AwayPrice)
	}
	if q.TotalLine != 224.5 {
		t.Fatalf("total = %v, want 224.5", q.TotalLine)
	}
	if q.StartTime != "2025-10-22T23:30:00Z" {
		t.Fatalf("start time = %q", q.StartTime)
	}

	// Unquoted game: zero moneylines, defaulted total.
	q = quotes["Los Angeles Lakers:Golden State Warriors"]
	if q.HomePrice != 0 || q.AwayPrice != 0 {
		t.Fatalf("unquoted moneylines = %d/%d, want 0/0", q.HomePrice, q.AwayPrice)
	}
	if q.TotalLine != 220 {
		t.Fatalf("unquoted total = %v, want 220", q.TotalLine)
	}
}

func TestQuotesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	c := NewClient(pkghttp.NewClient(), log, srv.URL, "fanduel", 220)

	if _, err := c.Quotes(context.Background()); err == nil {
		t.Fatal("expected provider error")
	}
}
