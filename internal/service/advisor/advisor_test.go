package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/notiabet/courtedge/internal/domain/models"
	pkghttp "github.com/notiabet/courtedge/pkg/http"
	"github.com/notiabet/courtedge/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func proposals() []models.BetProposal {
	return []models.BetProposal{{
		Match:       "Boston Celtics:New York Knicks",
		Selection:   "Boston Celtics",
		OddsDecimal: 1.85,
		Edge:        0.159,
		Stake:       decimal.NewFromInt(500),
	}}
}

func TestAnalyzeRiskReturnsServiceNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Bankroll != 10000 || len(req.Proposals) != 1 {
			t.Errorf("request = %+v", req)
		}
		_ = json.NewEncoder(w).Encode(analyzeResponse{Note: "exposure is concentrated on one game"})
	}))
	defer srv.Close()

	a := New(pkghttp.NewClient(), testLogger(t), srv.URL)
	note, err := a.AnalyzeRisk(context.Background(), proposals(), 10000)
	if err != nil {
		t.Fatalf("AnalyzeRisk: %v", err)
	}
	if note != "exposure is concentrated on one game" {
		t.Fatalf("note = %q", note)
	}
}

func TestAnalyzeRiskFallsBackWhenOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := New(pkghttp.NewClient(), testLogger(t), srv.URL)
	note, err := a.AnalyzeRisk(context.Background(), proposals(), 10000)
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}
	if note != FallbackNote {
		t.Fatalf("note = %q, want fallback", note)
	}
}

func TestAnalyzeRiskNoProposals(t *testing.T) {
	a := New(pkghttp.NewClient(), testLogger(t), "")
	note, err := a.AnalyzeRisk(context.Background(), nil, 10000)
	if err != nil {
		t.Fatalf("AnalyzeRisk: %v", err)
	}
	if note == "" {
		t.Fatal("expected a note for an empty proposal set")
	}
}
