package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/notiabet/courtedge/internal/domain/models"
	"github.com/notiabet/courtedge/internal/service/cache"
	"github.com/notiabet/courtedge/internal/usecase"
	"github.com/notiabet/courtedge/pkg/logger"
)

type emptySchedule struct{}

func (emptySchedule) GamesForDay(time.Time) []models.ScheduleEntry { return nil }
func (emptySchedule) DaysRest(string, time.Time) int               { return 7 }

type nopMetrics struct{}

func (nopMetrics) RecordRun(string, string)           {}
func (nopMetrics) RecordFetchError(string)            {}
func (nopMetrics) RecordSkippedGame(string)           {}
func (nopMetrics) RecordPredictions(int)              {}
func (nopMetrics) RecordProposals(int)                {}
func (nopMetrics) RecordProposedStake(float64)        {}
func (nopMetrics) RecordStageLatency(string, float64) {}
func (nopMetrics) RecordCacheLookup(string)           {}

func newTestHandler(t *testing.T) (*Handler, *usecase.Orchestrator) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	orch := usecase.NewOrchestrator(
		usecase.Config{ReferenceBankroll: 10000, DefaultTotalLine: 220},
		log, nil, emptySchedule{}, nil, nil, nil, nil,
		cache.NewTTLCache(), nil, nil, nopMetrics{},
	)
	return NewHandler(log, orch), orch
}

func serve(t *testing.T, h *Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(t, h, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPredictionsTodayNotComputedYet(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(t, h, http.MethodGet, "/api/v1/predictions/today")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Status int `json:"status"`
		Data   struct {
			State string `json:"state"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusNotFound {
		t.Fatalf("envelope status = %d, want 404", resp.Status)
	}
	if resp.Data.State != usecase.StateEmpty {
		t.Fatalf("state = %q, want EMPTY", resp.Data.State)
	}
}

func TestPredictionsTodayServesCachedBundle(t *testing.T) {
	h, orch := newTestHandler(t)
	if _, err := orch.RunForDay(context.Background(), time.Now().UTC(), "test"); err != nil {
		t.Fatalf("RunForDay: %v", err)
	}

	rec := serve(t, h, http.MethodGet, "/api/v1/predictions/today?bankroll=5000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Status int                `json:"status"`
		Data   models.DailyBundle `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Fatalf("envelope status = %d", resp.Status)
	}
	if resp.Data.ReferenceBankroll != 10000 {
		t.Fatalf("reference bankroll = %v", resp.Data.ReferenceBankroll)
	}
}

func TestPredictionsTodayRejectsNegativeBankroll(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(t, h, http.MethodGet, "/api/v1/predictions/today?bankroll=-50")
	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("envelope status = %d, want 400", resp.Status)
	}
}

func TestRefreshAccepted(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(t, h, http.MethodPost, "/api/v1/refresh")
	var resp struct {
		Status int `json:"status"`
		Data   struct {
			State string `json:"state"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusAccepted {
		t.Fatalf("envelope status = %d, want 202", resp.Status)
	}
	if resp.Data.State != usecase.StateComputing {
		t.Fatalf("state = %q", resp.Data.State)
	}
}
