package api

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/notiabet/courtedge/internal/domain/models"
	"github.com/notiabet/courtedge/internal/service/schedule"
	"github.com/notiabet/courtedge/internal/usecase"
	pkghttp "github.com/notiabet/courtedge/pkg/http"
	"github.com/notiabet/courtedge/pkg/logger"
)

// refreshTimeout bounds a background run triggered over the API.
const refreshTimeout = 5 * time.Minute

// Handler exposes the cached daily bundle over REST. It holds no pipeline
// logic: every endpoint is a thin read or trigger on the orchestrator.
type Handler struct {
	log  *logger.Logger
	orch *usecase.Orchestrator
}

func NewHandler(log *logger.Logger, orch *usecase.Orchestrator) *Handler {
	return &Handler{log: log, orch: orch}
}

// RegisterRoutes mounts the API routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)

	v1 := e.Group("/api/v1")
	v1.GET("/predictions/today", h.predictionsToday)
	v1.GET("/bets/today", h.betsToday)
	v1.POST("/refresh", h.refresh)
}

type bankrollQuery struct {
	Bankroll float64 `query:"bankroll" validate:"gte=0"`
}

type dayStatusDTO struct {
	Date  string `json:"date"`
	State string `json:"state"`
}

type betsDTO struct {
	Date       string               `json:"date"`
	Generation uint64               `json:"generation"`
	Bankroll   float64              `json:"bankroll"`
	Proposals  []models.BetProposal `json:"proposals"`
	TotalStake string               `json:"total_stake"`
	RiskNote   string               `json:"risk_note,omitempty"`
}

func (h *Handler) health(c echo.Context) error {
	return pkghttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *Handler) predictionsToday(c echo.Context) error {
	var q bankrollQuery
	if details := pkghttp.ReadAndValidateRequest(c, &q); details != nil {
		return pkghttp.BadRequestResponse(c, details)
	}

	bundle, err := h.bundle(c, q.Bankroll)
	if err != nil {
		return h.bundleError(c, err)
	}
	return pkghttp.SuccessResponse(c, bundle)
}

func (h *Handler) betsToday(c echo.Context) error {
	var q bankrollQuery
	if details := pkghttp.ReadAndValidateRequest(c, &q); details != nil {
		return pkghttp.BadRequestResponse(c, details)
	}

	bundle, err := h.bundle(c, q.Bankroll)
	if err != nil {
		return h.bundleError(c, err)
	}

	bankroll := q.Bankroll
	if bankroll <= 0 {
		bankroll = bundle.ReferenceBankroll
	}
	return pkghttp.SuccessResponse(c, betsDTO{
		Date:       bundle.Date,
		Generation: bundle.Generation,
		Bankroll:   bankroll,
		Proposals:  bundle.Proposals,
		TotalStake: bundle.TotalStake().StringFixed(2),
		RiskNote:   bundle.RiskNote,
	})
}

// refresh triggers an on-demand evaluation run and returns immediately.
// The caller polls the read endpoints; the day state tells it whether the
// run has landed.
func (h *Handler) refresh(c echo.Context) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if _, err := h.orch.Refresh(ctx, "api"); err != nil {
			h.log.Error("api-triggered run failed", logger.Error(err))
		}
	}()

	return pkghttp.AcceptedResponse(c, dayStatusDTO{
		Date:  schedule.LeagueDayKey(time.Now().UTC()),
		State: usecase.StateComputing,
	})
}

func (h *Handler) bundle(c echo.Context, bankroll float64) (*models.DailyBundle, error) {
	return h.orch.BundleForDay(c.Request().Context(), time.Now().UTC(), bankroll)
}

func (h *Handler) bundleError(c echo.Context, err error) error {
	if errors.Is(err, models.ErrDataUnavailable) {
		return pkghttp.NotFoundResponse(c, dayStatusDTO{
			Date:  schedule.LeagueDayKey(time.Now().UTC()),
			State: h.orch.DayState(schedule.LeagueDayKey(time.Now().UTC())),
		})
	}
	h.log.Error("bundle read failed", logger.Error(err))
	return pkghttp.InternalServerErrorResponse(c)
}
