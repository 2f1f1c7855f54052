package advisor

import (
	"context"
	"fmt"

	"github.com/notiabet/courtedge/internal/domain/models"
	pkghttp "github.com/notiabet/courtedge/pkg/http"
	"github.com/notiabet/courtedge/pkg/logger"
)

// FallbackNote is attached to a bundle when the advisory service cannot be
// reached. The advisory is decoration on top of the sized proposals; its
// absence never blocks a run.
const FallbackNote = "Risk advisory unavailable; proposals sized by fractional Kelly with a hard per-bet cap."

type analyzeRequest struct {
	Bankroll  float64       `json:"bankroll"`
	Proposals []proposalDTO `json:"proposals"`
}

type proposalDTO struct {
	Match       string  `json:"match"`
	Selection   string  `json:"selection"`
	OddsDecimal float64 `json:"odds_decimal"`
	Edge        float64 `json:"edge"`
	Stake       string  `json:"stake"`
}

type analyzeResponse struct {
	Note string `json:"note"`
}

// HTTPAdvisor asks an external advisory service for a narrative risk note
// describing the day's proposal set.
type HTTPAdvisor struct {
	http    *pkghttp.Client
	log     *logger.Logger
	baseURL string
}

func New(httpClient *pkghttp.Client, log *logger.Logger, baseURL string) *HTTPAdvisor {
	return &HTTPAdvisor{http: httpClient, log: log, baseURL: baseURL}
}

// AnalyzeRisk returns a narrative note for the proposal set. Any failure
// degrades to the fallback note with a nil error.
func (a *HTTPAdvisor) AnalyzeRisk(ctx context.Context, proposals []models.BetProposal, bankroll float64) (string, error) {
	if a.baseURL == "" {
		return FallbackNote, nil
	}
	if len(proposals) == 0 {
		return "No eligible bets today; bankroll untouched.", nil
	}

	req := analyzeRequest{Bankroll: bankroll}
	for _, p := range proposals {
		req.Proposals = append(req.Proposals, proposalDTO{
			Match:       p.Match,
			Selection:   p.Selection,
			OddsDecimal: p.OddsDecimal,
			Edge:        p.Edge,
			Stake:       p.Stake.StringFixed(2),
		})
	}

	var resp analyzeResponse
	err := a.http.SendAndParseWithRetry(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodPost,
		URL:    a.baseURL + "/analyze",
		Body:   req,
	}, &resp)
	if err == nil && resp.Note == "" {
		err = fmt.Errorf("advisory returned empty note")
	}
	if err != nil {
		a.log.Warn("risk advisory unavailable", logger.Error(err))
		return FallbackNote, nil
	}

	return resp.Note, nil
}
