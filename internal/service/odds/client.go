package odds

import (
	"context"
	"fmt"
	"time"

	"github.com/notiabet/courtedge/internal/domain/models"
	pkghttp "github.com/notiabet/courtedge/pkg/http"
	"github.com/notiabet/courtedge/pkg/logger"
	"github.com/notiabet/courtedge/pkg/util"
)

// AmericanToDecimal converts an American moneyline price to decimal odds.
// A zero price means "no quote" and maps to 1.0: implied probability one,
// zero payout, so an unquoted side can never look like value downstream.
func AmericanToDecimal(american int) float64 {
	switch {
	case american > 0:
		return float64(american)/100 + 1
	case american < 0:
		return 100/float64(-american) + 1
	default:
		return 1.0
	}
}

// quotedGame is the provider's per-game quote payload.
type quotedGame struct {
	HomeTeam  string   `json:"home_team"`
	AwayTeam  string   `json:"away_team"`
	HomeML    *int     `json:"home_ml"`
	AwayML    *int     `json:"away_ml"`
	Total     *float64 `json:"total"`
	StartTime string   `json:"start_time"`
}

type quotesResponse struct {
	Games []quotedGame `json:"games"`
}

// Client fetches market quotes from the odds provider for one sportsbook.
// Absent quotes are defaulted, not errored: a game with no posted line is
// still evaluated, it just cannot clear the eligibility filter.
type Client struct {
	http         *pkghttp.Client
	log          *logger.Logger
	baseURL      string
	sportsbook   string
	defaultTotal float64
}

func NewClient(httpClient *pkghttp.Client, log *logger.Logger, baseURL, sportsbook string, defaultTotal float64) *Client {
	return &Client{
		http:         httpClient,
		log:          log,
		baseURL:      baseURL,
		sportsbook:   sportsbook,
		defaultTotal: defaultTotal,
	}
}

// Quotes returns market quotes keyed by "Home:Away". A provider failure is
// an error for the caller to treat as "no odds today", never a crash.
func (c *Client) Quotes(ctx context.Context) (map[string]models.OddsQuote, error) {
	var resp quotesResponse
	err := c.http.SendAndParseWithRetry(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/odds",
		QueryParams: map[string][]string{
			"sportsbook": {c.sportsbook},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch odds: %w", err)
	}

	out := make(map[string]models.OddsQuote, len(resp.Games))
	for _, g := range resp.Games {
		if g.HomeTeam == "" || g.AwayTeam == "" {
			continue
		}
		q := models.OddsQuote{TotalLine: c.defaultTotal}
		if g.HomeML != nil {
			q.HomePrice = *g.HomeML
		}
		if g.AwayML != nil {
			q.AwayPrice = *g.AwayML
		}
		if g.Total != nil && *g.Total > 0 {
			q.TotalLine = *g.Total
		}
		if g.StartTime != "" {
			if ts, ok := util.ParseTime(g.StartTime); ok {
				q.StartTime = ts.UTC().Format(time.RFC3339)
			} else {
				c.log.Debug("unparseable odds start time",
					logger.String("value", g.StartTime),
					logger.String("game", g.HomeTeam+":"+g.AwayTeam))
			}
		}
		out[g.HomeTeam+":"+g.AwayTeam] = q
	}

	c.log.Debug("odds fetched",
		logger.String("sportsbook", c.sportsbook),
		logger.Int("games", len(out)))
	return out, nil
}
