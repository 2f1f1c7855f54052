package nbastats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/notiabet/courtedge/internal/domain/models"
	"github.com/notiabet/courtedge/internal/service/ratelimit"
	pkghttp "github.com/notiabet/courtedge/pkg/http"
)

// TableSpec identifies one league-wide team stats table.
type TableSpec struct {
	MeasureType string // "Base" or "Advanced"
	LastNGames  int    // 0 = full season, 10 = trailing ten
}

func (t TableSpec) String() string {
	return fmt.Sprintf("%s/last%d", t.MeasureType, t.LastNGames)
}

// teamRow is one parsed provider row: identity plus the numeric columns.
type teamRow struct {
	TeamID   int64
	TeamName string
	Record   models.StatRecord
}

// resultSetsEnvelope mirrors the provider's response shape: a list of named
// result sets, each a header row plus untyped value rows.
type resultSetsEnvelope struct {
	ResultSets []struct {
		Name    string          `json:"name"`
		Headers []string        `json:"headers"`
		RowSet  [][]interface{} `json:"rowSet"`
	} `json:"resultSets"`
}

// Client fetches team stats tables from the league data provider. Requests
// are paced through a shared token bucket; the provider bans bursty callers.
type Client struct {
	http    *pkghttp.Client
	limiter *ratelimit.Limiter
	baseURL string
	season  string
	maxRPS  float64
}

func NewClient(httpClient *pkghttp.Client, limiter *ratelimit.Limiter, baseURL, season string, maxRPS float64) *Client {
	if maxRPS <= 0 {
		maxRPS = 4
	}
	return &Client{
		http:    httpClient,
		limiter: limiter,
		baseURL: baseURL,
		season:  season,
		maxRPS:  maxRPS,
	}
}

// FetchTable retrieves and parses one stats table.
func (c *Client) FetchTable(ctx context.Context, spec TableSpec) ([]teamRow, error) {
	if err := c.limiter.Wait(ctx, "nbastats", c.maxRPS, c.maxRPS); err != nil {
		return nil, err
	}

	var envelope resultSetsEnvelope
	err := c.http.SendAndParseWithRetry(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/leaguedashteamstats",
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
			"Referer":    "https://stats.nba.com/",
			"Accept":     "application/json",
		},
		QueryParams: map[string][]string{
			"MeasureType": {spec.MeasureType},
			"LastNGames":  {strconv.Itoa(spec.LastNGames)},
			"Season":      {c.season},
			"SeasonType":  {"Regular Season"},
			"PerMode":     {"PerGame"},
		},
	}, &envelope)
	if err != nil {
		return nil, fmt.Errorf("fetch table %s: %w", spec, err)
	}

	return parseRows(envelope, spec)
}

func parseRows(envelope resultSetsEnvelope, spec TableSpec) ([]teamRow, error) {
	if len(envelope.ResultSets) == 0 {
		return nil, fmt.Errorf("table %s: empty result sets", spec)
	}
	set := envelope.ResultSets[0]

	idIdx, nameIdx := -1, -1
	for i, h := range set.Headers {
		switch h {
		case "TEAM_ID":
			idIdx = i
		case "TEAM_NAME":
			nameIdx = i
		}
	}
	if idIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("table %s: missing identity headers", spec)
	}

	rows := make([]teamRow, 0, len(set.RowSet))
	for _, raw := range set.RowSet {
		if len(raw) != len(set.Headers) {
			return nil, fmt.Errorf("table %s: row width %d != header width %d", spec, len(raw), len(set.Headers))
		}

		id, ok := raw[idIdx].(float64)
		if !ok {
			return nil, fmt.Errorf("table %s: non-numeric TEAM_ID", spec)
		}
		name, ok := raw[nameIdx].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("table %s: missing TEAM_NAME", spec)
		}

		rec := models.StatRecord{Values: make(map[string]float64)}
		for i, h := range set.Headers {
			if i == idIdx || i == nameIdx {
				continue
			}
			// Non-numeric columns (flags, param echoes) carry no signal
			// for scoring and are dropped here.
			v, ok := raw[i].(float64)
			if !ok {
				continue
			}
			rec.Columns = append(rec.Columns, h)
			rec.Values[h] = v
		}

		rows = append(rows, teamRow{TeamID: int64(id), TeamName: name, Record: rec})
	}

	return rows, nil
}
