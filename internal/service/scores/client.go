package scores

import (
	"context"
	"fmt"

	"github.com/notiabet/courtedge/internal/domain/models"
	pkghttp "github.com/notiabet/courtedge/pkg/http"
)

// scoreboardResponse mirrors the live scoreboard payload. Team identity is
// split into city and name; snapshots and schedule use the joined form.
type scoreboardResponse struct {
	Scoreboard struct {
		Games []struct {
			GameStatus int           `json:"gameStatus"`
			HomeTeam   scoreboardTeam `json:"homeTeam"`
			AwayTeam   scoreboardTeam `json:"awayTeam"`
		} `json:"games"`
	} `json:"scoreboard"`
}

type scoreboardTeam struct {
	TeamCity string `json:"teamCity"`
	TeamName string `json:"teamName"`
	Score    int    `json:"score"`
}

func (t scoreboardTeam) fullName() string {
	if t.TeamCity == "" {
		return t.TeamName
	}
	return t.TeamCity + " " + t.TeamName
}

// Client polls the league's live scoreboard.
type Client struct {
	http *pkghttp.Client
	url  string
}

func NewClient(httpClient *pkghttp.Client, scoreboardURL string) *Client {
	return &Client{http: httpClient, url: scoreboardURL}
}

// Scores returns the current scoreboard keyed by "Home:Away".
func (c *Client) Scores(ctx context.Context) (map[string]models.LiveScore, error) {
	var resp scoreboardResponse
	err := c.http.SendAndParseWithRetry(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.url,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch scoreboard: %w", err)
	}

	out := make(map[string]models.LiveScore, len(resp.Scoreboard.Games))
	for _, g := range resp.Scoreboard.Games {
		key := g.HomeTeam.fullName() + ":" + g.AwayTeam.fullName()
		out[key] = models.LiveScore{
			Status:    statusFromCode(g.GameStatus),
			HomeScore: g.HomeTeam.Score,
			AwayScore: g.AwayTeam.Score,
		}
	}
	return out, nil
}

func statusFromCode(code int) string {
	switch code {
	case 2:
		return models.GameStatusLive
	case 3:
		return models.GameStatusFinal
	default:
		return models.GameStatusScheduled
	}
}
