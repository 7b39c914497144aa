// Package tank01 lists players through the tank01 nfl api on rapidapi.
package tank01

import (
	"context"
	"encoding/json"
	"fmt"
	"yst-fantasy/internal/components/assert"
	"yst-fantasy/internal/components/telemetry"
	"yst-fantasy/internal/reconcile"
	"yst-fantasy/internal/scrapers"

	"github.com/go-resty/resty/v2"
)

const DefaultHost = "tank01-nfl-live-in-game-real-time-statistics-nfl.p.rapidapi.com"

const report_client_get_players = "client.get-players"

type Options struct {
	ApiKey string
	// Host defaults to DefaultHost, it is sent as X-RapidAPI-Host.
	Host string
	// BaseUrl defaults to https://<Host>.
	BaseUrl string
	Output  telemetry.MessageOutput
}

type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.ApiKey)
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = "https://" + opts.Host
	}
	tel = telemetry.NewScopedAPI("tank01_scraper", tel)

	httpClient, err := scrapers.NewRestyClient("yst.scrapers.tank01", scrapers.ClientOptions{
		BaseUrl: opts.BaseUrl,
		Output:  opts.Output,
	}, tel)
	if err != nil {
		return nil, err
	}
	httpClient.SetHeader("X-RapidAPI-Key", opts.ApiKey)
	httpClient.SetHeader("X-RapidAPI-Host", opts.Host)

	return &Client{http: httpClient, tel: tel}, nil
}

type playerListResponse struct {
	StatusCode int               `json:"statusCode"`
	Body       []json.RawMessage `json:"body"`
	Error      string            `json:"error"`
}

type player struct {
	PlayerId string `json:"playerID"`
	LongName string `json:"longName"`
	Team     string `json:"team"`
	Pos      string `json:"pos"`
}

// GetPlayers lists every player tank01 knows of in the order it returns them.
func (c *Client) GetPlayers(ctx context.Context) ([]reconcile.RawPlayer, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get("/getNFLPlayerList")
	if err != nil {
		c.tel.ReportBroken(report_client_get_players, fmt.Errorf("fetch: %w", err))
		return nil, err
	}
	err = scrapers.CheckResponse("tank01", res)
	if err != nil {
		c.tel.ReportBroken(report_client_get_players, err)
		return nil, err
	}

	players, err := decodePlayers(res.Body())
	if err != nil {
		c.tel.ReportBroken(report_client_get_players, err)
		return nil, err
	}
	c.tel.ReportCount(report_client_get_players, int64(len(players)))
	return players, nil
}

func decodePlayers(body []byte) ([]reconcile.RawPlayer, error) {
	var res playerListResponse
	err := json.Unmarshal(body, &res)
	if err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	// rapidapi errors can come back with a 200 and the real status in the body
	if res.StatusCode != 0 && (res.StatusCode < 200 || res.StatusCode > 299) {
		return nil, &scrapers.StatusError{
			Provider:   "tank01",
			StatusCode: res.StatusCode,
			Body:       res.Error,
		}
	}

	out := make([]reconcile.RawPlayer, 0, len(res.Body))
	for i, raw := range res.Body {
		var p player
		err = json.Unmarshal(raw, &p)
		if err != nil {
			return nil, fmt.Errorf("json unmarshal player %d: %w", i, err)
		}
		out = append(out, reconcile.RawPlayer{
			Id:       p.PlayerId,
			Name:     p.LongName,
			Team:     p.Team,
			Position: p.Pos,
			Data:     raw,
		})
	}
	return out, nil
}
