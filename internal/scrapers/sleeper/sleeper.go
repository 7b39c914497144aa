// Package sleeper lists players through the public sleeper api.
package sleeper

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"yst-fantasy/internal/components/assert"
	"yst-fantasy/internal/components/telemetry"
	"yst-fantasy/internal/reconcile"
	"yst-fantasy/internal/scrapers"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://api.sleeper.app"

const report_client_get_players = "client.get-players"

type Options struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string
	// Sport defaults to "nfl".
	Sport  string
	Output telemetry.MessageOutput
}

type Client struct {
	http  *resty.Client
	sport string
	tel   telemetry.API
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Sport == "" {
		opts.Sport = "nfl"
	}
	tel = telemetry.NewScopedAPI("sleeper_scraper", tel)

	httpClient, err := scrapers.NewRestyClient("yst.scrapers.sleeper", scrapers.ClientOptions{
		BaseUrl: opts.BaseUrl,
		Output:  opts.Output,
	}, tel)
	if err != nil {
		return nil, err
	}
	return &Client{http: httpClient, sport: opts.Sport, tel: tel}, nil
}

type player struct {
	PlayerId  string `json:"player_id"`
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Team      string `json:"team"`
	Position  string `json:"position"`
}

// GetPlayers lists every player sleeper knows of, sorted by player id.
func (c *Client) GetPlayers(ctx context.Context) ([]reconcile.RawPlayer, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("sport", c.sport).
		Get("/v1/players/{sport}")
	if err != nil {
		c.tel.ReportBroken(report_client_get_players, fmt.Errorf("fetch: %w", err))
		return nil, err
	}
	err = scrapers.CheckResponse("sleeper", res)
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
	var byId map[string]json.RawMessage
	err := json.Unmarshal(body, &byId)
	if err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	ids := make([]string, 0, len(byId))
	for id := range byId {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]reconcile.RawPlayer, 0, len(ids))
	for _, id := range ids {
		raw := byId[id]
		var p player
		err = json.Unmarshal(raw, &p)
		if err != nil {
			return nil, fmt.Errorf("json unmarshal player %s: %w", id, err)
		}
		name := p.FullName
		if name == "" {
			name = strings.TrimSpace(p.FirstName + " " + p.LastName)
		}
		playerId := p.PlayerId
		if playerId == "" {
			playerId = id
		}
		out = append(out, reconcile.RawPlayer{
			Id:       playerId,
			Name:     name,
			Team:     p.Team,
			Position: p.Position,
			Data:     raw,
		})
	}
	return out, nil
}
