// Package yahoo lists players through the yahoo fantasy sports api.
package yahoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"yst-fantasy/internal/components/assert"
	"yst-fantasy/internal/components/telemetry"
	"yst-fantasy/internal/reconcile"
	"yst-fantasy/internal/scrapers"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseUrl = "https://fantasysports.yahooapis.com"
	// PageSize is the most players yahoo returns per request.
	PageSize = 25
)

const (
	report_client_get_players = "client.get-players"
	report_client_get_page    = "client.get-page"
	report_decode_attribute   = "decode.attribute"
)

// Authorizer produces the Authorization header of a request, `url` excludes the query
// which is passed as `params`.
type Authorizer interface {
	AuthorizationHeader(ctx context.Context, method, url string, params map[string]string) (string, error)
}

type Options struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string
	// GameKey is "nfl" or a season specific game key.
	GameKey    string
	Authorizer Authorizer
	// MaxPages stops paging early when > 0.
	MaxPages int
	Output   telemetry.MessageOutput
}

type Client struct {
	http *resty.Client
	opts Options
	tel  telemetry.API
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	assert.NotNil(opts.Authorizer)
	assert.NotEmptyStr(opts.GameKey)
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	opts.BaseUrl = strings.TrimSuffix(opts.BaseUrl, "/")
	tel = telemetry.NewScopedAPI("yahoo_scraper", tel)

	httpClient, err := scrapers.NewRestyClient("yst.scrapers.yahoo", scrapers.ClientOptions{
		BaseUrl: opts.BaseUrl,
		Output:  opts.Output,
	}, tel)
	if err != nil {
		return nil, err
	}
	httpClient.SetHeader("accept", "application/json")

	return &Client{http: httpClient, opts: opts, tel: tel}, nil
}

// GetPlayers pages through every player of the game.
func (c *Client) GetPlayers(ctx context.Context) ([]reconcile.RawPlayer, error) {
	var out []reconcile.RawPlayer
	for page := 0; c.opts.MaxPages <= 0 || page < c.opts.MaxPages; page++ {
		players, err := c.getPage(ctx, page*PageSize)
		if err != nil {
			c.tel.ReportBroken(report_client_get_players, err, page)
			return nil, err
		}
		out = append(out, players...)
		if len(players) < PageSize {
			break
		}
	}
	c.tel.ReportCount(report_client_get_players, int64(len(out)))
	return out, nil
}

func (c *Client) getPage(ctx context.Context, start int) ([]reconcile.RawPlayer, error) {
	path := fmt.Sprintf("/fantasy/v2/game/%s/players;start=%d;count=%d", c.opts.GameKey, start, PageSize)
	params := map[string]string{"format": "json"}

	header, err := c.opts.Authorizer.AuthorizationHeader(ctx, "GET", c.opts.BaseUrl+path, params)
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", header).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	err = scrapers.CheckResponse("yahoo", res)
	if err != nil {
		return nil, err
	}

	players, err := decodePlayers(res.Body(), c.tel)
	if err != nil {
		c.tel.ReportBroken(report_client_get_page, err, start)
		return nil, err
	}
	c.tel.ReportDebug(report_client_get_page, start, len(players))
	return players, nil
}

type envelope struct {
	FantasyContent struct {
		Game []json.RawMessage `json:"game"`
	} `json:"fantasy_content"`
}

type playerWrapper struct {
	Player []json.RawMessage `json:"player"`
}

// decodePlayers decodes a players collection. Yahoo's json is a direct rendition of
// its xml, a player is an array whose first element is an array of objects that
// each hold one or a few attributes, with empty arrays mixed in.
func decodePlayers(body []byte, tel telemetry.API) ([]reconcile.RawPlayer, error) {
	var env envelope
	err := json.Unmarshal(body, &env)
	if err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	var collection json.RawMessage
	for _, part := range env.FantasyContent.Game {
		var fields map[string]json.RawMessage
		if json.Unmarshal(part, &fields) != nil {
			continue
		}
		if players, ok := fields["players"]; ok {
			collection = players
			break
		}
	}
	collection = bytes.TrimSpace(collection)
	// an empty page is rendered as [] instead of an object
	if len(collection) == 0 || collection[0] == '[' {
		return nil, nil
	}

	var entries map[string]json.RawMessage
	err = json.Unmarshal(collection, &entries)
	if err != nil {
		return nil, fmt.Errorf("json unmarshal players: %w", err)
	}

	indices := make([]int, 0, len(entries))
	for key := range entries {
		idx, err := strconv.Atoi(key)
		if err != nil {
			// "count"
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	out := make([]reconcile.RawPlayer, 0, len(indices))
	for _, idx := range indices {
		player, err := decodePlayer(entries[strconv.Itoa(idx)], tel)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", idx, err)
		}
		out = append(out, player)
	}
	return out, nil
}

type playerName struct {
	Full  string `json:"full"`
	First string `json:"first"`
	Last  string `json:"last"`
}

// decodePlayer reads the attributes of a single player. An attribute with an unexpected
// type is reported and left empty, the record is still returned.
func decodePlayer(raw json.RawMessage, tel telemetry.API) (reconcile.RawPlayer, error) {
	var wrapper playerWrapper
	err := json.Unmarshal(raw, &wrapper)
	if err != nil {
		return reconcile.RawPlayer{}, err
	}
	if len(wrapper.Player) == 0 {
		return reconcile.RawPlayer{}, fmt.Errorf("empty player")
	}

	var parts []json.RawMessage
	err = json.Unmarshal(wrapper.Player[0], &parts)
	if err != nil {
		return reconcile.RawPlayer{}, err
	}

	attrs := map[string]json.RawMessage{}
	for _, part := range parts {
		var fields map[string]json.RawMessage
		if json.Unmarshal(part, &fields) != nil {
			continue
		}
		for k, v := range fields {
			attrs[k] = v
		}
	}

	attr := func(key string, out any) {
		value, ok := attrs[key]
		if !ok {
			return
		}
		err := json.Unmarshal(value, out)
		if err != nil {
			tel.ReportDebug(report_decode_attribute, key, err)
		}
	}
	str := func(key string) string {
		var out string
		attr(key, &out)
		return out
	}

	var name playerName
	attr("name", &name)
	full := name.Full
	if full == "" {
		full = strings.TrimSpace(name.First + " " + name.Last)
	}

	data, err := json.Marshal(attrs)
	if err != nil {
		return reconcile.RawPlayer{}, err
	}

	return reconcile.RawPlayer{
		Id:       str("player_key"),
		Name:     full,
		Team:     strings.ToUpper(str("editorial_team_abbr")),
		Position: str("display_position"),
		Data:     data,
	}, nil
}
