// Package oauth implements the yahoo login handshakes and keeps the resulting
// credentials around for the fantasy api client.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
	"yst-fantasy/internal/components/assert"
	"yst-fantasy/internal/components/chrono"
	"yst-fantasy/internal/components/telemetry"
	"yst-fantasy/internal/scrapers"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("yst.oauth")

const (
	YahooLoginUrl = "https://api.login.yahoo.com/oauth2/request_auth"
	YahooTokenUrl = "https://api.login.yahoo.com/oauth2/get_token"
)

const (
	report_oauth2_exchange_code = "oauth2.exchange-code"
	report_oauth2_refresh       = "oauth2.refresh"
)

// expirySkew is how long before its actual expiry a token is considered expired.
const expirySkew = time.Minute

type AuthCodeRequest struct {
	ClientId    string
	RedirectUri string
	// Scope may be empty, yahoo then uses the scopes the app was registered with.
	Scope    string
	Language string
}

// GetLoginUrl builds the url the user has to visit to authorize the app.
func GetLoginUrl(ctx context.Context, req AuthCodeRequest, baseLoginUrl string) (string, error) {
	_, span := tracer.Start(ctx, "GetLoginUrl")
	defer span.End()

	endpoint, err := url.Parse(baseLoginUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse base login url")
		return "", err
	}

	values := endpoint.Query()
	values.Add("client_id", req.ClientId)
	values.Add("redirect_uri", req.RedirectUri)
	if req.Scope != "" {
		values.Add("scope", req.Scope)
	}
	if req.Language != "" {
		values.Add("language", req.Language)
	}

	nonce := make([]byte, 16)
	_, err = rand.Read(nonce)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate 16 random bytes")
		return "", err
	}

	state := hex.EncodeToString(nonce)
	values.Add("state", state)
	values.Add("response_type", "code")

	span.SetAttributes(
		attribute.String("client_id", req.ClientId),
		attribute.String("redirect_uri", req.RedirectUri),
		attribute.String("scope", req.Scope),
		attribute.String("state", state),
	)

	endpoint.RawQuery = values.Encode()

	return endpoint.String(), nil
}

// Token is an oauth2 token as yahoo issues it.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	YahooGuid    string    `json:"xoauth_yahoo_guid,omitempty"`
}

// Expired reports whether the token is expired or about to be at `now`.
func (t Token) Expired(now time.Time) bool {
	return !now.Add(expirySkew).Before(t.ExpiresAt)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	YahooGuid    string `json:"xoauth_yahoo_guid"`
}

type ClientOptions struct {
	ClientId     string
	ClientSecret string
	RedirectUri  string
	// TokenUrl defaults to YahooTokenUrl.
	TokenUrl string
	Output   telemetry.MessageOutput
}

// Client exchanges authorization codes and refresh tokens for access tokens.
type Client struct {
	http *resty.Client
	opts ClientOptions
	time chrono.TimeAPI
	tel  telemetry.API
}

func NewClient(opts ClientOptions, time chrono.TimeAPI, tel telemetry.API) (*Client, error) {
	assert.NotNil(time)
	assert.NotNil(tel)
	if opts.TokenUrl == "" {
		opts.TokenUrl = YahooTokenUrl
	}
	tel = telemetry.NewScopedAPI("yahoo_oauth2", tel)

	httpClient, err := scrapers.NewRestyClient("yst.oauth.oauth2", scrapers.ClientOptions{
		Output: opts.Output,
	}, tel)
	if err != nil {
		return nil, err
	}
	httpClient.SetBasicAuth(opts.ClientId, opts.ClientSecret)

	return &Client{
		http: httpClient,
		opts: opts,
		time: time,
		tel:  tel,
	}, nil
}

func (c *Client) requestToken(ctx context.Context, reportId string, form map[string]string) (Token, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(c.opts.TokenUrl)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("fetch: %w", err))
		return Token{}, err
	}
	err = scrapers.CheckResponse("yahoo_oauth2", res)
	if err != nil {
		c.tel.ReportBroken(reportId, err)
		return Token{}, err
	}

	var body tokenResponse
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		err = fmt.Errorf("json unmarshal: %w", err)
		c.tel.ReportBroken(reportId, err)
		return Token{}, err
	}
	if body.AccessToken == "" {
		err = fmt.Errorf("token response is missing access_token")
		c.tel.ReportBroken(reportId, err)
		return Token{}, err
	}

	return Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		TokenType:    body.TokenType,
		ExpiresAt:    c.time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
		YahooGuid:    body.YahooGuid,
	}, nil
}

// ExchangeCode trades the code the user got from the login url for a token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Token, error) {
	ctx, span := tracer.Start(ctx, "ExchangeCode")
	defer span.End()

	token, err := c.requestToken(ctx, report_oauth2_exchange_code, map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": c.opts.RedirectUri,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to exchange code")
	}
	return token, err
}

// Refresh obtains a new access token. Yahoo may not return a new refresh token, in
// which case the given one is kept.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	ctx, span := tracer.Start(ctx, "Refresh")
	defer span.End()

	token, err := c.requestToken(ctx, report_oauth2_refresh, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
		"redirect_uri":  c.opts.RedirectUri,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to refresh token")
		return Token{}, err
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return token, nil
}
