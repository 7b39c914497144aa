package oauth

import (
	"context"
	"fmt"
	"net/url"
	"yst-fantasy/internal/components/assert"
	"yst-fantasy/internal/components/telemetry"
	"yst-fantasy/internal/oauth1"
	"yst-fantasy/internal/scrapers"

	"github.com/go-resty/resty/v2"
)

const (
	YahooRequestTokenUrl = "https://api.login.yahoo.com/oauth/v2/get_request_token"
	YahooAuthorizeUrl    = "https://api.login.yahoo.com/oauth/v2/request_auth"
	YahooAccessTokenUrl  = "https://api.login.yahoo.com/oauth/v2/get_token"
)

const (
	report_oauth1_request_token = "oauth1.request-token"
	report_oauth1_access_token  = "oauth1.access-token"
)

// OutOfBand is the callback used when the verifier is shown to the user instead of
// being redirected somewhere.
const OutOfBand = "oob"

// Credentials is an oauth1 token and its secret.
type Credentials struct {
	Token       string `json:"oauth_token"`
	TokenSecret string `json:"oauth_token_secret"`
	// SessionHandle is returned by yahoo along with access tokens, it is kept for
	// reference only.
	SessionHandle string `json:"oauth_session_handle,omitempty"`
	YahooGuid     string `json:"xoauth_yahoo_guid,omitempty"`
}

type LegacyOptions struct {
	ConsumerKey    string
	ConsumerSecret string
	// The endpoints default to yahoo's.
	RequestTokenUrl string
	AuthorizeUrl    string
	AccessTokenUrl  string
	Output          telemetry.MessageOutput
}

// LegacyClient runs the three legged oauth1 flow.
type LegacyClient struct {
	http   *resty.Client
	opts   LegacyOptions
	signer oauth1.Signer
	tel    telemetry.API
}

func NewLegacyClient(opts LegacyOptions, signer oauth1.Signer, tel telemetry.API) (*LegacyClient, error) {
	assert.NotNil(tel)
	err := signer.Validate()
	if err != nil {
		return nil, err
	}
	if opts.RequestTokenUrl == "" {
		opts.RequestTokenUrl = YahooRequestTokenUrl
	}
	if opts.AuthorizeUrl == "" {
		opts.AuthorizeUrl = YahooAuthorizeUrl
	}
	if opts.AccessTokenUrl == "" {
		opts.AccessTokenUrl = YahooAccessTokenUrl
	}
	tel = telemetry.NewScopedAPI("yahoo_oauth1", tel)

	httpClient, err := scrapers.NewRestyClient("yst.oauth.oauth1", scrapers.ClientOptions{
		Output: opts.Output,
	}, tel)
	if err != nil {
		return nil, err
	}
	return &LegacyClient{
		http:   httpClient,
		opts:   opts,
		signer: signer,
		tel:    tel,
	}, nil
}

func (c *LegacyClient) post(ctx context.Context, reportId, endpoint string, req oauth1.Request) (Credentials, error) {
	req.Method = "POST"
	req.BaseUrl = endpoint
	req.ConsumerKey = c.opts.ConsumerKey
	req.ConsumerSecret = c.opts.ConsumerSecret

	header, err := c.signer.Sign(req)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("sign: %w", err))
		return Credentials{}, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", header).
		Post(endpoint)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("fetch: %w", err))
		return Credentials{}, err
	}
	err = scrapers.CheckResponse("yahoo_oauth1", res)
	if err != nil {
		c.tel.ReportBroken(reportId, err)
		return Credentials{}, err
	}

	creds, err := parseCredentials(res.String())
	if err != nil {
		c.tel.ReportBroken(reportId, err)
		return Credentials{}, err
	}
	return creds, nil
}

func parseCredentials(body string) (Credentials, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return Credentials{}, fmt.Errorf("parse token response: %w", err)
	}
	creds := Credentials{
		Token:         values.Get("oauth_token"),
		TokenSecret:   values.Get("oauth_token_secret"),
		SessionHandle: values.Get("oauth_session_handle"),
		YahooGuid:     values.Get("xoauth_yahoo_guid"),
	}
	if creds.Token == "" || creds.TokenSecret == "" {
		return Credentials{}, fmt.Errorf("token response is missing oauth_token or oauth_token_secret")
	}
	return creds, nil
}

// RequestToken obtains temporary credentials, `callback` is where the user is sent
// after authorizing (OutOfBand to have the verifier shown instead).
func (c *LegacyClient) RequestToken(ctx context.Context, callback string) (Credentials, error) {
	ctx, span := tracer.Start(ctx, "RequestToken")
	defer span.End()

	return c.post(ctx, report_oauth1_request_token, c.opts.RequestTokenUrl, oauth1.Request{
		Extra: map[string]string{"oauth_callback": callback},
	})
}

// AuthorizeUrl is the url the user visits to authorize the temporary credentials.
func (c *LegacyClient) AuthorizeUrl(requestToken Credentials) (string, error) {
	endpoint, err := url.Parse(c.opts.AuthorizeUrl)
	if err != nil {
		return "", err
	}
	values := endpoint.Query()
	values.Set("oauth_token", requestToken.Token)
	endpoint.RawQuery = values.Encode()
	return endpoint.String(), nil
}

// AccessToken exchanges the authorized temporary credentials and the verifier the user
// was shown for token credentials.
func (c *LegacyClient) AccessToken(ctx context.Context, requestToken Credentials, verifier string) (Credentials, error) {
	ctx, span := tracer.Start(ctx, "AccessToken")
	defer span.End()

	return c.post(ctx, report_oauth1_access_token, c.opts.AccessTokenUrl, oauth1.Request{
		Token:       requestToken.Token,
		TokenSecret: requestToken.TokenSecret,
		Extra:       map[string]string{"oauth_verifier": verifier},
	})
}
