// Package scrapers holds what the provider clients share.
package scrapers

import (
	"fmt"
	"net/http/cookiejar"
	"time"
	"yst-fantasy/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// StatusError is returned when a provider responds with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, body)
}

// CheckResponse returns a *StatusError if the response is not a success.
func CheckResponse(provider string, res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}
	return &StatusError{
		Provider:   provider,
		StatusCode: res.StatusCode(),
		Body:       res.String(),
	}
}

// NewCookieJar creates a cookie jar that scopes cookies by the public suffix list.
func NewCookieJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

type ClientOptions struct {
	BaseUrl string
	// Timeout defaults to 30 seconds.
	Timeout time.Duration
	// RequestsPerSecond defaults to 2.
	RequestsPerSecond float64
	// Output receives http dumps, it may be nil.
	Output telemetry.MessageOutput
}

// NewRestyClient creates a rate limited, instrumented http client. `name` is used as
// the tracer name.
func NewRestyClient(name string, opts ClientOptions, tel telemetry.API) (*resty.Client, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	rps := opts.RequestsPerSecond
	if rps == 0 {
		rps = 2
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(timeout)
	jar, err := NewCookieJar()
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)

	// max burst >= rps just means that no requests will be dropped
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	rateLimiter := rate.NewLimiter(rate.Limit(rps), burst)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, tel, name, opts.Output)

	return client, nil
}
