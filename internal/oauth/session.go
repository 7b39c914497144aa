package oauth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"yst-fantasy/internal/components/assert"
	"yst-fantasy/internal/components/chrono"
	"yst-fantasy/internal/oauth1"
)

// Authorizer produces the Authorization header of a fantasy api request. `url` is
// the full url without query and `params` is the query.
type Authorizer interface {
	AuthorizationHeader(ctx context.Context, method, url string, params map[string]string) (string, error)
}

// BearerAuthorizer authorizes with an oauth2 token, refreshing it when it expires.
type BearerAuthorizer struct {
	client *Client
	time   chrono.TimeAPI
	// onRefresh is called with every refreshed token, it may be nil.
	onRefresh func(Token) error

	mutex sync.Mutex
	token Token
}

func NewBearerAuthorizer(client *Client, time chrono.TimeAPI, token Token, onRefresh func(Token) error) *BearerAuthorizer {
	assert.NotNil(client)
	assert.NotNil(time)
	return &BearerAuthorizer{
		client:    client,
		time:      time,
		onRefresh: onRefresh,
		token:     token,
	}
}

func (a *BearerAuthorizer) AuthorizationHeader(ctx context.Context, _, _ string, _ map[string]string) (string, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.token.Expired(a.time.Now()) {
		if a.token.RefreshToken == "" {
			return "", fmt.Errorf("token expired and there is no refresh token")
		}
		token, err := a.client.Refresh(ctx, a.token.RefreshToken)
		if err != nil {
			return "", err
		}
		a.token = token
		if a.onRefresh != nil {
			err = a.onRefresh(token)
			if err != nil {
				return "", err
			}
		}
	}

	tokenType := a.token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return fmt.Sprintf("%s %s", tokenType, a.token.AccessToken), nil
}

// SignedAuthorizer signs every request with oauth1.
type SignedAuthorizer struct {
	Signer         oauth1.Signer
	ConsumerKey    string
	ConsumerSecret string
	// Credentials may be zero, requests are then signed two legged.
	Credentials Credentials
}

func (a SignedAuthorizer) AuthorizationHeader(_ context.Context, method, url string, params map[string]string) (string, error) {
	return a.Signer.Sign(oauth1.Request{
		Method:         method,
		BaseUrl:        url,
		Params:         params,
		ConsumerKey:    a.ConsumerKey,
		ConsumerSecret: a.ConsumerSecret,
		Token:          a.Credentials.Token,
		TokenSecret:    a.Credentials.TokenSecret,
	})
}

// ErrNotAuthorized is returned by Session when no usable credentials were saved.
var ErrNotAuthorized = errors.New("not authorized with yahoo, run `ffdata auth yahoo` first")

// Session picks the authorizer for the fantasy api from the saved tokens.
type Session struct {
	File TokenFile
	Time chrono.TimeAPI

	// OAuth2 is used to refresh saved oauth2 tokens.
	OAuth2 *Client

	// Legacy makes the session sign requests with oauth1, using the saved oauth1
	// credentials if there are any.
	Legacy         bool
	Signer         oauth1.Signer
	ConsumerKey    string
	ConsumerSecret string
}

func (s Session) Authorizer() (Authorizer, error) {
	tokens, err := s.File.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if s.Legacy {
		if s.ConsumerKey == "" || s.ConsumerSecret == "" {
			return nil, fmt.Errorf("oauth1 consumer key and secret are required for signed requests")
		}
		err = s.Signer.Validate()
		if err != nil {
			return nil, err
		}
		authorizer := SignedAuthorizer{
			Signer:         s.Signer,
			ConsumerKey:    s.ConsumerKey,
			ConsumerSecret: s.ConsumerSecret,
		}
		if tokens.OAuth1 != nil {
			authorizer.Credentials = *tokens.OAuth1
		}
		return authorizer, nil
	}

	if tokens.OAuth2 == nil {
		return nil, ErrNotAuthorized
	}
	assert.NotNil(s.OAuth2)
	return NewBearerAuthorizer(s.OAuth2, s.Time, *tokens.OAuth2, func(t Token) error {
		tokens.OAuth2 = &t
		return s.File.Save(tokens)
	}), nil
}
