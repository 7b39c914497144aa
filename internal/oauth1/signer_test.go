package oauth1

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"yst-fantasy/internal/components/chrono"

	"github.com/stretchr/testify/require"
)

func fixedSigner(unix int64, nonce string) Signer {
	return NewSigner(chrono.FixedTime{At: time.Unix(unix, 0)}, FixedNonce(nonce))
}

func TestSignGoldenVector(t *testing.T) {
	signer := fixedSigner(1318622958, "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg")

	sig, err := signer.SignDetailed(Request{
		Method:  "post",
		BaseUrl: "https://api.twitter.com/1.1/statuses/update.json",
		Params: map[string]string{
			"status":           "Hello Ladies + Gentlemen, a signed OAuth request!",
			"include_entities": "true",
		},
		ConsumerKey:    "xvz1evFS4wEEPTGEFPHBog",
		ConsumerSecret: "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		Token:          "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		TokenSecret:    "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
	})
	require.NoError(t, err)

	require.Equal(t,
		"POST&https%3A%2F%2Fapi.twitter.com%2F1.1%2Fstatuses%2Fupdate.json&"+
			"include_entities%3Dtrue%26oauth_consumer_key%3Dxvz1evFS4wEEPTGEFPHBog%26"+
			"oauth_nonce%3DkYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg%26oauth_signature_method%3DHMAC-SHA1%26"+
			"oauth_timestamp%3D1318622958%26oauth_token%3D370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb%26"+
			"oauth_version%3D1.0%26status%3DHello%2520Ladies%2520%252B%2520Gentlemen%252C%2520a%2520signed%2520OAuth%2520request%2521",
		sig.BaseString,
	)
	require.Equal(t, "hCtSmYh+iHYCEqBWrE7C7hYmtUk=", sig.Value)
	require.Equal(t, int64(1318622958), sig.Timestamp)
	require.Equal(t, "HMAC-SHA1", sig.Method)
	require.Contains(t, sig.Header, `oauth_token="370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb"`)
	require.Contains(t, sig.Header, `oauth_signature="hCtSmYh%2BiHYCEqBWrE7C7hYmtUk%3D"`)
}

func TestSignHeaderWithoutToken(t *testing.T) {
	signer := fixedSigner(1700000000, "abcdefghijklmnop0123")

	header, err := signer.Sign(Request{
		Method:         "GET",
		BaseUrl:        "https://fantasysports.yahooapis.com/fantasy/v2/game/nfl/players;start=0;count=25",
		Params:         map[string]string{"format": "json"},
		ConsumerKey:    "dj0yJmk9consumer",
		ConsumerSecret: "s3cr3t",
	})
	require.NoError(t, err)
	require.Equal(t,
		`OAuth oauth_consumer_key="dj0yJmk9consumer", oauth_nonce="abcdefghijklmnop0123", `+
			`oauth_signature="hVdrCY4tzL2sOcGrWubxXEv8TgM%3D", oauth_signature_method="HMAC-SHA1", `+
			`oauth_timestamp="1700000000", oauth_version="1.0"`,
		header,
	)
	require.NotContains(t, header, "oauth_token")
}

func TestSignQueryStringEquivalentToParams(t *testing.T) {
	signer := fixedSigner(1700000000, "abcdefghijklmnop0123")
	req := Request{
		Method:         "GET",
		BaseUrl:        "https://fantasysports.yahooapis.com/fantasy/v2/game/nfl/players;start=0;count=25",
		Params:         map[string]string{"format": "json"},
		ConsumerKey:    "dj0yJmk9consumer",
		ConsumerSecret: "s3cr3t",
	}
	expected, err := signer.Sign(req)
	require.NoError(t, err)

	req.BaseUrl = "HTTPS://FantasySports.yahooapis.com:443/fantasy/v2/game/nfl/players;start=0;count=25?format=json#frag"
	req.Params = nil
	actual, err := signer.Sign(req)
	require.NoError(t, err)
	require.Equal(t, expected, actual)
}

func TestSignOrderIndependent(t *testing.T) {
	signer := fixedSigner(1700000000, "abcdefghijklmnop0123")

	keys := []string{"a", "b", "c", "z", "format", "start", "A", "a b"}
	forward := map[string]string{}
	for i, k := range keys {
		forward[k] = strings.Repeat("v", i+1)
	}
	backward := map[string]string{}
	for i := len(keys) - 1; i >= 0; i-- {
		backward[keys[i]] = strings.Repeat("v", i+1)
	}

	sign := func(params map[string]string) string {
		header, err := signer.Sign(Request{
			Method:         "POST",
			BaseUrl:        "https://example.com/resource",
			Params:         params,
			ConsumerKey:    "key",
			ConsumerSecret: "secret",
			Token:          "token",
			TokenSecret:    "token-secret",
		})
		require.NoError(t, err)
		return header
	}

	require.Equal(t, sign(forward), sign(backward))
}

func TestSignIsFreshPerCall(t *testing.T) {
	signer := NewStandardSigner()
	req := Request{
		Method:         "GET",
		BaseUrl:        "https://example.com/resource",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
	}

	first, err := signer.SignDetailed(req)
	require.NoError(t, err)
	second, err := signer.SignDetailed(req)
	require.NoError(t, err)

	require.NotEqual(t, first.Nonce, second.Nonce)
	require.NotEqual(t, first.Value, second.Value)
	require.GreaterOrEqual(t, len(first.Nonce), MinNonceLength)
	require.True(t, validNonce(first.Nonce))

	// same nonce, different clock
	early, err := fixedSigner(1000, "abcdefghijklmnop0123").Sign(req)
	require.NoError(t, err)
	late, err := fixedSigner(2000, "abcdefghijklmnop0123").Sign(req)
	require.NoError(t, err)
	require.NotEqual(t, early, late)
}

func TestSignConcurrent(t *testing.T) {
	signer := NewStandardSigner()

	var mutex sync.Mutex
	nonces := map[string]struct{}{}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sig, err := signer.SignDetailed(Request{
				Method:         "GET",
				BaseUrl:        "https://example.com/resource",
				ConsumerKey:    "key",
				ConsumerSecret: "secret",
			})
			if err != nil {
				t.Error(err)
				return
			}
			mutex.Lock()
			nonces[sig.Nonce] = struct{}{}
			mutex.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, nonces, 32)
}

func TestSignErrors(t *testing.T) {
	base := Request{
		Method:         "GET",
		BaseUrl:        "https://example.com/resource",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
	}

	testCases := []struct {
		name   string
		modify func(r *Request)
		nonce  string
		config bool
		field  string
	}{
		{
			name:   "missing consumer key",
			modify: func(r *Request) { r.ConsumerKey = "" },
			config: true,
			field:  "consumer_key",
		},
		{
			name:   "missing consumer secret",
			modify: func(r *Request) { r.ConsumerSecret = "" },
			config: true,
			field:  "consumer_secret",
		},
		{
			name:   "parameter collides with oauth parameter",
			modify: func(r *Request) { r.Params = map[string]string{"oauth_nonce": "x"} },
			config: true,
			field:  "oauth_nonce",
		},
		{
			name:   "query collides with params",
			modify: func(r *Request) { r.BaseUrl += "?format=json"; r.Params = map[string]string{"format": "xml"} },
			config: true,
			field:  "format",
		},
		{
			name:   "relative url",
			modify: func(r *Request) { r.BaseUrl = "/resource" },
			config: true,
			field:  "base_url",
		},
		{
			name:   "extra parameter without oauth prefix",
			modify: func(r *Request) { r.Extra = map[string]string{"callback": "oob"} },
			config: true,
			field:  "callback",
		},
		{
			name:   "value is not text",
			modify: func(r *Request) { r.Params = map[string]string{"name": "\xff\xfe"} },
			field:  "name",
		},
		{
			name:   "nonce too short",
			modify: func(r *Request) {},
			nonce:  "short",
			field:  "oauth_nonce",
		},
		{
			name:   "nonce not alphanumeric",
			modify: func(r *Request) {},
			nonce:  "abcdefghijklmnop-+/=",
			field:  "oauth_nonce",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			nonce := test.nonce
			if nonce == "" {
				nonce = "abcdefghijklmnop0123"
			}
			req := base
			test.modify(&req)

			_, err := fixedSigner(1700000000, nonce).Sign(req)
			require.Error(t, err)

			if test.config {
				var configErr *ConfigurationError
				require.True(t, errors.As(err, &configErr), err.Error())
				require.Equal(t, test.field, configErr.Field)
				return
			}
			var encodingErr *EncodingError
			require.True(t, errors.As(err, &encodingErr), err.Error())
			require.Equal(t, test.field, encodingErr.Field)
		})
	}
}

func TestSignZeroSigner(t *testing.T) {
	_, err := Signer{}.Sign(Request{
		Method:         "GET",
		BaseUrl:        "https://example.com/resource",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
	})
	var configErr *ConfigurationError
	require.True(t, errors.As(err, &configErr), "expected a configuration error, got %v", err)
	require.Equal(t, "signer", configErr.Field)

	require.NoError(t, fixedSigner(1700000000, "abcdefghijklmnop0123").Validate())
}

func TestSignExtraParameters(t *testing.T) {
	signer := fixedSigner(1700000000, "abcdefghijklmnop0123")
	header, err := signer.Sign(Request{
		Method:         "GET",
		BaseUrl:        "https://api.login.yahoo.com/oauth/v2/get_request_token",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Extra:          map[string]string{"oauth_callback": "oob"},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(header, `OAuth oauth_callback="oob", oauth_consumer_key="key"`), header)

	_, err = signer.Sign(Request{
		Method:         "GET",
		BaseUrl:        "https://example.com",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Extra:          map[string]string{"oauth_timestamp": "1"},
	})
	var configErr *ConfigurationError
	require.True(t, errors.As(err, &configErr))
}
