// Package oauth1 signs http requests with OAuth 1.0a HMAC-SHA1 (RFC 5849).
package oauth1

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"yst-fantasy/internal/components/assert"
	"yst-fantasy/internal/components/chrono"
)

const (
	SignatureMethod = "HMAC-SHA1"
	Version         = "1.0"
)

// Request is everything needed to sign a single http request.
type Request struct {
	Method string
	// BaseUrl should not carry a query string, if it does the query parameters are
	// signed as if they were in Params.
	BaseUrl string
	// Params are the query or form body parameters of the request.
	Params map[string]string

	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string

	// Extra holds additional protocol parameters (ex. oauth_callback, oauth_verifier),
	// they are signed and written to the header like the rest of the oauth_ parameters.
	Extra map[string]string
}

// Signature is the result of signing a request.
type Signature struct {
	Nonce     string
	Timestamp int64
	Method    string
	Value     string
	// BaseString is the signature base string the value was computed over.
	BaseString string
	// Header is the value of the Authorization header.
	Header string
}

// Signer signs requests. It holds no mutable state so it is safe for concurrent use.
type Signer struct {
	time   chrono.TimeAPI
	nonces NonceSource
}

func NewSigner(time chrono.TimeAPI, nonces NonceSource) Signer {
	assert.NotNil(time)
	assert.NotNil(nonces)
	return Signer{time: time, nonces: nonces}
}

// Validate reports whether the signer was built with NewSigner, the zero Signer has no
// clock or nonce source to sign with.
func (s Signer) Validate() error {
	if s.time == nil || s.nonces == nil {
		return &ConfigurationError{Field: "signer", Reason: "not created with NewSigner"}
	}
	return nil
}

// NewStandardSigner signs using the system clock and 32 character random nonces.
func NewStandardSigner() Signer {
	return NewSigner(chrono.NewStandardTime(), RandomNonce{Length: 32})
}

// Sign returns the Authorization header value for the request.
func (s Signer) Sign(req Request) (string, error) {
	sig, err := s.SignDetailed(req)
	if err != nil {
		return "", err
	}
	return sig.Header, nil
}

type param struct {
	key   string
	value string
}

// SignDetailed is Sign but returns every intermediate value of the signature.
func (s Signer) SignDetailed(req Request) (Signature, error) {
	if err := s.Validate(); err != nil {
		return Signature{}, err
	}
	if req.ConsumerKey == "" {
		return Signature{}, &ConfigurationError{Field: "consumer_key", Reason: "missing"}
	}
	if req.ConsumerSecret == "" {
		return Signature{}, &ConfigurationError{Field: "consumer_secret", Reason: "missing"}
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		return Signature{}, &ConfigurationError{Field: "method", Reason: "missing"}
	}

	baseUrl, queryParams, err := normalizeUrl(req.BaseUrl)
	if err != nil {
		return Signature{}, err
	}

	nonce, err := s.nonces.Nonce()
	if err != nil {
		return Signature{}, &EncodingError{Field: "oauth_nonce", Reason: err.Error()}
	}
	if !validNonce(nonce) {
		return Signature{}, &EncodingError{
			Field:  "oauth_nonce",
			Reason: fmt.Sprintf("nonce must be at least %d alphanumeric characters", MinNonceLength),
		}
	}
	timestamp := s.time.Now().Unix()

	oauthParams := map[string]string{
		"oauth_consumer_key":     req.ConsumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": SignatureMethod,
		"oauth_timestamp":        strconv.FormatInt(timestamp, 10),
		"oauth_version":          Version,
	}
	if req.Token != "" {
		oauthParams["oauth_token"] = req.Token
	}
	for k, v := range req.Extra {
		if !strings.HasPrefix(k, "oauth_") {
			return Signature{}, &ConfigurationError{Field: k, Reason: "extra protocol parameters must start with oauth_"}
		}
		if _, exists := oauthParams[k]; exists {
			return Signature{}, &ConfigurationError{Field: k, Reason: "overrides a generated oauth parameter"}
		}
		oauthParams[k] = v
	}

	merged := make(map[string]string, len(oauthParams)+len(req.Params)+len(queryParams))
	for k, v := range oauthParams {
		merged[k] = v
	}
	for _, extra := range []map[string]string{queryParams, req.Params} {
		for k, v := range extra {
			if _, exists := merged[k]; exists {
				return Signature{}, &ConfigurationError{Field: k, Reason: "parameter collides with another parameter"}
			}
			merged[k] = v
		}
	}

	encoded := make([]param, 0, len(merged))
	for k, v := range merged {
		if err := checkText(k, k); err != nil {
			return Signature{}, err
		}
		if err := checkText(k, v); err != nil {
			return Signature{}, err
		}
		encoded = append(encoded, param{key: Encode(k), value: Encode(v)})
	}
	sortParams(encoded)

	pairs := make([]string, len(encoded))
	for i, p := range encoded {
		pairs[i] = p.key + "=" + p.value
	}
	paramString := strings.Join(pairs, "&")

	baseString := strings.Join([]string{
		method,
		Encode(baseUrl),
		Encode(paramString),
	}, "&")

	if err := checkText("consumer_secret", req.ConsumerSecret); err != nil {
		return Signature{}, err
	}
	if err := checkText("token_secret", req.TokenSecret); err != nil {
		return Signature{}, err
	}
	signingKey := Encode(req.ConsumerSecret) + "&" + Encode(req.TokenSecret)

	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(baseString))
	value := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	oauthParams["oauth_signature"] = value

	return Signature{
		Nonce:      nonce,
		Timestamp:  timestamp,
		Method:     SignatureMethod,
		Value:      value,
		BaseString: baseString,
		Header:     formatHeader(oauthParams),
	}, nil
}

func sortParams(params []param) {
	sort.Slice(params, func(i, j int) bool {
		if params[i].key != params[j].key {
			return params[i].key < params[j].key
		}
		return params[i].value < params[j].value
	})
}

func formatHeader(oauthParams map[string]string) string {
	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, len(keys))
	for i, k := range keys {
		fields[i] = fmt.Sprintf(`%s="%s"`, Encode(k), Encode(oauthParams[k]))
	}
	return "OAuth " + strings.Join(fields, ", ")
}

// normalizeUrl lowercases the scheme and host, drops default ports and the fragment
// and splits off the query string (RFC 5849 3.4.1.2).
func normalizeUrl(raw string) (string, map[string]string, error) {
	if raw == "" {
		return "", nil, &ConfigurationError{Field: "base_url", Reason: "missing"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, &ConfigurationError{Field: "base_url", Reason: err.Error()}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", nil, &ConfigurationError{Field: "base_url", Reason: "must be an absolute url"}
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port != "" && !(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
		host = host + ":" + port
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	var query map[string]string
	if u.RawQuery != "" {
		values, err := url.ParseQuery(u.RawQuery)
		if err != nil {
			return "", nil, &EncodingError{Field: "base_url", Reason: err.Error()}
		}
		query = make(map[string]string, len(values))
		for k, v := range values {
			if len(v) > 1 {
				return "", nil, &ConfigurationError{Field: k, Reason: "repeated query parameters are not supported"}
			}
			query[k] = v[0]
		}
	}

	return scheme + "://" + host + path, query, nil
}
