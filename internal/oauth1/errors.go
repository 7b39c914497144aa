package oauth1

import "fmt"

// ConfigurationError is returned when a request is missing a required credential or
// its parameters are inconsistent with the OAuth parameters.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("oauth1: bad configuration for %s: %s", e.Field, e.Reason)
}

// EncodingError is returned when a parameter cannot be represented as text.
type EncodingError struct {
	Field  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("oauth1: cannot encode %s: %s", e.Field, e.Reason)
}
