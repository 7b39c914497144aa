package oauth1

import (
	"github.com/mazen160/go-random"
)

// MinNonceLength is the shortest nonce the signer accepts.
const MinNonceLength = 16

// NonceSource produces single-use random strings.
//
// note: fault injection point
type NonceSource interface {
	Nonce() (string, error)
}

// RandomNonce draws alphanumeric nonces from a cryptographic random source.
type RandomNonce struct {
	Length int
}

func (r RandomNonce) Nonce() (string, error) {
	length := r.Length
	if length < MinNonceLength {
		length = MinNonceLength
	}
	return random.String(length)
}

// FixedNonce always returns the same nonce, it must only be used for tests.
type FixedNonce string

func (f FixedNonce) Nonce() (string, error) {
	return string(f), nil
}

func validNonce(nonce string) bool {
	if len(nonce) < MinNonceLength {
		return false
	}
	for i := 0; i < len(nonce); i++ {
		c := nonce[i]
		alnum := ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') || ('0' <= c && c <= '9')
		if !alnum {
			return false
		}
	}
	return true
}
