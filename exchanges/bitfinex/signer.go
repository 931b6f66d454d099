package bitfinex

import (
	"errors"
	"fmt"

	"github.com/thrasher-corp/bfxclient/common/crypto"
	"github.com/thrasher-corp/bfxclient/exchanges/nonce"
)

// Authentication header names
const (
	HeaderNonce     = "bfx-nonce"
	HeaderAPIKey    = "bfx-apikey"
	HeaderSignature = "bfx-signature"
)

// ErrSigning is returned when the HMAC primitive rejects the secret key
var ErrSigning = errors.New("signing error")

var errCredentialsUnset = errors.New("api credentials unset")

// Sign returns the lower case hex HMAC-SHA384 of path, the decimal nonce and
// payload concatenated without separators, keyed by secret
func Sign(secret []byte, path string, n nonce.Value, payload []byte) (string, error) {
	ns := n.String()
	msg := make([]byte, 0, len(path)+len(ns)+len(payload))
	msg = append(msg, path...)
	msg = append(msg, ns...)
	msg = append(msg, payload...)

	mac, err := crypto.GetHMAC(crypto.HashSHA512_384, msg, secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return crypto.HexEncodeToString(mac), nil
}

// Signer holds an immutable credential pair and builds the authentication
// headers for requests made with it
type Signer struct {
	key       string
	secret    []byte
	userAgent string
}

// NewSigner returns a Signer for the supplied credentials
func NewSigner(key, secret, userAgent string) *Signer {
	return &Signer{
		key:       key,
		secret:    []byte(secret),
		userAgent: userAgent,
	}
}

// Key returns the public API key
func (s *Signer) Key() string {
	return s.key
}

// Headers signs the request and returns its complete header set
func (s *Signer) Headers(path string, n nonce.Value, payload []byte) (map[string]string, error) {
	if s == nil || s.key == "" {
		return nil, errCredentialsUnset
	}
	sig, err := Sign(s.secret, path, n, payload)
	if err != nil {
		return nil, err
	}
	h := map[string]string{
		HeaderNonce:     n.String(),
		HeaderAPIKey:    s.key,
		HeaderSignature: sig,
		"Content-Type":  "application/json",
	}
	if s.userAgent != "" {
		h["User-Agent"] = s.userAgent
	}
	return h, nil
}
