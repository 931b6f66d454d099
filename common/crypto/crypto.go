package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
)

// Const declarations for HMAC hash types
const (
	HashSHA256 = iota
	HashSHA512
	HashSHA512_384
)

var (
	// ErrEmptyHMACKey is returned when a HMAC is requested with a zero-length key
	ErrEmptyHMACKey      = errors.New("hmac key is empty")
	errUnsupportedHashFn = errors.New("unsupported hash type")
)

// HexEncodeToString takes in a hexadecimal byte array and returns a string
func HexEncodeToString(input []byte) string {
	return hex.EncodeToString(input)
}

// GetHMAC returns a keyed-hash message authentication code using the desired
// hashtype
func GetHMAC(hashType int, input, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyHMACKey
	}

	var hasher func() hash.Hash
	switch hashType {
	case HashSHA256:
		hasher = sha256.New
	case HashSHA512:
		hasher = sha512.New
	case HashSHA512_384:
		hasher = sha512.New384
	default:
		return nil, fmt.Errorf("%w: %d", errUnsupportedHashFn, hashType)
	}

	h := hmac.New(hasher, key)
	h.Write(input)
	return h.Sum(nil), nil
}
