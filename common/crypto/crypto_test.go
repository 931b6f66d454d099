package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexEncodeToString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "737472696e67", HexEncodeToString([]byte("string")))
}

func TestGetHMAC(t *testing.T) {
	t.Parallel()
	expectedsha512384 := []byte{
		121, 203, 109, 105, 178, 68, 179, 57, 21, 217, 76, 82, 94, 100, 210, 1, 55,
		201, 8, 232, 194, 168, 165, 58, 192, 26, 193, 167, 254, 183, 172, 4, 189,
		158, 158, 150, 173, 33, 119, 125, 94, 13, 125, 89, 241, 184, 166, 128,
	}

	sha384, err := GetHMAC(HashSHA512_384, []byte("Hello,World"), []byte("1234"))
	require.NoError(t, err, "GetHMAC must not error")
	assert.Equal(t, expectedsha512384, sha384, "GetHMAC should return the expected SHA384 digest")

	h := hmac.New(sha512.New, []byte("1234"))
	h.Write([]byte("Hello,World"))
	sha512Sum, err := GetHMAC(HashSHA512, []byte("Hello,World"), []byte("1234"))
	require.NoError(t, err, "GetHMAC must not error")
	assert.Equal(t, h.Sum(nil), sha512Sum, "GetHMAC should match the standard library digest")

	sha256Sum, err := GetHMAC(HashSHA256, []byte("Hello,World"), []byte("1234"))
	require.NoError(t, err, "GetHMAC must not error")
	assert.Len(t, sha256Sum, 32)

	_, err = GetHMAC(HashSHA512_384, []byte("Hello,World"), nil)
	assert.ErrorIs(t, err, ErrEmptyHMACKey)

	_, err = GetHMAC(1337, []byte("Hello,World"), []byte("1234"))
	assert.ErrorIs(t, err, errUnsupportedHashFn)
}
