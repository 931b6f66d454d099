package mock

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/bfxclient/common/crypto"
)

const (
	testKey    = "key"
	testSecret = "secret"
)

func testMock() *VCRMock {
	return &VCRMock{Routes: map[string]map[string][]HTTPResponse{
		"/v2/platform/status": {
			http.MethodGet: {{Data: json.RawMessage(`[1]`)}},
		},
		"/v2/book/tBTCUSD/P0": {
			http.MethodGet: {
				{Data: json.RawMessage(`[[100,1,2]]`), QueryString: "len=25"},
				{Data: json.RawMessage(`[]`)},
			},
		},
		"/v2/auth/w/order/cancel": {
			http.MethodPost: {
				{Data: json.RawMessage(`["cancelled"]`), BodyParams: "id=1234"},
			},
		},
	}}
}

func signedRequest(t *testing.T, url, path string, nonce uint64, body []byte, secret string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+path, bytes.NewReader(body))
	require.NoError(t, err)
	n := strconv.FormatUint(nonce, 10)
	mac, err := crypto.GetHMAC(crypto.HashSHA512_384, []byte("/api"+path+n+string(body)), []byte(secret))
	require.NoError(t, err)
	req.Header.Set("bfx-apikey", testKey)
	req.Header.Set("bfx-nonce", n)
	req.Header.Set("bfx-signature", crypto.HexEncodeToString(mac))
	return req
}

func do(t *testing.T, c *http.Client, req *http.Request) (int, string) {
	t.Helper()
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestRouterNoRoutes(t *testing.T) {
	t.Parallel()
	_, err := NewServer(testKey, testSecret).Router(nil)
	assert.ErrorIs(t, err, errNoRoutes)
	_, err = NewServer(testKey, testSecret).Router(&VCRMock{})
	assert.ErrorIs(t, err, errNoRoutes)
}

func TestServerPublic(t *testing.T) {
	t.Parallel()
	srv, err := NewServer(testKey, testSecret).Start(testMock())
	require.NoError(t, err)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v2/platform/status", http.NoBody)
	require.NoError(t, err)
	code, body := do(t, srv.Client(), req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, `[1]`, body)

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/v2/book/tBTCUSD/P0?len=25", http.NoBody)
	require.NoError(t, err)
	_, body = do(t, srv.Client(), req)
	assert.Equal(t, `[[100,1,2]]`, body, "query string should select the first response")

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/v2/book/tBTCUSD/P0", http.NoBody)
	require.NoError(t, err)
	_, body = do(t, srv.Client(), req)
	assert.Equal(t, `[]`, body, "unmatched query should fall through to the unconditional response")
}

func TestServerAuthenticated(t *testing.T) {
	t.Parallel()
	s := NewServer(testKey, testSecret)
	srv, err := s.Start(testMock())
	require.NoError(t, err)
	defer srv.Close()

	const path = "/v2/auth/w/order/cancel"
	body := []byte(`{"id":1234}`)

	code, resp := do(t, srv.Client(), signedRequest(t, srv.URL, path, 100, body, testSecret))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, `["cancelled"]`, resp)

	code, resp = do(t, srv.Client(), signedRequest(t, srv.URL, path, 100, body, testSecret))
	assert.Equal(t, http.StatusInternalServerError, code, "a repeated nonce must be rejected")
	assert.Equal(t, errNonceSmallPayload, resp)

	code, resp = do(t, srv.Client(), signedRequest(t, srv.URL, path, 101, body, "wrong"))
	assert.Equal(t, http.StatusUnauthorized, code, "a bad signature must be rejected")
	assert.Equal(t, errInvalidKeyPayload, resp)

	code, _ = do(t, srv.Client(), signedRequest(t, srv.URL, path, 102, []byte(`{"id":1}`), testSecret))
	assert.Equal(t, http.StatusNotFound, code, "unmatched body params should not be served")

	assert.Equal(t, []uint64{100, 102}, s.Nonces())
}

func TestNewVCRServer(t *testing.T) {
	t.Parallel()
	_, _, err := NewVCRServer("", testKey, testSecret)
	assert.Error(t, err, "NewVCRServer should error without a path")

	payload, err := json.Marshal(testMock())
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "mock.json")
	require.NoError(t, os.WriteFile(file, payload, 0o600))

	u, client, err := NewVCRServer(file, testKey, testSecret)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodGet, u+"/v2/platform/status", http.NoBody)
	require.NoError(t, err)
	code, body := do(t, client, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, `[1]`, body)
}
