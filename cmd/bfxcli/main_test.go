package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/bfxclient/common/crypto"
	"github.com/thrasher-corp/bfxclient/exchanges/mock"
)

// The command line flags bind to package level variables so these tests must
// not run in parallel

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	err := app.RunContext(context.Background(), append([]string{"bfxcli"}, args...))
	return out.String(), err
}

func TestNonceCommand(t *testing.T) {
	out, err := runApp(t, "nonce", "--count", "3", "--jitter", "-1ns")
	require.NoError(t, err)
	lines := strings.Fields(out)
	require.Len(t, lines, 3)
	assert.Less(t, lines[0], lines[1], "nonces must increase")
	assert.Less(t, lines[1], lines[2], "nonces must increase")

	_, err = runApp(t, "nonce", "--count", "0")
	assert.ErrorIs(t, err, errInvalidCount)
}

func TestSignCommand(t *testing.T) {
	out, err := runApp(t, "sign", "--secret", "s3cr3t", "/api/v2/auth/r/wallets", "1700000000000000", "{}")
	require.NoError(t, err)
	mac, err := crypto.GetHMAC(crypto.HashSHA512_384, []byte("/api/v2/auth/r/wallets1700000000000000{}"), []byte("s3cr3t"))
	require.NoError(t, err)
	assert.Equal(t, crypto.HexEncodeToString(mac), strings.TrimSpace(out))

	_, err = runApp(t, "sign", "--secret", "s3cr3t", "/api/v2/auth/r/wallets")
	assert.ErrorIs(t, err, errMissingArgument)

	_, err = runApp(t, "sign", "--secret", "s3cr3t", "/api/v2/auth/r/wallets", "abc")
	assert.Error(t, err, "non numeric nonce should error")
}

func TestDecodeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notification.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1575289447641,"acc_tf",null,null,[[1575289447641,"exchange","margin",null,"USD",null,null,50]],null,"SUCCESS","50 USD transferred"]`), 0o600))

	out, err := runApp(t, "decode", path)
	require.NoError(t, err)

	var got struct {
		Kind    string
		Status  string
		Text    string
		Nesting string
		Payload json.RawMessage
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "acc_tf", got.Kind)
	assert.Equal(t, "SUCCESS", got.Status)
	assert.Equal(t, "50 USD transferred", got.Text)
	assert.Equal(t, "double", got.Nesting)
	assert.JSONEq(t, `[1575289447641,"exchange","margin",null,"USD",null,null,50]`, string(got.Payload))

	_, err = runApp(t, "decode", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStatusCommand(t *testing.T) {
	srv, err := mock.NewServer("", "").Start(&mock.VCRMock{Routes: map[string]map[string][]mock.HTTPResponse{
		"/v2/platform/status": {http.MethodGet: {{Data: json.RawMessage(`[1]`)}}},
	}})
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	cfg := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"exchange":{"maxRetries":0,"api":{"authenticatedSupport":false,"endpoints":{"public":"`+srv.URL+`/v2","auth":"`+srv.URL+`"}}}}`), 0o600))

	out, err := runApp(t, "--config", cfg, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "operative")

	_, err = runApp(t, "--config", cfg, "wallets")
	assert.ErrorIs(t, err, errNoCredentials)
}

func TestColourLogHook(t *testing.T) {
	var out bytes.Buffer
	hook := colourLogHook(&out)
	assert.True(t, hook("[ERROR]", "REQUESTER", "request failed"), "hook must replace the default output")
	assert.True(t, hook("[INFO]", "EXCHANGE", "ok"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[ERROR]")
	assert.Contains(t, lines[0], "\x1b[", "errors should be coloured")
	assert.True(t, strings.HasSuffix(lines[0], "REQUESTER request failed"))
	assert.Equal(t, "[INFO] EXCHANGE ok", lines[1], "info headers are written plain")
}
