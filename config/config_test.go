package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "bfxclient", c.Name)
	assert.Equal(t, defaultName, c.Exchange.Name)
	assert.Equal(t, defaultHTTPTimeout, c.Exchange.HTTPTimeout)
	assert.Equal(t, DefaultUserAgent, c.Exchange.HTTPUserAgent)
	assert.Equal(t, defaultMaxRetries, c.Exchange.MaxRetries)
	assert.Equal(t, defaultNonceJitter, c.Exchange.NonceJitter)
	assert.Equal(t, DefaultPublicURL, c.Exchange.API.Endpoints.Public)
	assert.Equal(t, DefaultAuthURL, c.Exchange.API.Endpoints.Auth)
	assert.False(t, c.Exchange.API.AuthenticatedSupport, "authenticated support must be disabled without credentials")
	require.NotNil(t, c.Logging.Enabled)
	assert.True(t, *c.Logging.Enabled)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"name": "desk",
		"exchange": {
			"verbose": true,
			"httpTimeout": "30s",
			"maxRetries": 1,
			"nonceJitter": "100us",
			"api": {
				"credentials": {"key": "abc", "secret": "def"},
				"endpoints": {"public": "http://127.0.0.1:9000/v2"}
			}
		},
		"logging": {"enabled": true, "level": "DEBUG", "output": "stderr"}
	}`)
	c, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "desk", c.Name)
	assert.True(t, c.Exchange.Verbose)
	assert.Equal(t, 30*time.Second, c.Exchange.HTTPTimeout)
	assert.Equal(t, 1, c.Exchange.MaxRetries)
	assert.Equal(t, 100*time.Microsecond, c.Exchange.NonceJitter)
	assert.Equal(t, "http://127.0.0.1:9000/v2", c.Exchange.API.Endpoints.Public)
	assert.Equal(t, DefaultAuthURL, c.Exchange.API.Endpoints.Auth)
	assert.True(t, c.Exchange.API.AuthenticatedSupport)
	assert.Equal(t, "abc", c.Exchange.API.Credentials.Key)
	assert.Equal(t, "DEBUG", c.Logging.Level)
	assert.Equal(t, "stderr", c.Logging.Output)

	yml := writeFile(t, "config.yaml", "exchange:\n  httpUserAgent: desk-agent\n")
	c, err = Load(yml, "")
	require.NoError(t, err)
	assert.Equal(t, "desk-agent", c.Exchange.HTTPUserAgent)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"), "")
	require.Error(t, err)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("BFX_API_KEY", "envkey")
	t.Setenv("BFX_API_SECRET", "envsecret")
	t.Setenv("BFX_EXCHANGE_MAXRETRIES", "5")
	t.Setenv("BFX_EXCHANGE_VERBOSE", "true")

	path := writeFile(t, "config.json", `{"exchange": {"maxRetries": 1, "api": {"credentials": {"key": "filekey", "secret": "filesecret"}}}}`)
	c, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "envkey", c.Exchange.API.Credentials.Key, "environment should override the config file")
	assert.Equal(t, "envsecret", c.Exchange.API.Credentials.Secret)
	assert.Equal(t, 5, c.Exchange.MaxRetries)
	assert.True(t, c.Exchange.Verbose)
	assert.True(t, c.Exchange.API.AuthenticatedSupport)
}

func TestLoadEnvFile(t *testing.T) {
	t.Cleanup(func() {
		os.Unsetenv("BFX_API_KEY")
		os.Unsetenv("BFX_API_SECRET")
	})
	envFile := writeFile(t, ".env", "BFX_API_KEY=dotkey\nBFX_API_SECRET=dotsecret\n")
	c, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "dotkey", c.Exchange.API.Credentials.Key)
	assert.Equal(t, "dotsecret", c.Exchange.API.Credentials.Secret)

	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err, "a missing env file must not error")
}

func TestExchangeConfigValidate(t *testing.T) {
	t.Parallel()
	valid := func() ExchangeConfig {
		return ExchangeConfig{
			API: APIConfig{
				AuthenticatedSupport: true,
				Credentials:          APICredentialsConfig{Key: "k", Secret: "s"},
			},
		}
	}

	e := valid()
	require.NoError(t, e.Validate())
	assert.Equal(t, defaultName, e.Name)
	assert.Equal(t, defaultHTTPTimeout, e.HTTPTimeout)
	assert.Equal(t, DefaultPublicURL, e.API.Endpoints.Public)
	assert.True(t, e.API.AuthenticatedSupport)

	e = valid()
	e.MaxRetries = -1
	require.ErrorIs(t, e.Validate(), ErrInvalidMaxRetries)

	e = valid()
	e.NonceJitter = 2 * time.Millisecond
	require.ErrorIs(t, e.Validate(), ErrInvalidNonceJitter)

	e = valid()
	e.API.Endpoints.Auth = "ftp://api.bitfinex.com"
	require.ErrorIs(t, e.Validate(), ErrInvalidEndpoint)

	e = valid()
	e.API.Endpoints.Public = "not a url"
	require.ErrorIs(t, e.Validate(), ErrInvalidEndpoint)

	e = valid()
	e.ProxyAddress = "://bad"
	require.ErrorIs(t, e.Validate(), ErrInvalidEndpoint)

	e = valid()
	e.API.Credentials = APICredentialsConfig{Key: DefaultAPIKey, Secret: DefaultAPISecret}
	require.NoError(t, e.Validate())
	assert.False(t, e.API.AuthenticatedSupport, "placeholder credentials must disable authenticated support")
}

func TestCheckLoggerConfig(t *testing.T) {
	t.Parallel()
	c := &Config{}
	c.CheckLoggerConfig()
	require.NotNil(t, c.Logging.Enabled)
	require.NotNil(t, c.Logging.LoggerFileConfig)
	assert.NotEmpty(t, c.Logging.LoggerFileConfig.FileName)
	assert.Positive(t, c.Logging.LoggerFileConfig.MaxSize)
	require.NotNil(t, c.Logging.AdvancedSettings.ShowLogSystemName)
}
