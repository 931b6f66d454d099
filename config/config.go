// Package config loads client settings from a JSON or YAML file, an optional
// .env file and BFX_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/thrasher-corp/bfxclient/common/convert"
	"github.com/thrasher-corp/bfxclient/log"
)

// Load builds a Config. Values are layered in increasing precedence: built in
// defaults, the config file at path (skipped when empty), then environment
// variables. envFile, when set, is loaded into the environment first and a
// missing envFile is not an error.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Short aliases for the two values most often supplied through the
	// environment
	if err := v.BindEnv("exchange.api.credentials.key", EnvPrefix+"_EXCHANGE_API_CREDENTIALS_KEY", EnvPrefix+"_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("exchange.api.credentials.secret", EnvPrefix+"_EXCHANGE_API_CREDENTIALS_SECRET", EnvPrefix+"_API_SECRET"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		log.Debugf(log.ConfigMgr, "Using config file %s", v.ConfigFileUsed())
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return c, c.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "bfxclient")
	v.SetDefault("dataDirectory", "")
	v.SetDefault("exchange.name", defaultName)
	v.SetDefault("exchange.verbose", false)
	v.SetDefault("exchange.httpTimeout", defaultHTTPTimeout)
	v.SetDefault("exchange.httpUserAgent", DefaultUserAgent)
	v.SetDefault("exchange.httpDebugging", false)
	v.SetDefault("exchange.proxyAddress", "")
	v.SetDefault("exchange.maxRetries", defaultMaxRetries)
	v.SetDefault("exchange.nonceJitter", defaultNonceJitter)
	v.SetDefault("exchange.api.authenticatedSupport", true)
	v.SetDefault("exchange.api.endpoints.public", DefaultPublicURL)
	v.SetDefault("exchange.api.endpoints.auth", DefaultAuthURL)
}

// Validate checks and defaults all config values
func (c *Config) Validate() error {
	if c.Name == "" {
		c.Name = "bfxclient"
	}
	c.CheckLoggerConfig()
	return c.Exchange.Validate()
}

// CheckLoggerConfig checks to see logger values are present and defaults
// them where they are not
func (c *Config) CheckLoggerConfig() {
	if c.Logging.Enabled == nil || c.Logging.Output == "" {
		c.Logging = log.GenDefaultSettings()
	}

	if c.Logging.AdvancedSettings.ShowLogSystemName == nil {
		c.Logging.AdvancedSettings.ShowLogSystemName = convert.BoolPtr(false)
	}

	if c.Logging.LoggerFileConfig != nil {
		if c.Logging.LoggerFileConfig.FileName == "" {
			c.Logging.LoggerFileConfig.FileName = "log.txt"
		}
		if c.Logging.LoggerFileConfig.Rotate == nil {
			c.Logging.LoggerFileConfig.Rotate = convert.BoolPtr(false)
		}
		if c.Logging.LoggerFileConfig.MaxSize <= 0 {
			log.Warnf(log.ConfigMgr, "Logger rotation size invalid, defaulting to %v", log.DefaultMaxFileSize)
			c.Logging.LoggerFileConfig.MaxSize = log.DefaultMaxFileSize
		}
	}
}

// Validate checks the exchange config values, defaulting the ones that can be
// defaulted and disabling authenticated support when the credentials are
// unusable
func (e *ExchangeConfig) Validate() error {
	if e.Name == "" {
		e.Name = defaultName
	}

	if e.HTTPTimeout <= 0 {
		log.Warnf(log.ConfigMgr, "Exchange %s HTTP Timeout value not set, defaulting to %v.", e.Name, defaultHTTPTimeout)
		e.HTTPTimeout = defaultHTTPTimeout
	}

	if e.HTTPUserAgent == "" {
		e.HTTPUserAgent = DefaultUserAgent
	}

	if e.MaxRetries < 0 {
		return fmt.Errorf("exchange %s: %w", e.Name, ErrInvalidMaxRetries)
	}

	if e.NonceJitter >= time.Millisecond {
		return fmt.Errorf("exchange %s: %w, got %v", e.Name, ErrInvalidNonceJitter, e.NonceJitter)
	}

	if e.API.Endpoints.Public == "" {
		e.API.Endpoints.Public = DefaultPublicURL
	}
	if e.API.Endpoints.Auth == "" {
		e.API.Endpoints.Auth = DefaultAuthURL
	}
	for _, u := range []string{e.API.Endpoints.Public, e.API.Endpoints.Auth} {
		if err := checkURL(u); err != nil {
			return fmt.Errorf("exchange %s: %w", e.Name, err)
		}
	}

	if e.ProxyAddress != "" {
		if err := checkURL(e.ProxyAddress); err != nil {
			return fmt.Errorf("exchange %s proxy: %w", e.Name, err)
		}
	}

	if e.API.AuthenticatedSupport && !e.API.Credentials.Valid() {
		log.Warnf(log.ConfigMgr, WarningExchangeAuthAPIDefaultOrEmptyValues, e.Name)
		e.API.AuthenticatedSupport = false
	}
	return nil
}

// Valid reports whether the credentials are set to something other than the
// placeholder defaults
func (a APICredentialsConfig) Valid() bool {
	return a.Key != "" && a.Secret != "" &&
		a.Key != DefaultAPIKey && a.Secret != DefaultAPISecret
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidEndpoint, raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w %q", ErrInvalidEndpoint, raw)
	}
	return nil
}
