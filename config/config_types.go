package config

import (
	"errors"
	"time"

	"github.com/thrasher-corp/bfxclient/log"
)

// Constants declared here are filename strings and defaults
const (
	File               = "config.json"
	EnvFile            = ".env"
	EnvPrefix          = "BFX"
	DefaultAPIKey      = "Key"
	DefaultAPISecret   = "Secret"
	DefaultPublicURL   = "https://api-pub.bitfinex.com/v2"
	DefaultAuthURL     = "https://api.bitfinex.com"
	DefaultUserAgent   = "bfxclient"
	defaultName        = "Bitfinex"
	defaultHTTPTimeout = time.Second * 15
	defaultMaxRetries  = 3
	defaultNonceJitter = 500 * time.Microsecond
)

// Constants here hold some messages
const (
	WarningExchangeAuthAPIDefaultOrEmptyValues = "exchange %s authenticated API support disabled due to default/empty APIKey/Secret values"
)

// Public errors
var (
	ErrInvalidEndpoint    = errors.New("invalid endpoint URL")
	ErrInvalidMaxRetries  = errors.New("max retries cannot be negative")
	ErrInvalidNonceJitter = errors.New("nonce jitter must be below one millisecond")
)

// Config is the overarching object that holds all the information for
// the client
type Config struct {
	Name          string         `json:"name" mapstructure:"name"`
	DataDirectory string         `json:"dataDirectory" mapstructure:"dataDirectory"`
	Logging       log.Config     `json:"logging" mapstructure:"logging"`
	Exchange      ExchangeConfig `json:"exchange" mapstructure:"exchange"`
}

// ExchangeConfig holds all the information needed to talk to the exchange
type ExchangeConfig struct {
	Name          string        `json:"name" mapstructure:"name"`
	Verbose       bool          `json:"verbose" mapstructure:"verbose"`
	HTTPTimeout   time.Duration `json:"httpTimeout" mapstructure:"httpTimeout"`
	HTTPUserAgent string        `json:"httpUserAgent,omitempty" mapstructure:"httpUserAgent"`
	HTTPDebugging bool          `json:"httpDebugging,omitempty" mapstructure:"httpDebugging"`
	ProxyAddress  string        `json:"proxyAddress,omitempty" mapstructure:"proxyAddress"`
	MaxRetries    int           `json:"maxRetries" mapstructure:"maxRetries"`
	NonceJitter   time.Duration `json:"nonceJitter" mapstructure:"nonceJitter"`
	API           APIConfig     `json:"api" mapstructure:"api"`
}

// APIConfig stores the exchange API config
type APIConfig struct {
	AuthenticatedSupport bool                 `json:"authenticatedSupport" mapstructure:"authenticatedSupport"`
	Credentials          APICredentialsConfig `json:"credentials" mapstructure:"credentials"`
	Endpoints            APIEndpointsConfig   `json:"endpoints" mapstructure:"endpoints"`
}

// APICredentialsConfig stores the API credentials
type APICredentialsConfig struct {
	Key    string `json:"key,omitempty" mapstructure:"key"`
	Secret string `json:"secret,omitempty" mapstructure:"secret"`
}

// APIEndpointsConfig stores the API endpoint addresses
type APIEndpointsConfig struct {
	Public string `json:"public" mapstructure:"public"`
	Auth   string `json:"auth" mapstructure:"auth"`
}
