package log

import (
	"io"
	"sync"
)

const (
	timestampFormat = " 02/01/2006 15:04:05 "
	spacer          = " | "
	// DefaultMaxFileSize for logger rotation file in megabytes
	DefaultMaxFileSize = 100
)

var (
	logger = Logger{}
	// globalLogConfig holds global configuration options for logger
	globalLogConfig = GenDefaultSettings()

	// read/write mutex for logger
	mu = &sync.RWMutex{}
)

// Config holds configuration settings for the logger
type Config struct {
	Enabled          *bool `json:"enabled" mapstructure:"enabled"`
	SubLoggerConfig  `mapstructure:",squash"`
	LoggerFileConfig *loggerFileConfig `json:"fileSettings,omitempty" mapstructure:"fileSettings"`
	AdvancedSettings advancedSettings  `json:"advancedSettings" mapstructure:"advancedSettings"`
	SubLoggers       []SubLoggerConfig `json:"subloggers,omitempty" mapstructure:"subloggers"`
}

type advancedSettings struct {
	ShowLogSystemName *bool   `json:"showLogSystemName" mapstructure:"showLogSystemName"`
	Spacer            string  `json:"spacer" mapstructure:"spacer"`
	TimeStampFormat   string  `json:"timeStampFormat" mapstructure:"timeStampFormat"`
	Headers           headers `json:"headers" mapstructure:"headers"`
}

type headers struct {
	Info  string `json:"info" mapstructure:"info"`
	Warn  string `json:"warn" mapstructure:"warn"`
	Debug string `json:"debug" mapstructure:"debug"`
	Error string `json:"error" mapstructure:"error"`
}

// SubLoggerConfig holds sub logger configuration settings
type SubLoggerConfig struct {
	Name   string `json:"name,omitempty" mapstructure:"name"`
	Level  string `json:"level" mapstructure:"level"`
	Output string `json:"output" mapstructure:"output"`
}

type loggerFileConfig struct {
	FileName   string `json:"filename,omitempty" mapstructure:"filename"`
	Rotate     *bool  `json:"rotate,omitempty" mapstructure:"rotate"`
	MaxSize    int    `json:"maxsize,omitempty" mapstructure:"maxsize"`
	MaxBackups int    `json:"maxbackups,omitempty" mapstructure:"maxbackups"`
}

// Logger each instance of logger settings
type Logger struct {
	ShowLogSystemName                                bool
	TimestampFormat                                  string
	InfoHeader, ErrorHeader, DebugHeader, WarnHeader string
	Spacer                                           string
}

// Levels flags for each sub logger type
type Levels struct {
	Info, Debug, Warn, Error bool
}

type multiWriter struct {
	writers []io.Writer
	mu      sync.Mutex
}
