package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thrasher-corp/bfxclient/common/convert"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	errSubloggerConfigIsNil  = errors.New("sublogger config is nil")
	errUnhandledOutputWriter = errors.New("unhandled output writer")
	errSubLoggerNotFound     = errors.New("sub logger not found")
	errFileSettingsUnset     = errors.New("file output requested but file settings are unset")
)

func getWriters(s *SubLoggerConfig, file io.Writer) (io.Writer, error) {
	if s == nil {
		return nil, errSubloggerConfigIsNil
	}
	mw, err := MultiWriter()
	if err != nil {
		return nil, err
	}
	for _, output := range strings.Split(s.Output, "|") {
		var writer io.Writer
		switch strings.ToLower(strings.TrimSpace(output)) {
		case "stdout", "console":
			writer = os.Stdout
		case "stderr":
			writer = os.Stderr
		case "file":
			if file == nil {
				return nil, errFileSettingsUnset
			}
			writer = file
		default:
			return nil, fmt.Errorf("%w: %s", errUnhandledOutputWriter, output)
		}
		if err = mw.Add(writer); err != nil {
			return nil, err
		}
	}
	return mw, nil
}

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() Config {
	return Config{
		Enabled: convert.BoolPtr(true),
		SubLoggerConfig: SubLoggerConfig{
			Level:  "INFO|WARN|ERROR",
			Output: "console",
		},
		LoggerFileConfig: &loggerFileConfig{
			FileName: "bfxclient.log",
			Rotate:   convert.BoolPtr(false),
			MaxSize:  DefaultMaxFileSize,
		},
		AdvancedSettings: advancedSettings{
			ShowLogSystemName: convert.BoolPtr(true),
			Spacer:            spacer,
			TimeStampFormat:   timestampFormat,
			Headers: headers{
				Info:  "[INFO]",
				Warn:  "[WARN]",
				Debug: "[DEBUG]",
				Error: "[ERROR]",
			},
		},
	}
}

// fileWriter returns a rotating log file writer for the supplied settings
func fileWriter(fc *loggerFileConfig, logPath string) io.Writer {
	if fc == nil || fc.FileName == "" {
		return nil
	}
	maxSize := fc.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	lj := &lumberjack.Logger{
		Filename: fc.FileName,
		MaxSize:  maxSize,
	}
	if logPath != "" {
		lj.Filename = logPath + string(os.PathSeparator) + fc.FileName
	}
	if fc.Rotate != nil && *fc.Rotate {
		lj.MaxBackups = fc.MaxBackups
	} else {
		// A single file that is truncated by rotation once it exceeds MaxSize
		lj.MaxBackups = 1
	}
	return lj
}

func newLogger(c *Config) Logger {
	l := Logger{
		TimestampFormat: c.AdvancedSettings.TimeStampFormat,
		Spacer:          c.AdvancedSettings.Spacer,
		InfoHeader:      c.AdvancedSettings.Headers.Info,
		ErrorHeader:     c.AdvancedSettings.Headers.Error,
		DebugHeader:     c.AdvancedSettings.Headers.Debug,
		WarnHeader:      c.AdvancedSettings.Headers.Warn,
	}
	if c.AdvancedSettings.ShowLogSystemName != nil {
		l.ShowLogSystemName = *c.AdvancedSettings.ShowLogSystemName
	}
	return l
}

// SetupGlobalLogger configures every registered sub logger from the supplied
// configuration, with per sub logger overrides applied last. logPath is
// prepended to the log file name when set.
func SetupGlobalLogger(c *Config, logPath string) error {
	if c == nil {
		return errSubloggerConfigIsNil
	}
	mu.Lock()
	defer mu.Unlock()

	file := fileWriter(c.LoggerFileConfig, logPath)
	enabled := c.Enabled == nil || *c.Enabled
	for _, sl := range subLoggers {
		if !enabled {
			sl.levels = Levels{}
			sl.output = nil
			continue
		}
		output, err := getWriters(&c.SubLoggerConfig, file)
		if err != nil {
			return err
		}
		sl.levels = splitLevel(c.Level)
		sl.output = output
	}

	if enabled {
		for x := range c.SubLoggers {
			output, err := getWriters(&c.SubLoggers[x], file)
			if err != nil {
				return err
			}
			if err := configureSubLogger(c.SubLoggers[x].Name, c.SubLoggers[x].Level, output); err != nil {
				return err
			}
		}
	}

	logger = newLogger(c)
	globalLogConfig = *c
	return nil
}

func configureSubLogger(subLogger, levels string, output io.Writer) error {
	sl, found := subLoggers[strings.ToUpper(subLogger)]
	if !found {
		return fmt.Errorf("%w: %v", errSubLoggerNotFound, subLogger)
	}
	sl.output = output
	sl.levels = splitLevel(levels)
	return nil
}

func splitLevel(level string) (l Levels) {
	for _, lvl := range strings.Split(level, "|") {
		switch strings.ToUpper(strings.TrimSpace(lvl)) {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}

func registerNewSubLogger(subLogger string) *SubLogger {
	temp := &SubLogger{
		name:   strings.ToUpper(subLogger),
		output: os.Stdout,
		levels: splitLevel(globalLogConfig.Level),
	}
	subLoggers[temp.name] = temp
	return temp
}

// register all loggers at package init()
func init() {
	logger = newLogger(&globalLogConfig)

	Global = registerNewSubLogger("LOG")
	ConfigMgr = registerNewSubLogger("CONFIG")
	RequestSys = registerNewSubLogger("REQUESTER")
	ExchangeSys = registerNewSubLogger("EXCHANGE")
}
