package log

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Info takes a pointer subLogger struct and string sends to the log output
func Info(sl *SubLogger, data string) {
	stage(sl, levelInfo, func() string { return data })
}

// Infof takes a pointer subLogger struct, string and interface formats sends to the log output
func Infof(sl *SubLogger, data string, v ...any) {
	stage(sl, levelInfo, func() string { return fmt.Sprintf(data, v...) })
}

// Debug takes a pointer subLogger struct and string sends to the log output
func Debug(sl *SubLogger, data string) {
	stage(sl, levelDebug, func() string { return data })
}

// Debugf takes a pointer subLogger struct, string and interface formats sends to the log output
func Debugf(sl *SubLogger, data string, v ...any) {
	stage(sl, levelDebug, func() string { return fmt.Sprintf(data, v...) })
}

// Warn takes a pointer subLogger struct & string and sends to the log output
func Warn(sl *SubLogger, data string) {
	stage(sl, levelWarn, func() string { return data })
}

// Warnf takes a pointer subLogger struct, string and interface formats sends to the log output
func Warnf(sl *SubLogger, data string, v ...any) {
	stage(sl, levelWarn, func() string { return fmt.Sprintf(data, v...) })
}

// Error takes a pointer subLogger struct & string and sends to the log output
func Error(sl *SubLogger, data string) {
	stage(sl, levelError, func() string { return data })
}

// Errorf takes a pointer subLogger struct, string and interface formats sends to the log output
func Errorf(sl *SubLogger, data string, v ...any) {
	stage(sl, levelError, func() string { return fmt.Sprintf(data, v...) })
}

type level uint8

const (
	levelInfo level = iota
	levelDebug
	levelWarn
	levelError
)

func (l Logger) header(lvl level) string {
	switch lvl {
	case levelDebug:
		return l.DebugHeader
	case levelWarn:
		return l.WarnHeader
	case levelError:
		return l.ErrorHeader
	default:
		return l.InfoHeader
	}
}

func (lv Levels) enabled(lvl level) bool {
	switch lvl {
	case levelDebug:
		return lv.Debug
	case levelWarn:
		return lv.Warn
	case levelError:
		return lv.Error
	default:
		return lv.Info
	}
}

// stage formats and writes a log event if the sub logger has the level enabled
func stage(sl *SubLogger, lvl level, msg func() string) {
	mu.RLock()
	defer mu.RUnlock()
	if sl == nil || !sl.levels.enabled(lvl) || sl.output == nil {
		return
	}

	header := logger.header(lvl)
	if customLogHook != nil && customLogHook(header, sl.name, msg()) {
		return
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(logger.Spacer)
	b.WriteString(time.Now().Format(logger.TimestampFormat))
	b.WriteString(logger.Spacer)
	if logger.ShowLogSystemName {
		b.WriteString(sl.name)
		b.WriteString(logger.Spacer)
	}
	b.WriteString(msg())
	b.WriteByte('\n')

	if _, err := sl.output.Write([]byte(b.String())); err != nil {
		displayError(err)
	}
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}
