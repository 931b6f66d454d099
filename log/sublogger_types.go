package log

import "io"

// Global vars related to the logger package
var (
	subLoggers = map[string]*SubLogger{}

	Global    *SubLogger
	ConfigMgr *SubLogger

	RequestSys  *SubLogger
	ExchangeSys *SubLogger
)

// SubLogger defines a sub logger, an independently levelled and routed
// stream of log events such as REQUESTER or EXCHANGE
type SubLogger struct {
	name   string
	levels Levels
	output io.Writer
}

// Name returns the upper case name of the sub logger
func (sl *SubLogger) Name() string {
	if sl == nil {
		return ""
	}
	return sl.name
}
