package logger

// Logger is the diagnostic logger shared by commands. Output goes to stderr so
// stdout stays reserved for decisions and reports.
type Logger interface {
	Logf(format string, args ...interface{})
	Log(msg string)
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// nopLogger discards everything. Used by tests and library callers that do
// not care about diagnostics.
type nopLogger struct{}

func (nopLogger) Logf(format string, args ...interface{})   {}
func (nopLogger) Log(msg string)                            {}
func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Warnf(format string, args ...interface{})  {}

// Nop returns a Logger that drops all output
func Nop() Logger { return nopLogger{} }
