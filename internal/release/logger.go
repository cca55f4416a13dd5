package release

// Logger receives diagnostic output from the pipeline. Logging volume never
// changes control flow or the pass/fail outcome of any stage.
type Logger interface {
	// Debug logs detail that is only interesting in verbose mode.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs normal progress messages.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs non-fatal conditions, such as deprecation notices from
	// the release manifest.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs failures before they are returned to the caller.
	Error(msg string, keysAndValues ...interface{})
}

// noopLogger discards everything. It is the default when no Logger is
// provided.
type noopLogger struct{}

func (noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

func defaultLogger() Logger {
	return noopLogger{}
}
