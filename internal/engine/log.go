package engine

// Logger receives progress messages from an optimization run.
// *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}
