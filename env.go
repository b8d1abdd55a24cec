package sortagg

import "go.uber.org/zap"

// Env carries the process-wide services the aggregation kernel depends on.
// It is constructed once at startup (usually by the config package) and passed
// explicitly to operations.
type Env struct {
	Backend    Backend     // Backend is the table library used to build, sort and concatenate Blocks
	Dispatcher Dispatcher  // Dispatcher executes boundary searches. Defaults to a local worker pool.
	Logger     *zap.Logger // Logger receives diagnostic output. Defaults to a no-op Logger.
	Progress   ProgressFn  // Progress optionally observes dispatched work
}

// Log returns the Logger of this Env, or a no-op Logger
func (e *Env) Log() *zap.Logger {
	if e == nil || e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
