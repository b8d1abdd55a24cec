package sortagg

import "context"

// A Unit is an independent unit of work which can be executed by a Dispatcher
type Unit interface {
	ID() string                                   // ID returns a unique identifier for this Unit
	Run(ctx context.Context) (interface{}, error) // Run executes this Unit, returning its result
}

// A Handle refers to a Unit which has been submitted to a Dispatcher
type Handle interface {
	ID() string                                    // ID returns the ID of the submitted Unit
	Wait(ctx context.Context) (interface{}, error) // Wait blocks until the Unit completes, returning its result
}

// A Dispatcher schedules Units for execution. Implementations must be safe
// for concurrent submission.
type Dispatcher interface {
	Submit(ctx context.Context, u Unit) (Handle, error)                  // Submit schedules a Unit, returning without waiting for it to complete
	Gather(ctx context.Context, handles []Handle) ([]interface{}, error) // Gather waits for all Handles, returning results in Handle order
}

// ProgressFn observes the progress of a Gather. It is advisory only.
type ProgressFn func(done int, total int)
