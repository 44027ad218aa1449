package driven

import "context"

// ChangeWatcher reports changes to persisted data made outside this process.
type ChangeWatcher interface {
	// Watch calls onChange after each detected change until ctx is cancelled.
	// It blocks, so run it in its own goroutine.
	Watch(ctx context.Context, onChange func()) error

	// Close stops watching and releases resources.
	Close() error
}
