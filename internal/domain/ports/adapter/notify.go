package adapter

import "context"

// Notifier delivers operator-facing notifications (batch completion and the
// like). Implementations must be safe to call from worker goroutines.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
