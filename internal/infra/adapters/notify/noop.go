// File: internal/infra/adapters/notify/noop.go
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"blogforge/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*Noop)(nil)

// Noop logs instead of delivering; used when no telegram token is set.
type Noop struct {
	log *zerolog.Logger
}

func NewNoop(logger *zerolog.Logger) *Noop {
	l := logger.With().Str("component", "notify_noop").Logger()
	return &Noop{log: &l}
}

func (n *Noop) Notify(ctx context.Context, text string) error {
	n.log.Info().Str("text", text).Msg("notification (noop)")
	return nil
}
