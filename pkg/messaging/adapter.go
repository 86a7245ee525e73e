package messaging

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Handler processes one message. A returned error is logged and the
// listener keeps going.
type Handler func(msg []byte) error

// Listen runs handler for every message on channel until ctx is done.
// The returned channel closes after the last handler call has returned.
func Listen(ctx context.Context, broker Broker, channel string, handler Handler) (<-chan struct{}, error) {
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			if err := handler(msg); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("message handler failed")
			}
		}
	}()
	return done, nil
}
