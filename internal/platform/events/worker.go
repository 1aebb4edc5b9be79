package events

import (
	"context"
	"errors"
	"log/slog"
)

// ErrInboxFull is returned when a buffered notifier has to drop an event.
var ErrInboxFull = errors.New("event inbox full")

// Worker consumes events from a channel and forwards them to a sink. It keeps
// emission off the request path for callers that prefer buffered delivery.
// Sink failures are logged, not fatal; the worker stops only with its context.
type Worker struct {
	sink   Notifier
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Notifier, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Emit(ctx, event); err != nil {
				w.logger.WarnContext(ctx, "failed to forward event",
					"type", string(event.Type),
					"error", err,
				)
			}
		}
	}
}

// ChannelNotifier feeds a Worker. Emit never blocks: when the inbox is full
// the event is dropped, honoring the fire-and-forget contract.
type ChannelNotifier struct {
	inbox chan Event
}

func NewChannelNotifier(size int) *ChannelNotifier {
	return &ChannelNotifier{inbox: make(chan Event, size)}
}

// Inbox exposes the channel for wiring a Worker.
func (n *ChannelNotifier) Inbox() <-chan Event {
	return n.inbox
}

func (n *ChannelNotifier) Emit(_ context.Context, event Event) error {
	select {
	case n.inbox <- event:
		return nil
	default:
		return ErrInboxFull
	}
}
