package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Message is a formatted event ready for delivery.
type Message struct {
	Kind   EventKind `json:"kind"`
	ChatID int64     `json:"chat_id"`
	Text   string    `json:"text"`
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

const (
	DefaultBuffer  = 256
	DefaultTimeout = 5 * time.Second
)

// Dispatcher queues events and delivers them from Run. Notify never
// blocks: when the queue is full the event is dropped and logged.
type Dispatcher struct {
	sender  Sender
	queue   chan Event
	timeout time.Duration
	log     *slog.Logger
}

func NewDispatcher(s Sender, buffer int, timeout time.Duration, log *slog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{sender: s, queue: make(chan Event, buffer), timeout: timeout, log: log}
}

func (d *Dispatcher) Notify(ctx context.Context, ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("notification dropped, queue full", "kind", ev.Kind)
	}
}

// Run delivers until ctx is done, then flushes whatever is still queued.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case ev := <-d.queue:
			d.deliver(ctx, ev)
		case <-ctx.Done():
			d.flush(context.WithoutCancel(ctx))
			return
		}
	}
}

func (d *Dispatcher) flush(ctx context.Context) {
	for {
		select {
		case ev := <-d.queue:
			d.deliver(ctx, ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	text, err := Format(ev)
	if err != nil {
		d.log.Error("notification format failed", "kind", ev.Kind, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, Message{Kind: ev.Kind, ChatID: ev.ChatID, Text: text}); err != nil {
		d.log.Error("notification delivery failed", "kind", ev.Kind, "err", err)
	}
}

// Fanout sends to every sender and joins their errors.
type Fanout []Sender

func (f Fanout) Send(ctx context.Context, m Message) error {
	var errs []error
	for _, s := range f {
		if err := s.Send(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSender writes messages to the log. Used when no channel is configured.
type LogSender struct{ Log *slog.Logger }

func (l LogSender) Send(ctx context.Context, m Message) error {
	l.Log.Info("notification", "kind", m.Kind, "chat_id", m.ChatID, "text", m.Text)
	return nil
}
