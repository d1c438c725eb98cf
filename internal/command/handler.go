package command

import (
	"context"
	"fmt"
)

// Handler is one bot command.
//
// Handlers are stateless apart from read-only configuration and collaborators
// passed to their constructor. Execute may block on network I/O; it runs on
// its own goroutine and must bound its upstream calls with a timeout.
type Handler interface {
	// Name is a short identifier used in logs and generic error replies.
	Name() string
	// Trigger returns the prefixes or pattern the handler answers to.
	Trigger() Trigger
	// Description is the help line for the handler.
	Description() string
	// Execute runs the command. A returned error is logged and reported to
	// the channel as a single generic line.
	Execute(ctx context.Context, inv *Invocation) error
}

// Invocation is what a Handler receives for one matched message.
type Invocation struct {
	Event    Event
	Argument string

	sink Sink
}

// NewInvocation binds an event and argument to a sink. The Router builds
// invocations; tests of individual handlers use it directly.
func NewInvocation(ev Event, argument string, sink Sink) *Invocation {
	return &Invocation{Event: ev, Argument: argument, sink: sink}
}

// Reply sends one line back to the channel the event came from.
func (inv *Invocation) Reply(ctx context.Context, text string) error {
	if inv.sink == nil {
		return fmt.Errorf("invocation has no sink")
	}
	return inv.sink.Send(ctx, inv.Event.Destination, text)
}

// Replyf formats and sends one line.
func (inv *Invocation) Replyf(ctx context.Context, format string, args ...interface{}) error {
	return inv.Reply(ctx, fmt.Sprintf(format, args...))
}

// OpError reports a failed upstream operation. The Router names Op in the
// reply it sends to the channel; Err only goes to the log.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// Fail wraps err as an OpError for operation op. It returns nil for a nil err.
func Fail(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
