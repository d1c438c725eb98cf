package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/sirupsen/logrus"
)

// RoutingResult is the outcome of matching one event.
type RoutingResult struct {
	Handler  Handler
	Argument string
	Matched  bool
}

// Router matches events against a frozen Registry and runs the chosen handler.
type Router struct {
	registry *Registry
	inflight sync.WaitGroup
}

// NewRouter freezes reg and returns a Router over it.
func NewRouter(reg *Registry) *Router {
	reg.Freeze()
	return &Router{registry: reg}
}

// Registry returns the registry the router reads from.
func (r *Router) Registry() *Registry { return r.registry }

// Route finds the first handler whose trigger matches the event. It has no
// side effects.
func (r *Router) Route(ev Event) RoutingResult {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return RoutingResult{}
	}
	for _, h := range r.registry.handlers {
		if arg, ok := h.Trigger().Match(text); ok {
			return RoutingResult{Handler: h, Argument: arg, Matched: true}
		}
	}
	return RoutingResult{}
}

// Dispatch routes ev and, if a handler matched, runs it on a new goroutine.
// It reports whether a handler was started. Unmatched messages are ignored
// without a reply.
func (r *Router) Dispatch(ctx context.Context, ev Event, sink Sink) bool {
	res := r.Route(ev)
	if !res.Matched {
		logger.WithFields(logrus.Fields{
			"platform": ev.Destination.Platform,
			"channel":  ev.Destination.Channel,
		}).Debug("message-matched-no-handler")
		return false
	}

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		r.invoke(ctx, res, ev, sink)
	}()
	return true
}

// Wait blocks until every dispatched invocation has returned.
func (r *Router) Wait() { r.inflight.Wait() }

// invoke runs one handler and contains whatever goes wrong inside it.
func (r *Router) invoke(ctx context.Context, res RoutingResult, ev Event, sink Sink) {
	h := res.Handler
	log := logger.ForHandler(h.Name()).WithFields(logrus.Fields{
		"platform": ev.Destination.Platform,
		"channel":  ev.Destination.Channel,
		"sender":   ev.Sender,
		"argument": res.Argument,
	})

	defer func() {
		if p := recover(); p != nil {
			log.WithField("panic", fmt.Sprint(p)).Error("handler-panic-recovered")
			r.reportFailure(ctx, ev, sink, h.Name())
		}
	}()

	log.Info("handler-invoked")
	err := h.Execute(ctx, NewInvocation(ev, res.Argument, sink))
	if err == nil {
		log.Debug("handler-completed")
		return
	}

	op := h.Name()
	var opErr *OpError
	if errors.As(err, &opErr) && opErr.Op != "" {
		op = opErr.Op
	}
	log.WithFields(logrus.Fields{
		"operation": op,
		"error":     err,
	}).Error("handler-failed")
	r.reportFailure(ctx, ev, sink, op)
}

func (r *Router) reportFailure(ctx context.Context, ev Event, sink Sink, op string) {
	if sink == nil {
		return
	}
	if err := sink.Send(ctx, ev.Destination, FailureMessage(op)); err != nil {
		logger.WithFields(logrus.Fields{
			"operation": op,
			"error":     err,
		}).Warn("failed-to-report-handler-failure")
	}
}

// FailureMessage is the line sent to a channel when operation op fails.
func FailureMessage(op string) string {
	return fmt.Sprintf("Sorry, %s failed", op)
}
