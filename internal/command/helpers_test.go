package command

import (
	"context"
	"errors"
	"sync"
)

type sentLine struct {
	Dest Destination
	Text string
}

// recordingSink collects every line sent to it.
type recordingSink struct {
	mu    sync.Mutex
	lines []sentLine
	err   error
}

func (s *recordingSink) Send(_ context.Context, dest Destination, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.lines = append(s.lines, sentLine{Dest: dest, Text: text})
	return nil
}

func (s *recordingSink) Lines() []sentLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentLine(nil), s.lines...)
}

func (s *recordingSink) Texts() []string {
	var out []string
	for _, l := range s.Lines() {
		out = append(out, l.Text)
	}
	return out
}

// fakeHandler is a configurable Handler for routing tests.
type fakeHandler struct {
	name    string
	trigger Trigger
	exec    func(ctx context.Context, inv *Invocation) error

	mu    sync.Mutex
	calls []string
}

func newFake(name string, trigger Trigger) *fakeHandler {
	return &fakeHandler{name: name, trigger: trigger}
}

func (f *fakeHandler) Name() string        { return f.name }
func (f *fakeHandler) Trigger() Trigger    { return f.trigger }
func (f *fakeHandler) Description() string { return f.name + " help" }

func (f *fakeHandler) Execute(ctx context.Context, inv *Invocation) error {
	f.mu.Lock()
	f.calls = append(f.calls, inv.Argument)
	f.mu.Unlock()
	if f.exec != nil {
		return f.exec(ctx, inv)
	}
	return inv.Reply(ctx, f.name+":"+inv.Argument)
}

func (f *fakeHandler) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

var errUpstream = errors.New("upstream exploded")

func channelEvent(text string) Event {
	return Event{
		Destination: Destination{Platform: "irc", Channel: "#pokerbot"},
		Sender:      "alice",
		Text:        text,
	}
}
