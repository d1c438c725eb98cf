// Package command is the dispatch core of pokerbot.
//
// A Handler declares a Trigger (a set of literal prefixes or a single regular
// expression), a description used by the help command, and an Execute action.
// Handlers are registered in a Registry at startup; the order of registration
// is significant because the Router stops at the first Handler whose Trigger
// matches.
//
// # Routing
//
// Router.Route is a pure function from an Event to a RoutingResult. It trims
// the message, walks the Registry in order, and for the first match returns
// the Handler together with the Argument (the message with the trigger
// stripped and surrounding whitespace removed).
//
// Router.Dispatch routes an Event and, on a match, runs the Handler on its own
// goroutine so a slow upstream API never blocks the transport. Errors and
// panics raised by a Handler are caught at that boundary, logged, and turned
// into at most one inline reply.
//
// # Ordering
//
// Replies of a single invocation reach the Sink in the order the Handler
// produced them. Replies of different invocations may interleave.
package command
