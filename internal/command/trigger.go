package command

import (
	"regexp"
	"strings"
)

// Trigger decides whether a message is meant for a Handler. A Trigger is
// either a set of literal prefixes or one regular expression, never both.
type Trigger struct {
	prefixes []string
	pattern  *regexp.Regexp
}

// Prefixes returns a Trigger matching messages that start with any of the
// given prefixes. Prefixes are aliases of the same command and are tested in
// the order given. Matching is case-sensitive.
func Prefixes(prefixes ...string) Trigger {
	return Trigger{prefixes: append([]string(nil), prefixes...)}
}

// Pattern returns a Trigger matching messages accepted by expr. It panics if
// expr does not compile, like regexp.MustCompile; triggers are declared at
// startup.
//
// When expr has capture groups the first group is the argument, otherwise the
// argument is whatever follows the match.
func Pattern(expr string) Trigger {
	return Trigger{pattern: regexp.MustCompile(expr)}
}

// String renders the trigger for help and log output.
func (t Trigger) String() string {
	if t.pattern != nil {
		return t.pattern.String()
	}
	return strings.Join(t.prefixes, ", ")
}

// Match tests an already trimmed message and returns the extracted argument.
func (t Trigger) Match(text string) (string, bool) {
	if t.pattern != nil {
		return t.matchPattern(text)
	}
	for _, prefix := range t.prefixes {
		if prefix == "" {
			continue
		}
		if strings.HasPrefix(text, prefix) {
			return strings.TrimSpace(text[len(prefix):]), true
		}
	}
	return "", false
}

func (t Trigger) matchPattern(text string) (string, bool) {
	loc := t.pattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", false
	}
	if t.pattern.NumSubexp() > 0 {
		// group 1 did not participate
		if loc[2] < 0 {
			return "", true
		}
		return strings.TrimSpace(text[loc[2]:loc[3]]), true
	}
	return strings.TrimSpace(text[loc[1]:]), true
}
