package command

import "strings"

// Choice pairs a predicate over a lower-cased argument with the value it selects.
type Choice[T any] struct {
	Match func(arg string) bool
	Value T
}

// Choose picks a value for a free-form argument. An empty argument selects
// def. Otherwise the argument is trimmed and lower-cased and the choices are
// tested in order; the first satisfied predicate wins. ok is false when no
// choice matched.
func Choose[T any](arg string, def T, choices []Choice[T]) (value T, ok bool) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" {
		return def, true
	}
	for _, c := range choices {
		if c.Match(arg) {
			return c.Value, true
		}
	}
	var zero T
	return zero, false
}

// HasPrefix returns a predicate true when the argument starts with any of prefixes.
func HasPrefix(prefixes ...string) func(string) bool {
	return func(arg string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(arg, p) {
				return true
			}
		}
		return false
	}
}

// Equals returns a predicate true when the argument is one of literals.
func Equals(literals ...string) func(string) bool {
	return func(arg string) bool {
		for _, l := range literals {
			if arg == l {
				return true
			}
		}
		return false
	}
}
