package domain

import "strings"

type Settings struct {
	EmailPattern string
}

// Predicate compiles the stored pattern. A pattern that does not compile
// falls back to matching every account; the compile error is returned
// alongside so callers can report it.
func (s Settings) Predicate() (*RegexpPredicate, error) {
	predicate, err := NewRegexpPredicate(strings.TrimSpace(s.EmailPattern))
	if err == nil {
		return predicate, nil
	}

	fallback, _ := NewRegexpPredicate(MatchAllPattern)
	return fallback, err
}
