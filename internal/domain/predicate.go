package domain

import (
	"fmt"
	"regexp"
)

// MatchAllPattern is used when no pattern is configured or the configured
// one does not compile.
const MatchAllPattern = ".*"

type EmailPredicate interface {
	Match(email string) bool
}

type EmailPredicateFunc func(email string) bool

func (f EmailPredicateFunc) Match(email string) bool {
	return f(email)
}

type RegexpPredicate struct {
	re *regexp.Regexp
}

func NewRegexpPredicate(pattern string) (*RegexpPredicate, error) {
	if pattern == "" {
		pattern = MatchAllPattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile email pattern %q: %w", pattern, err)
	}

	return &RegexpPredicate{re: re}, nil
}

func (p *RegexpPredicate) Match(email string) bool {
	return p.re.MatchString(email)
}

func (p *RegexpPredicate) String() string {
	return p.re.String()
}

// Contributes reports whether a slot's resolved email counts toward the
// aggregate. Unresolved slots never contribute, whatever the predicate says.
func Contributes(predicate EmailPredicate, email string) bool {
	if email == "" || predicate == nil {
		return false
	}

	return predicate.Match(email)
}
