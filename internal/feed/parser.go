// Package feed extracts the account identity and unread count from the
// Gmail inbox Atom feed.
package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bnema/gmail-checker/internal/domain"
)

// Namespace of the Atom 0.3 feed served under /feed/atom/.
const Namespace = "http://purl.org/atom/ns#"

var titlePattern = regexp.MustCompile(`^Gmail - Inbox for (\S+)$`)

type Result struct {
	Email       string
	UnreadCount int
}

type textNode struct {
	Text string `xml:",chardata"`
}

type document struct {
	XMLName    xml.Name   `xml:"http://purl.org/atom/ns# feed"`
	Titles     []textNode `xml:"http://purl.org/atom/ns# title"`
	FullCounts []textNode `xml:"http://purl.org/atom/ns# fullcount"`
}

// Parse never panics; every failure is a *domain.ParseError.
func Parse(body []byte) (Result, error) {
	var doc document
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&doc); err != nil {
		return Result{}, &domain.ParseError{Kind: domain.ParseErrorMissingTitle, Detail: "could not decode feed", Err: err}
	}

	if len(doc.Titles) == 0 {
		return Result{}, &domain.ParseError{Kind: domain.ParseErrorMissingTitle, Detail: "could not find title node"}
	}
	title := strings.TrimSpace(doc.Titles[0].Text)
	match := titlePattern.FindStringSubmatch(title)
	if match == nil {
		return Result{}, &domain.ParseError{Kind: domain.ParseErrorTitleFormat, Detail: fmt.Sprintf("could not parse email from %q", title)}
	}

	if len(doc.FullCounts) == 0 {
		return Result{}, &domain.ParseError{Kind: domain.ParseErrorMissingCount, Detail: "could not find fullcount node"}
	}
	raw := strings.TrimSpace(doc.FullCounts[0].Text)
	count, err := strconv.ParseUint(raw, 10, 31)
	if err != nil {
		return Result{}, &domain.ParseError{Kind: domain.ParseErrorCountFormat, Detail: fmt.Sprintf("could not parse %q", raw), Err: err}
	}

	return Result{Email: match[1], UnreadCount: int(count)}, nil
}
