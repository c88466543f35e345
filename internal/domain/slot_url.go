package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

var slotURLPattern = regexp.MustCompile(fmt.Sprintf(`^%s/mail/u/([0-%d])(?:/|$)`, regexp.QuoteMeta(mailHost), MaxAccounts-1))

// SlotIndexFromURL returns the multiple sign-in slot a mailbox URL points at.
// Only single-digit slots inside [0, MaxAccounts) match.
func SlotIndexFromURL(rawURL string) (int, bool) {
	match := slotURLPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return 0, false
	}

	index, err := strconv.Atoi(match[1])
	if err != nil || !ValidSlot(index) {
		return 0, false
	}

	return index, true
}
