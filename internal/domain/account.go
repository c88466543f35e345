package domain

import (
	"fmt"
	"time"
)

// MaxAccounts is the number of multiple sign-in slots Gmail lets a browser
// use at once. Slot construction and URL parsing both derive from it.
const MaxAccounts = 3

const mailHost = "https://mail.google.com"

type AccountState struct {
	Index          int
	Email          string
	UnreadCount    *int
	LastUpdateTime time.Time
	LastError      error
	FailureCount   int
}

func NewAccountState(index int) AccountState {
	return AccountState{Index: index}
}

// Resolved reports whether the last check of the slot succeeded.
func (s AccountState) Resolved() bool {
	return s.Email != "" && s.UnreadCount != nil
}

func (s *AccountState) Succeed(email string, unreadCount int, at time.Time) {
	count := unreadCount
	s.Email = email
	s.UnreadCount = &count
	s.LastError = nil
	s.LastUpdateTime = at
	s.FailureCount = 0
}

func (s *AccountState) Fail(err error, at time.Time) {
	s.Email = ""
	s.UnreadCount = nil
	s.LastError = err
	s.LastUpdateTime = at
	s.FailureCount++
}

type AccountInfo struct {
	Index          int
	Email          string
	UnreadCount    *int
	IsContributing bool
	LastError      error
	LastUpdateTime time.Time
	FailureCount   int
}

func ValidSlot(index int) bool {
	return index >= 0 && index < MaxAccounts
}

func BaseURL(index int) string {
	return fmt.Sprintf("%s/mail/u/%d/", mailHost, index)
}

func FeedURL(index int) string {
	return BaseURL(index) + "feed/atom/"
}
