package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedServer serves the inbox feed of each slot from inboxes; a slot
// without an entry answers 401 like a signed-out slot.
func feedServer(t *testing.T, inboxes map[int]inbox) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var slot int
		if _, err := fmt.Sscanf(r.URL.Path, "/mail/u/%d/feed/atom/", &slot); err != nil {
			http.NotFound(w, r)
			return
		}
		box, ok := inboxes[slot]
		if !ok {
			http.Error(w, "sign in", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<feed version="0.3" xmlns="http://purl.org/atom/ns#">
<title>Gmail - Inbox for %s</title>
<fullcount>%d</fullcount>
</feed>`, box.email, box.unread)
	}))
	t.Cleanup(server.Close)
	t.Setenv("GMC_FEED_BASE_URL", server.URL)
}

type inbox struct {
	email  string
	unread int
}

var twoInboxes = map[int]inbox{
	0: {email: "me@work.com", unread: 0},
	1: {email: "me@home.org", unread: 5},
}

type statusJSON struct {
	UnreadCount    *int   `json:"unread_count"`
	Badge          string `json:"badge"`
	PreferredIndex int    `json:"preferred_index"`
	PreferredURL   string `json:"preferred_url"`
	Accounts       []struct {
		Index        int    `json:"index"`
		Email        string `json:"email"`
		UnreadCount  *int   `json:"unread_count"`
		Contributing bool   `json:"contributing"`
		Error        string `json:"error"`
		FailureCount int    `json:"failure_count"`
	} `json:"accounts"`
}

func decodeStatus(t *testing.T, stdout string) statusJSON {
	t.Helper()

	var got statusJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &got), stdout)
	return got
}

func TestStatusJSONCountsEveryAccountByDefault(t *testing.T) {
	home := t.TempDir()
	feedServer(t, twoInboxes)

	stdout, _, err := executeCLI(t, home, "status", "--json")
	require.NoError(t, err)

	got := decodeStatus(t, stdout)
	require.NotNil(t, got.UnreadCount)
	assert.Equal(t, 5, *got.UnreadCount)
	assert.Equal(t, "5", got.Badge)
	assert.Equal(t, 1, got.PreferredIndex)
	assert.Equal(t, "https://mail.google.com/mail/u/1/", got.PreferredURL)

	require.Len(t, got.Accounts, 3)
	assert.Equal(t, "me@work.com", got.Accounts[0].Email)
	assert.True(t, got.Accounts[0].Contributing)
	assert.Empty(t, got.Accounts[2].Email)
	assert.Nil(t, got.Accounts[2].UnreadCount)
	assert.Contains(t, got.Accounts[2].Error, "401")
	assert.Equal(t, 1, got.Accounts[2].FailureCount)
}

func TestPatternSetNarrowsCountedAccounts(t *testing.T) {
	home := t.TempDir()
	feedServer(t, twoInboxes)

	stdout, _, err := executeCLI(t, home, "pattern", "set", `@work\.com$`)
	require.NoError(t, err)
	assert.Contains(t, stdout, `email pattern set to @work\.com$`)

	stdout, _, err = executeCLI(t, home, "pattern", "get")
	require.NoError(t, err)
	assert.Equal(t, "@work\\.com$\n", stdout)

	stdout, _, err = executeCLI(t, home, "status", "--json")
	require.NoError(t, err)

	got := decodeStatus(t, stdout)
	require.NotNil(t, got.UnreadCount)
	assert.Equal(t, 0, *got.UnreadCount)
	assert.Empty(t, got.Badge)
	assert.Equal(t, 0, got.PreferredIndex)
	assert.False(t, got.Accounts[1].Contributing)
}

func TestPatternSetMatchingNothingLeavesCountUnknown(t *testing.T) {
	home := t.TempDir()
	feedServer(t, twoInboxes)

	_, _, err := executeCLI(t, home, "pattern", "set", "^nobody@")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "status", "--json")
	require.NoError(t, err)

	got := decodeStatus(t, stdout)
	assert.Nil(t, got.UnreadCount)
	assert.Equal(t, "?", got.Badge)
}

func TestPatternGetDefaultsToMatchAll(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "pattern", "get")
	require.NoError(t, err)
	assert.Equal(t, ".*\n", stdout)
}

func TestPatternSetRejectsInvalidRegexp(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "pattern", "set", "(unclosed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile email pattern")

	_, statErr := os.Stat(filepath.Join(home, ".gmailchecker", "settings.toml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStatusFallsBackWhenStoredPatternIsInvalid(t *testing.T) {
	home := t.TempDir()
	feedServer(t, twoInboxes)
	require.NoError(t, writeSettingsFixture(home, "email_pattern = '(broken'"))

	stdout, stderr, err := executeCLI(t, home, "status", "--json")
	require.NoError(t, err)

	got := decodeStatus(t, stdout)
	require.NotNil(t, got.UnreadCount)
	assert.Equal(t, 5, *got.UnreadCount)
	assert.Contains(t, stderr, "Invalid email pattern")
}

func TestStatusRendersTable(t *testing.T) {
	home := t.TempDir()
	feedServer(t, twoInboxes)

	stdout, _, err := executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Gmail Unread")
	assert.Contains(t, stdout, "0. me@work.com*: 0")
	assert.Contains(t, stdout, "1. me@home.org*: 5")
	assert.Contains(t, stdout, "2. ?: ?")
}

func TestOpenPrintsPreferredURL(t *testing.T) {
	home := t.TempDir()
	feedServer(t, twoInboxes)

	stdout, _, err := executeCLI(t, home, "open")
	require.NoError(t, err)
	assert.Equal(t, "https://mail.google.com/mail/u/1/\n", stdout)

	stdout, _, err = executeCLI(t, home, "open",
		"https://mail.google.com/mail/u/0/#inbox",
		"https://mail.google.com/mail/u/1/#label/receipts",
	)
	require.NoError(t, err)
	assert.Equal(t, "https://mail.google.com/mail/u/1/#label/receipts\n", stdout)
}

func TestCheckSingleSlot(t *testing.T) {
	home := t.TempDir()
	feedServer(t, twoInboxes)

	stdout, _, err := executeCLI(t, home, "check", "1")
	require.NoError(t, err)
	assert.Equal(t, "1. me@home.org*: 5\n", stdout)

	stdout, _, err = executeCLI(t, home, "check", "https://mail.google.com/mail/u/0/#inbox")
	require.NoError(t, err)
	assert.Equal(t, "0. me@work.com*: 0\n", stdout)
}

func TestCheckReportsFailedSlot(t *testing.T) {
	home := t.TempDir()
	feedServer(t, twoInboxes)

	stdout, _, err := executeCLI(t, home, "check", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account 2")
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, "2. ?: ?\n", stdout)
}

func TestCheckRejectsUnknownSlots(t *testing.T) {
	home := t.TempDir()
	feedServer(t, twoInboxes)

	_, _, err := executeCLI(t, home, "check", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	_, _, err = executeCLI(t, home, "check", "https://mail.google.com/mail/u/12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not point at a Gmail account slot")
}

func TestWatchPrintsUpdates(t *testing.T) {
	home := t.TempDir()
	feedServer(t, twoInboxes)

	stdout, _, err := executeCLI(t, home, "watch", "--count", "3")
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(stdout, "unread="))
	assert.Contains(t, stdout, "unread=5 preferred=https://mail.google.com/mail/u/1/")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"login\"")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSettingsFixture(home string, lines ...string) error {
	configDir := filepath.Join(home, ".gmailchecker")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	settings := "version = 1\n" + strings.Join(lines, "\n") + "\n"
	return os.WriteFile(filepath.Join(configDir, "settings.toml"), []byte(settings), 0o600)
}
