package status

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/gmail-checker/internal/application"
	"github.com/bnema/gmail-checker/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
}

// Badge is the short unread indicator: "?" while no matching account has
// been resolved, empty when there is no unread mail, the count otherwise.
func Badge(summary application.Summary) string {
	if summary.UnreadCount == nil {
		return "?"
	}
	if *summary.UnreadCount == 0 {
		return ""
	}
	return strconv.Itoa(*summary.UnreadCount)
}

// Tooltip has one line per slot, see TooltipLine.
func Tooltip(summary application.Summary) string {
	lines := make([]string, 0, len(summary.Accounts))
	for _, account := range summary.Accounts {
		lines = append(lines, TooltipLine(account))
	}
	return strings.Join(lines, "\n")
}

// TooltipLine renders "<index>. <email>[*]: <count>", where the star marks
// accounts counted in the badge. Unresolved slots render as "<index>. ?: ?".
func TooltipLine(account domain.AccountInfo) string {
	if account.Email == "" || account.UnreadCount == nil {
		return fmt.Sprintf("%d. ?: ?", account.Index)
	}

	marker := ""
	if account.IsContributing {
		marker = "*"
	}
	return fmt.Sprintf("%d. %s%s: %d", account.Index, account.Email, marker, *account.UnreadCount)
}

func renderView(summary application.Summary, opts RenderOptions, s styles) string {
	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, s.title.Render("Gmail Unread"), " ", renderBadge(summary, s)),
		s.header.Render(fmt.Sprintf("accounts: %d  preferred: %s", len(summary.Accounts), domain.BaseURL(summary.PreferredIndex))),
	}

	parts := make([]string, 0, len(summary.Accounts))
	for _, account := range summary.Accounts {
		parts = append(parts, renderAccount(account, opts, s))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, parts...)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderBadge(summary application.Summary, s styles) string {
	badge := Badge(summary)
	switch {
	case summary.UnreadCount == nil:
		return s.badgeQuiet.Render(badge)
	case badge == "":
		return s.badgeQuiet.Render("0")
	default:
		return s.badgeUnread.Render(badge)
	}
}

func renderAccount(account domain.AccountInfo, opts RenderOptions, s styles) string {
	line := TooltipLine(account)
	switch {
	case account.Email == "":
		line = s.unresolved.Render(line)
	case account.IsContributing:
		line = s.contributing.Render(line)
	default:
		line = s.account.Render(line)
	}

	if checked := formatChecked(account.LastUpdateTime, opts.Now); checked != "" {
		line += " " + s.meta.Render("("+checked+")")
	}

	if account.LastError != nil {
		line += " " + s.warning.Render(fmt.Sprintf("[%s, %s]", account.LastError, failureLabel(account.FailureCount)))
	}

	return line
}

func formatChecked(at, now time.Time) string {
	if at.IsZero() {
		return "pending"
	}
	if now.IsZero() {
		return "checked " + at.Format("15:04")
	}

	elapsed := now.Sub(at)
	if elapsed < time.Minute {
		return "checked just now"
	}
	minutes := int(math.Floor(elapsed.Minutes()))
	if minutes < 60 {
		return fmt.Sprintf("checked %dm ago", minutes)
	}
	return fmt.Sprintf("checked %dh ago", minutes/60)
}

func failureLabel(count int) string {
	if count == 1 {
		return "1 failure"
	}
	return fmt.Sprintf("%d failures", count)
}
