package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title        lipgloss.Style
	header       lipgloss.Style
	badgeUnread  lipgloss.Style
	badgeQuiet   lipgloss.Style
	contributing lipgloss.Style
	account      lipgloss.Style
	unresolved   lipgloss.Style
	meta         lipgloss.Style
	warning      lipgloss.Style
	section      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:        lipgloss.NewStyle().Bold(true),
		header:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		badgeUnread:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("160")).Padding(0, 1),
		badgeQuiet:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("244")).Padding(0, 1),
		contributing: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		account:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		unresolved:   lipgloss.NewStyle().Faint(true),
		meta:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		warning:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:      lipgloss.NewStyle().MarginTop(1),
	}
}
