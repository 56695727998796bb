package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title          lipgloss.Style
	Subtitle       lipgloss.Style
	Normal         lipgloss.Style
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserText       lipgloss.Style
	AssistantText  lipgloss.Style
	Help           lipgloss.Style
	RoundedBox     lipgloss.Style
	StatusError    lipgloss.Style
	StatusInfo     lipgloss.Style
	StatusPending  lipgloss.Style
	Primary        lipgloss.Color
	Muted          lipgloss.Color
	Border         lipgloss.Color
	Error          lipgloss.Color
}

// Default is the default clinical theme.
var Default = Theme{
	// Colors
	Primary: lipgloss.Color("#4A90D9"),
	Muted:   lipgloss.Color("#737373"),
	Border:  lipgloss.Color("#404040"),
	Error:   lipgloss.Color("#ef4444"),

	// Text styles
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		Background(lipgloss.Color("#4A90D9")).
		Padding(0, 1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	UserLabel: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10b981")),
	AssistantLabel: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#4A90D9")),
	UserText: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#d4d4d4")),
	AssistantText: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),

	// Component styles
	RoundedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),

	// Status styles
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	StatusInfo: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3b82f6")).
		Bold(true),
	StatusPending: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Italic(true),
}

// Plain renders without colors.
var Plain = Theme{
	Title:          lipgloss.NewStyle().Bold(true),
	Subtitle:       lipgloss.NewStyle(),
	Normal:         lipgloss.NewStyle(),
	UserLabel:      lipgloss.NewStyle().Bold(true),
	AssistantLabel: lipgloss.NewStyle().Bold(true),
	UserText:       lipgloss.NewStyle(),
	AssistantText:  lipgloss.NewStyle(),
	Help:           lipgloss.NewStyle(),
	RoundedBox:     lipgloss.NewStyle().Border(lipgloss.NormalBorder()),
	StatusError:    lipgloss.NewStyle().Bold(true),
	StatusInfo:     lipgloss.NewStyle(),
	StatusPending:  lipgloss.NewStyle().Italic(true),
}

// ByName returns the named theme, falling back to Default.
func ByName(name string) Theme {
	if name == "plain" {
		return Plain
	}
	return Default
}
