package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#ff8c00")
	inkColor    = lipgloss.Color("#0f0f0f")

	sectionHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	focusedHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Underline(true)
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	linkStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Underline(true)
	tabStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4")).Background(lipgloss.Color("#3b3a4a")).Padding(0, 2)
	activeTabStyle      = lipgloss.NewStyle().Bold(true).Foreground(inkColor).Background(lipgloss.Color("#5fa8ff")).Padding(0, 2)
	buttonStyle         = lipgloss.NewStyle().Bold(true).Foreground(inkColor).Background(lipgloss.Color("#22c55e")).Padding(0, 2)
	buttonDisabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b6b6b")).Background(lipgloss.Color("#2a2a2a")).Padding(0, 2)
	pageIndicatorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb347"))
	navDisabledStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	statusBarStyle      = lipgloss.NewStyle().Foreground(inkColor).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle            = lipgloss.NewStyle().Bold(true).Foreground(inkColor).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	currentLineStyle    = lipgloss.NewStyle().Foreground(inkColor).Background(lipgloss.Color("#8ecae6"))
)
