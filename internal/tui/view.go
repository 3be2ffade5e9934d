package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/gist-downloader/internal/download"
)

var (
	accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	muted  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
	title  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F8B500")).MarginBottom(1)
	panel  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4ECDC4")).Padding(0, 1)

	// levelStyles gives each progress level a marker and a color.
	levelStyles = map[download.ProgressLevel]struct {
		marker string
		style  lipgloss.Style
	}{
		download.LevelInfo:    {"›", lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC"))},
		download.LevelVerbose: {"·", muted},
		download.LevelWarning: {"!", lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))},
		download.LevelError:   {"✗", lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))},
		download.LevelSuccess: {"✓", lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))},
	}
)

var helpText = map[State]string{
	StateInput:        "enter list & download · ctrl+a all gists · tab verbose · esc quit",
	StateInitializing: "esc cancel",
	StateDownloading:  "esc cancel",
	StateComplete:     "r again · q quit",
	StateError:        "r again · q quit",
}

// View renders the UI.
func (m Model) View() string {
	var body string
	switch m.state {
	case StateInput:
		body = m.inputView()
	case StateInitializing:
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.spinner.View()+" "+accent.Render("Listing gists of "+m.username()),
			"",
			m.eventLog(),
		)
	case StateDownloading:
		body = m.downloadView()
	case StateComplete:
		body = lipgloss.JoinVertical(lipgloss.Left, m.summaryPanel(), m.eventLog())
	case StateError:
		body = levelLine(download.LevelError, fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title.Render("Gist Downloader"),
		body,
		"",
		muted.Render(helpText[m.state]),
	)
}

func (m Model) inputView() string {
	limit := fmt.Sprintf("first %d", m.settings.Limit)
	if m.allGists || m.settings.Limit < 0 {
		limit = "all"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		accent.Render("GitHub username"),
		m.textInput.View(),
		"",
		checkbox(m.allGists, "Download all gists"),
		checkbox(m.verbose, "Verbose output"),
		"",
		muted.Render(fmt.Sprintf("%s gists · %d at once · into %s", limit, m.settings.Concurrency, m.settings.OutputDir)),
	)
}

func (m Model) downloadView() string {
	lines := []string{accent.Render(fmt.Sprintf("%d gist(s)", len(m.gists)))}
	for i, g := range m.gists {
		if i == maxLogs {
			lines = append(lines, muted.Render(fmt.Sprintf("  +%d more", len(m.gists)-maxLogs)))
			break
		}
		lines = append(lines, "  "+g)
	}

	lines = append(lines,
		"",
		m.progress.ViewAs(m.percent()),
		muted.Render(fmt.Sprintf("%d/%d files · %.2f KB", m.filesDone, m.filesTotal, float64(m.bytesDone)/1024)),
		"",
		m.eventLog(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) summaryPanel() string {
	output := m.settings.OutputDir
	if abs, err := filepath.Abs(output); err == nil {
		output = abs
	}

	level, heading := download.LevelSuccess, "Done"
	if m.summary.Failed > 0 {
		level, heading = download.LevelError, "Done, with failures"
	}

	return panel.Render(strings.Join([]string{
		levelLine(level, heading),
		fmt.Sprintf("Gists: %d (failed: %d)", m.summary.Total, m.summary.Failed),
		fmt.Sprintf("Files: %d, %.2f KB", m.summary.Files, float64(m.summary.Bytes)/1024),
		"Output: " + output,
	}, "\n"))
}

func (m Model) eventLog() string {
	lines := make([]string, len(m.logs))
	for i, e := range m.logs {
		lines[i] = levelLine(e.Level, e.Message)
	}
	return strings.Join(lines, "\n")
}

func levelLine(level download.ProgressLevel, msg string) string {
	ls, ok := levelStyles[level]
	if !ok {
		ls = levelStyles[download.LevelVerbose]
	}
	return ls.style.Render(ls.marker + " " + msg)
}

func checkbox(on bool, label string) string {
	if on {
		return "[x] " + label
	}
	return "[ ] " + label
}
