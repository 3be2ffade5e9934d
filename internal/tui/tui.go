// Package tui provides a Bubble Tea terminal user interface for gist-downloader.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/handiism/gist-downloader/internal/config"
	"github.com/handiism/gist-downloader/internal/download"
	"github.com/handiism/gist-downloader/internal/github"
	"github.com/handiism/gist-downloader/internal/http"
	"github.com/handiism/gist-downloader/internal/logging"
)

const (
	// maxLogs is the number of event lines shown.
	maxLogs = 10

	tickInterval = 200 * time.Millisecond
)

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// LogEntry is one progress event shown in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model

	settings *config.Settings
	logger   *zap.Logger
	events   *eventBuffer
	manager  *download.Manager

	ctx    context.Context
	cancel context.CancelFunc

	logs    []LogEntry
	gists   []string
	summary download.Summary
	err     error

	filesDone, filesTotal int32
	bytesDone             int64

	allGists bool
	verbose  bool
}

// NewModel creates a new TUI model. A nil logger discards logs.
func NewModel(settings *config.Settings, logger *zap.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "octocat"
	ti.CharLimit = 39
	ti.Width = 40
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(accent))

	m := Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		settings:  settings,
		logger:    logging.OrNop(logger),
		events:    newEventBuffer(maxLogs),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

type (
	// InitDoneMsg is sent when the listing completes.
	InitDoneMsg struct {
		Gists   []string
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when the batch completes or is cancelled.
	DownloadDoneMsg struct {
		Summary download.Summary
		Err     error
	}

	// TickMsg polls the manager and the event buffer.
	TickMsg struct{}
)

func (m Model) username() string {
	return strings.TrimSpace(m.textInput.Value())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

// list runs the listing for the entered username in the background.
func (m Model) list() tea.Cmd {
	username := m.username()
	settings := *m.settings
	if m.allGists {
		settings.Limit = github.NoLimit
	}
	ctx, events, logger := m.ctx, m.events, m.logger

	return func() tea.Msg {
		client := http.NewClient(settings.ToHTTPOptions())
		manager, err := download.NewManager(&settings, client, events.push, download.WithLogger(logger))
		if err != nil {
			return InitDoneMsg{Err: err}
		}
		if err := manager.Initialize(ctx, username); err != nil {
			return InitDoneMsg{Err: err}
		}
		return InitDoneMsg{Gists: manager.GetGistNames(), Manager: manager}
	}
}

// download runs the batch for the listed gists in the background.
func (m Model) download() tea.Cmd {
	manager, ctx := m.manager, m.ctx

	return func() tea.Msg {
		summary, err := manager.StartDownloads(ctx)
		return DownloadDoneMsg{Summary: summary, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger *zap.Logger) error {
	_, err := tea.NewProgram(NewModel(settings, logger), tea.WithAltScreen()).Run()
	return err
}
