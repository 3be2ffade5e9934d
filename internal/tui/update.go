package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/gist-downloader/internal/download"
	"github.com/handiism/gist-downloader/internal/github"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case InitDoneMsg:
		m.collectEvents()
		switch {
		case msg.Err != nil:
			m.fail(msg.Err)
		case m.state == StateInitializing:
			m.gists, m.manager = msg.Gists, msg.Manager
			m.state = StateDownloading
			return m, m.download()
		}
		return m, nil

	case DownloadDoneMsg:
		m.collectEvents()
		m.summary = msg.Summary
		m.filesDone = int32(msg.Summary.Files)
		m.bytesDone = msg.Summary.Bytes
		if msg.Err != nil {
			m.fail(msg.Err)
		} else {
			m.state = StateComplete
		}
		return m, nil

	case TickMsg:
		return m.poll()
	}

	if m.state != StateInput {
		return m, nil
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// handleKey applies the global and per-state key bindings. Keys it does not
// handle go to the username input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	busy := m.state == StateInitializing || m.state == StateDownloading
	done := m.state == StateComplete || m.state == StateError

	switch key := msg.String(); {
	case key == "ctrl+c":
		m.cancel()
		return m, tea.Quit, true

	case key == "esc" && m.state == StateInput:
		return m, tea.Quit, true

	case key == "esc" && busy:
		m.cancel()
		m.fail(errCancelled)
		return m, nil, true

	case key == "enter" && m.state == StateInput:
		if github.ValidateUsername(m.username()) != nil {
			return m, nil, true
		}
		m.state = StateInitializing
		return m, tea.Batch(m.list(), m.spinner.Tick, tick()), true

	case key == "ctrl+a" && m.state == StateInput:
		m.allGists = !m.allGists
		return m, nil, true

	case key == "tab" && m.state == StateInput:
		m.verbose = !m.verbose
		return m, nil, true

	case key == "q" && done:
		return m, tea.Quit, true

	case key == "r" && done:
		return m.reset(), nil, true
	}
	return m, nil, false
}

// poll refreshes counters and events while work is running.
func (m Model) poll() (tea.Model, tea.Cmd) {
	if m.state != StateInitializing && m.state != StateDownloading {
		return m, nil
	}
	m.collectEvents()

	cmds := []tea.Cmd{tick()}
	if m.manager != nil {
		var received int64
		received, _, m.filesDone, m.filesTotal = m.manager.GetProgress()
		m.bytesDone = received
		cmds = append(cmds, m.progress.SetPercent(m.percent()))
	}
	return m, tea.Batch(cmds...)
}

// fail moves to the error state. A cancelled context always reads as a
// user cancellation.
func (m *Model) fail(err error) {
	m.state = StateError
	m.err = err
	if m.ctx.Err() != nil {
		m.err = errCancelled
	}
}

// reset returns to the username prompt with fresh state, keeping options.
func (m Model) reset() Model {
	m.cancel()
	next := NewModel(m.settings, m.logger)
	next.allGists, next.verbose = m.allGists, m.verbose
	next.progress.Width = m.progress.Width
	return next
}

// collectEvents moves buffered progress events into the visible log.
func (m *Model) collectEvents() {
	for _, e := range m.events.drain() {
		if e.Level == download.LevelVerbose && !m.verbose {
			continue
		}
		m.logs = append(m.logs, LogEntry{Message: e.Message, Level: e.Level})
	}
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m Model) percent() float64 {
	if m.filesTotal == 0 {
		return 0
	}
	return float64(m.filesDone) / float64(m.filesTotal)
}
