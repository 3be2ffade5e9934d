package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/gist-downloader/internal/config"
	"github.com/handiism/gist-downloader/internal/download"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_EnterRequiresValidUsername(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateInput {
		t.Fatalf("state = %v, want StateInput for empty username", m.state)
	}

	m.textInput.SetValue("octocat")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateInitializing {
		t.Errorf("state = %v, want StateInitializing", m.state)
	}
	m.cancel()
}

func TestModel_ToggleOptions(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})

	if !m.verbose {
		t.Error("tab should enable verbose output")
	}
	if !m.allGists {
		t.Error("ctrl+a should select all gists")
	}
	if !strings.Contains(m.View(), "[x] Download all gists") {
		t.Errorf("view does not show the all gists option:\n%s", m.View())
	}
}

func TestModel_InitFailure(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	m.state = StateInitializing

	m = update(t, m, InitDoneMsg{Err: errors.New("GET https://api.github.com/users/ghost/gists: HTTP 404")})

	if m.state != StateError {
		t.Fatalf("state = %v, want StateError", m.state)
	}
	if !strings.Contains(m.View(), "HTTP 404") {
		t.Error("error view should show the listing error")
	}
}

func TestModel_DownloadDone(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	m.state = StateDownloading

	m = update(t, m, DownloadDoneMsg{Summary: download.Summary{Total: 5, Succeeded: 4, Failed: 1, Files: 7, Bytes: 2048}})

	if m.state != StateComplete {
		t.Fatalf("state = %v, want StateComplete", m.state)
	}
	view := m.View()
	for _, want := range []string{"with failures", "Gists: 5 (failed: 1)", "Files: 7"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_TickDrainsEvents(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	m.state = StateDownloading

	m.events.push(download.ProgressEvent{Message: "Listing gists of octocat", Level: download.LevelVerbose})
	m.events.push(download.ProgressEvent{Message: "Downloaded gist abc (2 files)", Level: download.LevelSuccess})

	m = update(t, m, TickMsg{})

	if len(m.logs) != 1 {
		t.Fatalf("logs = %d, want 1 (verbose filtered)", len(m.logs))
	}
	if m.logs[0].Level != download.LevelSuccess {
		t.Errorf("log level = %v, want success", m.logs[0].Level)
	}
}

func TestModel_ResetKeepsOptions(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})
	m.state = StateError
	m.err = errors.New("boom")
	m.logs = []LogEntry{{Message: "old", Level: download.LevelError}}
	oldCtx := m.ctx

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})

	if m.state != StateInput {
		t.Fatalf("state = %v, want StateInput", m.state)
	}
	if m.err != nil || len(m.logs) != 0 {
		t.Errorf("reset kept err=%v logs=%v", m.err, m.logs)
	}
	if !m.allGists {
		t.Error("reset should keep the all gists option")
	}
	if oldCtx.Err() == nil {
		t.Error("reset should cancel the previous run")
	}
}

func TestModel_EscCancelsRun(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	m.state = StateDownloading

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.state != StateError || !errors.Is(m.err, errCancelled) {
		t.Fatalf("state = %v err = %v, want cancelled", m.state, m.err)
	}
	if m.ctx.Err() == nil {
		t.Error("esc should cancel the run context")
	}
}

func TestEventBuffer_KeepsNewest(t *testing.T) {
	b := newEventBuffer(3)
	for i := range 5 {
		b.push(download.ProgressEvent{Message: fmt.Sprint(i)})
	}

	got := b.drain()
	if len(got) != 3 || got[0].Message != "2" || got[2].Message != "4" {
		t.Errorf("drain() = %v, want events 2..4", got)
	}
	if len(b.drain()) != 0 {
		t.Error("second drain should be empty")
	}
}
