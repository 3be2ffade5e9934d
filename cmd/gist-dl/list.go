package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/gist-downloader/internal/github"
	"github.com/handiism/gist-downloader/internal/http"
	"github.com/handiism/gist-downloader/internal/model"
)

var (
	idStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F8B500"))
	filesStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
	emptyStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#6C757D"))
)

func runList(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := bindCommonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintln(stderr, `Usage: gist-dl list -username <user> [options]

Print the gists of a GitHub user, one per line:
  {id} - {description} ({file1, file2})

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if *common.username == "" {
		fmt.Fprintln(stderr, "Error: -username is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	settings, err := common.loadSettings(setFlags(fs))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	e, err := setup(settings, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	defer e.cleanup()

	client := http.NewClient(settings.ToHTTPOptions())
	lister := github.NewLister(client,
		github.WithBaseURL(settings.BaseURL),
		github.WithThrottle(github.NewThrottle(settings.ThrottleDelay.Duration)),
		github.WithLogger(e.logger),
		github.WithMetrics(e.metrics),
	)

	gists, err := lister.List(e.ctx, *common.username, settings.Limit)
	if err != nil {
		fmt.Fprintf(stderr, "Error listing gists: %v\n", err)
		return exitCode(e.ctx, err)
	}

	for _, g := range gists {
		fmt.Fprintln(stdout, renderGist(g))
	}
	return ExitSuccess
}

// renderGist styles the display line of g.
func renderGist(g *model.Gist) string {
	desc := g.DescriptionText()
	if !g.HasDescription() {
		desc = emptyStyle.Render("<no description>")
	}
	files := filesStyle.Render("(" + strings.Join(g.FileNames(), ", ") + ")")
	return fmt.Sprintf("%s - %s %s", idStyle.Render(g.ID), desc, files)
}
