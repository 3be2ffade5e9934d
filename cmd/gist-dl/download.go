package main

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/gist-downloader/internal/download"
	"github.com/handiism/gist-downloader/internal/http"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

func runDownload(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := bindCommonFlags(fs)

	output := fs.String("output", "", "Output directory (default \"gists\")")
	concurrency := fs.Int("concurrency", 0, "Maximum number of gists downloaded at once (default 4)")
	dryRun := fs.Bool("dry-run", false, "List what would be downloaded without writing anything")

	fs.Usage = func() {
		fmt.Fprintln(stderr, `Usage: gist-dl download -username <user> [options]

Download every file of the user's gists to {output}/{gist id}/{file name}.
Existing files are overwritten. A failing gist does not stop the others.

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

	set := setFlags(fs)
	settings, err := common.loadSettings(set)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if set["output"] {
		settings.OutputDir = *output
	}
	if set["concurrency"] {
		settings.Concurrency = *concurrency
	}

	e, err := setup(settings, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	defer e.cleanup()

	client := http.NewClient(settings.ToHTTPOptions())
	manager, err := download.NewManager(settings, client, newReporter(e.logger),
		download.WithLogger(e.logger),
		download.WithMetrics(e.metrics),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	if err := manager.Initialize(e.ctx, *common.username); err != nil {
		fmt.Fprintf(stderr, "Error listing gists: %v\n", err)
		return exitCode(e.ctx, err)
	}

	absOutput, err := filepath.Abs(settings.OutputDir)
	if err != nil {
		absOutput = settings.OutputDir
	}

	if *dryRun {
		fmt.Fprintln(stdout, "[Dry run - not downloading]")
		for _, g := range manager.Gists() {
			fmt.Fprintf(stdout, "%s -> %s\n", g, filepath.Join(absOutput, g.ID))
		}
		return ExitSuccess
	}

	summary, err := manager.StartDownloads(e.ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Download cancelled.")
		return exitCode(e.ctx, err)
	}

	printSummary(stdout, summary, absOutput)
	return exitCode(e.ctx, summary.Err())
}

func printSummary(w io.Writer, s download.Summary, output string) {
	for _, o := range s.Outcomes {
		if !o.Succeeded() {
			fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("✗ %s: %v", o.GistID, o.Err)))
		}
	}

	line := fmt.Sprintf("Downloaded %d/%d gists, %d files (%.2f KB) to %s in %s",
		s.Succeeded, s.Total, s.Files, float64(s.Bytes)/1024, output, s.Duration.Round(time.Millisecond))
	if s.Failed > 0 {
		fmt.Fprintln(w, errorStyle.Render(line))
		return
	}
	fmt.Fprintln(w, successStyle.Render(line))
}
