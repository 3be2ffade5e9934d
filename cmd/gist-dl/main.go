package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/handiism/gist-downloader/internal/download"
	"github.com/handiism/gist-downloader/internal/github"
	"github.com/handiism/gist-downloader/internal/http"
)

// Exit codes
const (
	ExitSuccess        = 0
	ExitPartialFailure = 1
	ExitInvalidArgs    = 2
	ExitTransportError = 3
	ExitParseError     = 4
	ExitInterrupted    = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "list":
		return runList(cmdArgs, stdout, stderr)
	case "download":
		return runDownload(cmdArgs, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return ExitSuccess
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return ExitInvalidArgs
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: gist-dl <command> [options]

Commands:
  list      Print the gists of a GitHub user
  download  Download the files of a user's gists to {output}/{gist id}/

Run 'gist-dl <command> -h' for command-specific help.
For interactive mode, use: gist-tui`)
}

// exitCode maps an error to the process exit status.
func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return ExitSuccess
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	var (
		transportErr *http.TransportError
		parseErr     *github.ParseError
		partialErr   *download.PartialFailureError
	)
	switch {
	case errors.As(err, &partialErr):
		return ExitPartialFailure
	case errors.As(err, &transportErr):
		return ExitTransportError
	case errors.As(err, &parseErr):
		return ExitParseError
	case errors.Is(err, github.ErrInvalidUsername), errors.Is(err, download.ErrInvalidCapacity):
		return ExitInvalidArgs
	}
	return ExitPartialFailure
}
