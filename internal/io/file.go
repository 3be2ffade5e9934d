package ioutils

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnsafeName is returned when a name cannot be used as a single path
// element inside an output directory.
var ErrUnsafeName = errors.New("unsafe file name")

// FileSystemError reports a directory creation or file write failure.
type FileSystemError struct {
	// Op is the failed operation: "mkdir", "create", "write", "close" or "validate".
	Op string

	// Path is the file or directory involved.
	Path string

	Err error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error {
	return e.Err
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
//
// Example:
//
//	err := WriteFile("/home/user/.config/gist-dl/config.json", data)
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &FileSystemError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/gists/aa5a315d61ae9438b18d")
//	// Creates /gists and /gists/aa5a315d61ae9438b18d if needed
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return &FileSystemError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// ValidateFileName checks that name is usable as one path element.
//
// Gist file names come from a remote server, so anything that could walk
// out of the item directory is refused:
//   - empty names, "." and ".."
//   - names containing '/' or '\'
//   - names containing NUL
//
// Example:
//
//	ValidateFileName("main.go")       // nil
//	ValidateFileName("../etc/passwd") // ErrUnsafeName
func ValidateFileName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	return nil
}
