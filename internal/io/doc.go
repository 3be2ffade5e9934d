// Package ioutils provides file system utilities.
//
// This package contains functions for:
//   - File writing
//   - Directory creation
//   - Validation of remote-supplied file names
//
// # File Operations
//
//	// Ensure directory exists (idempotent)
//	err := ioutils.EnsureDir("/gists/aa5a315d61ae9438b18d")
//
//	// Write data to file
//	err := ioutils.WriteFile("/path/to/file.txt", []byte("content"))
//
// # Name Validation
//
// Use ValidateFileName before joining a remote name onto a local directory:
//
//	if err := ioutils.ValidateFileName(name); err != nil {
//	    return err // errors.Is(err, ioutils.ErrUnsafeName)
//	}
//
// # Errors
//
// EnsureDir and WriteFile wrap failures in *FileSystemError, which records the
// operation and the path involved.
package ioutils
