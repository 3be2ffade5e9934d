// Package model defines the core data structures used throughout
// the gist-downloader application.
//
// # Gist
//
// Gist represents a remote snippet collection with its member files:
//
//	g := model.NewGist(id, files).WithDescription("My snippets")
//	fmt.Println(g)             // "id - My snippets (a.go, b.md)"
//
// A gist without a description prints "<no description>" in its place; an
// empty description prints as empty.
//	fmt.Println(g.FileNames()) // sorted names
//
// # File
//
// File is a download instruction: a name and a raw content URL, plus the
// size, language and type hints from the listing.
//
// Values of both types are built once by the listing parser and treated as
// read-only afterwards; they are shared between goroutines without locking.
package model
