package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// noDescription is shown in place of an absent gist description.
const noDescription = "<no description>"

// Gist represents one remote snippet collection.
//
// A Gist is produced by parsing a single element of a listing response and is
// never modified afterwards. It carries everything needed to download it:
//   - ID names the local directory the files are written to
//   - Files maps each file name to its raw content URL
//
// The remaining fields are informational and used for display.
//
// Example:
//
//	g := NewGist("aa5a315d61ae9438b18d", files).WithDescription("Hello world")
//	fmt.Println(g) // aa5a315d61ae9438b18d - Hello world (hello.go, README.md)
type Gist struct {
	// ID is the unique gist identifier.
	ID string

	// Description is the optional free-form description, nil when the gist
	// has none. An empty description is kept as a pointer to "".
	Description *string

	// Files maps file name to file reference. Keys are unique.
	Files map[string]File

	// Owner is the login of the gist owner, if known.
	Owner string

	// HTMLURL is the gist page on github.com.
	HTMLURL string

	// Public reports whether the gist is listed publicly.
	Public bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// File is a download instruction for one member file of a gist.
type File struct {
	// Name is the file name, also used as the local file name.
	Name string

	// RawURL serves the verbatim file content.
	RawURL string

	// Size is the size reported by the listing. It is a hint only.
	Size int64

	// Language is the detected language, empty when unknown.
	Language string

	// Type is the MIME type reported by the listing.
	Type string
}

// NewGist creates a Gist without a description.
func NewGist(id string, files map[string]File) *Gist {
	return &Gist{
		ID:    id,
		Files: files,
	}
}

// WithDescription sets the description and returns g.
func (g *Gist) WithDescription(description string) *Gist {
	g.Description = &description
	return g
}

// HasDescription reports whether the gist has a description, possibly empty.
func (g *Gist) HasDescription() bool {
	return g.Description != nil
}

// DescriptionText returns the description, or "" when there is none.
func (g *Gist) DescriptionText() string {
	if g.Description == nil {
		return ""
	}
	return *g.Description
}

// FileNames returns the file names sorted alphabetically.
func (g *Gist) FileNames() []string {
	names := make([]string, 0, len(g.Files))
	for name := range g.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TotalSize returns the sum of the size hints of all files.
func (g *Gist) TotalSize() int64 {
	var total int64
	for _, f := range g.Files {
		total += f.Size
	}
	return total
}

// String formats the gist as "id - description (file1, file2)".
func (g *Gist) String() string {
	desc := noDescription
	if g.HasDescription() {
		desc = *g.Description
	}
	return fmt.Sprintf("%s - %s (%s)", g.ID, desc, strings.Join(g.FileNames(), ", "))
}

// CountFiles returns the number of files across all gists.
func CountFiles(gists []*Gist) int {
	n := 0
	for _, g := range gists {
		n += len(g.Files)
	}
	return n
}
