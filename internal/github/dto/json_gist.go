package dto

import (
	"errors"
	"fmt"
	"time"

	"github.com/handiism/gist-downloader/internal/model"
)

// ErrMissingID is returned when a listing element has no id.
var ErrMissingID = errors.New("gist has no id")

// JSONGist represents one element of the GitHub "list gists for a user" response.
//
// Only the fields the downloader uses are decoded; everything else in the
// element is ignored.
type JSONGist struct {
	ID          string              `json:"id"`
	Description *string             `json:"description"`
	Files       map[string]JSONFile `json:"files"`
	HTMLURL     string              `json:"html_url"`
	Public      bool                `json:"public"`
	CreatedAt   *time.Time          `json:"created_at"`
	UpdatedAt   *time.Time          `json:"updated_at"`
	Owner       *JSONOwner          `json:"owner"`
}

// JSONOwner is the subset of the owner object we keep.
type JSONOwner struct {
	Login string `json:"login"`
}

// Validate reports whether the element carries enough data to be downloaded.
func (jg *JSONGist) Validate() error {
	if jg.ID == "" {
		return ErrMissingID
	}
	for key, f := range jg.Files {
		if f.RawURL == "" {
			return fmt.Errorf("file %q of gist %s has no raw_url", key, jg.ID)
		}
	}
	return nil
}

// ToGist converts JSONGist to a model.Gist.
//
// The map key is the file name. A null description stays absent, an empty
// one is kept.
func (jg *JSONGist) ToGist() *model.Gist {
	files := make(map[string]model.File, len(jg.Files))
	for key, jf := range jg.Files {
		files[key] = jf.ToFile(key)
	}

	g := model.NewGist(jg.ID, files)
	if jg.Description != nil {
		g.WithDescription(*jg.Description)
	}
	g.HTMLURL = jg.HTMLURL
	g.Public = jg.Public
	if jg.Owner != nil {
		g.Owner = jg.Owner.Login
	}
	if jg.CreatedAt != nil {
		g.CreatedAt = *jg.CreatedAt
	}
	if jg.UpdatedAt != nil {
		g.UpdatedAt = *jg.UpdatedAt
	}
	return g
}
