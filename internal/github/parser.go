package github

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/handiism/gist-downloader/internal/github/dto"
	"github.com/handiism/gist-downloader/internal/model"
)

// errNotArray is reported for a listing body that is valid JSON but not an array.
var errNotArray = errors.New("listing is not a JSON array")

// ParseError reports a listing response body that is not a valid gist array.
//
// Body is the raw response body, kept verbatim so the failure can be
// inspected. Offset is the byte offset in Body of the token that could not
// be decoded, or of the start of the element that failed validation.
type ParseError struct {
	Body   []byte
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse gist listing at offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Context returns the part of Body within radius bytes of Offset.
func (e *ParseError) Context(radius int) string {
	off := int(e.Offset)
	if off > len(e.Body) {
		off = len(e.Body)
	}
	if off < 0 {
		off = 0
	}
	start := max(off-radius, 0)
	end := min(off+radius, len(e.Body))
	return string(e.Body[start:end])
}

// parseGists decodes one listing page into gists, in response order.
//
// The body must be a JSON array of gist objects. Every element must have an
// id and every file a raw_url; nothing is skipped silently.
func parseGists(body []byte) ([]*model.Gist, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		return nil, &ParseError{Body: body, Offset: errorOffset(err), Err: err}
	}
	// null unmarshals into a nil slice without error.
	if elements == nil {
		return nil, &ParseError{Body: body, Offset: skipSeparators(body, 0), Err: errNotArray}
	}

	starts, err := elementOffsets(body)
	if err != nil {
		return nil, &ParseError{Body: body, Offset: errorOffset(err), Err: err}
	}

	gists := make([]*model.Gist, 0, len(elements))
	for i, raw := range elements {
		start := starts[i]

		var jg dto.JSONGist
		if err := json.Unmarshal(raw, &jg); err != nil {
			return nil, &ParseError{Body: body, Offset: start + errorOffset(err), Err: fmt.Errorf("element %d: %w", i, err)}
		}
		if err := jg.Validate(); err != nil {
			return nil, &ParseError{Body: body, Offset: start, Err: fmt.Errorf("element %d: %w", i, err)}
		}

		gists = append(gists, jg.ToGist())
	}

	return gists, nil
}

// elementOffsets returns the byte offset at which each top-level array
// element starts. The body must already be known to be a valid array.
func elementOffsets(body []byte) ([]int64, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var offsets []int64
	for dec.More() {
		offsets = append(offsets, skipSeparators(body, dec.InputOffset()))

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return offsets, nil
}

// skipSeparators advances past whitespace and commas.
func skipSeparators(body []byte, off int64) int64 {
	for off < int64(len(body)) {
		switch body[off] {
		case ' ', '\t', '\r', '\n', ',':
			off++
		default:
			return off
		}
	}
	return off
}

func errorOffset(err error) int64 {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Offset
	}
	return 0
}
