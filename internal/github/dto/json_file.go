package dto

import "github.com/handiism/gist-downloader/internal/model"

// JSONFile represents one entry of a gist's "files" object.
type JSONFile struct {
	Filename string  `json:"filename"`
	Type     string  `json:"type"`
	Language *string `json:"language"`
	RawURL   string  `json:"raw_url"`
	Size     int64   `json:"size"`
}

// ToFile converts JSONFile to a model.File named after its map key.
func (jf *JSONFile) ToFile(key string) model.File {
	var language string
	if jf.Language != nil {
		language = *jf.Language
	}

	return model.File{
		Name:     key,
		RawURL:   jf.RawURL,
		Size:     jf.Size,
		Language: language,
		Type:     jf.Type,
	}
}
