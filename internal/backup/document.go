// Package backup serializes the prompt library to a versioned JSON document
// and restores from one, either merging into or replacing the current data.
package backup

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/shawon39/promptnest/internal/store"
)

// Version identifies the document layout. Bump only on incompatible changes;
// readers accept any document that passes structural validation.
const Version = "1.0.0"

// Export types.
const (
	TypeFull    = "full"    // categories, prompts, and settings
	TypePrompts = "prompts" // categories and prompts only
)

// ErrInvalidDocument is returned when a backup fails structural validation.
// Validation runs before any write, so a rejected document never leaves the
// library half imported.
var ErrInvalidDocument = errors.New("backup: invalid document")

// Metadata summarizes the exported library for display before import.
type Metadata struct {
	TotalCategories int `json:"totalCategories"`
	TotalPrompts    int `json:"totalPrompts"`
	TotalUses       int `json:"totalUses,omitempty"`
}

// Data carries the exported collections. Settings stay raw: a document may
// hold a partial settings object, and which keys are present matters when
// merging.
type Data struct {
	Categories []store.Category `json:"categories"`
	Prompts    []store.Prompt   `json:"prompts"`
	Settings   json.RawMessage  `json:"settings,omitempty"`
}

// Document is the backup file layout.
type Document struct {
	Version    string   `json:"version"`
	ExportDate string   `json:"exportDate"`
	ExportType string   `json:"exportType"`
	Metadata   Metadata `json:"metadata"`
	Data       Data     `json:"data"`
}

// Parse decodes and validates a backup document. Every failure wraps
// ErrInvalidDocument with a description of what is wrong.
func Parse(raw []byte) (*Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidDocument, err)
	}
	if _, ok := probe["version"]; !ok {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidDocument)
	}
	if _, ok := probe["data"]; !ok {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidDocument)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("%w: empty version", ErrInvalidDocument)
	}

	for i, c := range doc.Data.Categories {
		if c.ID == "" || c.Name == "" || c.Created == 0 {
			return nil, fmt.Errorf("%w: category %d missing id, name, or created", ErrInvalidDocument, i)
		}
	}
	for i, p := range doc.Data.Prompts {
		if p.ID == "" || p.Title == "" || p.Content == "" || p.Created == 0 {
			return nil, fmt.Errorf("%w: prompt %d missing id, title, content, or created", ErrInvalidDocument, i)
		}
	}
	if len(doc.Data.Settings) > 0 {
		var s map[string]json.RawMessage
		if err := json.Unmarshal(doc.Data.Settings, &s); err != nil {
			return nil, fmt.Errorf("%w: settings is not an object", ErrInvalidDocument)
		}
	}
	return &doc, nil
}
