// Package types provides shared types used across multiple packages.
// This package has no dependencies on other docuscribe packages to avoid import cycles.
package types

import "time"

// Document is a tokenized document as served by a document store.
// Words are 0-indexed and stable for the lifetime of the document.
type Document struct {
	ID        string
	Title     string
	Hashtags  []string
	UpdatedAt time.Time
	Words     []string
	Pages     []Page // Optional structural metadata, echoed in index mode
}

// Page is a structural section of a document expressed in word offsets.
type Page struct {
	Page   int    `json:"page" yaml:"page"`
	Start  int    `json:"start" yaml:"start"`
	End    int    `json:"end" yaml:"end"`
	Length int    `json:"length" yaml:"length"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Summary is the listing view of a document.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Hashtags  []string  `json:"hashtags"`
	UpdatedAt time.Time `json:"-"`
}

// Summary returns the listing view of the document.
func (d *Document) Summary() Summary {
	tags := d.Hashtags
	if tags == nil {
		tags = []string{}
	}
	return Summary{
		ID:        d.ID,
		Name:      d.Title,
		Hashtags:  tags,
		UpdatedAt: d.UpdatedAt,
	}
}
