// Package reference defines the core domain types for extracted and verified
// bibliography entries.
package reference

import "fmt"

// RawSection is the contiguous span of a document that holds its
// reference list.
type RawSection struct {
	Text string `json:"text"`

	// Offsets into the normalized document text. Start is always past the
	// heading that introduced the section.
	Start int `json:"start"`
	End   int `json:"end"`

	// 1-based page range, derived from form-feed page separators.
	FirstPage int `json:"first_page"`
	LastPage  int `json:"last_page"`
}

// RawEntry is one unparsed bibliography entry.
type RawEntry struct {
	Ordinal int    `json:"ordinal"` // 1-based position within the section
	Text    string `json:"text"`
}

// Reference is a single parsed bibliography entry.
type Reference struct {
	ID      string `json:"id"`
	Ordinal int    `json:"ordinal"`

	Authors    []string `json:"authors"`
	Title      string   `json:"title,omitempty"`
	Year       int      `json:"year,omitempty"`
	Venue      string   `json:"venue,omitempty"`
	Volume     string   `json:"volume,omitempty"`
	Pages      string   `json:"pages,omitempty"`
	Identifier string   `json:"identifier,omitempty"` // DOI when one was printed

	RawText string `json:"raw_text"`

	// Parse quality, filled in by the aggregator.
	Completeness  float64 `json:"completeness"`
	LowConfidence bool    `json:"low_confidence,omitempty"`
}

// ExtractionResult is the output of the extraction stage. It is not
// modified after it is produced.
type ExtractionResult struct {
	Source      string      `json:"source,omitempty"` // input file, if known
	Document    *Document   `json:"document,omitempty"`
	Style       Style       `json:"style"`
	StyleForced bool        `json:"style_forced,omitempty"`
	StyleScore  float64     `json:"style_score"`
	Extractor   string      `json:"extractor"`
	Confidence  float64     `json:"confidence"`
	Section     *RawSection `json:"section,omitempty"`
	References  []Reference `json:"references"`
}

// Document is what the first page says about the paper itself.
type Document struct {
	Title string `json:"title,omitempty"`
	DOI   string `json:"doi,omitempty"`
}

// RefID returns the stable identifier for the entry at the given ordinal.
func RefID(ordinal int) string {
	return fmt.Sprintf("ref_%02d", ordinal)
}
