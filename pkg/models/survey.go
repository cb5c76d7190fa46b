// Package models defines the shared data types exchanged between the
// qualsync components: survey rows parsed from a Qualtrics export and the
// front-matter metadata embedded in petition documents.
package models

// SurveyRow is one parsed survey response from a Qualtrics CSV export.
// Rows are created fresh on every extraction pass and never persisted
// directly; the petition document on disk is their durable form.
type SurveyRow struct {
	// Title is the petition title cell, whitespace-trimmed.
	Title string

	// Body is the petition body cell with CRLF/CR line endings normalized
	// to LF and leading/trailing whitespace removed.
	Body string

	// ResponseID is the platform's permanent unique identifier for this
	// response. It is the join key between rows and documents across runs.
	ResponseID string

	// RecordedDate is passed through opaquely into the document metadata.
	RecordedDate string

	// Eligible reports whether the row passed the published check. Rows
	// with empty Title, Body, or ResponseID are additionally skipped by
	// the reconciler so extraction counts stay accurate.
	Eligible bool
}

// FrontMatter is the YAML metadata block at the top of a petition document.
// Only the fields qualsync owns are declared; unknown keys added by hand
// are ignored on scan and overwritten on the next sync.
type FrontMatter struct {
	Layout       string `yaml:"layout"`
	Title        string `yaml:"title"`
	ResponseID   string `yaml:"qualtrics_response_id"`
	RecordedDate string `yaml:"qualtrics_recorded_date"`
	Source       string `yaml:"source"`
}
