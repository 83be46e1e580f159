package models

import (
	"time"
)

// DocumentVersion is an immutable full snapshot of a document's content.
// Version numbers are gapless and strictly increasing per document.
type DocumentVersion struct {
	ID            string    `json:"id" db:"id"`
	DocumentID    string    `json:"document_id" db:"document_id"`
	VersionNumber int64     `json:"version_number" db:"version_number"`
	Content       string    `json:"content" db:"content"`
	WordCount     int64     `json:"word_count" db:"word_count"`
	CharCount     int64     `json:"char_count" db:"char_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// DocumentVersionSummary is a version row without its content payload, for
// listings where pulling every snapshot body would be wasteful.
type DocumentVersionSummary struct {
	ID            string    `json:"id" db:"id"`
	DocumentID    string    `json:"document_id" db:"document_id"`
	VersionNumber int64     `json:"version_number" db:"version_number"`
	WordCount     int64     `json:"word_count" db:"word_count"`
	CharCount     int64     `json:"char_count" db:"char_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
