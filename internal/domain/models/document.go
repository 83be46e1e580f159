package models

import (
	"time"
)

// Document is the metadata row for one user-authored text document. The text
// itself lives in the content store at FilePath; the row only carries derived
// statistics and organization.
type Document struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"-" db:"user_id"`
	FolderID   *string   `json:"folder_id" db:"folder_id"` // NULL = root level
	Title      string    `json:"title" db:"title"`
	Slug       string    `json:"slug" db:"slug"`
	FilePath   string    `json:"file_path" db:"file_path"` // relative to the content root, unique
	WordCount  int64     `json:"word_count" db:"word_count"`
	CharCount  int64     `json:"char_count" db:"char_count"`
	Excerpt    *string   `json:"excerpt" db:"excerpt"` // first 200 code points, NULL when empty
	IsPinned   bool      `json:"is_pinned" db:"is_pinned"`
	IsArchived bool      `json:"is_archived" db:"is_archived"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentContent is the request/response body for content reads and writes.
type DocumentContent struct {
	Content string `json:"content"`
}
