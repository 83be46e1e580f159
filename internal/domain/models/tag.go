package models

// Tag is a user-scoped label attached to documents through a many-to-many
// link table.
type Tag struct {
	ID     string  `json:"id" db:"id"`
	UserID string  `json:"-" db:"user_id"`
	Name   string  `json:"name" db:"name"`
	Color  *string `json:"color" db:"color"`
}
