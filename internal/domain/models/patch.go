package models

// OptionalRef tracks tri-state semantics for nullable reference updates
// (RFC 7396 PATCH). Transport-agnostic (no JSON tags) - handlers map from
// httputil.OptionalString.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear, move to root)
//   - Present=true, Value=&id: field has value (set)
type OptionalRef struct {
	Present bool
	Value   *string
}

// DocumentPatch is a partial metadata update. Only set fields are applied;
// FolderID distinguishes "not supplied" from "supplied as null". Slug is set
// by the service when a title change re-derives it, never by clients.
type DocumentPatch struct {
	Title      *string
	Slug       *string
	FolderID   OptionalRef
	IsPinned   *bool
	IsArchived *bool
}

// FolderPatch is a partial folder update with the same tri-state parent
// semantics.
type FolderPatch struct {
	Name      *string
	Slug      *string
	ParentID  OptionalRef
	SortOrder *int64
}

// TagPatch is a partial tag update.
type TagPatch struct {
	Name  *string
	Color *string
}
