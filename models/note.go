package models

import (
	"slices"
	"time"
)

// Note kinds.
const (
	NoteKindCapture  = "capture"
	NoteKindTask     = "task"
	NoteKindIdea     = "idea"
	NoteKindRevision = "revision"
)

// Note is the syncable unit of the application. A note is identified by a
// stable, client-generated UUID; Version is a per-note monotonic counter
// assigned by whichever side commits last, and a set DeletedAt marks the
// record as a tombstone rather than a missing row.
type Note struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Kind    string   `json:"kind"`

	IsProcessed bool `json:"is_processed"`
	IsCompleted bool `json:"is_completed"`
	IsArchived  bool `json:"is_archived"`
	IsPinned    bool `json:"is_pinned"`

	DueDate  *time.Time `json:"due_date,omitempty"`
	Priority int        `json:"priority"`

	// AnalysisState records how far background content analysis has
	// progressed ("", "queued", "done"). Analysis itself happens outside
	// the sync engine; the field only rides along so devices agree on it.
	AnalysisState string `json:"analysis_state,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int64      `json:"version"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Tracked field names. This is the closed set of fields the sync engine
// diffs, merges, and versions. A field absent from this list never takes
// part in change detection or auto-merge.
const (
	FieldTitle         = "title"
	FieldContent       = "content"
	FieldTags          = "tags"
	FieldKind          = "kind"
	FieldIsProcessed   = "isProcessed"
	FieldIsCompleted   = "isCompleted"
	FieldIsArchived    = "isArchived"
	FieldIsPinned      = "isPinned"
	FieldDueDate       = "dueDate"
	FieldPriority      = "priority"
	FieldAnalysisState = "analysisState"
)

// TrackedFields returns the closed, ordered set of syncable field names.
func TrackedFields() []string {
	return []string{
		FieldTitle,
		FieldContent,
		FieldTags,
		FieldKind,
		FieldIsProcessed,
		FieldIsCompleted,
		FieldIsArchived,
		FieldIsPinned,
		FieldDueDate,
		FieldPriority,
		FieldAnalysisState,
	}
}

// IsTombstone reports whether the note represents a propagated deletion.
func (n Note) IsTombstone() bool {
	return n.DeletedAt != nil
}

// Clone returns a deep copy of the note. Slice and pointer fields are
// duplicated so mutating the copy never aliases the original.
func (n Note) Clone() Note {
	c := n
	if n.Tags != nil {
		c.Tags = slices.Clone(n.Tags)
	}
	if n.DueDate != nil {
		d := *n.DueDate
		c.DueDate = &d
	}
	if n.DeletedAt != nil {
		d := *n.DeletedAt
		c.DeletedAt = &d
	}
	return c
}

// FieldEqual reports whether the named tracked field holds the same value
// in both notes. Array fields are compared element-wise, time fields by
// instant. Unknown field names compare as equal so that stale field lists
// from older clients never force a spurious conflict.
func FieldEqual(a, b Note, field string) bool {
	switch field {
	case FieldTitle:
		return a.Title == b.Title
	case FieldContent:
		return a.Content == b.Content
	case FieldTags:
		return slices.Equal(a.Tags, b.Tags)
	case FieldKind:
		return a.Kind == b.Kind
	case FieldIsProcessed:
		return a.IsProcessed == b.IsProcessed
	case FieldIsCompleted:
		return a.IsCompleted == b.IsCompleted
	case FieldIsArchived:
		return a.IsArchived == b.IsArchived
	case FieldIsPinned:
		return a.IsPinned == b.IsPinned
	case FieldDueDate:
		return timePtrEqual(a.DueDate, b.DueDate)
	case FieldPriority:
		return a.Priority == b.Priority
	case FieldAnalysisState:
		return a.AnalysisState == b.AnalysisState
	default:
		return true
	}
}

// ChangedFields returns the names of tracked fields whose values differ
// between prev and next, in TrackedFields order.
func ChangedFields(prev, next Note) []string {
	var changed []string
	for _, f := range TrackedFields() {
		if !FieldEqual(prev, next, f) {
			changed = append(changed, f)
		}
	}
	return changed
}

// ApplyFields copies the named tracked fields from src onto dst and
// returns the result. Fields not named keep dst's values. This is the
// primitive behind the no-overlap auto-merge: the server's note is taken
// as the base and only the client's changed fields are layered on top.
func ApplyFields(dst, src Note, fields []string) Note {
	out := dst.Clone()
	for _, f := range fields {
		switch f {
		case FieldTitle:
			out.Title = src.Title
		case FieldContent:
			out.Content = src.Content
		case FieldTags:
			out.Tags = slices.Clone(src.Tags)
		case FieldKind:
			out.Kind = src.Kind
		case FieldIsProcessed:
			out.IsProcessed = src.IsProcessed
		case FieldIsCompleted:
			out.IsCompleted = src.IsCompleted
		case FieldIsArchived:
			out.IsArchived = src.IsArchived
		case FieldIsPinned:
			out.IsPinned = src.IsPinned
		case FieldDueDate:
			out.DueDate = nil
			if src.DueDate != nil {
				d := *src.DueDate
				out.DueDate = &d
			}
		case FieldPriority:
			out.Priority = src.Priority
		case FieldAnalysisState:
			out.AnalysisState = src.AnalysisState
		}
	}
	return out
}

// FieldsOverlap reports whether the two field-name sets share any element.
func FieldsOverlap(a, b []string) bool {
	for _, f := range a {
		if slices.Contains(b, f) {
			return true
		}
	}
	return false
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
