package document

import "github.com/dshills/glance/internal/renderer/core"

// ChangeType classifies a VCS line range.
type ChangeType uint8

const (
	ChangeModified ChangeType = iota
	ChangeInserted
	ChangeDeleted
)

// String returns the string representation of the change type.
func (t ChangeType) String() string {
	switch t {
	case ChangeModified:
		return "modified"
	case ChangeInserted:
		return "inserted"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ChangeRange is a block of lines the VCS reports as changed.
// Lines are 0-based logical lines; Line2 is exclusive.
type ChangeRange struct {
	Line1 int
	Line2 int
	Type  ChangeType

	// Changelist names the changelist owning the range. Empty means the
	// range is not tied to any changelist and is always shown.
	Changelist string
}

// Caret is a cursor position.
type Caret struct {
	Offset int
}

// Selection is a selected text range [Start, End).
type Selection struct {
	Start int
	End   int
}

// EditorState is the per-frame caret, selection and VCS information the
// painters draw from.
type EditorState struct {
	Carets           []Caret
	Selection        *Selection
	Changes          []ChangeRange
	ActiveChangelist string

	// ChangeColors overrides the theme's gutter colors per change type.
	ChangeColors map[ChangeType]core.Color
}
