package document

import (
	"errors"
	"sort"
	"sync"
)

// Errors returned by document operations.
var (
	// ErrOffsetOutOfRange indicates an edit outside the document.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrRangeInvalid indicates an edit range with end before start.
	ErrRangeInvalid = errors.New("invalid range")

	// ErrConcurrentModification is returned by style and markup sources
	// when their data changed while being read. It is transient; callers
	// fall back to default values and carry on.
	ErrConcurrentModification = errors.New("concurrent modification")
)

// Document is a read-only view of the host's text.
// Offsets are character (rune) offsets; lines are 0-based.
type Document interface {
	// Text returns the document content. The returned slice is an
	// immutable snapshot and must not be modified.
	Text() []rune

	// Len returns the number of characters.
	Len() int

	// LineCount returns the number of lines. An empty document has one line.
	LineCount() int

	// LineNumber returns the 0-based line containing offset.
	LineNumber(offset int) int

	// LineStart returns the offset of the first character of line.
	LineStart(line int) int
}

// LineIndex maps offsets to lines for an immutable text.
// A line starts after every '\n', and after every '\r' not followed by '\n'.
type LineIndex struct {
	starts []int
	length int
}

// NewLineIndex builds the index for text.
func NewLineIndex(text []rune) *LineIndex {
	starts := make([]int, 1, len(text)/32+1)
	for i, r := range text {
		if r == '\n' || (r == '\r' && (i+1 >= len(text) || text[i+1] != '\n')) {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, length: len(text)}
}

// LineCount returns the number of lines.
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}

// LineNumber returns the 0-based line containing offset.
// Offsets are clamped to [0, len].
func (li *LineIndex) LineNumber(offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset > li.length {
		offset = li.length
	}
	// First start strictly greater than offset, minus one.
	return sort.SearchInts(li.starts, offset+1) - 1
}

// LineStart returns the start offset of line, clamped to the valid range.
func (li *LineIndex) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= len(li.starts) {
		return li.starts[len(li.starts)-1]
	}
	return li.starts[line]
}

// LineEnd returns the offset just past the last visible character of line,
// excluding its terminator.
func (li *LineIndex) LineEnd(line int, text []rune) int {
	end := li.length
	if line+1 < len(li.starts) {
		end = li.starts[line+1]
	}
	for end > li.LineStart(line) && (text[end-1] == '\n' || text[end-1] == '\r') {
		end--
	}
	return end
}

// Buffer is an in-memory Document.
// Edits replace the underlying slice, so snapshots returned by Text stay valid.
type Buffer struct {
	mu        sync.RWMutex
	text      []rune
	lines     *LineIndex
	revision  uint64
	listeners []func()
}

// NewBuffer creates a buffer holding s.
func NewBuffer(s string) *Buffer {
	b := &Buffer{}
	b.setLocked([]rune(s))
	return b
}

func (b *Buffer) setLocked(text []rune) {
	b.text = text
	b.lines = NewLineIndex(text)
	b.revision++
}

// Text returns the current content snapshot.
func (b *Buffer) Text() []rune {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// String returns the current content as a string.
func (b *Buffer) String() string {
	return string(b.Text())
}

// Len returns the number of characters.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text)
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lines.LineCount()
}

// LineNumber returns the 0-based line containing offset.
func (b *Buffer) LineNumber(offset int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lines.LineNumber(offset)
}

// LineStart returns the offset of the first character of line.
func (b *Buffer) LineStart(line int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lines.LineStart(line)
}

// Lines returns the line index of the current snapshot.
func (b *Buffer) Lines() *LineIndex {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lines
}

// Revision returns a counter incremented by every edit.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// OnChange registers a listener called after every edit.
func (b *Buffer) OnChange(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// SetText replaces the whole content.
func (b *Buffer) SetText(s string) {
	b.mu.Lock()
	b.setLocked([]rune(s))
	listeners := b.listeners
	b.mu.Unlock()

	notify(listeners)
}

// Insert inserts s at offset.
func (b *Buffer) Insert(offset int, s string) error {
	return b.Replace(offset, offset, s)
}

// Delete removes the range [start, end).
func (b *Buffer) Delete(start, end int) error {
	return b.Replace(start, end, "")
}

// Replace replaces the range [start, end) with s.
func (b *Buffer) Replace(start, end int, s string) error {
	b.mu.Lock()
	if start < 0 || end > len(b.text) {
		b.mu.Unlock()
		return ErrOffsetOutOfRange
	}
	if end < start {
		b.mu.Unlock()
		return ErrRangeInvalid
	}

	ins := []rune(s)
	next := make([]rune, 0, len(b.text)-(end-start)+len(ins))
	next = append(next, b.text[:start]...)
	next = append(next, ins...)
	next = append(next, b.text[end:]...)
	b.setLocked(next)
	listeners := b.listeners
	b.mu.Unlock()

	notify(listeners)
	return nil
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
