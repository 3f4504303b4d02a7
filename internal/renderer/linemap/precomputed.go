package linemap

import (
	"sort"

	"github.com/dshills/glance/internal/renderer/fold"
)

// tabWidth is the number of columns a tab occupies when measuring lines.
const tabWidth = 4

// LineInfo locates an offset's line.
type LineInfo struct {
	// Number is the 1-based line number, not counting folded lines.
	Number int

	// Begin is the offset of the first character of the line.
	Begin int
}

// noLines is returned before the first scan and for empty documents.
var noLines = LineInfo{Number: 1, Begin: 0}

// Precomputed maps offsets to lines by binary search over line endings
// recorded in a single scan.
type Precomputed struct {
	// endings holds the offsets of every terminator, preceded by a
	// sentinel -1 and followed by a synthetic terminator at len-1 when the
	// text does not end with one.
	endings []int

	lines   int
	longest int
}

// NewPrecomputed returns a mapper that has not scanned anything yet.
func NewPrecomputed() *Precomputed {
	return &Precomputed{}
}

// Scan records the line structure of text, skipping offsets hidden by idx.
// Terminators are '\n' and '\r' not followed by '\n'.
func (p *Precomputed) Scan(text []rune, idx *fold.Index) {
	endings := make([]int, 1, len(text)/32+2)
	endings[0] = -1

	lines := 1
	longest := 1
	length := 0
	hidden := idx.Cursor()

	for i, ch := range text {
		if hidden.IsHidden(i) {
			continue
		}
		switch {
		case ch == '\n' || (ch == '\r' && (i+1 >= len(text) || text[i+1] != '\n')):
			endings = append(endings, i)
			lines++
			longest = max(longest, length)
			length = 0
		case ch == '\t':
			length += tabWidth
		default:
			length++
		}
	}
	longest = max(longest, length)

	if endings[len(endings)-1] != len(text)-1 {
		endings = append(endings, len(text)-1)
	}

	p.endings = endings
	p.lines = lines
	p.longest = longest
}

// Lines returns the number of lines found by the last scan.
func (p *Precomputed) Lines() int {
	return max(p.lines, 1)
}

// LongestLine returns the widest line in columns, tabs counting as 4.
func (p *Precomputed) LongestLine() int {
	return max(p.longest, 1)
}

// Height returns the pixel height needed to draw every line, plus one
// spare line.
func (p *Precomputed) Height(pixelsPerLine int) int {
	return (p.Lines() + 1) * pixelsPerLine
}

// Line returns the line containing offset. An offset that falls on a
// terminator belongs to the line that terminator ends. Before the first
// scan every offset maps to line 1.
func (p *Precomputed) Line(offset int) LineInfo {
	if len(p.endings) < 2 {
		return noLines
	}
	last := p.endings[len(p.endings)-1]
	offset = max(0, min(offset, last))

	i := sort.SearchInts(p.endings, offset)
	return LineInfo{Number: i, Begin: p.endings[i-1] + 1}
}
