package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineIndex(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		lines  int
		offset int
		line   int
	}{
		{"empty", "", 1, 0, 0},
		{"single", "abc", 1, 2, 0},
		{"newline belongs to its line", "ab\ncd", 2, 2, 0},
		{"after newline", "ab\ncd", 2, 3, 1},
		{"crlf counts once", "ab\r\ncd", 2, 4, 1},
		{"lone cr", "ab\rcd", 2, 3, 1},
		{"trailing newline", "ab\n", 2, 3, 1},
		{"clamped past end", "ab\ncd", 2, 99, 1},
		{"negative", "ab\ncd", 2, -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			li := NewLineIndex([]rune(tt.text))
			assert.Equal(t, tt.lines, li.LineCount())
			assert.Equal(t, tt.line, li.LineNumber(tt.offset))
		})
	}
}

func TestLineIndexLineStartEnd(t *testing.T) {
	text := []rune("one\r\ntwo\nthree")
	li := NewLineIndex(text)

	assert.Equal(t, 0, li.LineStart(0))
	assert.Equal(t, 5, li.LineStart(1))
	assert.Equal(t, 9, li.LineStart(2))
	assert.Equal(t, 9, li.LineStart(42))

	assert.Equal(t, 3, li.LineEnd(0, text))
	assert.Equal(t, 8, li.LineEnd(1, text))
	assert.Equal(t, 14, li.LineEnd(2, text))
}

func TestBufferEdits(t *testing.T) {
	b := NewBuffer("hello\nworld")
	calls := 0
	b.OnChange(func() { calls++ })

	before := b.Text()
	require.NoError(t, b.Insert(5, ", there"))
	assert.Equal(t, "hello, there\nworld", b.String())
	assert.Equal(t, "hello\nworld", string(before), "snapshots are never mutated")

	require.NoError(t, b.Delete(0, 7))
	assert.Equal(t, "there\nworld", b.String())
	assert.Equal(t, 2, b.LineCount())
	assert.Equal(t, 6, b.LineStart(1))
	assert.Equal(t, 1, b.LineNumber(8))

	assert.ErrorIs(t, b.Delete(3, 99), ErrOffsetOutOfRange)
	assert.ErrorIs(t, b.Replace(4, 2, "x"), ErrRangeInvalid)

	b.SetText("x")
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 3, calls)
	assert.Equal(t, uint64(4), b.Revision())
}

func TestFoldRegionActive(t *testing.T) {
	tests := []struct {
		name   string
		region FoldRegion
		want   bool
	}{
		{"collapsed", FoldRegion{Start: 1, End: 4, Collapsed: true}, true},
		{"expanded", FoldRegion{Start: 1, End: 4}, false},
		{"custom", FoldRegion{Start: 1, End: 4, Collapsed: true, Custom: true}, false},
		{"negative start", FoldRegion{Start: -1, End: 4, Collapsed: true}, false},
		{"negative end", FoldRegion{Start: 1, End: -1, Collapsed: true}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.region.Active(), tt.name)
	}
}

func TestFoldModel(t *testing.T) {
	m := NewFoldModel()
	changes := 0
	m.OnChange(func() { changes++ })

	m.Add(FoldRegion{Start: 10, End: 20})
	m.Add(FoldRegion{Start: 2, End: 5})

	regions := m.FoldRegions()
	require.Len(t, regions, 2)
	assert.Equal(t, 2, regions[0].Start, "regions are kept in start order")

	assert.True(t, m.SetCollapsed(10, true))
	assert.False(t, m.SetCollapsed(99, true))
	assert.True(t, m.FoldRegions()[1].Collapsed)

	m.Clear()
	assert.Empty(t, m.FoldRegions())
	assert.Equal(t, 4, changes)
}

func TestWrapAtColumn(t *testing.T) {
	wraps := WrapAtColumn([]rune("abcdefg\nxy\tz"), 3)
	offsets := make([]int, 0, len(wraps))
	for _, w := range wraps {
		offsets = append(offsets, w.Offset)
		assert.Equal(t, "\n", w.Chars)
	}
	assert.Equal(t, []int{3, 6, 10, 11}, offsets)
	assert.Nil(t, WrapAtColumn([]rune("abc"), 0))
}

func TestSoftWrapLookup(t *testing.T) {
	m := NewSoftWrapModel()
	assert.Nil(t, NewSoftWrapLookup(m), "disabled model yields no lookup")
	assert.Nil(t, NewSoftWrapLookup(nil))

	m.Set([]SoftWrap{{Offset: 9, Chars: "\n  "}, {Offset: 4, Chars: "\n"}})
	lookup := NewSoftWrapLookup(m)
	w, ok := lookup.At(9)
	require.True(t, ok)
	assert.Equal(t, "\n  ", w.Chars)
	_, ok = lookup.At(5)
	assert.False(t, ok)
	assert.Equal(t, 4, m.SoftWraps()[0].Offset)

	m.Disable()
	assert.False(t, m.SoftWrapEnabled())
}

func TestPlainStyle(t *testing.T) {
	spans, err := PlainStyle{}.StyleSpans([]rune("abc"))
	require.NoError(t, err)
	assert.Equal(t, []StyleSpan{{Start: 0, End: 3}}, spans)

	spans, err = PlainStyle{}.StyleSpans(nil)
	require.NoError(t, err)
	assert.Empty(t, spans)
}
