package timeline

import (
	"strings"
	"unicode/utf8"
)

// Glyph is the discrete marker symbol chosen for a note.
type Glyph int

const (
	GlyphDot Glyph = iota // blank note, a micro-reminder
	GlyphShort
	GlyphLong
	GlyphDay // baseline calendar tick
)

// Marker is the visual encoding of one point.
type Marker struct {
	Size  int
	Glyph Glyph
}

// Encoder maps note content to marker size and glyph. Sizes grow linearly
// with the trimmed rune count and saturate at MaxSize once the note reaches
// SaturateAt runes.
type Encoder struct {
	MinSize    int
	MaxSize    int
	SaturateAt int
	LongNoteAt int
}

// DefaultEncoder uses a 6..28 marker range.
func DefaultEncoder() Encoder {
	return Encoder{
		MinSize:    6,
		MaxSize:    28,
		SaturateAt: 120,
		LongNoteAt: 40,
	}
}

// Size returns the marker size for note.
func (e Encoder) Size(note string) int {
	n := utf8.RuneCountInString(strings.TrimSpace(note))
	if n == 0 || e.MaxSize <= e.MinSize {
		return e.MinSize
	}
	if e.SaturateAt <= 0 || n >= e.SaturateAt {
		return e.MaxSize
	}
	span := e.MaxSize - e.MinSize
	// Any non-blank note is at least one step above the blank dot.
	size := e.MinSize + 1 + (span-1)*n/e.SaturateAt
	if size > e.MaxSize {
		size = e.MaxSize
	}
	return size
}

// Glyph returns the symbol for note.
func (e Encoder) Glyph(note string) Glyph {
	n := utf8.RuneCountInString(strings.TrimSpace(note))
	switch {
	case n == 0:
		return GlyphDot
	case e.LongNoteAt > 0 && n >= e.LongNoteAt:
		return GlyphLong
	default:
		return GlyphShort
	}
}

// Encode returns both size and glyph.
func (e Encoder) Encode(note string) Marker {
	return Marker{Size: e.Size(note), Glyph: e.Glyph(note)}
}

// DayMarker is the constant marker of the baseline row.
func (e Encoder) DayMarker() Marker {
	return Marker{Size: e.MaxSize, Glyph: GlyphDay}
}
