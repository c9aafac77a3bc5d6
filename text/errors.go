package text

import "errors"

// Sentinel errors for the text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrNoOutline is returned for glyphs that only exist as images.
	ErrNoOutline = errors.New("text: glyph has no outline")

	// ErrNoImage is returned when a typeface cannot render a glyph image.
	ErrNoImage = errors.New("text: glyph has no image")

	// ErrGlyphNotFound is returned for glyph ids outside the typeface.
	ErrGlyphNotFound = errors.New("text: glyph not found")
)
