// Package text provides typefaces, fonts and shaping for glyph drawing.
//
// # Typefaces
//
// A [Typeface] turns glyph ids into outlines or images:
//   - [SFNTTypeface] reads TrueType and OpenType outlines through
//     golang.org/x/image/font/sfnt.
//   - [BitmapTypeface] serves prerendered color glyph images, the way
//     emoji fonts do.
//
// # Fonts
//
// A [Font] pairs a typeface with a pixel size and synthetic styles
// (faux bold, faux italic). Glyph outlines are produced in pixels with the
// origin on the baseline and y pointing down. A [GlyphCache] keeps
// recently used outlines.
//
// # Shaping
//
// [Shape] converts a string into positioned glyphs. Typefaces backed by
// font data are shaped with the HarfBuzz port from go-text/typesetting;
// the paragraph is split into directional runs with
// golang.org/x/text/unicode/bidi first.
package text
