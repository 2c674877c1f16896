package export

import (
	"errors"
	"fmt"
	"image"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const faceSize = 10

// ParseFont reads a TrueType or OpenType font. For collections (.ttc) the
// first font is used.
func ParseFont(data []byte) (*opentype.Font, error) {
	if f, err := opentype.Parse(data); err == nil {
		return f, nil
	}
	collection, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	if collection.NumFonts() == 0 {
		return nil, fmt.Errorf("parse font: empty collection")
	}
	return collection.Font(0)
}

func newFace(f *opentype.Font) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{Size: faceSize, DPI: 96, Hinting: font.HintingFull})
}

// fallbackFace draws each rune with the first face that has a glyph for it.
// Runes no face covers are drawn as the replacement glyph of the last face.
type fallbackFace struct {
	faces []font.Face
}

func newFallbackFace(faces ...font.Face) *fallbackFace {
	return &fallbackFace{faces: faces}
}

// defaultFaces returns the bundled Go Regular face followed by basicfont.
func defaultFaces() []font.Face {
	faces := make([]font.Face, 0, 2)
	if f, err := opentype.Parse(goregular.TTF); err == nil {
		if face, err := newFace(f); err == nil {
			faces = append(faces, face)
		}
	}
	return append(faces, basicfont.Face7x13)
}

func (f *fallbackFace) pick(r rune) (font.Face, rune) {
	for _, face := range f.faces {
		if _, ok := face.GlyphAdvance(r); ok {
			return face, r
		}
	}
	return f.faces[len(f.faces)-1], '\ufffd'
}

// Covers reports whether some face has a real glyph for r.
func (f *fallbackFace) Covers(r rune) bool {
	for _, face := range f.faces {
		if _, ok := face.GlyphAdvance(r); ok {
			return true
		}
	}
	return false
}

func (f *fallbackFace) Close() error {
	for _, face := range f.faces {
		_ = face.Close()
	}
	return nil
}

func (f *fallbackFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	face, r := f.pick(r)
	return face.Glyph(dot, r)
}

func (f *fallbackFace) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	face, r := f.pick(r)
	return face.GlyphBounds(r)
}

func (f *fallbackFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	face, r := f.pick(r)
	return face.GlyphAdvance(r)
}

func (f *fallbackFace) Kern(r0, r1 rune) fixed.Int26_6 {
	face0, _ := f.pick(r0)
	face1, _ := f.pick(r1)
	if face0 != face1 {
		return 0
	}
	return face0.Kern(r0, r1)
}

func (f *fallbackFace) Metrics() font.Metrics {
	return f.faces[0].Metrics()
}

// fitText shortens text with a trailing "~" until it is at most width pixels wide.
func fitText(face font.Face, text string, width int) string {
	if font.MeasureString(face, text).Ceil() <= width {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := string(runes[:n]) + "~"
		if font.MeasureString(face, candidate).Ceil() <= width {
			return candidate
		}
	}
	return ""
}

// NewRenderers builds the month image and PDF renderers and loads the font at
// fontPath into both when it is set. A font only one of them accepts is still
// applied to that one; the returned error reports what was skipped.
func NewRenderers(fontPath string) (*PNGCalendarRenderer, *PDFExporter, error) {
	img, pdf := NewPNGCalendarRenderer(), NewPDFExporter()
	if fontPath == "" {
		return img, pdf, nil
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return img, pdf, fmt.Errorf("read font %s: %w", fontPath, err)
	}
	var errs []error
	if err := img.WithFont(data); err != nil {
		errs = append(errs, fmt.Errorf("month image: %w", err))
	}
	if err := pdf.WithFont(data); err != nil {
		errs = append(errs, fmt.Errorf("pdf export: %w", err))
	}
	return img, pdf, errors.Join(errs...)
}
