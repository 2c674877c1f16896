package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// GridCell is one day cell of a month grid. Blank cells pad the first and last week.
type GridCell struct {
	Label   string
	Lines   []string
	Weekday int
	Blank   bool
}

// MonthGrid is a renderer-agnostic month layout.
type MonthGrid struct {
	Title    string
	Weekdays []string
	Weeks    [][]GridCell
}

var (
	colorSunday   = color.RGBA{R: 255, A: 255}
	colorSaturday = color.RGBA{B: 255, A: 255}
	colorText     = color.Black
	colorGrid     = color.RGBA{R: 211, G: 211, B: 211, A: 255}
	colorHeader   = color.RGBA{R: 235, G: 235, B: 235, A: 255}
)

// PNGCalendarRenderer draws month grids as PNG images. Text uses the faces
// added with WithFont first, then Go Regular, then basicfont.
type PNGCalendarRenderer struct {
	Width  int
	Height int

	mu   sync.Mutex
	face *fallbackFace
}

// NewPNGCalendarRenderer constructs a renderer with an 800x600 canvas.
func NewPNGCalendarRenderer() *PNGCalendarRenderer {
	return &PNGCalendarRenderer{Width: 800, Height: 600, face: newFallbackFace(defaultFaces()...)}
}

// WithFont puts a TrueType or OpenType font ahead of the bundled faces, e.g. a
// CJK font so Hangul titles are drawn.
func (r *PNGCalendarRenderer) WithFont(data []byte) error {
	f, err := ParseFont(data)
	if err != nil {
		return err
	}
	face, err := newFace(f)
	if err != nil {
		return fmt.Errorf("load font face: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.face = newFallbackFace(append([]font.Face{face}, r.face.faces...)...)
	return nil
}

// Render draws the title, a weekday header row and one row per week.
func (r *PNGCalendarRenderer) Render(grid MonthGrid) ([]byte, error) {
	if len(grid.Weekdays) != 7 {
		return nil, fmt.Errorf("month grid requires 7 weekday labels, got %d", len(grid.Weekdays))
	}
	if len(grid.Weeks) == 0 {
		return nil, fmt.Errorf("month grid has no weeks")
	}

	const (
		margin       = 20
		titleHeight  = 40
		headerHeight = 24
		lineHeight   = 14
	)
	r.mu.Lock()
	defer r.mu.Unlock()
	face := r.face

	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	drawText(img, face, colorText, (r.Width-textWidth(face, grid.Title))/2, margin+16, grid.Title)

	top := margin + titleHeight
	cellWidth := (r.Width - 2*margin) / 7
	cellHeight := (r.Height - top - headerHeight - margin) / len(grid.Weeks)

	fillRect(img, image.Rect(margin, top, margin+7*cellWidth, top+headerHeight), colorHeader)
	for i, name := range grid.Weekdays {
		x := margin + i*cellWidth + (cellWidth-textWidth(face, name))/2
		drawText(img, face, weekdayColor(i), x, top+16, name)
	}

	maxWidth := cellWidth - 8
	maxLines := (cellHeight - lineHeight - 4) / lineHeight
	bodyTop := top + headerHeight
	for w, week := range grid.Weeks {
		for d, cell := range week {
			x0 := margin + d*cellWidth
			y0 := bodyTop + w*cellHeight
			strokeRect(img, image.Rect(x0, y0, x0+cellWidth, y0+cellHeight), colorGrid)
			if cell.Blank {
				continue
			}
			drawText(img, face, weekdayColor(cell.Weekday), x0+4, y0+13, cell.Label)
			for i, line := range cell.Lines {
				if i == maxLines-1 && len(cell.Lines) > maxLines {
					drawText(img, face, colorText, x0+4, y0+13+(i+1)*lineHeight, fmt.Sprintf("+%d more", len(cell.Lines)-i))
					break
				}
				if i >= maxLines {
					break
				}
				drawText(img, face, colorText, x0+4, y0+13+(i+1)*lineHeight, fitText(face, "- "+line, maxWidth))
			}
		}
	}
	strokeRect(img, image.Rect(margin, top, margin+7*cellWidth, bodyTop+len(grid.Weeks)*cellHeight), colorGrid)

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func weekdayColor(weekday int) color.Color {
	switch weekday {
	case 0:
		return colorSunday
	case 6:
		return colorSaturday
	default:
		return colorText
	}
}

func textWidth(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}

func drawText(dst draw.Image, face font.Face, c color.Color, x, y int, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func fillRect(dst draw.Image, rect image.Rectangle, c color.Color) {
	draw.Draw(dst, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func strokeRect(dst draw.Image, rect image.Rectangle, c color.Color) {
	fillRect(dst, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+1), c)
	fillRect(dst, image.Rect(rect.Min.X, rect.Max.Y-1, rect.Max.X, rect.Max.Y), c)
	fillRect(dst, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+1, rect.Max.Y), c)
	fillRect(dst, image.Rect(rect.Max.X-1, rect.Min.Y, rect.Max.X, rect.Max.Y), c)
}
