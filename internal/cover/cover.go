// Package cover renders procedural book-cover images: a category-colored
// gradient, seeded decorative circles, a category badge, the wrapped title,
// and the author line. Covers are deterministic per book id.
package cover

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/bookhaven/bookshop/internal/domain"
)

// Cover dimensions in pixels.
const (
	Width  = 600
	Height = 900
)

// scheme is a category color scheme.
type scheme struct {
	bg     color.RGBA
	accent color.RGBA
	text   color.RGBA
}

var white = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}

// palettes maps each catalog category to its cover colors. Unknown
// categories fall back to the Fiction scheme.
var palettes = map[string]scheme{
	"Fiction":     {bg: color.RGBA{0x4F, 0x46, 0xE5, 0xFF}, accent: color.RGBA{0x81, 0x8C, 0xF8, 0xFF}, text: white},
	"Non-Fiction": {bg: color.RGBA{0xDC, 0x26, 0x26, 0xFF}, accent: color.RGBA{0xF8, 0x71, 0x71, 0xFF}, text: white},
	"Science":     {bg: color.RGBA{0x05, 0x96, 0x69, 0xFF}, accent: color.RGBA{0x34, 0xD3, 0x99, 0xFF}, text: white},
	"Technology":  {bg: color.RGBA{0x7C, 0x3A, 0xED, 0xFF}, accent: color.RGBA{0xA7, 0x8B, 0xFA, 0xFF}, text: white},
	"Self-Help":   {bg: color.RGBA{0xEA, 0x58, 0x0C, 0xFF}, accent: color.RGBA{0xFB, 0x92, 0x3C, 0xFF}, text: white},
}

var (
	fontOnce   sync.Once
	fontErr    error
	boldFont   *opentype.Font
	regularFnt *opentype.Font
)

func loadFonts() error {
	fontOnce.Do(func() {
		boldFont, fontErr = opentype.Parse(gobold.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("parse bold font: %w", fontErr)
			return
		}
		regularFnt, fontErr = opentype.Parse(goregular.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("parse regular font: %w", fontErr)
		}
	})
	return fontErr
}

// Render draws the cover for a book and returns it PNG-encoded.
func Render(book domain.Book) ([]byte, error) {
	img, err := Draw(book)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}
	return buf.Bytes(), nil
}

// Draw renders the cover for a book as an image.
func Draw(book domain.Book) (image.Image, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}

	colors, ok := palettes[book.Category]
	if !ok {
		colors = palettes["Fiction"]
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))

	drawGradient(img, colors.bg, colors.accent)

	// The decorative layout is seeded by the book id so the same book always
	// gets the same cover.
	rng := rand.New(rand.NewSource(seed(book.ID)))
	drawCircles(img, rng)
	drawSpecks(img, rng)

	badgeFace, err := newFace(boldFont, 16)
	if err != nil {
		return nil, err
	}
	titleFace, err := newFace(boldFont, 48)
	if err != nil {
		return nil, err
	}
	authorFace, err := newFace(regularFnt, 28)
	if err != nil {
		return nil, err
	}

	// Category badge.
	fillRect(img, image.Rect(30, 30, 180, 70), colors.accent, 1)
	drawCentered(img, badgeFace, strings.ToUpper(book.Category), 105, 55, colors.text, 1)

	// Title, wrapped and vertically centered.
	lines := wrapText(titleFace, book.Title, Width-100)
	const lineHeight = 60
	startY := Height/2 - len(lines)*lineHeight/2
	for i, line := range lines {
		drawCentered(img, titleFace, line, Width/2, startY+i*lineHeight, colors.text, 1)
	}

	// Author line near the foot of the cover.
	drawCentered(img, authorFace, book.Author, Width/2, Height-100, colors.text, 0.9)

	drawBorder(img, colors.text)

	return img, nil
}

func seed(id string) int64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return int64(h.Sum64())
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face at %.0fpx: %w", size, err)
	}
	return face, nil
}

// drawGradient fills the image with a diagonal blend from top-left to
// bottom-right.
func drawGradient(img *image.RGBA, from, to color.RGBA) {
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			t := float64(x+y) / float64(Width+Height-2)
			img.SetRGBA(x, y, lerp(from, to, t))
		}
	}
}

// drawCircles strokes five faint circles at seeded positions.
func drawCircles(img *image.RGBA, rng *rand.Rand) {
	for i := 0; i < 5; i++ {
		cx := rng.Float64() * Width
		cy := rng.Float64() * Height
		r := rng.Float64()*50 + 20
		strokeCircle(img, cx, cy, r, 2, white, 0.1)
	}
}

// drawSpecks scatters a thousand single-pixel flecks as subtle texture.
func drawSpecks(img *image.RGBA, rng *rand.Rand) {
	for i := 0; i < 1000; i++ {
		x := int(rng.Float64() * Width)
		y := int(rng.Float64() * Height)
		blend(img, x, y, white, 0.05)
	}
}

func drawBorder(img *image.RGBA, col color.RGBA) {
	const inset, thickness = 20, 3
	outer := image.Rect(inset, inset, Width-inset, Height-inset)
	fillRect(img, image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+thickness), col, 0.3)
	fillRect(img, image.Rect(outer.Min.X, outer.Max.Y-thickness, outer.Max.X, outer.Max.Y), col, 0.3)
	fillRect(img, image.Rect(outer.Min.X, outer.Min.Y+thickness, outer.Min.X+thickness, outer.Max.Y-thickness), col, 0.3)
	fillRect(img, image.Rect(outer.Max.X-thickness, outer.Min.Y+thickness, outer.Max.X, outer.Max.Y-thickness), col, 0.3)
}

func strokeCircle(img *image.RGBA, cx, cy, r, width float64, col color.RGBA, alpha float64) {
	half := width / 2
	minX := int(math.Max(0, cx-r-half-1))
	maxX := int(math.Min(Width-1, cx+r+half+1))
	minY := int(math.Max(0, cy-r-half-1))
	maxY := int(math.Min(Height-1, cy+r+half+1))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			// Coverage falls off over one pixel at the stroke edge.
			cov := half + 1 - math.Abs(d-r)
			if cov <= 0 {
				continue
			}
			if cov > 1 {
				cov = 1
			}
			blend(img, x, y, col, alpha*cov)
		}
	}
}

func fillRect(img *image.RGBA, r image.Rectangle, col color.RGBA, alpha float64) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			blend(img, x, y, col, alpha)
		}
	}
}

func blend(img *image.RGBA, x, y int, col color.RGBA, alpha float64) {
	if alpha >= 1 {
		img.SetRGBA(x, y, col)
		return
	}
	dst := img.RGBAAt(x, y)
	img.SetRGBA(x, y, color.RGBA{
		R: uint8(float64(col.R)*alpha + float64(dst.R)*(1-alpha)),
		G: uint8(float64(col.G)*alpha + float64(dst.G)*(1-alpha)),
		B: uint8(float64(col.B)*alpha + float64(dst.B)*(1-alpha)),
		A: 0xFF,
	})
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: 0xFF,
	}
}

// wrapText breaks text into lines no wider than maxWidth.
func wrapText(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(face, candidate).Ceil() < maxWidth {
			current = candidate
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}

// drawCentered draws text with its horizontal center at x and baseline at y.
func drawCentered(img *image.RGBA, face font.Face, text string, x, y int, col color.RGBA, alpha float64) {
	width := font.MeasureString(face, text).Ceil()

	src := color.NRGBA{R: col.R, G: col.G, B: col.B, A: uint8(alpha * 255)}

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(src),
		Face: face,
		Dot:  fixed.P(x-width/2, y),
	}
	d.DrawString(text)
}
