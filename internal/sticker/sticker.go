package sticker

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"cadence/internal/route"
)

const (
	Size = 600

	bigFontSize   = 50
	smallFontSize = 30
	lineWidth     = 6
)

var (
	textColor  = color.White
	hrColor    = color.NRGBA{R: 255, A: 255}
	routeColor = color.NRGBA{R: 255, G: 165, A: 255}
)

// Stats are the numbers printed on the sticker
type Stats struct {
	DistanceKm    float64
	MovingTimeMin float64
	AvgHR         *float64
}

// Renderer draws activity stickers. It is safe for concurrent use; each
// Render call gets its own canvas and the font faces are only read.
type Renderer struct {
	font *truetype.Font
}

// NewRenderer loads the TrueType font at fontPath, or Go Regular when the
// path is empty
func NewRenderer(fontPath string) (*Renderer, error) {
	fontBytes := goregular.TTF
	if fontPath != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		fontBytes = b
	}

	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return &Renderer{font: parsedFont}, nil
}

func (r *Renderer) face(size float64) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Render draws the stats and, when encodedRoute is non-empty, the route
// trace onto a transparent square canvas
func (r *Renderer) Render(stats Stats, encodedRoute string) (image.Image, error) {
	dc, err := r.draw(stats, encodedRoute)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func (r *Renderer) draw(stats Stats, encodedRoute string) (*gg.Context, error) {
	dc := gg.NewContext(Size, Size)

	dc.SetFontFace(r.face(bigFontSize))
	dc.SetColor(textColor)
	drawText(dc, formatNumber(stats.DistanceKm)+" km", 50, 50)

	dc.SetFontFace(r.face(smallFontSize))
	drawText(dc, formatNumber(stats.MovingTimeMin)+" min", 50, 120)

	if stats.AvgHR != nil && *stats.AvgHR != 0 {
		dc.SetColor(hrColor)
		drawText(dc, fmt.Sprintf("%d bpm", int(*stats.AvgHR)), 50, 180)
	}

	if encodedRoute != "" {
		points, err := route.Decode(encodedRoute)
		if err != nil {
			return nil, err
		}
		pixels := route.StickerProjection.Apply(points)
		if len(pixels) > 1 {
			dc.SetColor(routeColor)
			dc.SetLineWidth(lineWidth)
			dc.MoveTo(pixels[0].X, pixels[0].Y)
			for _, p := range pixels[1:] {
				dc.LineTo(p.X, p.Y)
			}
			dc.Stroke()
		}
	}

	return dc, nil
}

// RenderPNG renders the sticker and writes it as PNG
func (r *Renderer) RenderPNG(w io.Writer, stats Stats, encodedRoute string) error {
	dc, err := r.draw(stats, encodedRoute)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// drawText places s with its top-left corner at (x, y)
func drawText(dc *gg.Context, s string, x, y float64) {
	dc.DrawStringAnchored(s, x, y, 0, 1)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
