// Package route decodes encoded activity routes and exports them as canvas
// coordinates or GPX tracks.
package route

import (
	"errors"
	"fmt"
	"time"

	"github.com/tkrajina/gpxgo/gpx"
	"github.com/twpayne/go-polyline"
)

// ErrEmptyRoute is returned when an activity has no encoded route
var ErrEmptyRoute = errors.New("activity has no route")

// Point is one decoded route coordinate in degrees
type Point struct {
	Lat float64
	Lng float64
}

// Decode turns an encoded polyline into ordered coordinates
func Decode(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, ErrEmptyRoute
	}

	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decoding polyline: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("decoding polyline: %d trailing bytes", len(rest))
	}

	points := make([]Point, 0, len(coords))
	for _, c := range coords {
		points = append(points, Point{Lat: c[0], Lng: c[1]})
	}
	return points, nil
}

// Projection maps coordinates onto canvas pixels:
// x = trunc(lng*Scale) + OffsetX, y = trunc(lat*Scale) + OffsetY
type Projection struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// StickerProjection is the fixed mapping used on the 600x600 sticker
var StickerProjection = Projection{Scale: 5, OffsetX: 300, OffsetY: 300}

// Pixel is a projected canvas position
type Pixel struct {
	X float64
	Y float64
}

// Apply projects every point, keeping order
func (p Projection) Apply(points []Point) []Pixel {
	pixels := make([]Pixel, 0, len(points))
	for _, pt := range points {
		pixels = append(pixels, Pixel{
			X: float64(int(pt.Lng*p.Scale)) + p.OffsetX,
			Y: float64(int(pt.Lat*p.Scale)) + p.OffsetY,
		})
	}
	return pixels
}

// GPX renders points as a single-track GPX 1.1 document
func GPX(name, sport string, start time.Time, points []Point) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrEmptyRoute
	}

	segment := gpx.GPXTrackSegment{}
	for _, pt := range points {
		segment.Points = append(segment.Points, gpx.GPXPoint{
			Point: gpx.Point{Latitude: pt.Lat, Longitude: pt.Lng},
		})
	}

	doc := &gpx.GPX{
		Version: "1.1",
		Creator: "cadence",
		Name:    name,
		Tracks: []gpx.GPXTrack{{
			Name:     name,
			Type:     sport,
			Segments: []gpx.GPXTrackSegment{segment},
		}},
	}
	if !start.IsZero() {
		doc.Time = &start
	}

	data, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("encoding gpx: %w", err)
	}
	return data, nil
}
