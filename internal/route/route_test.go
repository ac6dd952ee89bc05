package route

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/tkrajina/gpxgo/gpx"
)

// Google's reference example
const samplePolyline = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

func TestDecode(t *testing.T) {
	points, err := Decode(samplePolyline)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []Point{{38.5, -120.2}, {40.7, -120.95}, {43.252, -126.453}}
	if len(points) != len(want) {
		t.Fatalf("Decode() = %v, want %v", points, want)
	}
	for i := range want {
		if math.Abs(points[i].Lat-want[i].Lat) > 1e-5 || math.Abs(points[i].Lng-want[i].Lng) > 1e-5 {
			t.Errorf("point %d = %+v, want %+v", i, points[i], want[i])
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(""); !errors.Is(err, ErrEmptyRoute) {
		t.Errorf("Decode(\"\") error = %v, want ErrEmptyRoute", err)
	}
	if _, err := Decode("_p~iF~ps|U_"); err == nil {
		t.Error("Decode(truncated) error = nil")
	}
}

func TestStickerProjection(t *testing.T) {
	pixels := StickerProjection.Apply([]Point{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 0, Lng: 0},
		{Lat: -1.19, Lng: 2.99},
	})

	want := []Pixel{
		{X: -301, Y: 492}, // trunc(-601) + 300, trunc(192.5) + 300
		{X: 300, Y: 300},
		{X: 314, Y: 295}, // trunc(14.95) + 300, trunc(-5.95) + 300
	}
	for i := range want {
		if pixels[i] != want[i] {
			t.Errorf("pixel %d = %+v, want %+v", i, pixels[i], want[i])
		}
	}
}

func TestGPX(t *testing.T) {
	points, err := Decode(samplePolyline)
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)

	data, err := GPX("Morning Ride", "Ride", start, points)
	if err != nil {
		t.Fatalf("GPX() error = %v", err)
	}
	if !strings.Contains(string(data), "Morning Ride") {
		t.Errorf("GPX output missing track name:\n%s", data)
	}

	parsed, err := gpx.ParseBytes(data)
	if err != nil {
		t.Fatalf("parsing generated GPX: %v", err)
	}
	if len(parsed.Tracks) != 1 || len(parsed.Tracks[0].Segments) != 1 {
		t.Fatalf("tracks = %+v", parsed.Tracks)
	}
	got := parsed.Tracks[0].Segments[0].Points
	if len(got) != 3 || math.Abs(got[2].Latitude-43.252) > 1e-5 {
		t.Errorf("points = %+v", got)
	}

	if _, err := GPX("x", "Run", time.Time{}, nil); !errors.Is(err, ErrEmptyRoute) {
		t.Errorf("GPX(nil) error = %v, want ErrEmptyRoute", err)
	}
}
