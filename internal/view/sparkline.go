package view

import (
	"math"
	"strconv"
	"strings"
)

// Sparkline plot box, in SVG user units.
const (
	SparklineWidth   = 100.0
	SparklineHeight  = 32.0
	SparklinePadding = 2.0
)

type Point struct {
	X float64
	Y float64
}

// CX and CY are the coordinates as SVG attribute values.
func (p Point) CX() string { return coord(p.X) }
func (p Point) CY() string { return coord(p.Y) }

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// HoverPoint is the sample nearest to the pointer.
type HoverPoint struct {
	Index int
	Point
	Value float64
}

type Sparkline struct {
	Samples []float64
	Points  []Point
	Min     float64
	Max     float64
}

// NewSparkline maps samples into the plot box. It returns false when there is
// nothing to draw.
func NewSparkline(samples []float64) (*Sparkline, bool) {
	n := len(samples)
	if n < 1 {
		return nil, false
	}

	lo, hi := samples[0], samples[0]
	for _, v := range samples[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	flat := hi == lo
	span := hi - lo
	if flat {
		span = 1
	}

	innerW := SparklineWidth - 2*SparklinePadding
	innerH := SparklineHeight - 2*SparklinePadding
	baseline := SparklineHeight - SparklinePadding

	points := make([]Point, n)
	for i, v := range samples {
		x := SparklinePadding
		if n > 1 {
			x = SparklinePadding + float64(i)/float64(n-1)*innerW
		}
		y := baseline - (v-lo)/span*innerH
		if flat {
			y = SparklineHeight / 2
		}
		points[i] = Point{X: x, Y: y}
	}

	return &Sparkline{
		Samples: samples,
		Points:  points,
		Min:     lo,
		Max:     hi,
	}, true
}

// NearestIndex maps a pointer fraction of the plot width onto a sample index
// in [0, n-1].
func NearestIndex(f float64, n int) int {
	if n <= 1 || math.IsNaN(f) {
		return 0
	}
	f = math.Max(0, math.Min(1, f))
	idx := int(math.Round(f * float64(n-1)))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

// Hover returns the sample nearest to the pointer fraction f.
func (s *Sparkline) Hover(f float64) HoverPoint {
	idx := NearestIndex(f, len(s.Points))
	return HoverPoint{
		Index: idx,
		Point: s.Points[idx],
		Value: s.Samples[idx],
	}
}

// AreaPolygon closes the line down to the baseline for the fill.
func (s *Sparkline) AreaPolygon() []Point {
	baseline := SparklineHeight - SparklinePadding
	poly := make([]Point, 0, len(s.Points)+2)
	poly = append(poly, Point{X: s.Points[0].X, Y: baseline})
	poly = append(poly, s.Points...)
	poly = append(poly, Point{X: s.Points[len(s.Points)-1].X, Y: baseline})
	return poly
}

// PolylinePoints formats the line for an SVG points attribute.
func (s *Sparkline) PolylinePoints() string {
	return formatPoints(s.Points)
}

func (s *Sparkline) AreaPoints() string {
	return formatPoints(s.AreaPolygon())
}

func formatPoints(pts []Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.CX())
		b.WriteByte(',')
		b.WriteString(p.CY())
	}
	return b.String()
}

// Rising reports whether the last sample is at or above the first.
func (s *Sparkline) Rising() bool {
	return s.Samples[len(s.Samples)-1] >= s.Samples[0]
}
