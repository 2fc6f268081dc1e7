// Package chart builds the X, Y and Z time series shown on the graph screen.
package chart

import (
	"io"
	"math"

	"github.com/ericogr/accel-logger/pkg/store"
	"github.com/pkg/errors"
	gochart "github.com/wcharczuk/go-chart/v2"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Series struct {
	Label  string  `json:"label"`
	Title  string  `json:"title"`
	Points []Point `json:"points"`
}

// Build returns one series per axis, each with exactly len(rows) points.
// rows are expected newest first, as returned by store.AllData; points are
// indexed oldest first.
func Build(rows []store.AccelerometerData) []Series {
	axes := []struct {
		label string
		value func(store.AccelerometerData) float32
	}{
		{"X", func(r store.AccelerometerData) float32 { return r.X }},
		{"Y", func(r store.AccelerometerData) float32 { return r.Y }},
		{"Z", func(r store.AccelerometerData) float32 { return r.Z }},
	}

	out := make([]Series, len(axes))
	for i, a := range axes {
		points := make([]Point, len(rows))
		for idx := range rows {
			row := rows[len(rows)-1-idx]
			points[idx] = Point{X: float64(idx), Y: float64(a.value(row))}
		}
		out[i] = Series{Label: a.label, Title: a.label + " vs Time", Points: points}
	}
	return out
}

// RenderSVG draws a series as an SVG line chart with the x axis at the bottom
// and a legend. An empty series writes nothing.
func RenderSVG(w io.Writer, s Series, width, height int) error {
	if len(s.Points) == 0 {
		return nil
	}

	xs := make([]float64, len(s.Points))
	ys := make([]float64, len(s.Points))
	for i, pt := range s.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}

	graph := gochart.Chart{
		Title:  s.Title,
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:  "Sample",
			Range: paddedRange(xs, 1),
		},
		YAxis: gochart.YAxis{
			Name:  s.Label,
			Range: paddedRange(ys, 0.5),
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    s.Label,
				XValues: xs,
				YValues: ys,
			},
		},
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	if err := graph.Render(gochart.SVG, w); err != nil {
		return errors.Wrap(err, "render "+s.Label)
	}
	return nil
}

// paddedRange spans the values; a flat series is widened by pad on each side
// since the renderer rejects zero-width ranges.
func paddedRange(values []float64, pad float64) *gochart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		lo, hi = lo-pad, hi+pad
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}
