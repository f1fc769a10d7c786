package ui

import (
	"fmt"
	"math"
	"strings"

	"bookingsdash/app"
)

// Chart geometry is computed here so templates only place elements.
const (
	chartHeight   = 260.0
	chartTop      = 20.0
	chartBottom   = 200.0
	chartLeft     = 50.0
	groupWidth    = 64.0
	barWidth      = 24.0
	minChartWidth = 420.0

	donutSize  = 260.0
	donutOuter = 110.0
	// donutInner leaves a hole of 0.4 of the radius
	donutInner = donutOuter * 0.4
)

// palette colours the donut slices in order
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// BarRect is one positioned bar
type BarRect struct {
	X, Y, W, H float64
	Value      float64
}

// BarGroup is the forecast/actual pair for one brand
type BarGroup struct {
	Label    string
	LabelX   float64
	Forecast BarRect
	Actual   BarRect
}

// BarChart is the grouped forecast vs actual chart
type BarChart struct {
	Width, Height float64
	BaseY         float64
	MaxValue      float64
	Groups        []BarGroup
}

// VarianceBar is one bar of the variance chart
type VarianceBar struct {
	Label   string
	LabelX  float64
	Rect    BarRect
	Class   string
	Percent float64
}

// VarianceChart draws bars above or below a zero line
type VarianceChart struct {
	Width, Height float64
	ZeroY         float64
	Bars          []VarianceBar
}

// DonutSlice is one ring segment
type DonutSlice struct {
	Label   string
	Path    string
	Colour  string
	Percent float64
	Actual  float64
}

// DonutChart is the actual-share ring
type DonutChart struct {
	Size   float64
	Center float64
	Slices []DonutSlice
}

func chartWidth(n int) float64 {
	return math.Max(minChartWidth, chartLeft+float64(n)*groupWidth+20)
}

// scaleHeight maps v in [0, max] onto the plot height; negatives draw nothing
func scaleHeight(v, max float64) float64 {
	if max <= 0 || v <= 0 {
		return 0
	}
	return v / max * (chartBottom - chartTop)
}

func buildBarChart(points []app.ComparePoint) BarChart {
	chart := BarChart{
		Width:  chartWidth(len(points)),
		Height: chartHeight,
		BaseY:  chartBottom,
	}
	for _, p := range points {
		chart.MaxValue = math.Max(chart.MaxValue, math.Max(p.Forecast, p.Actual))
	}

	for i, p := range points {
		x := chartLeft + float64(i)*groupWidth + (groupWidth-2*barWidth)/2
		fh := scaleHeight(p.Forecast, chart.MaxValue)
		ah := scaleHeight(p.Actual, chart.MaxValue)
		chart.Groups = append(chart.Groups, BarGroup{
			Label:    p.Brand,
			LabelX:   x + barWidth,
			Forecast: BarRect{X: x, Y: chartBottom - fh, W: barWidth, H: fh, Value: p.Forecast},
			Actual:   BarRect{X: x + barWidth, Y: chartBottom - ah, W: barWidth, H: ah, Value: p.Actual},
		})
	}
	return chart
}

func buildVarianceChart(series app.VarianceSeries) VarianceChart {
	chart := VarianceChart{
		Width:  chartWidth(len(series.Points)),
		Height: chartHeight,
	}

	var maxUp, maxDown float64
	for _, p := range series.Points {
		if p.Percent >= 0 {
			maxUp = math.Max(maxUp, p.Percent)
		} else {
			maxDown = math.Max(maxDown, -p.Percent)
		}
	}

	plot := chartBottom - chartTop
	span := maxUp + maxDown
	chart.ZeroY = chartBottom
	if span > 0 {
		chart.ZeroY = chartTop + plot*maxUp/span
	}

	for i, p := range series.Points {
		x := chartLeft + float64(i)*groupWidth + (groupWidth-barWidth)/2
		h := 0.0
		if span > 0 {
			h = math.Abs(p.Percent) / span * plot
		}
		y := chart.ZeroY - h
		if p.Percent < 0 {
			y = chart.ZeroY
		}
		chart.Bars = append(chart.Bars, VarianceBar{
			Label:   p.Brand,
			LabelX:  x + barWidth/2,
			Rect:    BarRect{X: x, Y: y, W: barWidth, H: h, Value: p.Percent},
			Class:   p.Class,
			Percent: p.Percent,
		})
	}
	return chart
}

func buildDonutChart(series app.ShareSeries) DonutChart {
	chart := DonutChart{Size: donutSize, Center: donutSize / 2}
	start := -math.Pi / 2
	for i, s := range series.Slices {
		sweep := s.Percent / 100 * 2 * math.Pi
		chart.Slices = append(chart.Slices, DonutSlice{
			Label:   s.Brand,
			Path:    ringSegment(chart.Center, start, start+sweep),
			Colour:  palette[i%len(palette)],
			Percent: s.Percent,
			Actual:  s.Actual,
		})
		start += sweep
	}
	return chart
}

// ringSegment returns the SVG path of the ring between angles a0 and a1.
// Each edge is drawn as two arcs through the midpoint so a full ring still
// renders.
func ringSegment(c, a0, a1 float64) string {
	mid := (a0 + a1) / 2
	pt := func(r, a float64) string {
		return fmt.Sprintf("%.3f %.3f", c+r*math.Cos(a), c+r*math.Sin(a))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "M %s ", pt(donutOuter, a0))
	fmt.Fprintf(&b, "A %g %g 0 0 1 %s ", donutOuter, donutOuter, pt(donutOuter, mid))
	fmt.Fprintf(&b, "A %g %g 0 0 1 %s ", donutOuter, donutOuter, pt(donutOuter, a1))
	fmt.Fprintf(&b, "L %s ", pt(donutInner, a1))
	fmt.Fprintf(&b, "A %g %g 0 0 0 %s ", donutInner, donutInner, pt(donutInner, mid))
	fmt.Fprintf(&b, "A %g %g 0 0 0 %s Z", donutInner, donutInner, pt(donutInner, a0))
	return b.String()
}
