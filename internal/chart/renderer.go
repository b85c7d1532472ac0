// Package chart renders recommendation-trend charts to transient PNG files.
// Ownership of a rendered file transfers to the caller, which must remove it
// after delivery on every exit path.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	colorStrongSell = color.RGBA{R: 0xff, A: 0xff}                   // red
	colorSell       = color.RGBA{R: 0xff, G: 0xa5, A: 0xff}          // orange
	colorHold       = color.RGBA{R: 0xff, G: 0xfc, B: 0x33, A: 0xff} // yellow
	colorBuy        = color.RGBA{R: 0x7a, G: 0xff, B: 0x33, A: 0xff} // green
	colorStrongBuy  = color.RGBA{R: 0x22, G: 0x8b, B: 0x22, A: 0xff} // forest green
)

// Renderer saves charts as PNG files under a dedicated output directory.
type Renderer struct {
	OutputDir string
}

// NewRenderer creates a renderer writing to dir, created if absent.
func NewRenderer(dir string) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}
	return &Renderer{OutputDir: dir}, nil
}

// RenderBar draws the stacked bar chart of all five rating counts per period
// and returns the image path.
func (r *Renderer) RenderBar(ticker string, s *TrendSeries) (string, error) {
	p := plot.New()
	p.Title.Text = ticker + " Recommendation Trends"
	p.X.Label.Text = "Months"
	p.Y.Label.Text = "Number of Analysts"
	p.Y.Min = 0

	width := vg.Points(24)
	segments := []struct {
		name  string
		vals  []float64
		color color.Color
	}{
		{"Strong Sell", s.StrongSell, colorStrongSell},
		{"Sell", s.Sell, colorSell},
		{"Hold", s.Hold, colorHold},
		{"Buy", s.Buy, colorBuy},
		{"Strong Buy", s.StrongBuy, colorStrongBuy},
	}

	var prev *plotter.BarChart
	for _, seg := range segments {
		bars, err := plotter.NewBarChart(plotter.Values(seg.vals), width)
		if err != nil {
			return "", fmt.Errorf("bar chart %s: %w", seg.name, err)
		}
		bars.Color = seg.color
		bars.LineStyle.Width = 0
		if prev != nil {
			bars.StackOn(prev)
		}
		p.Add(bars)
		p.Legend.Add(seg.name, bars)
		prev = bars
	}

	p.NominalX(s.Labels...)
	p.Legend.Top = true

	path := r.imagePath(ticker, "bar")
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save bar chart: %w", err)
	}
	return path, nil
}

// RenderLine draws the condensed three-line chart (sell, hold, buy, with the
// strong counts folded in) with each point annotated by its value, and
// returns the image path.
func (r *Renderer) RenderLine(ticker string, s *TrendSeries) (string, error) {
	p := plot.New()
	p.Title.Text = ticker + " Recommendation Trends"
	p.X.Label.Text = "Months"
	p.Y.Label.Text = "Number of Analysts"
	p.Y.Min = 0

	series := []struct {
		name  string
		vals  []float64
		color color.Color
	}{
		{"Sell", s.CombinedSell(), colorStrongSell},
		{"Hold", s.Hold, colorSell},
		{"Buy", s.CombinedBuy(), colorStrongBuy},
	}

	for _, sr := range series {
		xys := make(plotter.XYs, len(sr.vals))
		labels := make([]string, len(sr.vals))
		for i, v := range sr.vals {
			xys[i].X = float64(i)
			xys[i].Y = v
			labels[i] = fmt.Sprintf("%.0f", v)
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return "", fmt.Errorf("line %s: %w", sr.name, err)
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = sr.color

		points, err := plotter.NewScatter(xys)
		if err != nil {
			return "", fmt.Errorf("scatter %s: %w", sr.name, err)
		}
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		points.GlyphStyle.Color = sr.color
		points.GlyphStyle.Radius = vg.Points(3)

		annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return "", fmt.Errorf("labels %s: %w", sr.name, err)
		}
		for i := range annotations.TextStyle {
			annotations.TextStyle[i].XAlign = draw.XCenter
			annotations.TextStyle[i].YAlign = draw.YBottom
			annotations.TextStyle[i].Color = sr.color
		}

		p.Add(line, points, annotations)
		p.Legend.Add(sr.name, line)
	}

	p.NominalX(s.Labels...)
	p.Legend.Top = true

	path := r.imagePath(ticker, "line")
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save line chart: %w", err)
	}
	return path, nil
}

func (r *Renderer) imagePath(ticker, kind string) string {
	return filepath.Join(r.OutputDir, fmt.Sprintf("%s_recommendation_trends_%s.png", ticker, kind))
}
