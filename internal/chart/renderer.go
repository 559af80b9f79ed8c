package chart

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"

	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/score"
	"github.com/2beens/dailyscore/internal/telemetry/metrics"
	"github.com/2beens/dailyscore/internal/trend"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	width  = 10 * vg.Inch
	height = 4 * vg.Inch
)

var (
	scoreColor      = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	linearColor     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	polynomialColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// Renderer draws the PNG charts and keeps recently drawn ones in memory,
// keyed by the data they were drawn from.
type Renderer struct {
	cache   *freecache.Cache
	ttlSec  int
	metrics *metrics.Manager
}

func NewRenderer(cacheSizeMB, ttlSec int, metricsManager *metrics.Manager) *Renderer {
	return &Renderer{
		cache:   freecache.NewCache(cacheSizeMB * 1024 * 1024),
		ttlSec:  ttlSec,
		metrics: metricsManager,
	}
}

// DailyCumulative draws the running score of the day per hour.
func (r *Renderer) DailyCumulative(points []score.CumulativePoint) ([]byte, error) {
	return r.render("daily", points, func() (*plot.Plot, error) {
		p := newPlot("Cumulative Exercise Score Today", "Exercise Score")

		labels := make([]string, len(points))
		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			labels[i] = pt.Label
			xys[i].X = float64(i)
			xys[i].Y = pt.Score
		}

		if err := addLinePoints(p, "", xys, scoreColor); err != nil {
			return nil, err
		}
		nominalX(p, labels)
		return p, nil
	})
}

// Monthly draws one bar per committed day.
func (r *Renderer) Monthly(days []history.DayTotal) ([]byte, error) {
	return r.render("monthly", days, func() (*plot.Plot, error) {
		p := newPlot("Monthly Exercise Scores", "Total Exercise Score")

		labels := make([]string, len(days))
		values := make(plotter.Values, len(days))
		for i, d := range days {
			labels[i] = d.Date.Format("01-02")
			values[i] = score.Round(d.Score, 1)
		}

		if len(values) > 0 {
			bars, err := plotter.NewBarChart(values, vg.Points(14))
			if err != nil {
				return nil, fmt.Errorf("monthly bars: %w", err)
			}
			bars.Color = scoreColor
			bars.LineStyle.Width = 0
			p.Add(bars)
		}
		nominalX(p, labels)
		return p, nil
	})
}

// Trend draws the daily scores with the fitted models over them.
func (r *Renderer) Trend(a *trend.Analysis) ([]byte, error) {
	if a == nil {
		return nil, errors.New("trend chart: no analysis")
	}

	return r.render("trend", a, func() (*plot.Plot, error) {
		p := newPlot("Score Trend", "Score")

		if err := addLinePoints(p, "score", series(a.Scores), scoreColor); err != nil {
			return nil, err
		}
		if a.Linear != nil {
			name := fmt.Sprintf("linear, R² %.3f", a.Linear.R2)
			if err := addLine(p, name, series(a.Linear.Fitted), linearColor, false); err != nil {
				return nil, err
			}
		}
		if a.Polynomial != nil {
			name := fmt.Sprintf("%s, R² %.3f", a.Polynomial.Name, a.Polynomial.R2)
			if err := addLine(p, name, series(a.Polynomial.Fitted), polynomialColor, true); err != nil {
				return nil, err
			}
		}

		labels := make([]string, len(a.Dates))
		for i, d := range a.Dates {
			// MM-DD
			if len(d) == len(history.DateLayout) {
				d = d[5:]
			}
			labels[i] = d
		}
		nominalX(p, labels)
		return p, nil
	})
}

func (r *Renderer) render(kind string, data any, build func() (*plot.Plot, error)) ([]byte, error) {
	key, err := cacheKey(kind, data)
	if err != nil {
		return nil, err
	}

	if img, err := r.cache.Get(key); err == nil {
		r.metrics.CounterChartCacheHits.WithLabelValues("hit").Inc()
		return img, nil
	}
	r.metrics.CounterChartCacheHits.WithLabelValues("miss").Inc()

	p, err := build()
	if err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("%s chart: %w", kind, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%s chart: %w", kind, err)
	}

	if err := r.cache.Set(key, buf.Bytes(), r.ttlSec); err != nil {
		log.Debugf("chart cache: %s chart of %d bytes not cached: %s", kind, buf.Len(), err)
	}

	return buf.Bytes(), nil
}

func cacheKey(kind string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s chart key: %w", kind, err)
	}
	sum := sha256.Sum256(append([]byte(kind+":"), raw...))
	return sum[:], nil
}

func newPlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true
	return p
}

// nominalX labels the x positions, an empty chart keeps a unit x range.
func nominalX(p *plot.Plot, labels []string) {
	if len(labels) == 0 {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Max = 1
		return
	}
	p.NominalX(labels...)
	if p.Y.Max <= p.Y.Min {
		p.Y.Max = p.Y.Min + 1
	}
}

func series(values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i].X = float64(i)
		xys[i].Y = v
	}
	return xys
}

func addLinePoints(p *plot.Plot, name string, xys plotter.XYs, c color.Color) error {
	if len(xys) == 0 {
		return nil
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("line points: %w", err)
	}
	line.Color = c
	points.GlyphStyle.Color = c
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(line, points)
	if name != "" {
		p.Legend.Add(name, line, points)
	}
	return nil
}

func addLine(p *plot.Plot, name string, xys plotter.XYs, c color.Color, dashed bool) error {
	if len(xys) == 0 {
		return nil
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("line: %w", err)
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	if dashed {
		line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	}
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}
