package render

import (
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/eduwrench/simclient/sim/compose"
)

// UtilizationPNG renders per-host utilization as a PNG bar chart. An empty
// result writes nothing.
type UtilizationPNG struct {
	Title  string
	Height int
}

func (UtilizationPNG) Name() string { return "utilization-png" }

func (p UtilizationPNG) Render(w io.Writer, r *compose.Result) error {
	if r == nil || len(r.Utilization.Hosts) == 0 {
		return nil
	}
	bars := make([]chart.Value, 0, len(r.Utilization.Hosts))
	for _, h := range r.Utilization.Hosts {
		bars = append(bars, chart.Value{Label: h.Host, Value: h.Utilization})
	}

	title := p.Title
	if title == "" {
		title = "Host utilization"
	}
	height := p.Height
	if height <= 0 {
		height = 400
	}
	const barW, spacing = 60, 40
	ch := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:      160 + len(bars)*(barW+spacing),
		Height:     height,
		BarWidth:   barW,
		BarSpacing: spacing,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: bars,
	}
	return ch.Render(chart.PNG, w)
}
