package ui

import (
	"fmt"
	"net/http"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"caseview/domain/results"
)

// Band colors shared by charts and the stylesheet
var bandColors = map[results.RiskBand]string{
	results.BandLow:      "48BB78",
	results.BandLowMod:   "F6E05E",
	results.BandModerate: "F6AD55",
	results.BandHigh:     "FC8181",
	results.BandUnknown:  "A0AEC0",
}

const histogramBins = 10

// filteredTable resolves the session-filtered table for chart handlers
func (a *App) filteredTable(r *http.Request) *results.CaseTable {
	snap := a.service.Snapshot()
	filtered, _ := results.Apply(snap.Table, a.sessions.Filters(r))
	return filtered
}

// handleProbabilityChart renders a histogram of calibrated probabilities
func (a *App) handleProbabilityChart(w http.ResponseWriter, r *http.Request) {
	table := a.filteredTable(r)
	if table.IsEmpty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	counts := make([]int, histogramBins)
	for _, rec := range table.Records {
		bin := int(rec.PCalibrated * histogramBins)
		if bin >= histogramBins {
			bin = histogramBins - 1
		}
		counts[bin]++
	}

	bars := make([]chart.Value, 0, histogramBins)
	fill := drawing.ColorFromHex("667EEA")
	for i, count := range counts {
		bars = append(bars, chart.Value{
			Value: float64(count),
			Label: fmt.Sprintf("%.1f", float64(i)/histogramBins),
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
	}

	graph := chart.BarChart{
		Width:    640,
		Height:   360,
		BarWidth: 40,
		Bars:     bars,
	}
	renderChart(w, func() error { return graph.Render(chart.PNG, w) }, a)
}

// handleBandChart renders per-band case counts
func (a *App) handleBandChart(w http.ResponseWriter, r *http.Request) {
	table := a.filteredTable(r)
	if table.IsEmpty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	summary := results.Summarize(table)
	bars := make([]chart.Value, 0, len(summary.BandCounts))
	for _, bc := range summary.BandCounts {
		color := drawing.ColorFromHex(bandColors[bc.Band])
		bars = append(bars, chart.Value{
			Value: float64(bc.Count),
			Label: string(bc.Band),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	graph := chart.BarChart{
		Width:    640,
		Height:   360,
		BarWidth: 70,
		Bars:     bars,
	}
	renderChart(w, func() error { return graph.Render(chart.PNG, w) }, a)
}

// handleScatterChart renders uncertainty against probability, one dot series
// per risk band
func (a *App) handleScatterChart(w http.ResponseWriter, r *http.Request) {
	table := a.filteredTable(r)
	if table.IsEmpty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	byBand := make(map[results.RiskBand][][2]float64)
	for _, rec := range table.Records {
		byBand[rec.Band] = append(byBand[rec.Band], [2]float64{rec.PCalibrated, rec.UncertaintyStd})
	}

	var series []chart.Series
	for _, band := range append(append([]results.RiskBand{}, results.Bands...), results.BandUnknown) {
		points := byBand[band]
		if len(points) == 0 {
			continue
		}
		xs := make([]float64, 0, len(points))
		ys := make([]float64, 0, len(points))
		for _, p := range points {
			xs = append(xs, p[0])
			ys = append(ys, p[1])
		}
		// go-chart needs at least two values per series
		if len(xs) == 1 {
			xs = append(xs, xs[0]+0.0001)
			ys = append(ys, ys[0])
		}
		series = append(series, chart.ContinuousSeries{
			Name: string(band),
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    drawing.ColorFromHex(bandColors[band]),
			},
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Width:  900,
		Height: 420,
		XAxis:  chart.XAxis{Name: "Calibrated probability"},
		YAxis:  chart.YAxis{Name: "Uncertainty (std)"},
		Series: series,
	}
	renderChart(w, func() error { return graph.Render(chart.PNG, w) }, a)
}

func renderChart(w http.ResponseWriter, render func() error, a *App) {
	w.Header().Set("Content-Type", chart.ContentTypePNG)
	if err := render(); err != nil {
		a.logger.Error("chart render: %v", err)
	}
}
