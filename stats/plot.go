package stats

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// lossSmoothWindow is the moving-average window applied to the loss series
// before plotting; the raw curve is too noisy to read.
const lossSmoothWindow = 100

// WritePlots renders the training-progress charts to a single HTML page in
// dir, named after the episode it was generated at.
func (t *Training) WritePlots(dir string, episode int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}

	page := components.NewPage()
	page.AddCharts(
		t.scoreChart(),
		t.epsilonChart(),
		t.lossChart(),
		t.lengthChart(),
	)

	path := filepath.Join(dir, fmt.Sprintf("training_progress_ep%d.html", episode))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render plots: %w", err)
	}
	return nil
}

func (t *Training) scoreChart() *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Training Scores"}))

	raw := make([]opts.LineData, len(t.scores))
	avg := make([]opts.LineData, len(t.avgScores))
	for i, s := range t.scores {
		raw[i] = opts.LineData{Value: s}
	}
	for i, a := range t.avgScores {
		avg[i] = opts.LineData{Value: a}
	}

	line.SetXAxis(episodeAxis(len(t.scores))).
		AddSeries("score", raw).
		AddSeries(fmt.Sprintf("avg (%d ep)", rollingWindow), avg)
	return line
}

func (t *Training) epsilonChart() *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Exploration Rate"}))

	items := make([]opts.LineData, len(t.epsilons))
	for i, e := range t.epsilons {
		items[i] = opts.LineData{Value: e}
	}
	line.SetXAxis(episodeAxis(len(t.epsilons))).AddSeries("epsilon", items)
	return line
}

func (t *Training) lossChart() *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Training Loss (smoothed)"}))

	smoothed := movingAverage(t.losses, lossSmoothWindow)
	items := make([]opts.LineData, len(smoothed))
	for i, l := range smoothed {
		items[i] = opts.LineData{Value: l}
	}
	line.SetXAxis(episodeAxis(len(smoothed))).AddSeries("mse", items)
	return line
}

func (t *Training) lengthChart() *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Episode Lengths"}))

	items := make([]opts.LineData, len(t.episodeLengths))
	for i, n := range t.episodeLengths {
		items[i] = opts.LineData{Value: n}
	}
	line.SetXAxis(episodeAxis(len(t.episodeLengths))).AddSeries("steps", items)
	return line
}

func episodeAxis(n int) []string {
	axis := make([]string, n)
	for i := range axis {
		axis[i] = fmt.Sprintf("%d", i+1)
	}
	return axis
}

// movingAverage smooths the series with a trailing window.
func movingAverage(series []float64, window int) []float64 {
	if len(series) == 0 {
		return nil
	}
	out := make([]float64, len(series))
	sum := 0.0
	for i, v := range series {
		sum += v
		n := i + 1
		if n > window {
			sum -= series[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}
