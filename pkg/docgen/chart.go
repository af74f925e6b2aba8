package docgen

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartID        = "complexity"
	chartWidth     = "100%"
	chartHeight    = "500px"
	xAxisRotate    = 45
	dataZoomEnd    = 100
	labelFontSize  = 10
	styleTagLen    = len("</style>")
	echartsAssets  = "https://go-echarts.github.io/go-echarts-assets/assets/"
	echartsScript  = echartsAssets + "echarts.min.js"
	colorCC        = "#a16207" // amber-700.
	colorMI        = "#0369a1" // sky-700.
	colorChartText = "#44403c" // stone-700.
	colorChartAxis = "#a8a29e" // stone-400.
	colorChartGrid = "#e7e5e4" // stone-200.
)

// complexityChart plots cyclomatic complexity and maintainability index
// per file. It reports false when no file carries complexity figures.
func complexityChart(files []FileDoc) (*charts.Bar, bool) {
	var (
		labels     []string
		cyclomatic []opts.BarData
		index      []opts.BarData
	)

	for _, f := range files {
		if f.Complexity == nil {
			continue
		}

		labels = append(labels, filepath.Base(f.Path))
		cyclomatic = append(cyclomatic, opts.BarData{Value: f.Complexity.Cyclomatic})
		index = append(index, opts.BarData{Value: roundIndex(f.Complexity.Maintainability)})
	}

	if len(labels) == 0 {
		return nil, false
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           chartWidth,
			Height:          chartHeight,
			ChartID:         chartID,
			AssetsHost:      echartsAssets,
			BackgroundColor: "transparent",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(true),
			Top:       "0",
			TextStyle: &opts.TextStyle{Color: colorChartText},
		}),
		charts.WithGridOpts(opts.Grid{
			Left: "5%", Right: "5%", Top: "40", Bottom: "15%",
			ContainLabel: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "slider", Start: 0, End: dataZoomEnd},
			opts.DataZoom{Type: "inside"},
		),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{
				Rotate:   xAxisRotate,
				Interval: "0",
				FontSize: labelFontSize,
				Color:    colorChartText,
			},
			AxisLine: &opts.AxisLine{LineStyle: &opts.LineStyle{Color: colorChartAxis}},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Color: colorChartText},
			SplitLine: &opts.SplitLine{
				Show:      opts.Bool(true),
				LineStyle: &opts.LineStyle{Color: colorChartGrid},
			},
		}),
	)

	bar.SetXAxis(labels).
		AddSeries("Cyclomatic Complexity", cyclomatic,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorCC})).
		AddSeries("Maintainability Index", index,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorMI}))

	return bar, true
}

func roundIndex(mi float64) float64 {
	const scale = 100

	return float64(int64(mi*scale+0.5)) / scale
}

// renderChart renders only the chart element and its script, without the
// page go-echarts wraps them in.
func renderChart(bar *charts.Bar) (template.HTML, error) {
	var buf bytes.Buffer

	err := bar.Render(&buf)
	if err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}

	//nolint:gosec // generated by go-echarts from numeric data and file names.
	return template.HTML(extractChartContent(buf.String())), nil
}

func extractChartContent(page string) string {
	trimmed := strings.TrimSpace(page)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return page
	}

	start := strings.Index(page, `<div class="container">`)
	if start == -1 {
		return page
	}

	end := strings.Index(page, `</body>`)
	if end == -1 {
		return page
	}

	content := page[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)

	return removeStyleTags(content)
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			return content
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			return content
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}
}
