package report

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/brick"
)

// RenderInventoryChart writes an HTML bar chart of the brick
// inventory, largest footprint first.
func RenderInventoryChart(w io.Writer, l *brick.Layout, title string) error {
	lines := Inventory(l)

	x := make([]string, 0, len(lines))
	y := make([]opts.BarData, 0, len(lines))
	for _, ln := range lines {
		x = append(x, ln.Footprint.String())
		y = append(y, opts.BarData{Value: ln.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "bricks per footprint"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("inventory", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(bar)
	return page.Render(w)
}
