package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/piwi3910/barcut/internal/model"
)

// RenderChart writes a standalone HTML page with three charts: used and
// wasted material per pattern, the overall used/waste split, and ordered
// versus produced pieces per item.
func RenderChart(w io.Writer, sol model.Solution) error {
	if len(sol.Entries) == 0 {
		return fmt.Errorf("no patterns to chart")
	}

	page := components.NewPage()
	page.AddCharts(patternChart(sol), wastePie(sol), demandChart(sol))
	return page.Render(w)
}

func patternChart(sol model.Solution) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Patterns",
			Subtitle: fmt.Sprintf("%d units of %s", sol.TotalUnits, sol.Stock),
		}),
	)

	names := make([]string, 0, len(sol.Entries))
	used := make([]opts.BarData, 0, len(sol.Entries))
	waste := make([]opts.BarData, 0, len(sol.Entries))
	for i, e := range sol.Entries {
		names = append(names, fmt.Sprintf("P%d x%d", i+1, e.Count))
		used = append(used, opts.BarData{Value: e.Count * e.Pattern.Used()})
		waste = append(waste, opts.BarData{Value: e.Count * e.Pattern.Waste()})
	}
	bar.SetXAxis(names).
		AddSeries("Used", used).
		AddSeries("Waste", waste)
	bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "material"}))
	return bar
}

func wastePie(sol model.Solution) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Material",
			Subtitle: fmt.Sprintf("%.1f%% waste", sol.WastePercent()),
		}),
	)
	pie.AddSeries("Material", []opts.PieData{
		{Name: "Used", Value: sol.UsedCapacity()},
		{Name: "Waste", Value: sol.TotalWaste},
	})
	return pie
}

func demandChart(sol model.Solution) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Demand"}))

	coverage := sol.Coverage()
	names := make([]string, 0, len(sol.Items))
	ordered := make([]opts.BarData, 0, len(sol.Items))
	produced := make([]opts.BarData, 0, len(sol.Items))
	for i, it := range sol.Items {
		names = append(names, it.Name())
		ordered = append(ordered, opts.BarData{Value: it.Quantity})
		produced = append(produced, opts.BarData{Value: coverage[i]})
	}
	bar.SetXAxis(names).
		AddSeries("Ordered", ordered).
		AddSeries("Produced", produced)
	return bar
}
