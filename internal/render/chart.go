package render

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/drakos74/mall-segment/internal/dataset"
	"github.com/drakos74/mall-segment/internal/math/ml"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	width  = "1200px"
	height = "700px"
)

func initialization(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     width,
		Height:    height,
	})
}

// Save renders the given charts into a single html page.
// The parent directory must already exist.
func Save(path string, title string, cc ...components.Charter) (err error) {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(cc...)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file '%s': %w", path, err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("could not close file '%s': %w", path, cErr)
		}
	}()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("could not render '%s': %w", path, err)
	}
	log.Info().Str("path", path).Int("charts", len(cc)).Msg("saved chart")
	return nil
}

// Elbow plots the wcss against the number of clusters.
func Elbow(series ml.Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initialization("Elbow Method"),
		charts.WithTitleOpts(opts.Title{Title: "Elbow Method for Optimal Clusters"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Number of Clusters"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "WCSS"}),
	)
	ks := make([]string, len(series))
	data := make([]opts.LineData, len(series))
	for i, p := range series {
		ks[i] = strconv.Itoa(p.K)
		data[i] = opts.LineData{Value: p.WCSS}
	}
	line.SetXAxis(ks).AddSeries("WCSS", data)
	return line
}

// Dendrogram draws the merge history as a tree, with the leaves named by the given labels.
func Dendrogram(title string, linkage ml.Linkage, labels []string) (*charts.Tree, error) {
	n := len(linkage) + 1
	if len(labels) != n {
		return nil, fmt.Errorf("got %d labels for %d leaves", len(labels), n)
	}
	nodes := make([]*opts.TreeData, 2*n-1)
	for i, l := range labels {
		nodes[i] = &opts.TreeData{Name: l}
	}
	for step, m := range linkage {
		if m.A < 0 || m.B < 0 || m.A >= n+step || m.B >= n+step || nodes[m.A] == nil || nodes[m.B] == nil {
			return nil, fmt.Errorf("merge %d references unknown cluster [%d,%d]", step, m.A, m.B)
		}
		nodes[n+step] = &opts.TreeData{
			Name:     fmt.Sprintf("%.2f", m.Distance),
			Children: []*opts.TreeData{nodes[m.A], nodes[m.B]},
		}
	}
	root := nodes[len(nodes)-1]

	tree := charts.NewTree()
	tree.SetGlobalOptions(
		initialization(title),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "ward linkage distance"}),
	)
	tree.AddSeries("linkage", []opts.TreeData{*root},
		charts.WithTreeOpts(opts.TreeChart{
			Layout:           "orthogonal",
			Orient:           "TB",
			InitialTreeDepth: -1,
		}),
	)
	return tree, nil
}

// Clusters plots the rows on the given axes, one series per label.
func Clusters(title string, x, y Axis, assignment ml.Assignment) (*charts.Scatter, error) {
	if len(x.Values) != len(assignment) || len(y.Values) != len(assignment) {
		return nil, fmt.Errorf("inconsistent dimensions [ %d | %d | %d ]", len(x.Values), len(y.Values), len(assignment))
	}
	groups := make([]string, len(assignment))
	for i, l := range assignment {
		groups[i] = fmt.Sprintf("Cluster %d", l)
	}
	return scatter(title, x, y, groups, func(a, b string) bool {
		return clusterIndex(a) < clusterIndex(b)
	}), nil
}

// Scatter plots the rows on the given axes, one series per group.
func Scatter(title string, x, y Axis, groups []string) (*charts.Scatter, error) {
	if len(x.Values) != len(groups) || len(y.Values) != len(groups) {
		return nil, fmt.Errorf("inconsistent dimensions [ %d | %d | %d ]", len(x.Values), len(y.Values), len(groups))
	}
	return scatter(title, x, y, groups, func(a, b string) bool {
		return a < b
	}), nil
}

// Axis is a named set of values.
type Axis struct {
	Name   string
	Values []float64
}

func scatter(title string, x, y Axis, groups []string, less func(a, b string) bool) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		initialization(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: x.Name, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: y.Name, Type: "value"}),
	)
	data := make(map[string][]opts.ScatterData)
	for i, g := range groups {
		data[g] = append(data[g], opts.ScatterData{Value: []interface{}{x.Values[i], y.Values[i]}})
	}
	names := make([]string, 0, len(data))
	for g := range data {
		names = append(names, g)
	}
	sort.Slice(names, func(i, j int) bool {
		return less(names[i], names[j])
	})
	for _, g := range names {
		sc.AddSeries(g, data[g])
	}
	return sc
}

func clusterIndex(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "Cluster %d", &i); err != nil {
		return math.MaxInt32
	}
	return i
}

// Histogram counts the values into equal width bins.
func Histogram(name string, values []float64, bins int) (*charts.Bar, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no values for '%s'", name)
	}
	if bins < 1 {
		return nil, fmt.Errorf("invalid number of bins %d", bins)
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	min, max := sorted[0], sorted[len(sorted)-1]
	if min == max {
		max = min + 1
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, min, math.Nextafter(max, math.Inf(1)))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	xs := make([]string, bins)
	data := make([]opts.BarData, bins)
	for i, c := range counts {
		xs[i] = fmt.Sprintf("%.1f", (dividers[i]+dividers[i+1])/2)
		data[i] = opts.BarData{Value: c}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initialization(name),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s Distribution - Histogram", name)}),
		charts.WithXAxisOpts(opts.XAxis{Name: name}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)
	bar.SetXAxis(xs).AddSeries(name, data)
	return bar, nil
}

// BoxPlot draws the five number summary of the given description.
func BoxPlot(d dataset.Description) *charts.BoxPlot {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		initialization(d.Name),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s Distribution - Box Plot", d.Name)}),
	)
	box.SetXAxis([]string{d.Name}).AddSeries(d.Name, []opts.BoxPlotData{
		{Value: []float64{d.Min, d.Q1, d.Median, d.Q3, d.Max}},
	})
	return box
}

// Pie draws the share of each value.
func Pie(title string, counts []dataset.Count) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		initialization(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)
	data := make([]opts.PieData, len(counts))
	for i, c := range counts {
		data[i] = opts.PieData{Name: c.Value, Value: c.Count}
	}
	pie.AddSeries(title, data, charts.WithLabelOpts(opts.Label{
		Show:      true,
		Formatter: "{b}: {d}%",
	}))
	return pie
}
