package render

import (
	"io"
	"strconv"

	"github.com/drakos74/mall-segment/internal/dataset"
	segmath "github.com/drakos74/mall-segment/internal/math"
	"github.com/drakos74/mall-segment/internal/math/ml"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
)

// ElbowASCII plots the wcss series for the terminal.
func ElbowASCII(series ml.Series) string {
	if len(series) == 0 {
		return ""
	}
	return asciigraph.Plot(series.Values(),
		asciigraph.Height(10),
		asciigraph.Caption("WCSS per number of clusters (k=1 on the left)"),
	)
}

// SummaryTable writes one row per cluster with its size and the feature averages.
func SummaryTable(w io.Writer, features []string, summaries []ml.Summary) {
	table := tablewriter.NewWriter(w)
	header := append([]string{"Cluster", "Size"}, features...)
	table.SetHeader(header)
	for _, s := range summaries {
		row := []string{strconv.Itoa(s.Label), strconv.Itoa(s.Size)}
		for _, v := range s.Avg {
			row = append(row, segmath.Format(v))
		}
		table.Append(row)
	}
	table.Render()
}

// DescribeTable writes the summary statistics of each feature.
func DescribeTable(w io.Writer, descriptions []dataset.Description) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Feature", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"})
	for _, d := range descriptions {
		table.Append([]string{
			d.Name,
			strconv.Itoa(d.Count),
			segmath.Format(d.Mean),
			segmath.Format(d.Std),
			segmath.Format(d.Min),
			segmath.Format(d.Q1),
			segmath.Format(d.Median),
			segmath.Format(d.Q3),
			segmath.Format(d.Max),
		})
	}
	table.Render()
}

// CountTable writes the occurrences of each value of a column.
func CountTable(w io.Writer, name string, counts map[string]int, order []string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{name, "Count"})
	for _, k := range order {
		table.Append([]string{k, strconv.Itoa(counts[k])})
	}
	table.Render()
}

// WCSSTable writes the wcss of each k.
func WCSSTable(w io.Writer, series ml.Series) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"K", "WCSS"})
	for _, p := range series {
		table.Append([]string{strconv.Itoa(p.K), segmath.Format(p.WCSS)})
	}
	table.Render()
}
