package pipeline

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/drakos74/mall-segment/internal/dataset"
	segmath "github.com/drakos74/mall-segment/internal/math"
	"github.com/drakos74/mall-segment/internal/math/ml"
	"github.com/drakos74/mall-segment/internal/metrics"
	"github.com/drakos74/mall-segment/internal/render"
	"github.com/rs/zerolog/log"
)

// Clean loads the raw dataset, prints its overview and saves the standardized features.
func (p *Pipeline) Clean() (*dataset.Frame, error) {
	var cleaned *dataset.Frame
	err := p.stage(CleanStage, func() error {
		raw, err := dataset.Load(p.config.Paths.Raw)
		if err != nil {
			return err
		}

		fmt.Fprintf(p.out, "\n--- Basic Data Overview ---\n")
		fmt.Fprintf(p.out, "rows: %d, columns: %v\n", raw.Len(), raw.Header)

		descriptions, err := raw.Describe(p.config.Columns.Features...)
		if err != nil {
			return fmt.Errorf("could not describe dataset: %w", err)
		}
		fmt.Fprintf(p.out, "\n--- Summary Statistics ---\n")
		render.DescribeTable(p.out, descriptions)

		fmt.Fprintf(p.out, "\n--- Checking for Missing Values ---\n")
		render.CountTable(p.out, "Column", raw.Missing(), raw.Header)

		cleaned, err = raw.Standardize(p.config.Columns.Features...)
		if err != nil {
			return fmt.Errorf("could not standardize dataset: %w", err)
		}
		if err := cleaned.Save(p.config.Paths.Cleaned); err != nil {
			return err
		}
		p.stored(p.config.Paths.Cleaned)
		return nil
	})
	return cleaned, err
}

// Explore renders the feature distributions, the pairwise relations and the group shares of the raw dataset.
func (p *Pipeline) Explore() error {
	return p.stage(ExploreStage, func() error {
		raw, err := dataset.Load(p.config.Paths.Raw)
		if err != nil {
			return err
		}
		dir := p.config.Paths.Visualizations()

		descriptions, err := raw.Describe(p.config.Columns.Features...)
		if err != nil {
			return fmt.Errorf("could not describe dataset: %w", err)
		}
		for i, feature := range p.config.Columns.Features {
			values, err := raw.Floats(feature)
			if err != nil {
				return err
			}
			histogram, err := render.Histogram(feature, values, p.config.Explore.Bins)
			if err != nil {
				return fmt.Errorf("could not render histogram: %w", err)
			}
			file := filepath.Join(dir, fmt.Sprintf("%s_distribution.html", slug(feature)))
			if err := p.render(file, fmt.Sprintf("%s Distribution", feature), histogram, render.BoxPlot(descriptions[i])); err != nil {
				return err
			}
		}

		groups := make([]string, raw.Len())
		if p.config.Columns.Group != "" {
			groups, err = raw.Strings(p.config.Columns.Group)
			if err != nil {
				return err
			}
		} else {
			for i := range groups {
				groups[i] = p.config.Dataset
			}
		}

		for _, pair := range p.config.Explore.Pairs {
			x, y, err := axes(raw, pair)
			if err != nil {
				return err
			}
			title := fmt.Sprintf("%s vs %s", x.Name, y.Name)
			scatter, err := render.Scatter(title, x, y, groups)
			if err != nil {
				return fmt.Errorf("could not render scatter: %w", err)
			}
			file := filepath.Join(dir, fmt.Sprintf("%s_vs_%s.html", slug(x.Name), slug(y.Name)))
			if err := p.render(file, title, scatter); err != nil {
				return err
			}
		}

		if p.config.Columns.Group == "" {
			return nil
		}
		counts, err := raw.Counts(p.config.Columns.Group)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s Distribution", p.config.Columns.Group)
		file := filepath.Join(dir, fmt.Sprintf("%s_distribution.html", slug(p.config.Columns.Group)))
		return p.render(file, title, render.Pie(title, counts))
	})
}

// Elbow evaluates the wcss of the cleaned dataset for every k up to the configured maximum.
func (p *Pipeline) Elbow() (ml.Series, error) {
	var series ml.Series
	err := p.stage(ElbowStage, func() error {
		table, err := p.table(p.config.Paths.Cleaned)
		if err != nil {
			return err
		}

		elbow := ml.NewElbow(ml.Method(p.config.Elbow.Method))
		if p.config.Elbow.Iterations > 0 {
			elbow.Iterations(p.config.Elbow.Iterations)
		}
		if p.config.Elbow.Parallel {
			elbow.Parallel()
		}
		series, err = elbow.Evaluate(table, p.config.Elbow.MaxClusters)
		if err != nil {
			return fmt.Errorf("could not evaluate wcss: %w", err)
		}
		metrics.Observer.WCSS(series.Values())

		file := filepath.Join(p.config.Paths.Visualizations(), "elbow_method.html")
		if err := p.render(file, "Elbow Method", render.Elbow(series)); err != nil {
			return err
		}
		fmt.Fprintf(p.out, "\n%s\n\n", render.ElbowASCII(series))
		render.WCSSTable(p.out, series)

		return p.store.Store(WCSSKey(p.config), series)
	})
	return series, err
}

// Cluster assigns the cleaned rows to the configured number of clusters,
// renders the dendrogram and saves the dataset with the cluster column.
func (p *Pipeline) Cluster() (ml.Assignment, ml.Linkage, error) {
	var assignment ml.Assignment
	var linkage ml.Linkage
	err := p.stage(ClusterStage, func() error {
		frame, err := dataset.Load(p.config.Paths.Cleaned)
		if err != nil {
			return err
		}
		table, err := frame.Table(p.config.Columns.Features...)
		if err != nil {
			return err
		}

		assignment, linkage, err = ml.Assign(table, p.config.Cluster.K)
		if err != nil {
			return fmt.Errorf("could not assign clusters: %w", err)
		}

		labels, err := p.labels(frame)
		if err != nil {
			return err
		}
		dendrogram, err := render.Dendrogram("Hierarchical Clustering Dendrogram", linkage, labels)
		if err != nil {
			return fmt.Errorf("could not render dendrogram: %w", err)
		}
		file := filepath.Join(p.config.Paths.Clustering(), fmt.Sprintf("%s_detailed_dendrogram.html", p.config.Cluster.Prefix))
		if err := p.render(file, "Dendrogram", dendrogram); err != nil {
			return err
		}

		clustered, err := frame.With(p.config.Columns.Cluster, segmath.ToString(assignment))
		if err != nil {
			return err
		}
		path := p.config.Cluster.Clustered(p.config.Paths)
		if err := clustered.Save(path); err != nil {
			return err
		}
		p.stored(path)

		sizes := make([]int, assignment.K())
		for _, l := range assignment {
			sizes[l]++
		}
		metrics.Observer.ClusterSizes(sizes)
		log.Info().Int("k", p.config.Cluster.K).Ints("sizes", sizes).Msg("assigned clusters")

		if err := p.store.Store(ClusterKey(p.config, LinkageLabel), linkage); err != nil {
			return err
		}
		return p.store.Store(ClusterKey(p.config, AssignmentLabel), assignment)
	})
	return assignment, linkage, err
}

// Evaluate summarizes the clustered dataset and renders the clusters on the evaluation pairs.
func (p *Pipeline) Evaluate() ([]ml.Summary, error) {
	var summaries []ml.Summary
	err := p.stage(EvaluateStage, func() error {
		frame, err := dataset.Load(p.config.Cluster.Clustered(p.config.Paths))
		if err != nil {
			return err
		}
		table, err := frame.Table(p.config.Columns.Features...)
		if err != nil {
			return err
		}
		column, err := frame.Strings(p.config.Columns.Cluster)
		if err != nil {
			return err
		}
		labels, err := segmath.ToInt(column)
		if err != nil {
			return fmt.Errorf("could not parse cluster labels: %w", err)
		}
		assignment := ml.Assignment(labels)

		summaries, err = ml.Summarize(table, assignment, p.config.Columns.Features...)
		if err != nil {
			return fmt.Errorf("could not summarize clusters: %w", err)
		}
		fmt.Fprintf(p.out, "\nCluster Summary:\n")
		render.SummaryTable(p.out, p.config.Columns.Features, summaries)

		path := filepath.Join(p.config.Paths.Evaluation(), "cluster_analysis.csv")
		if err := analysis(p.config.Columns, summaries).Save(path); err != nil {
			return err
		}
		p.stored(path)
		if err := p.store.Store(ClusterKey(p.config, SummaryLabel), summaries); err != nil {
			return err
		}

		for _, pair := range p.config.Evaluate.Pairs {
			x, y, err := axes(frame, pair)
			if err != nil {
				return err
			}
			title := fmt.Sprintf("Clusters: %s vs %s", x.Name, y.Name)
			scatter, err := render.Clusters(title, x, y, assignment)
			if err != nil {
				return fmt.Errorf("could not render clusters: %w", err)
			}
			file := filepath.Join(p.config.Paths.Evaluation(), fmt.Sprintf("%s_vs_%s_clusters.html", slug(x.Name), slug(y.Name)))
			if err := p.render(file, title, scatter); err != nil {
				return err
			}
		}
		return nil
	})
	return summaries, err
}

func (p *Pipeline) table(path string) (*ml.Table, error) {
	frame, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	return frame.Table(p.config.Columns.Features...)
}

// labels names the dendrogram leaves by the id column, or by row number if there is none.
func (p *Pipeline) labels(frame *dataset.Frame) ([]string, error) {
	if p.config.Columns.ID != "" {
		return frame.Strings(p.config.Columns.ID)
	}
	labels := make([]string, frame.Len())
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	return labels, nil
}

func axes(frame *dataset.Frame, pair [2]string) (render.Axis, render.Axis, error) {
	xs, err := frame.Floats(pair[0])
	if err != nil {
		return render.Axis{}, render.Axis{}, err
	}
	ys, err := frame.Floats(pair[1])
	if err != nil {
		return render.Axis{}, render.Axis{}, err
	}
	return render.Axis{Name: pair[0], Values: xs}, render.Axis{Name: pair[1], Values: ys}, nil
}

// analysis lays out the summaries as a frame with one row per cluster.
func analysis(columns Columns, summaries []ml.Summary) *dataset.Frame {
	header := []string{columns.Cluster, "Cluster_Size"}
	for _, f := range columns.Features {
		header = append(header, fmt.Sprintf("Avg_%s", f))
	}
	records := make([][]string, len(summaries))
	for i, s := range summaries {
		record := []string{strconv.Itoa(s.Label), strconv.Itoa(s.Size)}
		for _, v := range s.Avg {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		records[i] = record
	}
	return &dataset.Frame{
		Header:  header,
		Records: records,
	}
}
