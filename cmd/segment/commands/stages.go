package commands

import (
	"encoding/json"
	"fmt"

	"github.com/drakos74/mall-segment/internal/math/ml"
	"github.com/drakos74/mall-segment/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	maxClusters int
	method      string
	parallel    bool
	clusters    int
	asJSON      bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Standardize the features of the raw dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd)
		if err != nil {
			return err
		}
		_, err = p.Clean()
		return err
	},
}

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Render the feature distributions and relations of the raw dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd)
		if err != nil {
			return err
		}
		return p.Explore()
	},
}

var elbowCmd = &cobra.Command{
	Use:   "elbow",
	Short: "Evaluate the wcss for k=1..max-clusters",
	Long: `Evaluate the within cluster sum of squares of the cleaned dataset
for every number of clusters up to max-clusters.

The ward method is deterministic and its wcss never increases with k.
The kmeans method is randomized.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd, func(c *pipeline.Config) {
			if cmd.Flags().Changed("max-clusters") {
				c.Elbow.MaxClusters = maxClusters
			}
			if cmd.Flags().Changed("method") {
				c.Elbow.Method = method
			}
			if parallel {
				c.Elbow.Parallel = true
			}
		})
		if err != nil {
			return err
		}
		_, err = p.Elbow()
		return err
	},
}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Assign the cleaned rows to k clusters",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd, withClusters(cmd))
		if err != nil {
			return err
		}
		_, _, err = p.Cluster()
		return err
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Summarize the size and the feature averages of each cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd, withClusters(cmd))
		if err != nil {
			return err
		}
		_, err = p.Evaluate()
		return err
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all stages in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd, withClusters(cmd))
		if err != nil {
			return err
		}
		report, err := p.Run()
		if err != nil {
			return err
		}
		if asJSON {
			b, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("could not encode report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nrun %s completed in %.2fs\n", report.ID, report.Duration)
		for _, f := range report.Files {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
		}
		return nil
	},
}

func init() {
	elbowCmd.Flags().IntVar(&maxClusters, "max-clusters", 10, "maximum number of clusters")
	elbowCmd.Flags().StringVar(&method, "method", string(ml.WardMethod), "clustering method (ward|kmeans)")
	elbowCmd.Flags().BoolVar(&parallel, "parallel", false, "evaluate each k concurrently")

	for _, cmd := range []*cobra.Command{clusterCmd, evaluateCmd, runCmd} {
		cmd.Flags().IntVar(&clusters, "k", 4, "number of clusters")
	}
	runCmd.Flags().BoolVar(&asJSON, "json", false, "print the report as json")
}

func withClusters(cmd *cobra.Command) func(c *pipeline.Config) {
	return func(c *pipeline.Config) {
		if cmd.Flags().Changed("k") {
			c.Cluster.K = clusters
		}
	}
}
