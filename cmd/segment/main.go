// Package main provides the segment CLI, that clusters mall customers by age, income and spending score.
//
// Usage:
//
//	segment [flags] <stage>
//
// Stages:
//
//	clean    - standardize the raw dataset
//	explore  - render the distributions of the raw dataset
//	elbow    - evaluate the wcss for every number of clusters
//	cluster  - assign the customers to a fixed number of clusters
//	evaluate - summarize the clusters
//	run      - all of the above, in order
//	serve    - serve the rendered charts and the stored results
package main

import (
	"fmt"
	"os"

	"github.com/drakos74/mall-segment/cmd/segment/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
