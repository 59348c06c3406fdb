package cmd

import (
	"encoding/json"

	"memory-map-backend/internal/cluster"
	"memory-map-backend/internal/repository"

	"github.com/spf13/cobra"
)

var clusterThreshold float64

var clusterCmd = &cobra.Command{
	Use:   "cluster <seed.yaml>",
	Short: "cluster a seed file and print the markers as JSON",
	Long: `
cluster runs the same grouping the map uses over the memories in a seed file,
without a server or database, and writes the clusters to stdout.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		memories, err := repository.LoadSeed(args[0])
		if err != nil {
			return err
		}

		clusters, err := cluster.Build(memories, cluster.Options{ThresholdMeters: clusterThreshold})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(c.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(clusters)
	},
}

func init() {
	clusterCmd.Flags().Float64VarP(&clusterThreshold, "threshold", "t", cluster.DefaultThresholdMeters, "proximity threshold in meters")
	rootCmd.AddCommand(clusterCmd)
}
