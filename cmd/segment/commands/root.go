package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/drakos74/mall-segment/infra/config"
	"github.com/drakos74/mall-segment/internal/pipeline"
	"github.com/drakos74/mall-segment/internal/storage"
	jsonstore "github.com/drakos74/mall-segment/internal/storage/file/json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultConfig = "infra/config/segment.json"

var (
	cfgFile string
	debug   bool
	raw     string
	results string
	dryRun  bool

	// memory keeps the stored results of a dry run.
	memory *jsonstore.LocalStorage
)

var rootCmd = &cobra.Command{
	Use:   "segment",
	Short: "Mall customer segmentation",
	Long: `Segment mall customers with hierarchical (ward) clustering.

Each stage reads the output of the previous one from the paths of the config,
so they can run one by one or all together.

Examples:
  segment run
  segment elbow --max-clusters 15 --parallel
  segment cluster --k 5
  segment serve --port 8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if memory == nil {
			return
		}
		for _, k := range memory.Keys() {
			log.Info().Str("key", k.Path()).Msg("kept in memory")
		}
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfig, "json config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&raw, "raw", "", "raw dataset path (overrides the config)")
	rootCmd.PersistentFlags().StringVar(&results, "results", "", "results directory (overrides the config)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "keep the stored results in memory and skip the stage events")

	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(elbowCmd)
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

func initLogger() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// loadConfig reads the config file and applies the flag overrides.
// The default config file may be missing, in which case the built-in defaults apply.
func loadConfig(cmd *cobra.Command) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if err := config.Load(cfgFile, &cfg); err != nil {
		if !errors.Is(err, storage.NotFoundErr) || cmd.Flags().Changed("config") {
			return cfg, err
		}
		log.Warn().Str("config", cfgFile).Msg("no config file, using defaults")
	}
	if raw != "" {
		cfg.Paths.Raw = raw
	}
	if results != "" {
		cfg.Paths.Results = results
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config '%s': %w", cfgFile, err)
	}
	return cfg, nil
}

func newPipeline(cmd *cobra.Command, overrides ...func(c *pipeline.Config)) (*pipeline.Pipeline, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(&cfg)
	}
	p, err := pipeline.New(cfg)
	if err != nil {
		return nil, err
	}
	p.WithOutput(cmd.OutOrStdout())
	if dryRun {
		memory = jsonstore.NewLocalStorage()
		p.WithStorage(memory, storage.NewVoidRegistry())
	}
	log.Info().Str("run", p.ID()).Str("dataset", cfg.Dataset).Msg("created pipeline")
	return p, p.Setup()
}
