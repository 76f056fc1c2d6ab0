package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/walletmap/internal/config"
	"github.com/lumipallolabs/walletmap/internal/layout"
	"github.com/lumipallolabs/walletmap/internal/logging"
	"github.com/lumipallolabs/walletmap/internal/model"
	"github.com/lumipallolabs/walletmap/internal/render"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "walletmap",
	Short: "Render wallet value trees as treemaps",
	Long: `walletmap draws a tree of chains and wallet addresses as a treemap.
Each wallet becomes a rectangle sized by its value and linked to the chain's
block explorer. Wallets below the value threshold are left out.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write debug logs")
}

// loadConfig reads the configuration and switches on debug logging when
// asked to
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Configure(cfg.Log.Debug, cfg.Log.File)
	return cfg, nil
}

// chartFlags are the rendering overrides shared by render and view
type chartFlags struct {
	threshold float64
	tile      string
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.threshold, "threshold", model.DefaultThreshold, "Minimum wallet value to draw")
	cmd.Flags().StringVar(&f.tile, "tile", "", "Tiling: binary or squarify (default from config)")
}

// options merges flags that were set over the configuration
func (f *chartFlags) options(cmd *cobra.Command, cfg *config.Config) (render.Options, error) {
	opts, err := cfg.ChartOptions()
	if err != nil {
		return render.Options{}, err
	}
	if cmd.Flags().Changed("threshold") {
		if !(f.threshold >= 0) {
			return render.Options{}, fmt.Errorf("threshold must not be negative, got %g", f.threshold)
		}
		opts.Threshold = f.threshold
	}
	if f.tile != "" {
		tile, err := layout.TileByName(f.tile)
		if err != nil {
			return render.Options{}, err
		}
		opts.Tile = tile
	}
	return opts, nil
}

// checkArgs validates that the correct number of arguments were provided
func checkArgs(args []string, expected int, usage string) error {
	if len(args) != expected {
		return fmt.Errorf("expected %d argument(s), got %d\nUsage: %s", expected, len(args), usage)
	}
	return nil
}
