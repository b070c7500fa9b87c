package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/polycryst/internal/config"
)

var (
	dataDir     string
	verbose     bool
	configFile  string
	preset      string
	runName     string
	seed        uint64
	grains      int
	steps       int
	writeStep   int
	dt          float64
	loading     string
	rate        float64
	metricsAddr string
	family      string
	snapshot    int
	svgOut      string
	jsonOut     string
	runs        int
	parallel    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "polycryst",
		Short:        "crystal plasticity and recrystallization of polycrystals",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".polycryst", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its results",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (e.g. :9090)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addModelFlags(liveCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "repeat a simulation over consecutive seeds and report the spread",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addModelFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 8, "number of seeds")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = unbounded)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the stress-strain response of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the stress-strain curve as SVG")

	polesCmd := &cobra.Command{
		Use:   "poles [run_id]",
		Short: "show a pole figure of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  showPoles,
	}
	polesCmd.Flags().StringVar(&family, "family", "100", "pole family: 100, 110 or 111")
	polesCmd.Flags().IntVar(&snapshot, "snapshot", -1, "snapshot index, negative counts from the end")
	polesCmd.Flags().StringVar(&svgOut, "svg", "", "also write the pole figure as SVG")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and series to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOut, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list material presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-10s grains=%d steps=%d dt=%g recrystallization=%t\n",
					name, cfg.Grains, cfg.Steps, cfg.Dt, cfg.Recrystallization.Enabled)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, ensembleCmd, listCmd, plotCmd, polesCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "copper", "material preset")
	cmd.Flags().StringVar(&runName, "name", "", "run name (default: config name)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&grains, "grains", 0, "grain count")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of time steps")
	cmd.Flags().IntVar(&writeStep, "write-step", 0, "snapshot interval in steps")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep")
	cmd.Flags().StringVar(&loading, "loading", "", "loading preset (uniaxial_tension, uniaxial_compression, simple_shear, plane_strain)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "strain rate of the loading preset")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig applies the preset, then the config file, then changed flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("grains") {
		cfg.Grains = grains
	}
	if f.Changed("steps") {
		cfg.Steps = steps
	}
	if f.Changed("write-step") {
		cfg.WriteStep = writeStep
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("loading") {
		cfg.Loading.Preset = loading
		cfg.Loading.TrajectoryFile = ""
	}
	if f.Changed("rate") {
		cfg.Loading.Rate = rate
	}
	if runName != "" {
		cfg.Name = runName
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
