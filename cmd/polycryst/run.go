package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/polycryst/internal/engine"
	"github.com/san-kum/polycryst/internal/metrics"
	"github.com/san-kum/polycryst/internal/storage"
	"github.com/san-kum/polycryst/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	params, err := cfg.Params()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	rec, err := st.Create(cfg.Name, cfg.Seed, params)
	if err != nil {
		return err
	}
	defer rec.Close()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	set := metrics.NewSet()

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: metrics.Handler(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "addr", metricsAddr, "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		logger.Info("serving metrics", "addr", metricsAddr)
	}

	eng, err := cfg.Engine(logger, rec, set, collector)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, runErr := eng.Run(ctx)
	if err := rec.Finish(res, set.Values(), runErr); err != nil {
		return fmt.Errorf("saving run %s: %w", rec.ID(), err)
	}
	if runErr != nil {
		return fmt.Errorf("run %s stopped: %w", rec.ID(), runErr)
	}

	final := res.Final
	fmt.Printf("run: %s\n", rec.ID())
	fmt.Printf("steps: %d (%s)\n", res.StepsTaken, res.Elapsed.Round(time.Millisecond))
	fmt.Printf("grains: %d (%d nucleated)\n", final.Grains, res.Nucleated)
	fmt.Printf("strain intensity: %.6g\n", final.StrainIntensity)
	fmt.Printf("stress intensity: %.6g MPa\n", final.StressIntensity)
	fmt.Printf("mean stored energy: %.6g\n", final.MeanEnergy)
	fmt.Printf("mean grain size: %.6g m\n", final.MeanGrainSize)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// the view owns the terminal, engine logs are discarded
	eng, err := cfg.Engine(nil)
	if err != nil {
		return err
	}
	if err := eng.Init(); err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(eng, cfg.Name), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("live view: %w", err)
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	params, err := cfg.Params()
	if err != nil {
		return err
	}
	opts, err := cfg.Options(logger)
	if err != nil {
		return err
	}
	en, err := engine.NewEnsemble(params, opts, runs, cfg.Seed, parallel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	began := time.Now()
	results, err := en.Run(ctx)
	if err != nil {
		return err
	}

	for i, res := range results {
		fmt.Printf("seed %-6d stress %.6g MPa  strain %.6g  grains %d\n",
			cfg.Seed+uint64(i), res.Final.StressIntensity, res.Final.StrainIntensity, res.Final.Grains)
	}
	stats := engine.Summarize(results)
	fmt.Printf("\n%d runs in %s\n", len(results), time.Since(began).Round(time.Millisecond))
	fmt.Printf("stress intensity: %.6g ± %.3g MPa\n", stats.StressIntensity.Mean, stats.StressIntensity.StdDev)
	fmt.Printf("strain intensity: %.6g ± %.3g\n", stats.StrainIntensity.Mean, stats.StrainIntensity.StdDev)
	fmt.Printf("mean stored energy: %.6g ± %.3g\n", stats.MeanEnergy.Mean, stats.MeanEnergy.StdDev)
	fmt.Printf("grains: %.1f ± %.2f\n", stats.Grains.Mean, stats.Grains.StdDev)
	return nil
}
