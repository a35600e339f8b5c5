package benchmarks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/zeu5/frozenlake-rl/config"
	"github.com/zeu5/frozenlake-rl/grid"
	"github.com/zeu5/frozenlake-rl/metrics"
	"github.com/zeu5/frozenlake-rl/policies"
	"github.com/zeu5/frozenlake-rl/reporting"
	"github.com/zeu5/frozenlake-rl/server"
	"github.com/zeu5/frozenlake-rl/types"
	"github.com/zeu5/frozenlake-rl/util"
)

// seededSetup gives every call its own seed so that runs differ but
// stay reproducible
func seededSetup(cfg config.Config, strategy policies.Strategy, lake grid.Lake, offset uint64) types.Setup {
	if cfg.Agent.Seed == 0 {
		return frozenLakeSetup(cfg, strategy, lake, 0)
	}
	var calls atomic.Uint64
	return func() (types.Agent, types.Environment, error) {
		n := calls.Add(1) - 1
		return frozenLakeSetup(cfg, strategy, lake, cfg.Agent.Seed+offset+n*4)()
	}
}

// Compare trains a single table and a double table agent on the same
// lake for the given number of runs and summarizes the evaluation win rates
func Compare(ctx context.Context, cfg config.Config, runs, parallelism int, out io.Writer, logger *slog.Logger) ([]types.Summary, error) {
	lake, err := grid.ParseLakeSize(cfg.Game.LakeSize)
	if err != nil {
		return nil, err
	}

	c := types.NewComparison(&types.ComparisonConfig{
		Runs:          runs,
		Episodes:      cfg.Game.Episodes,
		Trials:        cfg.Game.Trials,
		Parallelism:   parallelism,
		RecordPath:    cfg.Output.SavePath,
		RecordResults: true,
	})
	c.SetLogger(logger)
	if cfg.Output.Plot {
		c.AddAnalysis("WinRate", types.NewWinRateAnalyzer(), types.WinRatePlotter(path.Join(cfg.Output.SavePath, "plots"), cfg.Game.Episodes))
	}
	c.AddAnalysis("Evaluation", types.NewEvaluationAnalyzer(), types.EvaluationComparator(cfg.Output.SavePath))

	strategies := []policies.Strategy{policies.SingleTableStrategy, policies.DoubleTableStrategy}
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.String()
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	store := server.NewStore()
	var view *reporting.LiveView
	if cfg.Output.Progress {
		view = reporting.NewLiveView(ctx, out, names, 500*time.Millisecond)
	}
	var publisher *reporting.RedisPublisher
	if cfg.Output.RedisAddr != "" {
		publisher, err = reporting.NewRedisPublisher(ctx, cfg.Output.RedisAddr, cfg.Output.RedisChannel, logger)
		if err != nil {
			return nil, err
		}
		defer publisher.Close()
	}

	for i, s := range strategies {
		e := types.NewExperiment(s.String(), seededSetup(cfg, s, lake, uint64(i)*2), cfg.RewardConfig())
		e.SetLogger(logger)
		e.AddListener(collector)
		e.AddListener(store)
		if view != nil {
			e.AddListener(view)
		}
		if publisher != nil {
			e.AddListener(publisher)
		}
		c.AddExperiment(e)
	}

	if cfg.Output.ServeAddr != "" {
		srv := server.NewServer(ctx, cfg.Output.ServeAddr, store, registry, func(table [][]float64) string {
			return grid.RenderPolicy(lake, table)
		})
		srv.Start()
		logger.Info("serving results", "addr", cfg.Output.ServeAddr)
	}

	if view != nil {
		view.Start()
	}
	results, err := c.Run(ctx)
	if view != nil {
		view.Stop()
	}
	if err != nil {
		return nil, err
	}
	for _, run := range results {
		for _, r := range run {
			store.AddResult(r)
		}
	}

	summaries := types.Summarize(results)
	fmt.Fprint(out, reporting.Line)
	for _, s := range summaries {
		fmt.Fprintf(out, "%-8s runs %d, win rate %.2f%% (std %.2f)\n", s.Name, s.Runs, s.Mean, s.StdDev)
	}
	fmt.Fprint(out, reporting.Line)
	if err := util.WriteJSON(path.Join(cfg.Output.SavePath, "summary.json"), summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func CompareCommand() *cobra.Command {
	flags := &settingFlags{}
	var parallelism int
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare single and double Q-learning over several runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			logger, err := reporting.NewLogger(cmd.ErrOrStderr(), cfg.Output.LogLevel, cfg.Output.LogFormat)
			if err != nil {
				return err
			}

			ctx, cancel := interruptContext(cmd.Context())
			defer cancel()

			if err := os.MkdirAll(cfg.Output.SavePath, os.ModePerm); err != nil {
				return err
			}
			stop, err := startProfiling(cmd.OutOrStdout(), cfg.Output.SavePath)
			if err != nil {
				return err
			}
			_, err = Compare(ctx, cfg, runs, parallelism, cmd.OutOrStdout(), logger)
			if pErr := stop(); pErr != nil && err == nil {
				err = pErr
			}
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&parallelism, "parallel", 2, "Number of experiments trained at the same time")
	return cmd
}
