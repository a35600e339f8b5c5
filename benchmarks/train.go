package benchmarks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

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
	"golang.org/x/exp/rand"
	"gonum.org/v1/plot/vg"
)

// sources returns the random sources of the agent and the environment,
// both nil when seed is 0
func sources(seed uint64) (rand.Source, rand.Source) {
	if seed == 0 {
		return nil, nil
	}
	return rand.NewSource(seed), rand.NewSource(seed + 1)
}

// frozenLakeSetup creates a fresh agent and lake on every call
func frozenLakeSetup(cfg config.Config, strategy policies.Strategy, lake grid.Lake, seed uint64) types.Setup {
	return func() (types.Agent, types.Environment, error) {
		agentSrc, envSrc := sources(seed)
		agent, err := policies.NewAgent(strategy, cfg.AgentConfig(lake.StateCount()), agentSrc)
		if err != nil {
			return nil, nil, err
		}
		return agent, grid.NewFrozenLakeEnvironment(lake, cfg.Game.Slippery, envSrc), nil
	}
}

// Train runs a single experiment with the given configuration and
// writes the console report to out
func Train(ctx context.Context, cfg config.Config, out io.Writer, logger *slog.Logger) (*types.ExperimentResult, error) {
	lake, err := grid.ParseLakeSize(cfg.Game.LakeSize)
	if err != nil {
		return nil, err
	}
	strategy, err := policies.ParseStrategy(cfg.Agent.Strategy)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Output.SavePath, os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating save path: %w", err)
	}

	reporting.PrintBanner(out)
	reporting.PrintSettings(out, cfg.Settings())
	fmt.Fprint(out, reporting.Line)

	experiment := types.NewExperiment(strategy.String(), frozenLakeSetup(cfg, strategy, lake, cfg.Agent.Seed), cfg.RewardConfig())
	experiment.SetLogger(logger)

	registry := prometheus.NewRegistry()
	experiment.AddListener(metrics.NewCollector(registry))
	store := server.NewStore()
	experiment.AddListener(store)
	if cfg.Output.Progress {
		experiment.AddListener(reporting.NewProgressListener(out, cfg.Game.Episodes, cfg.Game.Trials))
	}
	visits := grid.NewVisitCounter(lake)
	if cfg.Output.Plot {
		experiment.RecordTraces(true)
		experiment.AddListener(visits)
	}
	if cfg.Output.RedisAddr != "" {
		publisher, err := reporting.NewRedisPublisher(ctx, cfg.Output.RedisAddr, cfg.Output.RedisChannel, logger)
		if err != nil {
			return nil, err
		}
		defer publisher.Close()
		experiment.AddListener(publisher)
	}

	var serveErr <-chan error
	if cfg.Output.ServeAddr != "" {
		srv := server.NewServer(ctx, cfg.Output.ServeAddr, store, registry, func(table [][]float64) string {
			return grid.RenderPolicy(lake, table)
		})
		serveErr = srv.Start()
		logger.Info("serving results", "addr", cfg.Output.ServeAddr)
	}

	result, err := experiment.Run(ctx, 0, cfg.Game.Episodes, cfg.Game.Trials)
	if err != nil {
		return nil, err
	}
	store.AddResult(result)

	reporting.PrintWinRate(out, result.EvaluationWinRate)
	titles := grid.TableTitles(len(result.Tables))
	for i, t := range result.Tables {
		fmt.Fprintf(out, "%s\n%s\n", titles[i], grid.RenderPolicy(lake, t))
	}

	if err := util.WriteJSON(path.Join(cfg.Output.SavePath, "result.json"), result); err != nil {
		return nil, err
	}
	if cfg.Output.Plot {
		if err := savePlots(cfg.Output.SavePath, result, visits); err != nil {
			return nil, err
		}
	}

	if serveErr != nil {
		logger.Info("training done, serving until interrupted", "addr", cfg.Output.ServeAddr)
		select {
		case <-ctx.Done():
		case err := <-serveErr:
			if err != nil {
				return result, fmt.Errorf("serving results: %w", err)
			}
		}
	}
	return result, nil
}

func savePlots(savePath string, result *types.ExperimentResult, visits *grid.VisitCounter) error {
	p, err := types.PlotWinRates([]string{result.Name}, [][]types.WinRateSample{result.Trajectory}, result.Episodes)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path.Join(savePath, result.Name+"_win_rate.png")); err != nil {
		return fmt.Errorf("saving win rate plot: %w", err)
	}
	if _, err := grid.SaveTables(savePath, result.Name, result.Tables); err != nil {
		return err
	}
	v := grid.PlotTable("Visits", visits.DataSet(result.Name))
	if err := v.Save(6*vg.Inch, 6*vg.Inch, path.Join(savePath, result.Name+"_visits.png")); err != nil {
		return fmt.Errorf("saving visits plot: %w", err)
	}
	return nil
}

func TrainCommand() *cobra.Command {
	flags := &settingFlags{}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train one agent and evaluate its greedy policy",
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
			_, err = Train(ctx, cfg, cmd.OutOrStdout(), logger)
			if pErr := stop(); pErr != nil && err == nil {
				err = pErr
			}
			return err
		},
	}
	flags.register(cmd)
	return cmd
}
