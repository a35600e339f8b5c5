package types

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"

	"github.com/zeu5/frozenlake-rl/util"
	"golang.org/x/sync/errgroup"
)

// Generic Dataset that contains information after processing the results
type DataSet interface{}

// Analyzer compresses the result of an experiment run to a DataSet
type Analyzer interface {
	Analyze(run int, result *ExperimentResult)
	DataSet() DataSet
	Reset()
}

// Comparator differentiates between different datasets with associated names
// run, experiment names, datasets
type Comparator func(int, []string, []DataSet)

func NoopComparator() Comparator {
	return func(_ int, _ []string, _ []DataSet) {}
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs     int // number of runs
	Episodes int // training episodes per run
	Trials   int // evaluation episodes per run

	// experiments of the same run are executed concurrently when > 1,
	// each one owns its agent and environment
	Parallelism int

	RecordPath    string // path to store the results, nothing is stored when empty
	RecordResults bool
}

// Comparison contains the different experiments to compare.
// The results obtained from the experiments are analyzed
// and the analyzed datasets are then compared
type Comparison struct {
	Experiments []*Experiment
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	cConfig     *ComparisonConfig
	logger      *slog.Logger
}

// NewComparison creates a comparison instance
func NewComparison(config *ComparisonConfig) *Comparison {
	if config.Runs < 1 {
		config.Runs = 1
	}
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	return &Comparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		cConfig:     config,
		logger:      slog.Default(),
	}
}

func (c *Comparison) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// Add experiments to compare
func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// Run the comparison, results are indexed by run then by experiment
func (c *Comparison) Run(ctx context.Context) ([][]*ExperimentResult, error) {
	if err := c.recordConfig(); err != nil {
		return nil, err
	}

	all := make([][]*ExperimentResult, 0, c.cConfig.Runs)
	for run := 0; run < c.cConfig.Runs; run++ {
		c.logger.Info("starting comparison run", "run", run+1, "runs", c.cConfig.Runs, "experiments", len(c.Experiments))

		results, err := c.runExperiments(ctx, run)
		if err != nil {
			return all, err
		}
		all = append(all, results)

		names := make([]string, len(c.Experiments))
		datasets := make(map[string][]DataSet)
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}
		for i, e := range c.Experiments {
			names[i] = e.Name
			for name, a := range c.analyzers {
				a.Analyze(run, results[i])
				datasets[name][i] = a.DataSet()
				a.Reset()
			}
			if c.cConfig.RecordResults {
				if err := c.recordResult(results[i]); err != nil {
					return all, err
				}
			}
		}
		for name, comp := range c.comparators {
			comp(run, names, datasets[name])
		}
	}
	return all, nil
}

func (c *Comparison) runExperiments(ctx context.Context, run int) ([]*ExperimentResult, error) {
	results := make([]*ExperimentResult, len(c.Experiments))
	if c.cConfig.Parallelism == 1 {
		for i, e := range c.Experiments {
			res, err := e.Run(ctx, run, c.cConfig.Episodes, c.cConfig.Trials)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.cConfig.Parallelism)
	for i, e := range c.Experiments {
		i, e := i, e
		g.Go(func() error {
			res, err := e.Run(gCtx, run, c.cConfig.Episodes, c.cConfig.Trials)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	cfg := c.cConfig
	if cfg.RecordPath == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.RecordPath, 0777); err != nil {
		return fmt.Errorf("creating record path: %w", err)
	}

	out := make(map[string]interface{})
	out["runs"] = cfg.Runs
	out["episodes"] = cfg.Episodes
	out["trials"] = cfg.Trials
	out["parallelism"] = cfg.Parallelism

	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments

	analyzers := make([]string, 0)
	for name := range c.analyzers {
		analyzers = append(analyzers, name)
	}
	out["analyzers"] = analyzers

	return util.WriteJSON(path.Join(cfg.RecordPath, "comparison_config.json"), out)
}

func (c *Comparison) recordResult(result *ExperimentResult) error {
	if c.cConfig.RecordPath == "" {
		return nil
	}
	resultsFolder := path.Join(c.cConfig.RecordPath, "results")
	if err := os.MkdirAll(resultsFolder, os.ModePerm); err != nil {
		return err
	}
	return util.WriteJSON(path.Join(resultsFolder, result.Name+"_"+strconv.Itoa(result.Run)+".json"), result)
}
