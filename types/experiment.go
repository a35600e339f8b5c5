package types

import (
	"context"
	"fmt"
	"log/slog"
)

// EvaluationTrials is the number of greedy episodes played by Evaluate
const EvaluationTrials = 1000

// WinRateSample is one point of the training win rate trajectory
type WinRateSample struct {
	Episode int     `json:"episode"`
	WinRate float64 `json:"win_rate"`
}

// Listener is notified of the progress of an experiment
type Listener interface {
	EpisodeDone(name string, eCtx *EpisodeContext)
	WinRateSampled(name string, sample WinRateSample)
	Evaluated(name string, winRate float64)
}

// Setup creates a fresh agent and environment for one run.
// Tables are never shared across runs.
type Setup func() (Agent, Environment, error)

// Experiment trains an agent on an environment and evaluates the
// resulting greedy policy
type Experiment struct {
	Name      string
	setup     Setup
	rewards   RewardConfig
	listeners []Listener
	logger    *slog.Logger

	recordTraces bool
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, setup Setup, rewards RewardConfig) *Experiment {
	return &Experiment{
		Name:      name,
		setup:     setup,
		rewards:   rewards,
		listeners: make([]Listener, 0),
		logger:    slog.Default(),
	}
}

func (e *Experiment) AddListener(l Listener) {
	e.listeners = append(e.listeners, l)
}

func (e *Experiment) SetLogger(logger *slog.Logger) {
	e.logger = logger.With("experiment", e.Name)
}

// RecordTraces keeps the trace of every episode in the EpisodeContext
// handed to listeners
func (e *Experiment) RecordTraces(record bool) {
	e.recordTraces = record
}

// ExperimentResult holds everything a run produced
type ExperimentResult struct {
	Name              string          `json:"name"`
	Run               int             `json:"run"`
	Episodes          int             `json:"episodes"`
	Trials            int             `json:"trials"`
	Trajectory        []WinRateSample `json:"trajectory"`
	EvaluationWinRate float64         `json:"evaluation_win_rate"`
	FinalEpsilon      float64         `json:"final_epsilon"`
	Tables            [][][]float64   `json:"tables"`
}

// Run creates a fresh agent, trains it for the given number of episodes
// and evaluates it over trials episodes
func (e *Experiment) Run(ctx context.Context, run, episodes, trials int) (*ExperimentResult, error) {
	agent, environment, err := e.setup()
	if err != nil {
		return nil, fmt.Errorf("experiment %s: setup: %w", e.Name, err)
	}
	e.logger.Info("starting run", "run", run, "episodes", episodes, "trials", trials, "states", environment.StateCount())

	trajectory, err := e.Train(ctx, agent, environment, episodes)
	if err != nil {
		return nil, err
	}
	winRate, err := e.Evaluate(ctx, agent, environment, trials)
	if err != nil {
		return nil, err
	}

	views := agent.Tables()
	tables := make([][][]float64, len(views))
	for i, t := range views {
		tables[i] = Snapshot(t)
	}
	return &ExperimentResult{
		Name:              e.Name,
		Run:               run,
		Episodes:          episodes,
		Trials:            trials,
		Trajectory:        trajectory,
		EvaluationWinRate: winRate,
		FinalEpsilon:      agent.Config().Epsilon,
		Tables:            tables,
	}, nil
}

// SampleInterval is the number of episodes between two win rate samples
func SampleInterval(episodes int) int {
	interval := episodes / 100
	if interval < 1 {
		interval = 1
	}
	return interval
}

// Train plays episodes with learning enabled and returns the win rate
// trajectory, roughly one sample every episodes/100 episodes
func (e *Experiment) Train(ctx context.Context, agent Agent, environment Environment, episodes int) ([]WinRateSample, error) {
	runner := NewRunner(agent, environment, e.rewards)
	interval := SampleInterval(episodes)
	trajectory := make([]WinRateSample, 0, episodes/interval)
	wins := 0

	for count := 0; count < episodes; count++ {
		select {
		case <-ctx.Done():
			return trajectory, ctx.Err()
		default:
		}

		eCtx, err := e.playEpisode(runner, environment, count, true)
		if err != nil {
			return trajectory, fmt.Errorf("experiment %s: training: %w", e.Name, err)
		}
		if eCtx.Won {
			wins += 1
		}

		if (count+1)%interval == 0 {
			sample := WinRateSample{
				Episode: count,
				WinRate: float64(wins) * 100 / float64(count+1),
			}
			trajectory = append(trajectory, sample)
			e.logger.Debug("win rate", "episode", sample.Episode, "win_rate", sample.WinRate, "epsilon", agent.Config().Epsilon)
			for _, l := range e.listeners {
				l.WinRateSampled(e.Name, sample)
			}
		}
	}
	return trajectory, nil
}

// Evaluate plays trials episodes without touching the tables and returns
// the percentage of episodes that reached the goal
func (e *Experiment) Evaluate(ctx context.Context, agent Agent, environment Environment, trials int) (float64, error) {
	if trials <= 0 {
		return 0, nil
	}
	if !agent.Config().DecayDuringEvaluation {
		if h, ok := agent.(ExplorationHolder); ok {
			h.HoldExploration(true)
			defer h.HoldExploration(false)
		}
	}

	runner := NewRunner(agent, environment, e.rewards)
	wins := 0
	for trial := 0; trial < trials; trial++ {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		eCtx, err := e.playEpisode(runner, environment, trial, false)
		if err != nil {
			return 0, fmt.Errorf("experiment %s: evaluation: %w", e.Name, err)
		}
		if eCtx.Won {
			wins += 1
		}
	}

	winRate := float64(wins) * 100 / float64(trials)
	e.logger.Info("evaluation done", "trials", trials, "win_rate", winRate)
	for _, l := range e.listeners {
		l.Evaluated(e.Name, winRate)
	}
	return winRate, nil
}

func (e *Experiment) playEpisode(runner *Runner, environment Environment, episode int, training bool) (*EpisodeContext, error) {
	if _, err := environment.Reset(); err != nil {
		return nil, fmt.Errorf("episode %d: reset: %w", episode, err)
	}
	eCtx := NewEpisodeContext(episode, training, e.recordTraces)
	if _, err := runner.RunEpisode(eCtx); err != nil {
		return nil, err
	}
	for _, l := range e.listeners {
		l.EpisodeDone(e.Name, eCtx)
	}
	return eCtx, nil
}
