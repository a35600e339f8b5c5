package types

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingListener struct {
	mu       sync.Mutex
	episodes int
	samples  []WinRateSample
	winRates []float64
}

func (c *countingListener) EpisodeDone(_ string, _ *EpisodeContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.episodes += 1
}

func (c *countingListener) WinRateSampled(_ string, s WinRateSample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples = append(c.samples, s)
}

func (c *countingListener) Evaluated(_ string, w float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.winRates = append(c.winRates, w)
}

// alternatingSetup wins every other episode
func alternatingSetup(agent *recordingAgent) Setup {
	return func() (Agent, Environment, error) {
		env := &scriptedEnvironment{states: 16, script: []scriptedStep{
			{next: 15, done: true},
			{next: 5, done: true},
		}}
		return agent, env, nil
	}
}

func TestTrainTrajectory(t *testing.T) {
	for _, episodes := range []int{1, 50, 100, 250, 1000} {
		agent, env, _ := alternatingSetup(newRecordingAgent(0))()
		e := NewExperiment("alt", nil, DefaultRewardConfig())

		trajectory, err := e.Train(context.Background(), agent, env, episodes)
		require.NoError(t, err)
		assert.Len(t, trajectory, episodes/SampleInterval(episodes))
		for _, s := range trajectory {
			assert.GreaterOrEqual(t, s.WinRate, 0.0)
			assert.LessOrEqual(t, s.WinRate, 100.0)
			assert.Less(t, s.Episode, episodes)
		}
	}
}

func TestTrainHundredEpisodes(t *testing.T) {
	agent, env, _ := alternatingSetup(newRecordingAgent(0))()
	e := NewExperiment("alt", nil, DefaultRewardConfig())
	listener := &countingListener{}
	e.AddListener(listener)

	trajectory, err := e.Train(context.Background(), agent, env, 100)
	require.NoError(t, err)
	require.Len(t, trajectory, 100)
	assert.Equal(t, WinRateSample{Episode: 0, WinRate: 100}, trajectory[0])
	assert.Equal(t, WinRateSample{Episode: 1, WinRate: 50}, trajectory[1])
	assert.Equal(t, WinRateSample{Episode: 99, WinRate: 50}, trajectory[99])
	assert.Equal(t, 100, listener.episodes)
	assert.Len(t, listener.samples, 100)
}

func TestSampleInterval(t *testing.T) {
	assert.Equal(t, 1, SampleInterval(10))
	assert.Equal(t, 1, SampleInterval(199))
	assert.Equal(t, 10, SampleInterval(1000))
}

func TestEvaluateDoesNotTrain(t *testing.T) {
	agent := newRecordingAgent(0)
	_, env, _ := alternatingSetup(agent)()
	e := NewExperiment("alt", nil, DefaultRewardConfig())

	winRate, err := e.Evaluate(context.Background(), agent, env, EvaluationTrials)
	require.NoError(t, err)
	assert.Equal(t, 50.0, winRate)
	require.Len(t, agent.updates, EvaluationTrials)
	for _, u := range agent.updates {
		assert.False(t, u.training)
	}
	assert.Equal(t, 0.0, agent.table[0][0])
}

func TestEvaluateDecaysEpsilonByDefault(t *testing.T) {
	agent := newRecordingAgent(0)
	_, env, _ := alternatingSetup(agent)()
	e := NewExperiment("alt", nil, DefaultRewardConfig())

	_, err := e.Evaluate(context.Background(), agent, env, 10)
	require.NoError(t, err)
	assert.Less(t, agent.config.Epsilon, 1.0)
}

func TestEvaluateCanHoldEpsilon(t *testing.T) {
	agent := newRecordingAgent(0)
	agent.config.DecayDuringEvaluation = false
	_, env, _ := alternatingSetup(agent)()
	e := NewExperiment("alt", nil, DefaultRewardConfig())

	_, err := e.Evaluate(context.Background(), agent, env, 10)
	require.NoError(t, err)
	assert.Equal(t, 1.0, agent.config.Epsilon)
	assert.False(t, agent.held)
}

func TestTrainStopsOnCancel(t *testing.T) {
	agent, env, _ := alternatingSetup(newRecordingAgent(0))()
	e := NewExperiment("alt", nil, DefaultRewardConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Train(ctx, agent, env, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResetFailureAbortsRun(t *testing.T) {
	boom := errors.New("no lake")
	e := NewExperiment("broken", func() (Agent, Environment, error) {
		return newRecordingAgent(0), &scriptedEnvironment{states: 16, resetErr: boom}, nil
	}, DefaultRewardConfig())

	_, err := e.Run(context.Background(), 0, 10, 10)
	assert.ErrorIs(t, err, boom)
}

func TestExperimentRun(t *testing.T) {
	e := NewExperiment("alt", alternatingSetup(newRecordingAgent(0)), DefaultRewardConfig())
	listener := &countingListener{}
	e.AddListener(listener)

	result, err := e.Run(context.Background(), 2, 200, 20)
	require.NoError(t, err)
	assert.Equal(t, "alt", result.Name)
	assert.Equal(t, 2, result.Run)
	assert.Len(t, result.Trajectory, 100)
	assert.Equal(t, 50.0, result.EvaluationWinRate)
	require.Len(t, result.Tables, 1)
	assert.Len(t, result.Tables[0], 16)
	assert.Equal(t, []float64{50.0}, listener.winRates)
	assert.Equal(t, 220, listener.episodes)
}

func TestComparison(t *testing.T) {
	for _, parallelism := range []int{1, 2} {
		dir := t.TempDir()
		c := NewComparison(&ComparisonConfig{
			Runs:          2,
			Episodes:      100,
			Trials:        10,
			Parallelism:   parallelism,
			RecordPath:    dir,
			RecordResults: true,
		})
		c.AddAnalysis("WinRate", NewWinRateAnalyzer(), WinRatePlotter(filepath.Join(dir, "plots"), 100))
		c.AddAnalysis("Evaluation", NewEvaluationAnalyzer(), EvaluationComparator(dir))
		c.AddExperiment(NewExperiment("a", alternatingSetup(newRecordingAgent(0)), DefaultRewardConfig()))
		c.AddExperiment(NewExperiment("b", alternatingSetup(newRecordingAgent(1)), DefaultRewardConfig()))

		results, err := c.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, run := range results {
			require.Len(t, run, 2)
			assert.Equal(t, "a", run[0].Name)
			assert.Equal(t, "b", run[1].Name)
		}

		for _, f := range []string{
			"comparison_config.json",
			"evaluation.txt",
			filepath.Join("results", "a_0.json"),
			filepath.Join("results", "b_1.json"),
			filepath.Join("plots", "1_win_rate.png"),
		} {
			_, err := os.Stat(filepath.Join(dir, f))
			assert.NoError(t, err, f)
		}

		summaries := Summarize(results)
		require.Len(t, summaries, 2)
		assert.Equal(t, "a", summaries[0].Name)
		assert.Equal(t, 2, summaries[0].Runs)
		assert.Equal(t, 50.0, summaries[0].Mean)
		assert.Equal(t, 0.0, summaries[0].StdDev)
	}
}

func TestComparisonPropagatesSetupErrors(t *testing.T) {
	boom := errors.New("bad setup")
	c := NewComparison(&ComparisonConfig{Episodes: 10, Trials: 10, Parallelism: 2})
	c.AddExperiment(NewExperiment("ok", alternatingSetup(newRecordingAgent(0)), DefaultRewardConfig()))
	c.AddExperiment(NewExperiment("bad", func() (Agent, Environment, error) { return nil, nil, boom }, DefaultRewardConfig()))

	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}
