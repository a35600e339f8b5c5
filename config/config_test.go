package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/frozenlake-rl/types"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "simple", cfg.Agent.Strategy)
	assert.Equal(t, 0.1, cfg.Agent.Alpha)
	assert.Equal(t, 0.95, cfg.Agent.Gamma)
	assert.Equal(t, 1000, cfg.Game.Episodes)
	assert.Equal(t, types.EvaluationTrials, cfg.Game.Trials)
	assert.True(t, cfg.Agent.DecayDuringEvaluation)
}

func TestLoadFileAndEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "run.yaml")
	content := `
agent:
  strategy: double
  alpha: 0.5
game:
  lake_size: 8x8
  episodes: 50
`
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	t.Setenv("FROZENLAKE_EPISODES", "70")
	t.Setenv("FROZENLAKE_GAMMA", "0.5")
	t.Setenv("FROZENLAKE_SLIPPERY", "false")

	cfg, err := Load(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "double", cfg.Agent.Strategy)
	assert.Equal(t, 0.5, cfg.Agent.Alpha)
	assert.Equal(t, 0.5, cfg.Agent.Gamma)
	assert.Equal(t, "8x8", cfg.Game.LakeSize)
	assert.Equal(t, 70, cfg.Game.Episodes)
	assert.False(t, cfg.Game.Slippery)
	// untouched values keep their defaults
	assert.Equal(t, 0.05, cfg.Agent.EpsilonMin)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("FROZENLAKE_ALPHA", "fast")
	_, err := Load("")
	var cErr *types.ConfigurationError
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, "FROZENLAKE_ALPHA", cErr.Field)
}

func TestValidateSelectors(t *testing.T) {
	cfg := Default()
	cfg.Agent.Strategy = "triple"
	var cErr *types.ConfigurationError
	require.True(t, errors.As(cfg.Validate(), &cErr))
	assert.Contains(t, cErr.Field, "Strategy")

	cfg = Default()
	cfg.Game.LakeSize = "3x3"
	require.True(t, errors.As(cfg.Validate(), &cErr))
	assert.Contains(t, cErr.Field, "LakeSize")

	cfg = Default()
	cfg.Game.Episodes = 0
	assert.Error(t, cfg.Validate())
}

func TestLearningParametersAreNotRangeChecked(t *testing.T) {
	cfg := Default()
	cfg.Agent.Alpha = 3
	cfg.Agent.Epsilon = -1
	assert.NoError(t, cfg.Validate())
}

func TestAgentConfig(t *testing.T) {
	cfg := Default()
	cfg.Agent.DecayDuringEvaluation = false
	ac := cfg.AgentConfig(64)
	assert.Equal(t, 64, ac.StateCount)
	assert.Equal(t, cfg.Agent.Epsilon, ac.Epsilon)
	assert.False(t, ac.DecayDuringEvaluation)

	assert.Equal(t, types.RewardConfig{Reward: 1, Punish: -1}, cfg.RewardConfig())
	assert.Equal(t, [2]string{"q_learning_type", "simple"}, cfg.Settings()[0])
}
