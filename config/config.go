// Package config loads the settings of a training run.
//
// Priority: defaults < YAML file < FROZENLAKE_* environment variables.
// Command line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/zeu5/frozenlake-rl/types"
	"gopkg.in/yaml.v3"
)

// AgentSettings are the learning parameters
type AgentSettings struct {
	Strategy     string  `yaml:"strategy" validate:"oneof=simple double"`
	Alpha        float64 `yaml:"alpha"`
	Gamma        float64 `yaml:"gamma"`
	Epsilon      float64 `yaml:"epsilon"`
	EpsilonDecay float64 `yaml:"epsilon_decay"`
	EpsilonMin   float64 `yaml:"epsilon_min"`
	// 0 seeds from the current time
	Seed                  uint64 `yaml:"seed"`
	DecayDuringEvaluation bool   `yaml:"decay_during_evaluation"`
}

// GameSettings describe the lake and the length of the run
type GameSettings struct {
	LakeSize string  `yaml:"lake_size" validate:"oneof=4x4 8x8"`
	Slippery bool    `yaml:"slippery"`
	Episodes int     `yaml:"episodes" validate:"gt=0"`
	Trials   int     `yaml:"trials" validate:"gt=0"`
	Reward   float64 `yaml:"reward"`
	Punish   float64 `yaml:"punish"`
}

// OutputSettings control what is produced besides the final win rate
type OutputSettings struct {
	SavePath     string `yaml:"save_path"`
	Plot         bool   `yaml:"plot"`
	ServeAddr    string `yaml:"serve_addr"`
	RedisAddr    string `yaml:"redis_addr"`
	RedisChannel string `yaml:"redis_channel"`
	LogLevel     string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat    string `yaml:"log_format" validate:"oneof=text json"`
	Progress     bool   `yaml:"progress"`
}

type Config struct {
	Agent  AgentSettings  `yaml:"agent"`
	Game   GameSettings   `yaml:"game"`
	Output OutputSettings `yaml:"output"`
}

var validate = validator.New()

// Default returns the settings used when nothing else is configured
func Default() Config {
	return Config{
		Agent: AgentSettings{
			Strategy:              "simple",
			Alpha:                 0.1,
			Gamma:                 0.95,
			Epsilon:               1,
			EpsilonDecay:          0.95,
			EpsilonMin:            0.05,
			DecayDuringEvaluation: true,
		},
		Game: GameSettings{
			LakeSize: "4x4",
			Slippery: true,
			Episodes: 1000,
			Trials:   types.EvaluationTrials,
			Reward:   1,
			Punish:   -1,
		},
		Output: OutputSettings{
			SavePath:     "results",
			Plot:         true,
			RedisChannel: "frozenlake:progress",
			LogLevel:     "info",
			LogFormat:    "text",
			Progress:     true,
		},
	}
}

// Load reads the defaults, the optional YAML file and the environment
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		bs, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(bs, &cfg); err != nil {
			return cfg, &types.ConfigurationError{Field: "config", Value: path, Err: err}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the selectors and counts. Learning parameters are
// only checked by type.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		fe := vErrs[0]
		return &types.ConfigurationError{
			Field: fe.Namespace(),
			Value: fmt.Sprintf("%v", fe.Value()),
			Err:   fmt.Errorf("failed %s", fe.Tag()),
		}
	}
	return err
}

// AgentConfig builds the shared agent settings for a lake of stateCount cells
func (c Config) AgentConfig(stateCount int) *types.AgentConfig {
	return &types.AgentConfig{
		Alpha:                 c.Agent.Alpha,
		Gamma:                 c.Agent.Gamma,
		Epsilon:               c.Agent.Epsilon,
		EpsilonDecay:          c.Agent.EpsilonDecay,
		EpsilonMin:            c.Agent.EpsilonMin,
		StateCount:            stateCount,
		DecayDuringEvaluation: c.Agent.DecayDuringEvaluation,
	}
}

func (c Config) RewardConfig() types.RewardConfig {
	return types.RewardConfig{Reward: c.Game.Reward, Punish: c.Game.Punish}
}

// Settings lists every setting as key/value pairs in display order
func (c Config) Settings() [][2]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return [][2]string{
		{"q_learning_type", c.Agent.Strategy},
		{"alpha", f(c.Agent.Alpha)},
		{"gamma", f(c.Agent.Gamma)},
		{"epsilon", f(c.Agent.Epsilon)},
		{"epsilon_decay", f(c.Agent.EpsilonDecay)},
		{"epsilon_min", f(c.Agent.EpsilonMin)},
		{"lake_size", c.Game.LakeSize},
		{"slippery", strconv.FormatBool(c.Game.Slippery)},
		{"round_to_train", strconv.Itoa(c.Game.Episodes)},
		{"trials", strconv.Itoa(c.Game.Trials)},
		{"reward", f(c.Game.Reward)},
		{"punish", f(c.Game.Punish)},
	}
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := map[string]*string{
		"FROZENLAKE_STRATEGY":      &c.Agent.Strategy,
		"FROZENLAKE_LAKE_SIZE":     &c.Game.LakeSize,
		"FROZENLAKE_SAVE_PATH":     &c.Output.SavePath,
		"FROZENLAKE_SERVE_ADDR":    &c.Output.ServeAddr,
		"FROZENLAKE_REDIS_ADDR":    &c.Output.RedisAddr,
		"FROZENLAKE_REDIS_CHANNEL": &c.Output.RedisChannel,
		"FROZENLAKE_LOG_LEVEL":     &c.Output.LogLevel,
		"FROZENLAKE_LOG_FORMAT":    &c.Output.LogFormat,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"FROZENLAKE_ALPHA":         &c.Agent.Alpha,
		"FROZENLAKE_GAMMA":         &c.Agent.Gamma,
		"FROZENLAKE_EPSILON":       &c.Agent.Epsilon,
		"FROZENLAKE_EPSILON_DECAY": &c.Agent.EpsilonDecay,
		"FROZENLAKE_EPSILON_MIN":   &c.Agent.EpsilonMin,
		"FROZENLAKE_REWARD":        &c.Game.Reward,
		"FROZENLAKE_PUNISH":        &c.Game.Punish,
	}
	for key, dst := range floats {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return &types.ConfigurationError{Field: key, Value: v, Err: err}
			}
			*dst = f
		}
	}

	ints := map[string]*int{
		"FROZENLAKE_EPISODES": &c.Game.Episodes,
		"FROZENLAKE_TRIALS":   &c.Game.Trials,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok && v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				return &types.ConfigurationError{Field: key, Value: v, Err: err}
			}
			*dst = i
		}
	}

	if v, ok := lookup("FROZENLAKE_SEED"); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return &types.ConfigurationError{Field: "FROZENLAKE_SEED", Value: v, Err: err}
		}
		c.Agent.Seed = seed
	}
	bools := map[string]*bool{
		"FROZENLAKE_SLIPPERY":                &c.Game.Slippery,
		"FROZENLAKE_DECAY_DURING_EVALUATION": &c.Agent.DecayDuringEvaluation,
	}
	for key, dst := range bools {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return &types.ConfigurationError{Field: key, Value: v, Err: err}
			}
			*dst = b
		}
	}
	return nil
}
