package benchmarks

import (
	"github.com/spf13/cobra"
	"github.com/zeu5/frozenlake-rl/config"
)

// settingFlags are the per run settings that override the configuration file
type settingFlags struct {
	strategy     string
	alpha        float64
	gamma        float64
	epsilon      float64
	epsilonDecay float64
	epsilonMin   float64
	seed         uint64
	holdEpsilon  bool

	lakeSize string
	slippery bool
	trials   int
	reward   float64
	punish   float64

	plot         bool
	progress     bool
	serve        string
	redisAddr    string
	redisChannel string
}

func (f *settingFlags) register(cmd *cobra.Command) {
	d := config.Default()
	flags := cmd.Flags()
	flags.StringVar(&f.strategy, "q_type", d.Agent.Strategy, "Q-Learning type 'simple' or 'double'")
	flags.Float64Var(&f.alpha, "alpha", d.Agent.Alpha, "Learning rate")
	flags.Float64Var(&f.gamma, "gamma", d.Agent.Gamma, "Discount factor")
	flags.Float64Var(&f.epsilon, "epsilon", d.Agent.Epsilon, "Epsilon start value")
	flags.Float64Var(&f.epsilonDecay, "epsilon_decay", d.Agent.EpsilonDecay, "Decay ratio of epsilon")
	flags.Float64Var(&f.epsilonMin, "epsilon_min", d.Agent.EpsilonMin, "Min value of epsilon")
	flags.Uint64Var(&f.seed, "seed", 0, "Random seed, 0 seeds from the current time")
	flags.BoolVar(&f.holdEpsilon, "hold-epsilon", false, "Do not decay epsilon during evaluation")

	flags.StringVar(&f.lakeSize, "lake_size", d.Game.LakeSize, "Lake type, 4x4 or 8x8")
	flags.BoolVar(&f.slippery, "slippery", d.Game.Slippery, "Moves may slip sideways")
	flags.IntVar(&f.trials, "trials", d.Game.Trials, "Number of evaluation episodes")
	flags.Float64Var(&f.reward, "reward", d.Game.Reward, "Value of the reward")
	flags.Float64Var(&f.punish, "punish", d.Game.Punish, "Value of the punishment")

	flags.BoolVar(&f.plot, "plot", d.Output.Plot, "Save the win rate and Q-table plots")
	flags.BoolVar(&f.progress, "progress", d.Output.Progress, "Draw progress on the terminal")
	flags.StringVar(&f.serve, "serve", "", "Serve the results over HTTP on this address")
	flags.StringVar(&f.redisAddr, "redis", "", "Publish progress to the redis server at this address")
	flags.StringVar(&f.redisChannel, "redis-channel", d.Output.RedisChannel, "Redis channel for progress events")
}

// load reads the configuration file and applies the flags set on the
// command line, then validates the result
func (f *settingFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}
	overrides := []struct {
		name  string
		apply func()
	}{
		{"q_type", func() { cfg.Agent.Strategy = f.strategy }},
		{"alpha", func() { cfg.Agent.Alpha = f.alpha }},
		{"gamma", func() { cfg.Agent.Gamma = f.gamma }},
		{"epsilon", func() { cfg.Agent.Epsilon = f.epsilon }},
		{"epsilon_decay", func() { cfg.Agent.EpsilonDecay = f.epsilonDecay }},
		{"epsilon_min", func() { cfg.Agent.EpsilonMin = f.epsilonMin }},
		{"seed", func() { cfg.Agent.Seed = f.seed }},
		{"hold-epsilon", func() { cfg.Agent.DecayDuringEvaluation = !f.holdEpsilon }},
		{"lake_size", func() { cfg.Game.LakeSize = f.lakeSize }},
		{"slippery", func() { cfg.Game.Slippery = f.slippery }},
		{"trials", func() { cfg.Game.Trials = f.trials }},
		{"reward", func() { cfg.Game.Reward = f.reward }},
		{"punish", func() { cfg.Game.Punish = f.punish }},
		{"episodes", func() { cfg.Game.Episodes = episodes }},
		{"save", func() { cfg.Output.SavePath = saveFile }},
		{"log-level", func() { cfg.Output.LogLevel = logLevel }},
		{"log-format", func() { cfg.Output.LogFormat = logFormat }},
		{"plot", func() { cfg.Output.Plot = f.plot }},
		{"progress", func() { cfg.Output.Progress = f.progress }},
		{"serve", func() { cfg.Output.ServeAddr = f.serve }},
		{"redis", func() { cfg.Output.RedisAddr = f.redisAddr }},
		{"redis-channel", func() { cfg.Output.RedisChannel = f.redisChannel }},
	}
	for _, o := range overrides {
		if changed(o.name) {
			o.apply()
		}
	}
	return cfg, cfg.Validate()
}
