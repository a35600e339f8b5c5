// Package metrics exposes training progress as prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zeu5/frozenlake-rl/types"
)

// Collector listens to experiments and updates the prometheus metrics
type Collector struct {
	episodes          *prometheus.CounterVec
	wins              *prometheus.CounterVec
	steps             *prometheus.HistogramVec
	trainingWinRate   *prometheus.GaugeVec
	evaluationWinRate *prometheus.GaugeVec
}

var _ types.Listener = &Collector{}

// NewCollector registers the metrics on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		// episodes counts finished episodes by experiment and mode
		episodes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "frozenlake_episodes_total",
			Help: "Finished episodes by experiment and mode",
		}, []string{"experiment", "mode"}),

		wins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "frozenlake_wins_total",
			Help: "Episodes that reached the goal by experiment and mode",
		}, []string{"experiment", "mode"}),

		steps: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "frozenlake_episode_steps",
			Help:    "Number of steps per episode",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"experiment", "mode"}),

		trainingWinRate: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "frozenlake_training_win_rate_percent",
			Help: "Latest sampled training win rate",
		}, []string{"experiment"}),

		evaluationWinRate: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "frozenlake_evaluation_win_rate_percent",
			Help: "Win rate of the last evaluation",
		}, []string{"experiment"}),
	}
}

func mode(training bool) string {
	if training {
		return "train"
	}
	return "evaluate"
}

func (c *Collector) EpisodeDone(name string, eCtx *types.EpisodeContext) {
	m := mode(eCtx.Training)
	c.episodes.WithLabelValues(name, m).Inc()
	if eCtx.Won {
		c.wins.WithLabelValues(name, m).Inc()
	}
	c.steps.WithLabelValues(name, m).Observe(float64(eCtx.Steps))
}

func (c *Collector) WinRateSampled(name string, sample types.WinRateSample) {
	c.trainingWinRate.WithLabelValues(name).Set(sample.WinRate)
}

func (c *Collector) Evaluated(name string, winRate float64) {
	c.evaluationWinRate.WithLabelValues(name).Set(winRate)
}
