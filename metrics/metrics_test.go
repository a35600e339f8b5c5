package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/zeu5/frozenlake-rl/types"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	won := types.NewEpisodeContext(0, true, false)
	won.Won = true
	won.Steps = 6
	c.EpisodeDone("simple", won)
	c.EpisodeDone("simple", types.NewEpisodeContext(1, true, false))
	c.EpisodeDone("simple", types.NewEpisodeContext(0, false, false))
	c.WinRateSampled("simple", types.WinRateSample{Episode: 1, WinRate: 50})
	c.Evaluated("simple", 72.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.episodes.WithLabelValues("simple", "train")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.episodes.WithLabelValues("simple", "evaluate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.wins.WithLabelValues("simple", "train")))
	assert.Equal(t, 50.0, testutil.ToFloat64(c.trainingWinRate.WithLabelValues("simple")))
	assert.Equal(t, 72.5, testutil.ToFloat64(c.evaluationWinRate.WithLabelValues("simple")))

	count, err := testutil.GatherAndCount(reg, "frozenlake_episode_steps")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}
