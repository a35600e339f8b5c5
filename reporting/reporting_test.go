package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/frozenlake-rl/types"
)

func TestNewLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger, err := NewLogger(buf, "warn", "json")
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "episode", 3)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"episode":3`)

	_, err = NewLogger(buf, "loud", "text")
	var cErr *types.ConfigurationError
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, "log_level", cErr.Field)

	_, err = NewLogger(buf, "info", "xml")
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, "log_format", cErr.Field)
}

func TestPrintSettings(t *testing.T) {
	buf := new(bytes.Buffer)
	PrintSettings(buf, [][2]string{{"alpha", "0.1"}, {"q_learning_type", "double"}})
	assert.Equal(t, "Setting :\n\nalpha           0.1\nq_learning_type double\n\n", buf.String())

	buf.Reset()
	PrintWinRate(buf, 72.456)
	assert.Contains(t, buf.String(), "Win rate 72.46%\n")
}

func TestProgressBar(t *testing.T) {
	buf := new(bytes.Buffer)
	bar := NewProgressBar(buf, "Test", 10, 4)
	bar.Add()
	bar.Add()
	assert.False(t, bar.Done())
	assert.Contains(t, buf.String(), "Test         [.........."+"] 0 % \r")
	assert.True(t, strings.HasSuffix(buf.String(), "Test         [═════.....] 50 % \r"))

	bar.Add()
	bar.Add()
	assert.True(t, bar.Done())
	assert.True(t, strings.HasSuffix(buf.String(), "[══════════] 100 % \r\n"))

	// extra episodes do not overflow the bar
	before := buf.Len()
	bar.Add()
	assert.Equal(t, before, buf.Len())
}

func TestProgressListener(t *testing.T) {
	buf := new(bytes.Buffer)
	p := NewProgressListener(buf, 2, 1)
	p.EpisodeDone("simple", types.NewEpisodeContext(0, true, false))
	p.EpisodeDone("simple", types.NewEpisodeContext(1, true, false))
	p.EpisodeDone("simple", types.NewEpisodeContext(0, false, false))
	assert.True(t, p.train.Done())
	assert.True(t, p.test.Done())
	assert.Contains(t, buf.String(), "Training")
	assert.Contains(t, buf.String(), "Test")
}

func TestLiveView(t *testing.T) {
	buf := new(bytes.Buffer)
	v := NewLiveView(context.Background(), buf, []string{"simple", "double"}, time.Hour)
	v.Start()
	v.EpisodeDone("simple", types.NewEpisodeContext(0, true, false))
	v.WinRateSampled("simple", types.WinRateSample{Episode: 0, WinRate: 100})
	v.Evaluated("double", 40)
	v.Stop()

	out := buf.String()
	assert.Contains(t, out, "simple     episodes: 1, win rate: 100.00%")
	assert.Contains(t, out, "double     episodes: 0, win rate: 0.00%, evaluation: 40.00%")
}

type fakePublisher struct {
	channels []string
	messages [][]byte
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channels = append(f.channels, channel)
	f.messages = append(f.messages, message.([]byte))
	return redis.NewIntResult(1, nil)
}

func TestRedisPublisher(t *testing.T) {
	fake := &fakePublisher{}
	p := newRedisPublisher(context.Background(), fake, "frozenlake:progress", slog.Default())
	p.EpisodeDone("simple", types.NewEpisodeContext(0, true, false))
	p.WinRateSampled("simple", types.WinRateSample{Episode: 9, WinRate: 20})
	p.Evaluated("simple", 65)

	require.Len(t, fake.messages, 2)
	assert.Equal(t, []string{"frozenlake:progress", "frozenlake:progress"}, fake.channels)

	var e Event
	require.NoError(t, json.Unmarshal(fake.messages[0], &e))
	assert.Equal(t, Event{Experiment: "simple", Kind: SampleEvent, Episode: 9, WinRate: 20}, e)
	require.NoError(t, json.Unmarshal(fake.messages[1], &e))
	assert.Equal(t, EvaluationEvent, e.Kind)
	assert.Equal(t, 65.0, e.WinRate)
	assert.NoError(t, p.Close())
}
