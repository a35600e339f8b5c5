package types

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"strconv"

	"github.com/zeu5/frozenlake-rl/util"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// WinRateAnalyzer keeps the training trajectory of a run
type WinRateAnalyzer struct {
	trajectory []WinRateSample
}

var _ Analyzer = &WinRateAnalyzer{}

func NewWinRateAnalyzer() *WinRateAnalyzer {
	return &WinRateAnalyzer{trajectory: make([]WinRateSample, 0)}
}

func (w *WinRateAnalyzer) Analyze(_ int, result *ExperimentResult) {
	w.trajectory = append(w.trajectory, result.Trajectory...)
}

func (w *WinRateAnalyzer) DataSet() DataSet {
	out := make([]WinRateSample, len(w.trajectory))
	copy(out, w.trajectory)
	return out
}

func (w *WinRateAnalyzer) Reset() {
	w.trajectory = make([]WinRateSample, 0)
}

// WinRatePoints converts a trajectory to plottable points
func WinRatePoints(trajectory []WinRateSample) plotter.XYs {
	points := make(plotter.XYs, len(trajectory))
	for i, s := range trajectory {
		points[i] = plotter.XY{
			X: float64(s.Episode),
			Y: s.WinRate,
		}
	}
	return points
}

// PlotWinRates draws one line per trajectory on the win rate over training time chart
func PlotWinRates(names []string, trajectories [][]WinRateSample, episodes int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Win rate over training time"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Win rate (%)"
	p.Y.Min = 0
	p.Y.Max = 100
	p.X.Min = 0
	p.X.Max = float64(episodes)

	for i := 0; i < len(names); i++ {
		line, err := plotter.NewLine(WinRatePoints(trajectories[i]))
		if err != nil {
			return nil, fmt.Errorf("win rate line for %s: %w", names[i], err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(names[i], line)
	}
	return p, nil
}

// WinRatePlotter saves the win rate curves of each run as a png
func WinRatePlotter(plotPath string, episodes int) Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return func(run int, names []string, ds []DataSet) {
		trajectories := make([][]WinRateSample, len(ds))
		for i := range ds {
			trajectories[i] = ds[i].([]WinRateSample)
		}
		p, err := PlotWinRates(names, trajectories, episodes)
		if err != nil {
			slog.Error("plotting win rate", "run", run, "err", err)
			return
		}
		if err := p.Save(8*vg.Inch, 6*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_win_rate.png")); err != nil {
			slog.Error("saving win rate plot", "run", run, "err", err)
		}
	}
}

// EvaluationAnalyzer keeps the evaluation win rate of a run
type EvaluationAnalyzer struct {
	winRate float64
}

var _ Analyzer = &EvaluationAnalyzer{}

func NewEvaluationAnalyzer() *EvaluationAnalyzer {
	return &EvaluationAnalyzer{}
}

func (e *EvaluationAnalyzer) Analyze(_ int, result *ExperimentResult) {
	e.winRate = result.EvaluationWinRate
}

func (e *EvaluationAnalyzer) DataSet() DataSet {
	return e.winRate
}

func (e *EvaluationAnalyzer) Reset() {
	e.winRate = 0
}

// EvaluationComparator appends the evaluation win rates of each run to a text file
func EvaluationComparator(savePath string) Comparator {
	if _, err := os.Stat(savePath); err != nil {
		os.MkdirAll(savePath, os.ModePerm)
	}
	return func(run int, names []string, ds []DataSet) {
		lines := make([]string, len(names))
		for i, name := range names {
			lines[i] = fmt.Sprintf("run %d, experiment %s, win rate %.2f%%", run, name, ds[i].(float64))
		}
		if err := util.AppendToFile(path.Join(savePath, "evaluation.txt"), lines...); err != nil {
			slog.Error("recording evaluation", "run", run, "err", err)
		}
	}
}

// Summary aggregates the evaluation win rates of an experiment over all runs
type Summary struct {
	Name   string    `json:"name"`
	Runs   int       `json:"runs"`
	Mean   float64   `json:"mean"`
	StdDev float64   `json:"std_dev"`
	Values []float64 `json:"values"`
}

// Summarize computes the mean and standard deviation of the evaluation win
// rates per experiment, sorted by experiment name
func Summarize(results [][]*ExperimentResult) []Summary {
	values := make(map[string][]float64)
	for _, run := range results {
		for _, r := range run {
			if r == nil {
				continue
			}
			values[r.Name] = append(values[r.Name], r.EvaluationWinRate)
		}
	}

	summaries := make([]Summary, 0, len(values))
	for name, v := range values {
		s := Summary{Name: name, Runs: len(v), Values: v}
		s.Mean = stat.Mean(v, nil)
		if len(v) > 1 {
			s.StdDev = stat.StdDev(v, nil)
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries
}
