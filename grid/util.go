package grid

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/zeu5/frozenlake-rl/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// TableDataSet is a state x action value table laid out for a heatmap,
// actions on the x axis and states on the y axis
type TableDataSet struct {
	Values [][]float64
}

var _ plotter.GridXYZ = &TableDataSet{}

func (t *TableDataSet) Dims() (int, int) {
	return types.ActionCount, len(t.Values)
}

func (t *TableDataSet) Z(c, r int) float64 {
	return t.Values[r][c]
}

func (t *TableDataSet) X(c int) float64 {
	return float64(c)
}

func (t *TableDataSet) Y(r int) float64 {
	return float64(r)
}

// LakeDataSet maps a per state value onto the lake cells
type LakeDataSet struct {
	Values []float64
	Size   int
}

var _ plotter.GridXYZ = &LakeDataSet{}

func (l *LakeDataSet) Dims() (int, int) {
	return l.Size, l.Size
}

// rows are flipped so that the start cell is drawn top left
func (l *LakeDataSet) Z(c, r int) float64 {
	return l.Values[(l.Size-1-r)*l.Size+c]
}

func (l *LakeDataSet) X(c int) float64 {
	return float64(c)
}

func (l *LakeDataSet) Y(r int) float64 {
	return float64(r)
}

// MaxValues is the best action value of every state
func MaxValues(table [][]float64) []float64 {
	out := make([]float64, len(table))
	for s, row := range table {
		out[s] = floats.Max(row)
	}
	return out
}

// TableTitles names the tables of an agent for display
func TableTitles(count int) []string {
	if count == 1 {
		return []string{"Q-Table"}
	}
	titles := make([]string, count)
	for i := range titles {
		titles[i] = fmt.Sprintf("Q-Table %c", 'A'+i)
	}
	return titles
}

// PlotTable draws the heatmap of one value table
func PlotTable(title string, grid plotter.GridXYZ) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	h := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	// an untouched table is flat
	if h.Max == h.Min {
		h.Max = h.Min + 1
	}
	p.Add(h)
	return p
}

// SaveTables writes one heatmap per table in savePath and returns the file paths
func SaveTables(savePath, prefix string, tables [][][]float64) ([]string, error) {
	titles := TableTitles(len(tables))
	files := make([]string, len(tables))
	for i, t := range tables {
		p := PlotTable(titles[i], &TableDataSet{Values: t})
		name := strings.ReplaceAll(strings.ToLower(titles[i]), " ", "_")
		files[i] = path.Join(savePath, prefix+"_"+name+".png")
		if err := p.Save(4*vg.Inch, 8*vg.Inch, files[i]); err != nil {
			return nil, fmt.Errorf("saving %s: %w", titles[i], err)
		}
	}
	return files, nil
}

var arrows = [types.ActionCount]string{"←", "↓", "→", "↑"}

// RenderPolicy draws the greedy move of every cell on the lake,
// holes and the goal keep their map letter
func RenderPolicy(lake Lake, table [][]float64) string {
	var b strings.Builder
	n := lake.Size()
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			state := row*n + col
			switch c := lake.Cell(state); c {
			case Hole, Goal:
				b.WriteByte(c)
			default:
				b.WriteString(arrows[floats.MaxIdx(table[state])])
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// VisitCounter counts how often each cell was entered, it listens to
// experiments recording traces
type VisitCounter struct {
	mu     sync.Mutex
	lake   Lake
	visits map[string][]int
}

var _ types.Listener = &VisitCounter{}

func NewVisitCounter(lake Lake) *VisitCounter {
	return &VisitCounter{
		lake:   lake,
		visits: make(map[string][]int),
	}
}

func (v *VisitCounter) EpisodeDone(name string, eCtx *types.EpisodeContext) {
	if eCtx.Trace == nil || !eCtx.Training {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	counts, ok := v.visits[name]
	if !ok {
		counts = make([]int, v.lake.StateCount())
		v.visits[name] = counts
	}
	for i := 0; i < eCtx.Trace.Len(); i++ {
		_, _, next, _, _ := eCtx.Trace.Get(i)
		counts[next] += 1
	}
}

func (v *VisitCounter) WinRateSampled(_ string, _ types.WinRateSample) {}

func (v *VisitCounter) Evaluated(_ string, _ float64) {}

// Visits returns a copy of the visit counts of the experiment
func (v *VisitCounter) Visits(name string) []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]int, v.lake.StateCount())
	copy(out, v.visits[name])
	return out
}

// DataSet lays the visits of the experiment out on the lake
func (v *VisitCounter) DataSet(name string) *LakeDataSet {
	visits := v.Visits(name)
	values := make([]float64, len(visits))
	for i, c := range visits {
		values[i] = float64(c)
	}
	return &LakeDataSet{Values: values, Size: v.lake.Size()}
}
