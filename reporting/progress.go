package reporting

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/zeu5/frozenlake-rl/types"
)

// ProgressBar draws "prefix [═══....] NN %" on a single terminal line
type ProgressBar struct {
	w       io.Writer
	prefix  string
	size    int
	total   int
	current int
}

func NewProgressBar(w io.Writer, prefix string, size, total int) *ProgressBar {
	return &ProgressBar{
		w:      w,
		prefix: prefix,
		size:   size,
		total:  total,
	}
}

func (p *ProgressBar) show() {
	x := p.size * p.current / p.total
	fmt.Fprintf(p.w, "%-12s [%s%s] %.0f %% \r",
		p.prefix,
		strings.Repeat("═", x),
		strings.Repeat(".", p.size-x),
		float64(p.current)*100/float64(p.total),
	)
}

// Add advances the bar by one and ends the line once it is full
func (p *ProgressBar) Add() {
	if p.total <= 0 || p.current >= p.total {
		return
	}
	if p.current == 0 {
		p.show()
	}
	p.current += 1
	p.show()
	if p.current == p.total {
		fmt.Fprintln(p.w)
	}
}

func (p *ProgressBar) Done() bool {
	return p.current >= p.total
}

// ProgressListener advances a training bar and a test bar
type ProgressListener struct {
	lock  *sync.Mutex
	train *ProgressBar
	test  *ProgressBar
}

var _ types.Listener = &ProgressListener{}

func NewProgressListener(w io.Writer, episodes, trials int) *ProgressListener {
	return &ProgressListener{
		lock:  new(sync.Mutex),
		train: NewProgressBar(w, "Training", 33, episodes),
		test:  NewProgressBar(w, "Test", 33, trials),
	}
}

func (p *ProgressListener) EpisodeDone(_ string, eCtx *types.EpisodeContext) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if eCtx.Training {
		p.train.Add()
	} else {
		p.test.Add()
	}
}

func (p *ProgressListener) WinRateSampled(_ string, _ types.WinRateSample) {}

func (p *ProgressListener) Evaluated(_ string, _ float64) {}
