package syncer

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

// Progress receives per-page progress of a manual run.
type Progress interface {
	Start(total int)
	Advance(label string)
	Done()
}

type noopProgress struct{}

func (noopProgress) Start(int)      {}
func (noopProgress) Advance(string) {}
func (noopProgress) Done()          {}

// TerminalProgress draws a progress bar on a terminal, redrawing one line.
type TerminalProgress struct {
	mu    sync.Mutex
	out   io.Writer
	bar   progress.Model
	total int
	done  int
}

func NewTerminalProgress(out io.Writer) *TerminalProgress {
	return &TerminalProgress{
		out: out,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *TerminalProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.done = 0
	p.draw("")
}

func (p *TerminalProgress) Advance(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	p.draw(label)
}

func (p *TerminalProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out)
}

func (p *TerminalProgress) draw(label string) {
	percent := 1.0
	if p.total > 0 {
		percent = float64(p.done) / float64(p.total)
	}
	const maxLabel = 40
	if r := []rune(label); len(r) > maxLabel {
		label = string(r[:maxLabel-1]) + "…"
	}
	_, _ = fmt.Fprintf(p.out, "\r\033[K%s %d/%d %s", p.bar.ViewAs(percent), p.done, p.total, label)
}
