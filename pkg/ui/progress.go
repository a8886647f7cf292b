package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"matchharvest/pkg/crawler"
)

const barWidth = 24

// CrawlProgress renders crawl progress on a single rewritten line
type CrawlProgress struct {
	mu      sync.Mutex
	w       io.Writer
	bar     progress.Model
	start   time.Time
	now     func() time.Time
	last    crawler.Report
	printed bool
}

// NewCrawlProgress creates a progress line writing to w. A nil w uses the
// package output; quiet mode discards it.
func NewCrawlProgress(w io.Writer) *CrawlProgress {
	if w == nil {
		mu.Lock()
		w = out
		if quiet {
			w = io.Discard
		}
		mu.Unlock()
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = barWidth
	return &CrawlProgress{w: w, bar: bar, start: time.Now(), now: time.Now}
}

// Report implements crawler.Progress
func (p *CrawlProgress) Report(r crawler.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = r
	p.printed = true
	fmt.Fprintf(p.w, "\r%s\r%s", strings.Repeat(" ", 100), p.line(r))
}

// Finish ends the progress line
func (p *CrawlProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed {
		fmt.Fprintln(p.w)
	}
}

// Last returns the most recent report
func (p *CrawlProgress) Last() crawler.Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *CrawlProgress) line(r crawler.Report) string {
	elapsed := p.now().Sub(p.start).Round(time.Second)
	return fmt.Sprintf("%s %s • seq %s • %s accepted • %d pages • %s",
		p.bar.ViewAs(r.Percent/100),
		valueStyle.Render(fmt.Sprintf("%.4f%%", r.Percent)),
		labelStyle.Render(fmt.Sprint(r.SeqNum)),
		successStyle.Render(fmt.Sprint(r.Accepted)),
		r.Pages,
		dimStyle.Render(elapsed.String()),
	)
}
