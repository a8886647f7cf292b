package crawler

import (
	"context"

	"matchharvest/pkg/dataset"
	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/filter"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/steam"
)

const (
	// DefaultPageSize is the number of matches requested per page
	DefaultPageSize = steam.MaxPageSize

	// DefaultFlushEvery is the number of buffered matches that triggers a flush
	DefaultFlushEvery = 1000
)

// PageSource serves pages of matches ordered by sequence number
type PageSource interface {
	MatchPage(ctx context.Context, seqNum int64, n int) (*steam.Page, error)
}

// Report is the crawl position after a page
type Report struct {
	SeqNum   int64
	Percent  float64
	Accepted int
	Pages    int
}

// Progress receives a Report after every successful page
type Progress interface {
	Report(r Report)
}

// Stats summarizes a crawl
type Stats struct {
	Accepted   int
	Pages      int
	BadPages   int
	Rejected   map[filter.Verdict]int
	FinalSize  int
	LastSeqNum int64
}

// Crawler pages forward through match sequence numbers, filters every match
// and flushes accepted ones to the store.
type Crawler struct {
	Pages      PageSource
	Store      *dataset.Store
	Pipeline   *filter.Pipeline
	PageSize   int
	FlushEvery int
	Progress   Progress
	Logger     logger.Logger
}

// Crawl scans from startSeq until a short page comes back or the cursor
// reaches endSeq. A page reporting a failed status is skipped by advancing
// the cursor by one.
func (c *Crawler) Crawl(ctx context.Context, startSeq, endSeq int64) (Stats, error) {
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	flushEvery := c.FlushEvery
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}
	log := c.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", "crawler")

	stats := Stats{Rejected: make(map[filter.Verdict]int), LastSeqNum: startSeq}
	buffer := make([]dataset.Match, 0, flushEvery)

	flush := func() error {
		size, err := c.Store.Flush(ctx, buffer)
		if err != nil {
			return errs.WithStage(err, errs.StageFetch)
		}
		log.InfoWithFields("flushed matches", map[string]interface{}{
			"flushed":   len(buffer),
			"data_size": size,
		})
		stats.FinalSize = size
		buffer = make([]dataset.Match, 0, flushEvery)
		return nil
	}

	seq := startSeq
	for seq < endSeq {
		page, err := c.Pages.MatchPage(ctx, seq, pageSize)
		if err != nil {
			return stats, errs.WithStage(err, errs.StageFetch)
		}
		stats.Pages++

		if !page.OK() {
			stats.BadPages++
			log.WarnWithFields("page request failed, skipping sequence number", map[string]interface{}{
				"seq_num":       seq,
				"status":        page.Status,
				"status_detail": page.StatusDetail,
			})
			seq++
			stats.LastSeqNum = seq
			continue
		}

		for _, raw := range page.Matches {
			match, verdict := c.Pipeline.Evaluate(raw)
			if verdict != filter.Accepted {
				stats.Rejected[verdict]++
				continue
			}
			buffer = append(buffer, match)
			stats.Accepted++
		}

		final := len(page.Matches) < pageSize
		if n := len(page.Matches); n > 0 {
			seq = page.Matches[n-1].MatchSeqNum + 1
		}
		final = final || seq >= endSeq
		stats.LastSeqNum = seq

		if len(buffer) >= flushEvery || final {
			if err := flush(); err != nil {
				return stats, err
			}
		}

		percent := progress(startSeq, endSeq, seq)
		logger.LogCrawlProgress(log, seq, percent, stats.Accepted)
		if c.Progress != nil {
			c.Progress.Report(Report{SeqNum: seq, Percent: percent, Accepted: stats.Accepted, Pages: stats.Pages})
		}

		if final {
			return stats, nil
		}
	}

	// the cursor can step onto endSeq past a failed page with matches buffered
	if len(buffer) > 0 {
		if err := flush(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func progress(start, end, seq int64) float64 {
	if end <= start {
		return 100
	}
	percent := 100 * float64(seq-start) / float64(end-start)
	if percent > 100 {
		return 100
	}
	return percent
}
