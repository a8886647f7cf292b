package harvester

import (
	"context"
	"errors"
	"time"

	"matchharvest/pkg/boundary"
	"matchharvest/pkg/config"
	"matchharvest/pkg/crawler"
	"matchharvest/pkg/dataset"
	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/filter"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/opendota"
	"matchharvest/pkg/steam"
)

// Deps are the collaborators a Harvester drives
type Deps struct {
	Matches  MatchSource
	Locator  BoundaryLocator
	Store    *dataset.Store
	Calls    CallCounter
	Progress crawler.Progress
	Logger   logger.Logger
}

// Summary describes a finished run
type Summary struct {
	StartMatchID  int64
	EndMatchID    int64
	StartSeqNum   int64
	EndSeqNum     int64
	Resumed       bool
	Boundary      *boundary.Result
	Stats         crawler.Stats
	SteamCalls    int
	OpenDotaCalls int
	Duration      time.Duration
}

// Harvester resolves the crawl range from the configured selectors and runs
// the crawl
type Harvester struct {
	config *config.Config
	deps   Deps
	logger logger.Logger

	latest int64
}

// New creates a Harvester
func New(cfg *config.Config, deps Deps) (*Harvester, error) {
	if deps.Matches == nil {
		return nil, errors.New("harvester: match source is required")
	}
	if deps.Store == nil {
		return nil, errors.New("harvester: dataset store is required")
	}
	if deps.Locator == nil && cfg.Fetch.StartMatchID.Kind == config.SelectorAuto {
		return nil, errors.New("harvester: boundary locator is required for an automatic start")
	}
	log := deps.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	return &Harvester{
		config: cfg,
		deps:   deps,
		logger: log.WithField("component", "harvester"),
	}, nil
}

// Run resolves the start and end of the crawl, then crawls. A resumed run
// fails before any remote call when no dataset is stored.
func (h *Harvester) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	summary := Summary{}
	margin := h.config.Fetch.MaxMatchDuration

	if err := h.resolveStart(ctx, margin, &summary); err != nil {
		return h.finish(summary, started), err
	}
	if err := h.resolveEnd(ctx, margin, &summary); err != nil {
		return h.finish(summary, started), err
	}

	existing, err := h.deps.Store.Load(ctx)
	if err != nil {
		return h.finish(summary, started), errs.WithStage(err, errs.StageFetch)
	}

	rules := h.config.Rules()
	rules.MinMatchID = summary.StartMatchID
	rules.MaxMatchID = summary.EndMatchID

	h.logger.InfoWithFields("starting crawl", map[string]interface{}{
		"start_match_id": summary.StartMatchID,
		"end_match_id":   summary.EndMatchID,
		"start_seq_num":  summary.StartSeqNum,
		"end_seq_num":    summary.EndSeqNum,
		"stored":         existing.DataSize,
	})

	c := &crawler.Crawler{
		Pages:      h.deps.Matches,
		Store:      h.deps.Store,
		Pipeline:   filter.NewPipeline(rules, existing.IDSet()),
		PageSize:   h.config.Fetch.PageSize,
		FlushEvery: h.config.Fetch.FlushEvery,
		Progress:   h.deps.Progress,
		Logger:     h.logger,
	}
	summary.Stats, err = c.Crawl(ctx, summary.StartSeqNum, summary.EndSeqNum)
	summary = h.finish(summary, started)
	if err != nil {
		return summary, err
	}

	h.logger.InfoWithFields("crawl complete", map[string]interface{}{
		"accepted":       summary.Stats.Accepted,
		"data_size":      summary.Stats.FinalSize,
		"steam_calls":    summary.SteamCalls,
		"opendota_calls": summary.OpenDotaCalls,
	})
	return summary, nil
}

func (h *Harvester) resolveStart(ctx context.Context, margin int64, summary *Summary) error {
	start := h.config.Fetch.StartMatchID

	switch start.Kind {
	case config.SelectorLatest:
		seq, id, err := h.deps.Store.ResumePoint(ctx, margin)
		if err != nil {
			return err
		}
		summary.Resumed = true
		summary.StartSeqNum = seq
		summary.StartMatchID = id
		h.logger.InfoWithFields("resuming from stored dataset", map[string]interface{}{
			"store":          h.deps.Store.Key(),
			"start_seq_num":  seq,
			"start_match_id": id,
		})
		return nil

	case config.SelectorAuto:
		latest, err := h.latestMatchID(ctx)
		if err != nil {
			return errs.WithStage(err, errs.StageBoundary)
		}
		result, err := h.deps.Locator.Locate(ctx, latest)
		summary.Boundary = &result
		if err != nil {
			return errs.WithStage(err, errs.StageBoundary)
		}
		summary.StartMatchID = result.MatchID

	default:
		summary.StartMatchID = start.ID
	}

	details, err := h.deps.Matches.MatchDetails(ctx, summary.StartMatchID)
	if err != nil {
		return errs.WithStage(err, errs.StageLookup)
	}
	summary.StartSeqNum = clampSeq(details.MatchSeqNum - margin)
	return nil
}

func (h *Harvester) resolveEnd(ctx context.Context, margin int64, summary *Summary) error {
	end := h.config.Fetch.EndMatchID

	if end.Kind == config.SelectorLiteral {
		summary.EndMatchID = end.ID
	} else {
		latest, err := h.latestMatchID(ctx)
		if err != nil {
			return errs.WithStage(err, errs.StageLookup)
		}
		summary.EndMatchID = latest
	}

	details, err := h.deps.Matches.MatchDetails(ctx, summary.EndMatchID)
	if err != nil {
		return errs.WithStage(err, errs.StageLookup)
	}
	summary.EndSeqNum = details.MatchSeqNum + margin
	return nil
}

// latestMatchID asks for the newest match once per run
func (h *Harvester) latestMatchID(ctx context.Context) (int64, error) {
	if h.latest != 0 {
		return h.latest, nil
	}
	latest, err := h.deps.Matches.LatestMatchID(ctx)
	if err != nil {
		return 0, err
	}
	h.latest = latest
	return latest, nil
}

func (h *Harvester) finish(summary Summary, started time.Time) Summary {
	summary.Duration = time.Since(started)
	if h.deps.Calls != nil {
		summary.SteamCalls = h.deps.Calls.Calls(steam.Service)
		summary.OpenDotaCalls = h.deps.Calls.Calls(opendota.Service)
	}
	return summary
}

func clampSeq(seq int64) int64 {
	if seq < 0 {
		return 0
	}
	return seq
}
