package boundary

import (
	"context"
	"fmt"

	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/logger"
)

// Prober classifies a match ID. found is false for IDs with no record.
type Prober interface {
	Probe(ctx context.Context, id int64) (patch int, found bool, err error)
}

// Result is the first match of the target patch
type Result struct {
	MatchID int64
	Patch   int
	Probes  int
}

// Locator finds the first match ID of the patch the newest match belongs to.
// Patches are non-decreasing in match ID apart from holes, IDs with no
// record, which are stepped over.
type Locator struct {
	Prober Prober
	// MaxProbes bounds the number of probes; zero means no bound
	MaxProbes int
	Logger    logger.Logger
}

// search holds the state of one Locate call
type search struct {
	*Locator
	ctx    context.Context
	probes int
}

// edge is the nearest classified ID found while stepping over a hole
type edge struct {
	id          int64
	belowTarget bool
}

// Locate binary searches [0, upper] for the smallest ID classified with the
// patch of upper.
func (l *Locator) Locate(ctx context.Context, upper int64) (Result, error) {
	log := l.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	s := &search{Locator: l, ctx: ctx}

	target, found, err := s.probe(upper)
	if err != nil {
		return Result{Probes: s.probes}, err
	}
	if !found {
		return Result{Probes: s.probes}, errs.Wrap(errs.ErrorTypeBoundary, errs.StageBoundary, errs.ErrBoundaryNotFound,
			fmt.Sprintf("newest match %d is not classified", upper))
	}

	lower := int64(0)
	for upper-lower > 1 {
		mid := lower + (upper-lower)/2

		patch, found, err := s.probe(mid)
		if err != nil {
			return Result{Probes: s.probes}, err
		}
		if found {
			if patch < target {
				lower = mid
			} else {
				upper = mid
			}
			continue
		}

		below, err := s.edgeBelow(mid, lower, target)
		if err != nil {
			return Result{Probes: s.probes}, err
		}
		above, err := s.edgeAbove(mid, upper, target)
		if err != nil {
			return Result{Probes: s.probes}, err
		}

		log.DebugWithFields("stepped over hole", map[string]interface{}{
			"mid":   mid,
			"below": below.id,
			"above": above.id,
		})

		if above.belowTarget {
			lower = above.id
		} else if !below.belowTarget {
			upper = below.id
		} else {
			upper = above.id
			break
		}
	}

	log.InfoWithFields("found first match of current patch", map[string]interface{}{
		"match_id": upper,
		"patch":    target,
		"probes":   s.probes,
	})
	return Result{MatchID: upper, Patch: target, Probes: s.probes}, nil
}

// edgeBelow steps down from mid until a classified ID is found. Reaching
// lower, which is known to be before the target patch, stops the walk.
func (s *search) edgeBelow(mid, lower int64, target int) (edge, error) {
	for id := mid - 1; id > lower; id-- {
		patch, found, err := s.probe(id)
		if err != nil {
			return edge{}, err
		}
		if found {
			return edge{id: id, belowTarget: patch < target}, nil
		}
	}
	return edge{id: lower, belowTarget: true}, nil
}

// edgeAbove steps up from mid until a classified ID is found. Reaching upper,
// which is known to be in the target patch, stops the walk.
func (s *search) edgeAbove(mid, upper int64, target int) (edge, error) {
	for id := mid + 1; id < upper; id++ {
		patch, found, err := s.probe(id)
		if err != nil {
			return edge{}, err
		}
		if found {
			return edge{id: id, belowTarget: patch < target}, nil
		}
	}
	return edge{id: upper, belowTarget: false}, nil
}

func (s *search) probe(id int64) (int, bool, error) {
	if s.MaxProbes > 0 && s.probes >= s.MaxProbes {
		return 0, false, errs.Wrap(errs.ErrorTypeBoundary, errs.StageBoundary, errs.ErrBoundaryNotFound,
			fmt.Sprintf("probe budget of %d exhausted", s.MaxProbes))
	}
	if err := s.ctx.Err(); err != nil {
		return 0, false, err
	}

	s.probes++
	patch, found, err := s.Prober.Probe(s.ctx, id)
	if err != nil {
		return 0, false, errs.WithStage(err, errs.StageBoundary)
	}
	return patch, found, nil
}
