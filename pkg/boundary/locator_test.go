package boundary

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/logger"
)

// stepProber classifies IDs below transition as patch 55 and the rest as 56
type stepProber struct {
	transition int64
	holes      map[int64]bool
	failOn     int64
	probed     []int64
}

func (p *stepProber) Probe(ctx context.Context, id int64) (int, bool, error) {
	p.probed = append(p.probed, id)
	if p.failOn != 0 && id == p.failOn {
		return 0, false, &errs.Error{Type: errs.ErrorTypeBoundary, Message: "responded 500", Code: 500}
	}
	if p.holes[id] {
		return 0, false, nil
	}
	if id < p.transition {
		return 55, true, nil
	}
	return 56, true, nil
}

func holes(ids ...int64) map[int64]bool {
	m := make(map[int64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestLocateWithoutHoles(t *testing.T) {
	for _, transition := range []int64{1, 2, 499, 500, 501, 999, 1000} {
		t.Run(fmt.Sprint(transition), func(t *testing.T) {
			prober := &stepProber{transition: transition}
			l := &Locator{Prober: prober, Logger: logger.NewNopLogger()}

			result, err := l.Locate(context.Background(), 1000)
			require.NoError(t, err)
			assert.Equal(t, transition, result.MatchID)
			assert.Equal(t, 56, result.Patch)
			assert.Equal(t, len(prober.probed), result.Probes)
		})
	}
}

func TestLocateStepsOverHoles(t *testing.T) {
	tests := []struct {
		name       string
		transition int64
		holes      map[int64]bool
	}{
		{"hole span ends at transition", 500, holes(496, 497, 498, 499)},
		{"hole at midpoint before transition", 700, holes(500, 501, 502)},
		{"hole at midpoint after transition", 300, holes(500, 499, 501)},
		{"hole straddles transition", 501, holes(498, 499, 500, 502, 503)},
		{"holes next to lower bound", 3, holes(1, 2)},
		{"holes next to upper bound", 999, holes(995, 996, 997, 998)},
		{"every other id missing", 640, func() map[int64]bool {
			m := map[int64]bool{}
			for id := int64(1); id < 1000; id += 2 {
				m[id] = true
			}
			delete(m, 640)
			return m
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := &stepProber{transition: tt.transition, holes: tt.holes}
			l := &Locator{Prober: prober, Logger: logger.NewNopLogger()}

			result, err := l.Locate(context.Background(), 1000)
			require.NoError(t, err)
			assert.Equal(t, tt.transition, result.MatchID)
			for _, id := range prober.probed {
				assert.True(t, id >= 0 && id <= 1000, "probe %d outside search range", id)
			}
		})
	}
}

func TestLocateRandomHoles(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const upper = 5000

	for i := 0; i < 200; i++ {
		transition := 1 + rng.Int63n(upper)
		h := map[int64]bool{}
		for id := int64(1); id < upper; id++ {
			if id != transition && rng.Float64() < 0.3 {
				h[id] = true
			}
		}

		prober := &stepProber{transition: transition, holes: h}
		l := &Locator{Prober: prober, Logger: logger.NewNopLogger()}

		result, err := l.Locate(context.Background(), upper)
		require.NoError(t, err)
		require.Equal(t, transition, result.MatchID, "run %d", i)
	}
}

func TestLocateAbortsOnUnexpectedStatus(t *testing.T) {
	prober := &stepProber{transition: 700, failOn: 500}
	l := &Locator{Prober: prober, Logger: logger.NewNopLogger()}

	result, err := l.Locate(context.Background(), 1000)
	require.Error(t, err)
	assert.Equal(t, errs.StageBoundary, errs.StageOf(err))
	assert.Equal(t, int64(0), result.MatchID)
	assert.Equal(t, 2, result.Probes)
}

func TestLocateProbeBudget(t *testing.T) {
	prober := &stepProber{transition: 700}
	l := &Locator{Prober: prober, MaxProbes: 3, Logger: logger.NewNopLogger()}

	_, err := l.Locate(context.Background(), 1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrBoundaryNotFound)
	assert.Len(t, prober.probed, 3)
}

func TestLocateUnclassifiedUpper(t *testing.T) {
	prober := &stepProber{transition: 700, holes: holes(1000)}
	l := &Locator{Prober: prober, Logger: logger.NewNopLogger()}

	_, err := l.Locate(context.Background(), 1000)
	assert.ErrorIs(t, err, errs.ErrBoundaryNotFound)
}

func TestLocateLogsProbeCount(t *testing.T) {
	log := logger.NewTestLogger()
	l := &Locator{Prober: &stepProber{transition: 700}, Logger: log}

	result, err := l.Locate(context.Background(), 1000)
	require.NoError(t, err)

	msg, ok := log.FindMessage("found first match of current patch")
	require.True(t, ok)
	assert.Equal(t, result.Probes, msg.Fields["probes"])
}
