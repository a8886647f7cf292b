// Package training converts a stored match dataset into the arrays consumed
// by model training.
package training

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"matchharvest/pkg/dataset"
	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Range bounds the match IDs converted. A zero bound leaves that side open.
type Range struct {
	StartMatchID int64
	EndMatchID   int64
}

// Contains reports whether id lies in the range
func (r Range) Contains(id int64) bool {
	if r.StartMatchID != 0 && id < r.StartMatchID {
		return false
	}
	if r.EndMatchID != 0 && id > r.EndMatchID {
		return false
	}
	return true
}

// Data holds parallel arrays, one entry per match
type Data struct {
	PicksRadiant [][]int `json:"picks_radiant"`
	PicksDire    [][]int `json:"picks_dire"`
	RadiantWin   []bool  `json:"radiant_win"`
	MatchIDs     []int64 `json:"match_ids"`
}

// Len returns the number of matches converted
func (d *Data) Len() int {
	return len(d.MatchIDs)
}

// Convert collects the matches of d inside r, in dataset order
func Convert(d *dataset.Dataset, r Range) *Data {
	out := &Data{
		PicksRadiant: [][]int{},
		PicksDire:    [][]int{},
		RadiantWin:   []bool{},
		MatchIDs:     []int64{},
	}
	for _, m := range d.Matches {
		if !r.Contains(m.MatchID) {
			continue
		}
		out.PicksRadiant = append(out.PicksRadiant, m.PicksRadiant)
		out.PicksDire = append(out.PicksDire, m.PicksDire)
		out.RadiantWin = append(out.RadiantWin, m.RadiantWin)
		out.MatchIDs = append(out.MatchIDs, m.MatchID)
	}
	return out
}

// Process converts the dataset in store and writes the result under key,
// overwriting it. A missing dataset is returned as an error wrapping
// errs.ErrNoDataset and nothing is written.
func Process(ctx context.Context, store *dataset.Store, backend storage.Backend, key string, r Range, log logger.Logger) (*Data, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	exists, err := store.Exists(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, errs.StageProcess, err,
			fmt.Sprintf("cannot check %s", store.Key()))
	}
	if !exists {
		return nil, errs.Wrap(errs.ErrorTypeResume, errs.StageProcess, errs.ErrNoDataset,
			fmt.Sprintf("%s not found", store.Key()))
	}
	d, err := store.Load(ctx)
	if err != nil {
		return nil, errs.WithStage(err, errs.StageProcess)
	}

	out := Convert(d, r)
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, errs.StageProcess, err, "failed to encode training data")
	}
	if err := backend.Write(ctx, key, data); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, errs.StageProcess, err, fmt.Sprintf("failed to write %s", key))
	}

	log.InfoWithFields("training data written", map[string]interface{}{
		"file":    key,
		"matches": out.Len(),
		"stored":  d.DataSize,
	})
	return out, nil
}
