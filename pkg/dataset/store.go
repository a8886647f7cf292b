package dataset

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store owns the durable dataset for the duration of a run
type Store struct {
	backend storage.Backend
	key     string
	logger  logger.Logger
}

// NewStore creates a store for the dataset at key
func NewStore(backend storage.Backend, key string, log logger.Logger) *Store {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{
		backend: backend,
		key:     key,
		logger:  log.WithField("dataset", key),
	}
}

// Key returns the location of the dataset
func (s *Store) Key() string {
	return s.key
}

// Exists reports whether a dataset has been stored
func (s *Store) Exists(ctx context.Context) (bool, error) {
	return s.backend.Exists(ctx, s.key)
}

// Load reads the dataset. A missing dataset loads as empty.
func (s *Store) Load(ctx context.Context) (*Dataset, error) {
	data, err := s.backend.Read(ctx, s.key)
	if errors.Is(err, storage.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return nil, err
	}

	d := Empty()
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to decode dataset %s: %w", s.key, err)
	}
	if d.Matches == nil {
		d.Matches = []Match{}
	}
	return d, nil
}

// Flush merges batch into the stored dataset: it re-reads the current
// contents, adds the batch size to data_size, appends the batch and writes the
// whole dataset back. It returns the new size.
func (s *Store) Flush(ctx context.Context, batch []Match) (int, error) {
	d, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}

	d.DataSize += len(batch)
	d.Matches = append(d.Matches, batch...)

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode dataset: %w", err)
	}
	if err := s.backend.Write(ctx, s.key, data); err != nil {
		return 0, err
	}

	s.logger.DebugWithFields("dataset flushed", map[string]interface{}{
		"flushed":   len(batch),
		"data_size": d.DataSize,
	})
	return d.DataSize, nil
}

// ResumePoint computes where a resumed crawl starts: the greatest stored
// sequence number minus margin, clamped at zero, and the smallest stored ID.
func (s *Store) ResumePoint(ctx context.Context, margin int64) (int64, int64, error) {
	exists, err := s.Exists(ctx)
	if err != nil {
		return 0, 0, errs.Wrap(errs.ErrorTypeResume, errs.StageResume, err,
			fmt.Sprintf("cannot check %s", s.key))
	}
	if !exists {
		return 0, 0, errs.Wrap(errs.ErrorTypeResume, errs.StageResume, errs.ErrNoDataset,
			fmt.Sprintf("cannot resume from %s", s.key))
	}

	d, err := s.Load(ctx)
	if err != nil {
		return 0, 0, errs.Wrap(errs.ErrorTypeResume, errs.StageResume, err, "failed to load dataset")
	}

	greatest, ok := d.GreatestSeqNum()
	if !ok {
		return 0, 0, errs.Wrap(errs.ErrorTypeResume, errs.StageResume, errs.ErrNoDataset,
			fmt.Sprintf("dataset %s has no matches", s.key))
	}
	smallest, _ := d.SmallestMatchID()

	startSeq := greatest - margin
	if startSeq < 0 {
		startSeq = 0
	}
	return startSeq, smallest, nil
}
