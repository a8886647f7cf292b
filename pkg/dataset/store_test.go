package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/storage"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matches.json")
	return NewStore(storage.NewFileBackend(), path, logger.NewNopLogger()), path
}

func match(id, seq int64) Match {
	return Match{
		MatchID:      id,
		MatchSeqNum:  seq,
		RadiantWin:   true,
		GameMode:     22,
		LobbyType:    7,
		PicksRadiant: []int{1, 2, 3, 4, 5},
		PicksDire:    []int{6, 7, 8, 9, 10},
	}
}

func TestLoadMissingIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	d, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, d.DataSize)
	assert.Empty(t, d.Matches)
	exists, err := store.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFlushAppends(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	size, err := store.Flush(ctx, []Match{match(100, 5000)})
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	size, err = store.Flush(ctx, []Match{match(101, 5001), match(102, 5002)})
	require.NoError(t, err)
	assert.Equal(t, 3, size)

	d, err := store.Load(ctx)
	require.NoError(t, err)
	want := &Dataset{
		DataSize: 3,
		Matches:  []Match{match(100, 5000), match(101, 5001), match(102, 5002)},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}
}

func TestFlushEmptyBatchCreatesDataset(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)

	size, err := store.Flush(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data_size": 0, "matches": []}`, string(data))
}

func TestFlushKeepsExternalAppends(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)

	require.NoError(t, os.WriteFile(path, []byte(`{"data_size": 1, "matches": [
		{"match_id": 7, "match_seq_num": 70, "radiant_win": false, "game_mode": 1,
		 "lobby_type": 0, "picks_radiant": [1], "picks_dire": [2]}]}`), 0644))

	size, err := store.Flush(ctx, []Match{match(8, 80)})
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestLoadCorruptDataset(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := store.Load(context.Background())
	assert.ErrorContains(t, err, "failed to decode dataset")
}

func TestDatasetQueries(t *testing.T) {
	d := &Dataset{Matches: []Match{match(300, 9000), match(100, 9500), match(200, 8000)}}

	seq, ok := d.GreatestSeqNum()
	require.True(t, ok)
	assert.Equal(t, int64(9500), seq)

	id, ok := d.SmallestMatchID()
	require.True(t, ok)
	assert.Equal(t, int64(100), id)

	assert.Len(t, d.IDSet(), 3)
	assert.Contains(t, d.IDSet(), int64(200))

	_, ok = Empty().GreatestSeqNum()
	assert.False(t, ok)
}

func TestResumePoint(t *testing.T) {
	ctx := context.Background()

	t.Run("margin larger than cursor clamps at zero", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, err := store.Flush(ctx, []Match{match(100, 5000)})
		require.NoError(t, err)

		startSeq, startID, err := store.ResumePoint(ctx, 18000)
		require.NoError(t, err)
		assert.Equal(t, int64(0), startSeq)
		assert.Equal(t, int64(100), startID)
	})

	t.Run("margin subtracted from greatest cursor", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, err := store.Flush(ctx, []Match{match(500, 40000), match(400, 30000)})
		require.NoError(t, err)

		startSeq, startID, err := store.ResumePoint(ctx, 18000)
		require.NoError(t, err)
		assert.Equal(t, int64(22000), startSeq)
		assert.Equal(t, int64(400), startID)
	})

	t.Run("missing dataset is a resume failure", func(t *testing.T) {
		store, _ := newTestStore(t)

		_, _, err := store.ResumePoint(ctx, 18000)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrNoDataset))
		assert.Equal(t, errs.StageResume, errs.StageOf(err))
		assert.Equal(t, errs.ErrorTypeResume, errs.TypeOf(err))
	})

	t.Run("backend failure keeps its cause", func(t *testing.T) {
		cause := errors.New("AccessDenied: 403")
		store := NewStore(unreachableBackend{err: cause}, "matches.json", logger.NewNopLogger())

		_, _, err := store.ResumePoint(ctx, 18000)
		require.Error(t, err)
		assert.True(t, errors.Is(err, cause))
		assert.False(t, errors.Is(err, errs.ErrNoDataset))
		assert.Equal(t, errs.StageResume, errs.StageOf(err))
	})
}

// unreachableBackend fails every call with err
type unreachableBackend struct {
	err error
}

func (b unreachableBackend) Read(ctx context.Context, key string) ([]byte, error) {
	return nil, b.err
}

func (b unreachableBackend) Write(ctx context.Context, key string, data []byte) error {
	return b.err
}

func (b unreachableBackend) Exists(ctx context.Context, key string) (bool, error) {
	return false, b.err
}
