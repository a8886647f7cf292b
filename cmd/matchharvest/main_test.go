package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/steam"
	"matchharvest/pkg/steam/steamtest"
	"matchharvest/pkg/training"
	"matchharvest/pkg/ui"
)

// workspace holds a config file pointing at a local Steam server
type workspace struct {
	dir    string
	config string
	server *steamtest.Server
	out    *bytes.Buffer
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	server := steamtest.NewServer()
	t.Cleanup(server.Close)
	for i := int64(0); i < 50; i++ {
		server.AddMatches(steamtest.NewMatch(100+i, 1000+i))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`steam:
  api_key: test-key
  base_url: %s
rate_limit:
  steam_interval: 1ms
  opendota_interval: 1ms
  cooldown: 10ms
fetch:
  max_match_duration: 5
output:
  match_file: %s
  training_file: %s
  hero_file: %s
logging:
  level: error
`, server.URL,
		filepath.Join(dir, "matches.json"),
		filepath.Join(dir, "training_data.json"),
		filepath.Join(dir, "heroes.json"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out := &bytes.Buffer{}
	ui.SetOutput(out, out)
	t.Cleanup(func() { ui.SetOutput(nil, nil) })

	return &workspace{dir: dir, config: path, server: server, out: out}
}

func (w *workspace) run(t *testing.T, args ...string) error {
	t.Helper()
	w.out.Reset()
	rootCmd.SetArgs(append(args, "--config", w.config))
	return rootCmd.ExecuteContext(context.Background())
}

func TestFetchThenProcess(t *testing.T) {
	w := newWorkspace(t)

	require.NoError(t, w.run(t, "fetch", "--start", "110", "--end", "140"))
	assert.Contains(t, w.out.String(), "Fetched 31 new matches")

	require.NoError(t, w.run(t, "dataset", "info"))
	assert.Contains(t, w.out.String(), "110")

	require.NoError(t, w.run(t, "process"))
	assert.Contains(t, w.out.String(), "Wrote 31 matches")

	raw, err := os.ReadFile(filepath.Join(w.dir, "training_data.json"))
	require.NoError(t, err)
	var data training.Data
	require.NoError(t, jsoniter.Unmarshal(raw, &data))
	require.Len(t, data.MatchIDs, 31)
	assert.Equal(t, int64(110), data.MatchIDs[0])
	assert.Len(t, data.PicksRadiant[0], 5)
}

func TestProcessWithoutDataset(t *testing.T) {
	w := newWorkspace(t)

	require.NoError(t, w.run(t, "process"))
	assert.Contains(t, w.out.String(), "Nothing to process")
	_, err := os.Stat(filepath.Join(w.dir, "training_data.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestHeroes(t *testing.T) {
	w := newWorkspace(t)
	w.server.SetHeroes(
		steam.Hero{Name: "npc_dota_hero_antimage", ID: 1, LocalizedName: "Anti-Mage"},
		steam.Hero{Name: "npc_dota_hero_axe", ID: 2, LocalizedName: "Axe"},
	)

	require.NoError(t, w.run(t, "heroes"))
	assert.Contains(t, w.out.String(), "(2 heroes)")
	assert.FileExists(t, filepath.Join(w.dir, "heroes.json"))
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "cancelled",
			err:  fmt.Errorf("crawl: %w", context.Canceled),
			want: "interrupted; matches flushed before the interrupt are kept",
		},
		{
			name: "staged error",
			err:  errs.New(errs.ErrorTypeBoundary, errs.StageBoundary, "no probe succeeded"),
			want: "boundary search: boundary error: no probe succeeded",
		},
		{
			name: "wrapped staged error",
			err:  fmt.Errorf("run: %w", errs.New(errs.ErrorTypeDomain, errs.StageLookup, "Match ID not found")),
			want: "run: lookup: domain error: Match ID not found",
		},
		{
			name: "unstaged wrapper",
			err:  &errs.Error{Type: errs.ErrorTypeConfig, Stage: "config", Err: fmt.Errorf("invalid log level")},
			want: "config: config error: invalid log level",
		},
		{
			name: "plain error",
			err:  fmt.Errorf("no Steam API key configured"),
			want: "no Steam API key configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failureMessage(tt.err))
		})
	}
}
