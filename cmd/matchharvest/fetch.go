package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"matchharvest/pkg/auth"
	"matchharvest/pkg/config"
	"matchharvest/pkg/crawler"
	"matchharvest/pkg/filter"
	"matchharvest/pkg/harvester"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/ui"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch matches into the dataset",
	Long: `Fetch matches from the Steam Web API and append the ones passing the filters
to the dataset.

The start of the crawl is chosen with --start:
  auto     the first match of the current patch (located through OpenDota)
  latest   resume after the matches already stored in the dataset
  <id>     a specific match ID

The end is chosen with --end: "latest" for the newest match, or a match ID.
Datasets can be stored locally or in S3 (s3://bucket/key).`,
	Example: `  # Fetch the current patch
  matchharvest fetch

  # Resume a previous run
  matchharvest fetch --start latest

  # Fetch a fixed range into S3
  matchharvest fetch --start 7400000000 --end 7400100000 --match-file s3://dota/matches.json`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	addFetchFlags(fetchCmd)
}

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-key", "", "Steam Web API key")
	cmd.Flags().String("match-file", "", "dataset location (file path or s3://bucket/key)")
	cmd.Flags().String("start", "", `start match ID, "latest" or "auto"`)
	cmd.Flags().String("end", "", `end match ID or "latest"`)
	cmd.Flags().IntSlice("game-modes", nil, "accepted game modes")
	cmd.Flags().IntSlice("lobby-types", nil, "accepted lobby types")
	cmd.Flags().Int("human-players", 0, "required number of human players")
	cmd.Flags().Duration("cooldown", 0, "wait after a transient failure")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	ui.PrintLogo()
	ui.PrintInfo("Dataset", cfg.Output.MatchFile)
	ui.PrintInfo("Range", fmt.Sprintf("%s to %s", cfg.Fetch.StartMatchID, cfg.Fetch.EndMatchID))

	progress := ui.NewCrawlProgress(nil)
	h, err := harvester.NewFromConfig(cmd.Context(), cfg, progress, log)
	if err != nil {
		return err
	}

	summary, err := h.Run(cmd.Context())
	progress.Finish()
	if summary.Boundary != nil {
		ui.PrintInfo("Patch boundary", fmt.Sprintf("match %d (patch %d, %d probes)",
			summary.Boundary.MatchID, summary.Boundary.Patch, summary.Boundary.Probes))
	}
	if err != nil {
		return err
	}

	ui.Print(summaryPanel(summary))
	ui.Print(rejectionTable(summary.Stats))
	ui.PrintSuccess(fmt.Sprintf("Fetched %d new matches", summary.Stats.Accepted))
	return nil
}

// resolveAPIKey falls back to a stored credential when no key is configured
func resolveAPIKey(cfg *config.Config) error {
	if cfg.Steam.APIKey != "" {
		return nil
	}

	manager, err := auth.NewManager("")
	if err == nil {
		if key, err := manager.APIKey(""); err == nil {
			cfg.Steam.APIKey = key
			return nil
		}
	}
	return errors.New("no Steam API key configured: run 'matchharvest auth login' or set MATCHHARVEST_STEAM_API_KEY")
}

func summaryPanel(s harvester.Summary) string {
	start := fmt.Sprintf("match %d, seq %d", s.StartMatchID, s.StartSeqNum)
	if s.Resumed {
		start += " (resumed)"
	}
	return ui.Panel("Run summary", [][2]string{
		{"Start", start},
		{"End", fmt.Sprintf("match %d, seq %d", s.EndMatchID, s.EndSeqNum)},
		{"Pages", fmt.Sprintf("%d (%d failed)", s.Stats.Pages, s.Stats.BadPages)},
		{"Accepted", fmt.Sprint(s.Stats.Accepted)},
		{"Dataset size", fmt.Sprint(s.Stats.FinalSize)},
		{"Steam calls", fmt.Sprint(s.SteamCalls)},
		{"OpenDota calls", fmt.Sprint(s.OpenDotaCalls)},
		{"Duration", s.Duration.Round(time.Second).String()},
	})
}

func rejectionTable(stats crawler.Stats) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Rejected", "Matches"})
	for _, v := range []filter.Verdict{
		filter.RejectedLobby,
		filter.RejectedMode,
		filter.RejectedRange,
		filter.RejectedPlayers,
		filter.RejectedDuplicate,
		filter.RejectedLeaver,
	} {
		t.AppendRow(table.Row{v.String(), stats.Rejected[v]})
	}
	t.SetStyle(table.StyleRounded)
	return t.Render()
}
