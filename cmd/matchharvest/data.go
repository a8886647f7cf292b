package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"matchharvest/pkg/dataset"
	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/harvester"
	"matchharvest/pkg/heroes"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/storage"
	"matchharvest/pkg/training"
	"matchharvest/pkg/ui"
)

// heroesCmd represents the heroes command
var heroesCmd = &cobra.Command{
	Use:   "heroes",
	Short: "Save the hero list",
	Long: `Download the Dota 2 hero list from the Steam Web API and save it to the hero
file as {"heroes": [...], "count": n}.`,
	Args: cobra.NoArgs,
	RunE: runHeroes,
}

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert the dataset into training data",
	Long: `Convert the stored matches into parallel arrays of radiant picks, dire picks,
outcomes and match IDs, and write them to the training file. The training file
is overwritten.

Use training.start_match_id and training.end_match_id in the configuration,
or --from and --to, to limit the matches converted. Zero leaves a side open.`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

// datasetCmd represents the dataset command
var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Inspect the dataset",
}

// datasetInfoCmd represents the dataset info command
var datasetInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize the stored dataset",
	Args:  cobra.NoArgs,
	RunE:  runDatasetInfo,
}

var (
	trainingFrom int64
	trainingTo   int64
)

func init() {
	rootCmd.AddCommand(heroesCmd)
	heroesCmd.Flags().String("api-key", "", "Steam Web API key")
	heroesCmd.Flags().String("language", "", "language of the localized hero names")
	heroesCmd.Flags().String("hero-file", "", "hero file location")

	rootCmd.AddCommand(processCmd)
	processCmd.Flags().String("match-file", "", "dataset location")
	processCmd.Flags().String("training-file", "", "training file location")
	processCmd.Flags().Int64Var(&trainingFrom, "from", 0, "smallest match ID to convert")
	processCmd.Flags().Int64Var(&trainingTo, "to", 0, "largest match ID to convert")

	rootCmd.AddCommand(datasetCmd)
	datasetCmd.AddCommand(datasetInfoCmd)
	datasetInfoCmd.Flags().String("match-file", "", "dataset location")
}

func runHeroes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := resolveAPIKey(cfg); err != nil {
		return err
	}
	log := logger.GetLogger()

	backend, key, err := storage.Open(cmd.Context(), cfg.Output.HeroFile, cfg.StorageOptions())
	if err != nil {
		return err
	}

	clients := harvester.NewClients(cfg, nil, log)
	file, err := heroes.Fetch(cmd.Context(), clients.Steam, backend, key, cfg.Steam.Language, log)
	if err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Hero data saved to %s (%d heroes)", cfg.Output.HeroFile, file.Count))
	return nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	r := training.Range{StartMatchID: cfg.Training.StartMatchID, EndMatchID: cfg.Training.EndMatchID}
	if cmd.Flags().Changed("from") {
		r.StartMatchID = trainingFrom
	}
	if cmd.Flags().Changed("to") {
		r.EndMatchID = trainingTo
	}

	store, err := harvester.OpenStore(cmd.Context(), cfg, cfg.Output.MatchFile, log)
	if err != nil {
		return err
	}
	backend, key, err := storage.Open(cmd.Context(), cfg.Output.TrainingFile, cfg.StorageOptions())
	if err != nil {
		return err
	}

	data, err := training.Process(cmd.Context(), store, backend, key, r, log)
	if errors.Is(err, errs.ErrNoDataset) {
		ui.PrintWarning("Nothing to process", fmt.Sprintf("%s not found", cfg.Output.MatchFile))
		return nil
	}
	if err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Wrote %d matches to %s", data.Len(), cfg.Output.TrainingFile))
	return nil
}

func runDatasetInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := harvester.OpenStore(cmd.Context(), cfg, cfg.Output.MatchFile, logger.GetLogger())
	if err != nil {
		return err
	}
	exists, err := store.Exists(cmd.Context())
	if err != nil {
		return err
	}
	if !exists {
		ui.PrintWarning("No dataset stored", cfg.Output.MatchFile)
		return nil
	}
	d, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}

	ui.Print(datasetTable(cfg.Output.MatchFile, d))
	return nil
}

func datasetTable(location string, d *dataset.Dataset) string {
	t := table.NewWriter()
	t.SetTitle(location)
	t.AppendHeader(table.Row{"Property", "Value"})
	t.AppendRow(table.Row{"Matches", d.DataSize})

	if smallest, ok := d.SmallestMatchID(); ok {
		t.AppendRow(table.Row{"Smallest match ID", smallest})
	}
	if greatest, ok := d.GreatestSeqNum(); ok {
		t.AppendRow(table.Row{"Greatest sequence number", greatest})
	}

	var radiantWins int
	modes := make(map[int]int)
	for _, m := range d.Matches {
		if m.RadiantWin {
			radiantWins++
		}
		modes[m.GameMode]++
	}
	if len(d.Matches) > 0 {
		t.AppendRow(table.Row{"Radiant win rate", fmt.Sprintf("%.2f%%", 100*float64(radiantWins)/float64(len(d.Matches)))})
	}

	gameModes := make([]int, 0, len(modes))
	for mode := range modes {
		gameModes = append(gameModes, mode)
	}
	sort.Ints(gameModes)
	for _, mode := range gameModes {
		t.AppendRow(table.Row{fmt.Sprintf("Game mode %d", mode), modes[mode]})
	}

	t.SetStyle(table.StyleRounded)
	return t.Render()
}
