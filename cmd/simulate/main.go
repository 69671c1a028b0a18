package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/xtding233/sticker-gacha/internal/gacha"
	"github.com/xtding233/sticker-gacha/internal/game"
	"github.com/xtding233/sticker-gacha/internal/logger"
)

func main() {
	var (
		configDir = flag.String("config", "configs", "config base directory")
		gameName  = flag.String("game", "stickers", "game name")
		event     = flag.String("event", "", "optional event override")
		pulls     = flag.Int("pulls", 100000, "number of pulls to simulate")
		packID    = flag.String("pack", "", "simulate in packs of this id (applies its guarantee)")
		seed      = flag.Uint64("seed", 1, "random seed")
		asJSON    = flag.Bool("json", false, "print JSON instead of a table")
	)
	flag.Parse()
	logger.InitLoggerWithWriter(logger.Config{Level: logger.LevelWarn, Format: logger.FormatText}, os.Stderr)

	if err := run(*configDir, *gameName, *event, *packID, *pulls, *seed, *asJSON); err != nil {
		slog.Error("Simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(configDir, gameName, event, packID string, pulls int, seed uint64, asJSON bool) error {
	raw, err := game.NewLoader(configDir).LoadMerged(gameName, event)
	if err != nil {
		return err
	}
	g, err := game.Build(raw)
	if err != nil {
		return err
	}

	params := gacha.SimParams{Table: g.Table, Pulls: pulls, Seed: seed}
	if packID != "" {
		pack, ok := g.Pack(packID)
		if !ok {
			return fmt.Errorf("%w: %s", game.ErrUnknownPack, packID)
		}
		params.PackSize = pack.Pulls
		params.Floor = pack.GuaranteedMinimum
	}

	res, err := gacha.Simulate(params)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Printf("game %s (%s), %d pulls, %d fallbacks\n", gameName, g.Version, res.Pulls, res.Fallbacks)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tBASE\tOBSERVED\tHITS\tPITY\tGAP MEAN\tGAP P90\tGAP P99")
	for _, t := range res.Tiers {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%d\t%d\t%.1f\t%.0f\t%.0f\n",
			t.TierID, t.Configured, t.Frequency, t.Hits, t.PityHits, t.Gap.Mean, t.Gap.P90, t.Gap.P99)
	}
	return tw.Flush()
}
