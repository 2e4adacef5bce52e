package cli

// This file contains the housekeeping commands that keep a results
// repository ready for report generation.

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/gfxreport/gfxreport/compare"
	"github.com/gfxreport/gfxreport/noalpha"
)

func (a *App) listMissing(ctx *cli.Context) error {
	missing, err := compare.FindMissingHardwareComparisons(ctx.String("results"), ctx.String("comparisons"))
	if err != nil {
		return err
	}

	for _, id := range missing {
		fmt.Fprintln(ctx.App.Writer, id.Minimal().String())
	}
	a.logger.Info().Int("missing", len(missing)).Msg("Missing hardware comparisons")
	return nil
}

func (a *App) stripAlpha(ctx *cli.Context) error {
	processor, err := noalpha.NewProcessor(a.logger, ctx.String("cache-dir"))
	if err != nil {
		return err
	}

	if _, err := processor.Process(ctx.Context, ctx.String("results")); err != nil {
		return fmt.Errorf("failed to strip alpha channels: %w", err)
	}
	return nil
}

func (a *App) printLatest(ctx *cli.Context) error {
	latest, err := compare.LatestResultsDir(ctx.String("results"))
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, latest)
	return nil
}
