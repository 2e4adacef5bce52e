package cli

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/gfxreport/gfxreport/compare"
	"github.com/gfxreport/gfxreport/model"
)

func (a *App) compareRun(ctx *cli.Context) error {
	resultsDir := ctx.String("results")

	goldenDir := ctx.String("golden")
	goldenID := model.HardwareGoldenIdentifier
	if goldenDir == "" {
		repoURL := ctx.String("golden-repo")
		if repoURL == "" {
			return fmt.Errorf("either --golden or --golden-repo is required")
		}
		goldenDir = ctx.String("golden-checkout")
		if err := compare.FetchHardwareGoldens(ctx.Context, a.logger, repoURL, goldenDir); err != nil {
			return err
		}
	} else {
		goldenID = model.ParseRunPath(goldenDir).Minimal().String()
	}
	if override := ctx.String("golden-id"); override != "" {
		goldenID = override
	}

	resultID := model.ParseRunPath(resultsDir).Minimal().String()
	if override := ctx.String("result-id"); override != "" {
		resultID = override
	}

	// Output lands where the comparison scanner expects it:
	// <output>/<tool>/<platform>/<gl:glsl>/<golden-dirname>/.
	outputDir := filepath.Join(
		ctx.String("output"),
		filepath.FromSlash(model.ParseLabel(resultID).MinimalPath()),
		model.LabelDirName(goldenID),
	)

	differ := compare.NewPerceptualDiffer(a.logger, ctx.String("differ"))
	engine := compare.NewEngine(a.logger, differ, ctx.Float64("threshold"))

	summary, err := engine.Compare(ctx.Context, compare.Request{
		ResultsDir:       resultsDir,
		GoldenDir:        goldenDir,
		OutputDir:        outputDir,
		ResultIdentifier: resultID,
		GoldenIdentifier: goldenID,
	})
	if err != nil {
		return err
	}

	a.logger.Info().
		Int("differences", len(summary.TestsWithDifferences)).
		Int("without_goldens", len(summary.TestsWithoutGoldens)).
		Int("without_results", len(summary.GoldensWithoutResults)).
		Msg("Comparison complete")
	return nil
}
