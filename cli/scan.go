package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/gfxreport/gfxreport/model"
	"github.com/gfxreport/gfxreport/registry"
	"github.com/gfxreport/gfxreport/scanner"
)

// scanResults runs the scan pipeline shared by the site and wiki
// commands: fetch suite descriptors, scan the comparison tree, then
// scan the results tree and join the two.
func (a *App) scanResults(ctx *cli.Context) (map[string]*model.ResultsInfo, error) {
	resultsDir := ctx.String("results")
	descriptors := registry.NewLoader(a.logger, ctx.String("registry-url")).Load()

	comparisons := map[model.RunKey][]*model.ComparisonInfo{}
	if comparisonDir := ctx.String("comparisons"); comparisonDir != "" {
		var err error
		comparisons, err = scanner.NewComparisonScanner(a.logger, scanner.ComparisonScannerConfig{
			ComparisonDir:    comparisonDir,
			ResultsDir:       resultsDir,
			GoldenResultsDir: ctx.String("golden-results"),
			BaseURL:          ctx.String("base-url"),
			HWGoldenBaseURL:  ctx.String("hw-golden-base-url"),
		}, descriptors).Process()
		if err != nil {
			return nil, fmt.Errorf("failed to scan comparisons: %w", err)
		}
	}

	results, err := scanner.NewResultsScanner(a.logger, resultsDir, ctx.String("base-url"), comparisons, descriptors).Process()
	if err != nil {
		return nil, fmt.Errorf("failed to scan results: %w", err)
	}

	a.logger.Info().Int("runs", len(results)).Msg("Scan complete")
	return results, nil
}

// imagesBaseURL is the public URL of the results tree root, matching
// the URLs the scanners attach to individual artifacts.
func imagesBaseURL(ctx *cli.Context) string {
	parts := []string{}
	for _, part := range []string{ctx.String("base-url"), ctx.String("results")} {
		if trimmed := strings.Trim(part, "/"); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "/")
}
