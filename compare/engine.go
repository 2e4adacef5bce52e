package compare

// This file contains the comparison engine: it diffs one run's artifact
// tree against a golden tree and writes the summary snapshot plus diff
// images that the scanners later join back to the run.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/gfxreport/gfxreport/model"
)

// Request describes one comparison the engine should perform.
type Request struct {
	// ResultsDir is the root of the run's artifact tree.
	ResultsDir string
	// GoldenDir is the root of the golden image tree.
	GoldenDir string
	// OutputDir receives the summary snapshot and diff images.
	OutputDir string
	// ResultIdentifier and GoldenIdentifier label the two sides in the
	// written summary.
	ResultIdentifier string
	GoldenIdentifier string
}

// Engine compares artifact trees pairwise against golden trees.
type Engine struct {
	logger    zerolog.Logger
	differ    Differ
	threshold float64
}

// NewEngine creates an engine. Cases with a distance at or below
// threshold are treated as matching and leave no trace in the output.
func NewEngine(logger zerolog.Logger, differ Differ, threshold float64) *Engine {
	return &Engine{logger: logger, differ: differ, threshold: threshold}
}

// Compare diffs every test case present in either tree and writes
// req.OutputDir. The output contains:
//   - summary.json naming both sides, the one-sided cases, and the
//     distances above threshold;
//   - a <suite>/<test>-diff.png for each case above threshold.
//
// Raising the threshold can only shrink the recorded difference set.
func (e *Engine) Compare(ctx context.Context, req Request) (model.Summary, error) {
	resultImages, err := collectImages(req.ResultsDir)
	if err != nil {
		return model.Summary{}, err
	}
	goldenImages, err := collectImages(req.GoldenDir)
	if err != nil {
		return model.Summary{}, err
	}

	summary := model.Summary{
		ResultIdentifier:     req.ResultIdentifier,
		GoldenIdentifier:     req.GoldenIdentifier,
		TestsWithDifferences: map[string]float64{},
	}

	for fqName := range resultImages {
		if _, ok := goldenImages[fqName]; !ok {
			summary.TestsWithoutGoldens = append(summary.TestsWithoutGoldens, fqName)
		}
	}
	for fqName := range goldenImages {
		if _, ok := resultImages[fqName]; !ok {
			summary.GoldensWithoutResults = append(summary.GoldensWithoutResults, fqName)
		}
	}
	sort.Strings(summary.TestsWithoutGoldens)
	sort.Strings(summary.GoldensWithoutResults)

	shared := make([]string, 0, len(resultImages))
	for fqName := range resultImages {
		if _, ok := goldenImages[fqName]; ok {
			shared = append(shared, fqName)
		}
	}
	sort.Strings(shared)

	for _, fqName := range shared {
		if err := ctx.Err(); err != nil {
			return model.Summary{}, err
		}

		suite, test := model.SplitSummaryName(fqName)
		diffPath := filepath.Join(req.OutputDir, suite, test+model.DiffSuffix)

		distance, err := e.differ.Compare(ctx, resultImages[fqName], goldenImages[fqName], diffPath)
		if err != nil {
			return model.Summary{}, fmt.Errorf("failed to compare %s: %w", fqName, err)
		}

		if distance > e.threshold {
			summary.TestsWithDifferences[fqName] = distance
			e.logger.Info().
				Str("test", fqName).
				Float64("distance", distance).
				Msg("Difference above threshold")
		} else {
			// Matching cases leave no artifacts behind.
			if err := os.Remove(diffPath); err != nil && !os.IsNotExist(err) {
				return model.Summary{}, fmt.Errorf("failed to remove diff for matching case %s: %w", fqName, err)
			}
		}
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return model.Summary{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := summary.Save(filepath.Join(req.OutputDir, model.SummaryFilename)); err != nil {
		return model.Summary{}, err
	}
	return summary, nil
}
