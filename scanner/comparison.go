package scanner

// This file contains the comparison scanner: discovery of summary.json
// files and the per-suite diff artifacts surrounding them, producing
// ComparisonInfo values keyed by the results side's minimal identifier.

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gfxreport/gfxreport/model"
	"github.com/gfxreport/gfxreport/registry"
)

// SummaryFilename marks a comparison-result directory.
const SummaryFilename = model.SummaryFilename

// DiffSuffix is appended to diff image basenames by the comparison step.
const DiffSuffix = model.DiffSuffix

// ComparisonScannerConfig configures a ComparisonScanner.
type ComparisonScannerConfig struct {
	// ComparisonDir is the root of the comparison artifact tree.
	ComparisonDir string
	// ResultsDir is the root the original result images live under.
	ResultsDir string
	// GoldenResultsDir overrides the root non-hardware golden images live
	// under; defaults to ResultsDir.
	GoldenResultsDir string
	// BaseURL is where the results repository is publicly reachable.
	BaseURL string
	// HWGoldenBaseURL is where the hardware golden images are reachable.
	HWGoldenBaseURL string
}

// ComparisonScanner discovers and categorizes differences between runs.
type ComparisonScanner struct {
	logger      zerolog.Logger
	cfg         ComparisonScannerConfig
	descriptors map[string]registry.TestSuiteDescriptor
}

// NewComparisonScanner creates a scanner over the given comparison tree.
func NewComparisonScanner(logger zerolog.Logger, cfg ComparisonScannerConfig, descriptors map[string]registry.TestSuiteDescriptor) *ComparisonScanner {
	if cfg.GoldenResultsDir == "" {
		cfg.GoldenResultsDir = cfg.ResultsDir
	}
	return &ComparisonScanner{
		logger:      logger,
		cfg:         cfg,
		descriptors: descriptors,
	}
}

// Process scans the comparison directory into ComparisonInfo values
// grouped by the results run's minimal identifier. A run compared against
// multiple goldens maps to multiple entries; ordering within a key is
// stable across invocations (directory order, sorted).
func (s *ComparisonScanner) Process() (map[model.RunKey][]*model.ComparisonInfo, error) {
	summaryDirs, err := s.findSummaryDirs()
	if err != nil {
		return nil, err
	}

	ret := make(map[model.RunKey][]*model.ComparisonInfo)
	for _, dir := range summaryDirs {
		summary, err := model.LoadSummary(filepath.Join(dir, SummaryFilename))
		if err != nil {
			// Fatal for this comparison only; keep processing the rest.
			s.logger.Error().Err(err).Str("dir", dir).Msg("Skipping unreadable comparison summary")
			continue
		}

		comparison := s.processComparison(dir, summary)
		ret[comparison.Identifier.Minimal().Key()] = append(ret[comparison.Identifier.Minimal().Key()], comparison)
	}

	return ret, nil
}

func (s *ComparisonScanner) findSummaryDirs() ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(s.cfg.ComparisonDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == SummaryFilename {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (s *ComparisonScanner) processComparison(dir string, summary model.Summary) *model.ComparisonInfo {
	comparison := &model.ComparisonInfo{
		Identifier:                model.ParseComparisonPath(dir),
		GoldenIdentifierComponent: filepath.Base(dir),
		GoldenIdentifier:          summary.GoldenIdentifier,
		Summary:                   summary,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to list comparison directory")
		return comparison
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		suite := s.processSuite(filepath.Join(dir, entry.Name()), entry.Name(), summary)
		if suite != nil {
			comparison.Results = append(comparison.Results, *suite)
		}
	}

	return comparison
}

func (s *ComparisonScanner) processSuite(suiteDir, suiteName string, summary model.Summary) *model.TestSuiteComparisonInfo {
	cases := s.processDiffArtifacts(suiteDir, suiteName, summary)
	if len(cases) == 0 {
		return nil
	}

	return &model.TestSuiteComparisonInfo{
		SuiteName:  suiteName,
		TestCases:  cases,
		Descriptor: registry.Lookup(s.descriptors, suiteName),
	}
}

// processDiffArtifacts resolves each diff image in suiteDir back to its
// original source and golden image locations. The original locations are
// reconstructed from the naming convention: <suite>/<test>-diff.png came
// from <resultsRoot>/<run>/<suite>/<test>.png and its golden counterpart.
func (s *ComparisonScanner) processDiffArtifacts(suiteDir, suiteName string, summary model.Summary) []model.TestCaseComparisonInfo {
	entries, err := os.ReadDir(suiteDir)
	if err != nil {
		s.logger.Warn().Err(err).Str("dir", suiteDir).Msg("Failed to list suite diff directory")
		return nil
	}

	goldenBaseURL := s.cfg.BaseURL
	goldenBasePath := joinURL(s.cfg.GoldenResultsDir, model.LabelPath(summary.GoldenIdentifier))
	if summary.GoldenIdentifier == model.HardwareGoldenIdentifier {
		goldenBaseURL = s.cfg.HWGoldenBaseURL
		goldenBasePath = ""
	}
	resultsBasePath := joinURL(s.cfg.ResultsDir, model.LabelPath(summary.ResultIdentifier))

	var ret []model.TestCaseComparisonInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, DiffSuffix) {
			continue
		}
		testName := strings.TrimSuffix(name, DiffSuffix)
		fqName := suiteName + model.SummarySeparator + testName

		distance, known := summary.TestsWithDifferences[fqName]
		if !known {
			s.logger.Debug().Str("test", fqName).Msg("Diff artifact without a recorded distance")
		}

		ret = append(ret, model.TestCaseComparisonInfo{
			TestName:       testName,
			SourceImageURL: joinURL(s.cfg.BaseURL, resultsBasePath, suiteName, testName+".png"),
			GoldenImageURL: joinURL(goldenBaseURL, goldenBasePath, suiteName, testName+".png"),
			DiffImageURL:   joinURL(s.cfg.BaseURL, filepath.ToSlash(filepath.Join(suiteDir, name))),
			DiffImagePath:  filepath.Join(suiteDir, name),
			Distance:       distance,
			DistanceKnown:  known,
		})
	}

	sort.Slice(ret, func(i, j int) bool { return ret[i].TestName < ret[j].TestName })
	return ret
}
