package model

// This file contains the typed model for comparison artifacts: the
// summary.json snapshot and the per-suite / per-test diff outcomes.

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gfxreport/gfxreport/registry"
)

// SummarySeparator separates suite and test in summary.json keys
// ("suite:test"). Not the same as ManifestSeparator.
const SummarySeparator = ":"

// SummaryFilename is the snapshot file the comparison step writes into
// each comparison directory.
const SummaryFilename = "summary.json"

// DiffSuffix is appended to diff image basenames by the comparison step.
const DiffSuffix = "-diff.png"

// Summary mirrors the summary.json schema written by the comparison
// step. Loaded by value; consumers receive independent copies and cannot
// mutate shared state.
type Summary struct {
	ResultIdentifier      string             `json:"result_identifier"`
	GoldenIdentifier      string             `json:"golden_identifier"`
	TestsWithoutGoldens   []string           `json:"tests_without_goldens"`
	GoldensWithoutResults []string           `json:"goldens_without_results"`
	TestsWithDifferences  map[string]float64 `json:"tests_with_differences"`
}

// LoadSummary reads and parses a summary.json file. The identifiers are
// required; a summary without them cannot be joined to a run.
func LoadSummary(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read summary: %w", err)
	}

	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return Summary{}, fmt.Errorf("failed to parse summary %s: %w", path, err)
	}
	if s.ResultIdentifier == "" || s.GoldenIdentifier == "" {
		return Summary{}, fmt.Errorf("summary %s is missing run identifiers", path)
	}
	return s, nil
}

// Save writes the summary as indented JSON, the format LoadSummary
// reads back.
func (s Summary) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// SplitSummaryName splits a "suite:test" summary key.
func SplitSummaryName(fqName string) (suite, test string) {
	suite, test, _ = strings.Cut(fqName, SummarySeparator)
	return suite, test
}

// TestCaseComparisonInfo describes one test case's diff outcome. Any of
// the three artifact URLs may be empty when the case exists on only one
// side. Distance is +Inf for cases without a counterpart; DistanceKnown
// is false when a diff artifact exists but the summary records no
// distance for it (defaulting to zero would falsely imply "identical").
type TestCaseComparisonInfo struct {
	TestName       string
	SourceImageURL string
	GoldenImageURL string
	DiffImageURL   string
	// DiffImagePath is the filesystem path of the diff artifact as
	// discovered; empty for cases without a diff image.
	DiffImagePath string
	Distance      float64
	DistanceKnown bool
}

// DistanceLabel renders the distance for display.
func (t TestCaseComparisonInfo) DistanceLabel() string {
	if !t.DistanceKnown {
		return "UNKNOWN"
	}
	if math.IsInf(t.Distance, 1) {
		return "no counterpart"
	}
	return strconv.FormatFloat(t.Distance, 'f', -1, 64)
}

// TestSuiteComparisonInfo groups diff outcomes for one test suite.
type TestSuiteComparisonInfo struct {
	SuiteName  string
	TestCases  []TestCaseComparisonInfo
	Descriptor *registry.TestSuiteDescriptor
}

// ComparisonInfo is the outcome of diffing one run's results against one
// golden set. Identifier is always the results side's full identifier;
// comparisons are never keyed by the golden.
type ComparisonInfo struct {
	Identifier RunIdentifier
	// GoldenIdentifierComponent is the base name of the comparison
	// directory the summary was discovered in.
	GoldenIdentifierComponent string
	// GoldenIdentifier is either a run label or HardwareGoldenIdentifier.
	GoldenIdentifier string
	Summary          Summary
	Results          []TestSuiteComparisonInfo
}

// IsHardwareGolden reports whether this comparison was made against the
// hardware-captured golden set.
func (c *ComparisonInfo) IsHardwareGolden() bool {
	return c.GoldenIdentifier == HardwareGoldenIdentifier
}
