package report

// This file contains the wiki writer. Wiki hosting is flat, so every
// page lands directly in the output directory and page names are
// derived from run identifiers with a collision check instead of a
// directory tree.

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gfxreport/gfxreport/model"
	"github.com/gfxreport/gfxreport/registry"
)

// WikiConfig configures a WikiWriter.
type WikiConfig struct {
	// OutputDir is the wiki checkout to write pages into.
	OutputDir string
	// ImagesBaseURL is the public URL of the scanned results tree root.
	ImagesBaseURL string
	// HWGoldenImagesBaseURL is where hardware golden images are reachable.
	HWGoldenImagesBaseURL string
	// TestSourceBaseURL is the source browser prefix for suite sources.
	TestSourceBaseURL string
}

// WikiWriter generates a flat set of markdown pages from the joined
// results map.
type WikiWriter struct {
	logger  zerolog.Logger
	cfg     WikiConfig
	results map[string]*model.ResultsInfo

	// pages tracks every emitted page name so that two distinct inputs
	// collapsing to the same flat name fail the build instead of
	// silently overwriting each other.
	pages map[string]string
}

// NewWikiWriter creates a writer over the joined results map.
func NewWikiWriter(logger zerolog.Logger, cfg WikiConfig, results map[string]*model.ResultsInfo) *WikiWriter {
	cfg.OutputDir = strings.TrimRight(cfg.OutputDir, "/")
	cfg.ImagesBaseURL = strings.TrimRight(cfg.ImagesBaseURL, "/")
	cfg.HWGoldenImagesBaseURL = strings.TrimRight(cfg.HWGoldenImagesBaseURL, "/")
	cfg.TestSourceBaseURL = strings.TrimRight(cfg.TestSourceBaseURL, "/")

	return &WikiWriter{
		logger:  logger,
		cfg:     cfg,
		results: results,
		pages:   map[string]string{},
	}
}

// Write emits all wiki pages. Output is deterministic for a given
// input, matching the site writer's ordering guarantees.
func (w *WikiWriter) Write() error {
	if err := os.MkdirAll(w.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.writeHomePage(); err != nil {
		return err
	}
	for _, root := range sortedKeys(w.results) {
		if err := w.writeRunPages(w.results[root]); err != nil {
			return fmt.Errorf("failed to write wiki pages for %s: %w", root, err)
		}
	}
	return nil
}

// writePage records name and writes content to <name>.md. Reusing a
// name for a different page is an error.
func (w *WikiWriter) writePage(name, description, content string) error {
	if previous, ok := w.pages[name]; ok {
		return fmt.Errorf("wiki page name %q for %s collides with %s", name, description, previous)
	}
	w.pages[name] = description

	outputPath := filepath.Join(w.cfg.OutputDir, name+".md")
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	w.logger.Debug().Str("page", outputPath).Msg("Wrote page")
	return nil
}

// --- page names ---

func runPageName(id model.RunIdentifier) string {
	return model.LabelDirName(id.Minimal().String())
}

func suitePageName(id model.RunIdentifier, suiteName string) string {
	return runPageName(id) + "__" + suiteName
}

// comparisonPageName shortens both identifiers because the combined
// flat name easily exceeds filename limits.
func comparisonPageName(id model.RunIdentifier, goldenID string) string {
	return "cmp_" + ShortName(runPageName(id)) + "_" + ShortName(model.LabelDirName(goldenID))
}

func comparisonSuitePageName(id model.RunIdentifier, goldenID, suiteName string) string {
	return comparisonPageName(id, goldenID) + "_" + suiteName
}

// escapeURL makes a raw artifact URL safe to embed in markdown.
func escapeURL(rawURL string) string {
	return strings.ReplaceAll(rawURL, " ", "%20")
}

// --- pages ---

func (w *WikiWriter) writeHomePage() error {
	grouped := map[string]map[string][]*model.ResultsInfo{}
	for _, root := range sortedKeys(w.results) {
		run := w.results[root]
		tool := run.Identifier.ToolVersion
		platform := run.PrettyInfo().Platform
		if grouped[tool] == nil {
			grouped[tool] = map[string][]*model.ResultsInfo{}
		}
		grouped[tool][platform] = append(grouped[tool][platform], run)
	}

	var page strings.Builder
	page.WriteString("# Results\n")
	for _, tool := range sortedKeys(grouped) {
		fmt.Fprintf(&page, "\n## %s\n", tool)
		for _, platform := range sortedKeys(grouped[tool]) {
			fmt.Fprintf(&page, "\n### %s\n\n", platform)
			for _, run := range grouped[tool][platform] {
				machine := run.PrettyInfo()
				title := machine.DriverLabel()
				if machine.Renderer != "" {
					title += " (" + machine.Renderer + ")"
				}
				fmt.Fprintf(&page, "- [%s](%s)\n", title, runPageName(run.Identifier))
			}
		}
	}

	return w.writePage("Home", "home page", page.String())
}

func (w *WikiWriter) writeRunPages(run *model.ResultsInfo) error {
	id := run.Identifier

	var page strings.Builder
	fmt.Fprintf(&page, "# %s\n", run.PrettyInfo().FlatName())

	if len(run.MachineInfo) > 0 {
		page.WriteString("\n## Machine\n\n")
		for _, line := range run.MachineInfo {
			fmt.Fprintf(&page, "- %s\n", line)
		}
	}

	page.WriteString("\n## Suites\n\n")
	failed := map[string][]string{}
	flaky := map[string][]string{}
	for _, suite := range run.Suites {
		fmt.Fprintf(&page, "- [%s](%s)\n", suite.Name, suitePageName(id, suite.Name))
		for name, detail := range suite.FailedTests {
			failed[name] = detail.Failures
		}
		for name, detail := range suite.FlakyTests {
			flaky[name] = detail.Failures
		}

		if err := w.writeSuitePage(run, suite); err != nil {
			return err
		}
	}

	writeFailures := func(heading string, entries []failureEntry) {
		if len(entries) == 0 {
			return
		}
		fmt.Fprintf(&page, "\n## %s\n", heading)
		for _, entry := range entries {
			fmt.Fprintf(&page, "\n### %s\n", entry.Name)
			for _, failure := range entry.Failures {
				fmt.Fprintf(&page, "\n```\n%s\n```\n", failure)
			}
		}
	}
	writeFailures("Failed tests", sortedFailures(failed))
	writeFailures("Flaky tests", sortedFailures(flaky))

	for _, comparison := range sortedComparisons(run.Comparisons) {
		if err := w.writeComparisonSection(&page, run, comparison); err != nil {
			return err
		}
	}

	return w.writePage(runPageName(id), "run overview for "+id.Minimal().String(), page.String())
}

func (w *WikiWriter) writeSuitePage(run *model.ResultsInfo, suite model.SuiteResults) error {
	id := run.Identifier

	var page strings.Builder
	fmt.Fprintf(&page, "# %s: %s\n", suite.Name, id.Minimal().String())
	w.writeDescriptor(&page, suite.Descriptor)

	views := map[string]*suiteTestView{}
	for _, result := range suite.TestResults {
		views[result.Name] = &suiteTestView{Name: result.Name, URL: result.ArtifactURL}
	}
	for fqName, detail := range suite.FlakyTests {
		if view, ok := views[testName(fqName, detail)]; ok {
			view.Failures = detail.Failures
		}
	}
	for fqName, detail := range suite.FailedTests {
		name := testName(fqName, detail)
		views[name] = &suiteTestView{Name: name, Failures: detail.Failures}
	}

	for _, name := range sortedKeys(views) {
		view := views[name]
		fmt.Fprintf(&page, "\n## %s\n", view.Name)
		if suite.Descriptor != nil {
			if description := suite.Descriptor.TestDescriptions[view.Name]; description != "" {
				fmt.Fprintf(&page, "\n%s\n", description)
			}
		}
		if view.URL != "" {
			fmt.Fprintf(&page, "\n![%s](%s)\n", view.Name, escapeURL(view.URL))
		}
		for _, failure := range view.Failures {
			fmt.Fprintf(&page, "\n```\n%s\n```\n", failure)
		}
	}

	return w.writePage(suitePageName(id, suite.Name), "suite "+suite.Name+" of "+id.Minimal().String(), page.String())
}

func (w *WikiWriter) writeDescriptor(page *strings.Builder, descriptor *registry.TestSuiteDescriptor) {
	if descriptor == nil {
		return
	}
	for _, line := range descriptor.Description {
		fmt.Fprintf(page, "\n%s\n", line)
	}
	if descriptor.SourceFile == "" {
		return
	}
	if w.cfg.TestSourceBaseURL != "" {
		sourceURL := w.cfg.TestSourceBaseURL + "/" + descriptor.SourceFile
		if descriptor.SourceFileLine > 0 {
			sourceURL += fmt.Sprintf("#L%d", descriptor.SourceFileLine)
		}
		fmt.Fprintf(page, "\nSource: [%s](%s)\n", descriptor.SourceFile, sourceURL)
	} else {
		fmt.Fprintf(page, "\nSource: %s\n", descriptor.SourceFile)
	}
}

// writeComparisonSection appends one golden's section to the run page
// and writes the per-suite comparison pages it links to.
func (w *WikiWriter) writeComparisonSection(page *strings.Builder, run *model.ResultsInfo, comparison *model.ComparisonInfo) error {
	id := run.Identifier
	goldenID := comparison.GoldenIdentifier
	goldenBaseURL := w.goldenBaseURL(comparison)

	fmt.Fprintf(page, "\n## Differences vs %s\n", strings.ReplaceAll(goldenID, ":", " "))

	if len(comparison.Results) > 0 {
		page.WriteString("\n")
		for _, suite := range comparison.Results {
			fmt.Fprintf(page, "- [%s](%s)\n", suite.SuiteName, comparisonSuitePageName(id, goldenID, suite.SuiteName))
			if err := w.writeComparisonSuitePage(run, comparison, suite); err != nil {
				return err
			}
		}
	}

	writeImageLinks := func(heading string, fqNames []string, imageURL func(string) string) {
		if len(fqNames) == 0 {
			return
		}
		fmt.Fprintf(page, "\n### %s\n\n", heading)
		for _, fqName := range sortedStrings(fqNames) {
			fmt.Fprintf(page, "- [%s](%s)\n", strings.ReplaceAll(fqName, ":", " "), escapeURL(imageURL(fqName)))
		}
	}
	writeImageLinks("Golden results without matching test output", comparison.Summary.GoldensWithoutResults, func(fqName string) string {
		return goldenImageURL(goldenBaseURL, fqName)
	})
	writeImageLinks("Test output without matching golden", comparison.Summary.TestsWithoutGoldens, func(fqName string) string {
		return w.resultsImageURL(id, fqName)
	})

	return nil
}

func (w *WikiWriter) writeComparisonSuitePage(run *model.ResultsInfo, comparison *model.ComparisonInfo, suite model.TestSuiteComparisonInfo) error {
	id := run.Identifier
	goldenID := comparison.GoldenIdentifier

	var page strings.Builder
	fmt.Fprintf(&page, "# %s: %s vs %s\n", suite.SuiteName, id.Minimal().String(), goldenID)
	w.writeDescriptor(&page, suite.Descriptor)

	cases := append([]model.TestCaseComparisonInfo{}, suite.TestCases...)
	sort.Slice(cases, func(i, j int) bool { return cases[i].TestName < cases[j].TestName })

	for _, testCase := range cases {
		fmt.Fprintf(&page, "\n## %s\n", testCase.TestName)
		fmt.Fprintf(&page, "\nDistance: %s\n", testCase.DistanceLabel())
		if testCase.SourceImageURL != "" {
			fmt.Fprintf(&page, "\nResult:\n\n![%s result](%s)\n", testCase.TestName, escapeURL(testCase.SourceImageURL))
		}
		if testCase.GoldenImageURL != "" {
			fmt.Fprintf(&page, "\nGolden:\n\n![%s golden](%s)\n", testCase.TestName, escapeURL(testCase.GoldenImageURL))
		}
		if testCase.DiffImageURL != "" {
			fmt.Fprintf(&page, "\nDiff:\n\n![%s diff](%s)\n", testCase.TestName, escapeURL(testCase.DiffImageURL))
		}
	}

	pageName := comparisonSuitePageName(id, goldenID, suite.SuiteName)
	return w.writePage(pageName, "comparison of "+suite.SuiteName+" against "+goldenID, page.String())
}

// goldenBaseURL mirrors the site writer's resolution of golden image
// locations.
func (w *WikiWriter) goldenBaseURL(c *model.ComparisonInfo) string {
	if c.IsHardwareGolden() {
		return w.cfg.HWGoldenImagesBaseURL
	}
	return w.cfg.ImagesBaseURL + "/" + model.LabelPath(c.GoldenIdentifier)
}

func (w *WikiWriter) resultsImageURL(id model.RunIdentifier, fqName string) string {
	suite, test := model.SplitSummaryName(fqName)
	return strings.Join(
		[]string{w.cfg.ImagesBaseURL, model.LabelPath(id.Minimal().String()), suite, test + ".png"},
		"/")
}
