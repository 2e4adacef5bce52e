package report

// This file contains the HTML site writer. It walks the joined results
// structure exactly once and emits the full cross-linked page tree:
// home index, per-run overviews, per-suite result pages, and comparison
// pages for every golden a run was diffed against.

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/rs/zerolog"

	"github.com/gfxreport/gfxreport/model"
	"github.com/gfxreport/gfxreport/registry"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// SiteConfig configures a SiteWriter.
type SiteConfig struct {
	// OutputDir is the root of the generated page tree.
	OutputDir string
	// ImagesBaseURL is the public URL of the scanned results tree root.
	ImagesBaseURL string
	// HWGoldenImagesBaseURL is where hardware golden images are reachable.
	HWGoldenImagesBaseURL string
	// TestSourceBaseURL is the source browser prefix for suite sources.
	TestSourceBaseURL string
	// HWGoldenBrowserBaseURL is where the hardware golden pages live.
	HWGoldenBrowserBaseURL string
}

// SiteWriter generates HTML output suitable for static page hosting.
type SiteWriter struct {
	logger  zerolog.Logger
	cfg     SiteConfig
	results map[string]*model.ResultsInfo
	tree    Tree
	tmpl    *template.Template
}

// NewSiteWriter creates a writer over the joined results map.
func NewSiteWriter(logger zerolog.Logger, cfg SiteConfig, results map[string]*model.ResultsInfo) (*SiteWriter, error) {
	cfg.OutputDir = strings.TrimRight(cfg.OutputDir, "/")
	cfg.ImagesBaseURL = strings.TrimRight(cfg.ImagesBaseURL, "/")
	cfg.HWGoldenImagesBaseURL = strings.TrimRight(cfg.HWGoldenImagesBaseURL, "/")
	cfg.TestSourceBaseURL = strings.TrimRight(cfg.TestSourceBaseURL, "/")
	cfg.HWGoldenBrowserBaseURL = strings.TrimRight(cfg.HWGoldenBrowserBaseURL, "/")

	tmpl, err := template.New("site").Funcs(sprig.HtmlFuncMap()).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse site templates: %w", err)
	}

	return &SiteWriter{
		logger:  logger,
		cfg:     cfg,
		results: results,
		tree:    Tree{Root: cfg.OutputDir},
		tmpl:    tmpl,
	}, nil
}

// Write emits the whole page tree. Output is a deterministic function of
// the input model: runs, suites, and comparisons are visited in sorted
// order so a rebuild on unchanged input is byte-identical.
func (w *SiteWriter) Write() error {
	if err := os.MkdirAll(w.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.render("site.css.tmpl", w.tree.StylesheetPath(), stylesheetData{
		ComparisonGoldenOutlineSize: 6,
		TitleBarHeight:              40,
	}); err != nil {
		return err
	}
	if err := w.render("script.js.tmpl", w.tree.ScriptPath(), nil); err != nil {
		return err
	}
	if err := w.writeHomePage(); err != nil {
		return err
	}

	for _, root := range sortedKeys(w.results) {
		if err := w.writeRunPages(w.results[root]); err != nil {
			return fmt.Errorf("failed to write pages for %s: %w", root, err)
		}
	}
	return nil
}

func (w *SiteWriter) render(templateName, outputPath string, data any) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := w.tmpl.ExecuteTemplate(f, templateName, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", templateName, err)
	}
	w.logger.Debug().Str("page", outputPath).Msg("Wrote page")
	return nil
}

type stylesheetData struct {
	ComparisonGoldenOutlineSize int
	TitleBarHeight              int
}

// pageChrome carries the title and navigation bindings shared by every
// page.
type pageChrome struct {
	Title         string
	CSSDir        string
	JSDir         string
	HomeURL       string
	NavigateUpURL string
}

func (w *SiteWriter) chrome(title, fromDir, navigateUpURL string) pageChrome {
	return pageChrome{
		Title:         title,
		CSSDir:        Rel(fromDir, w.tree.Root),
		JSDir:         Rel(fromDir, w.tree.Root),
		HomeURL:       Rel(fromDir, w.tree.HomePage()),
		NavigateUpURL: navigateUpURL,
	}
}

type linkView struct {
	Title string
	URL   string
}

type descriptorView struct {
	Description      []string
	SourceFile       string
	SourceURL        string
	TestDescriptions map[string]string
}

func (w *SiteWriter) packDescriptor(d *registry.TestSuiteDescriptor) *descriptorView {
	if d == nil {
		return nil
	}
	return &descriptorView{
		Description:      d.Description,
		SourceFile:       d.SourceFile,
		SourceURL:        w.suiteSourceURL(d.SourceFile, d.SourceFileLine),
		TestDescriptions: d.TestDescriptions,
	}
}

func (w *SiteWriter) suiteSourceURL(sourceFile string, sourceLine int) string {
	if w.cfg.TestSourceBaseURL == "" || sourceFile == "" {
		return ""
	}
	ret := w.cfg.TestSourceBaseURL + "/" + sourceFile
	if sourceLine > 0 {
		ret += fmt.Sprintf("#L%d", sourceLine)
	}
	return ret
}

// goldenSuiteURL links to the hardware golden browser page for a suite.
func (w *SiteWriter) goldenSuiteURL(suiteName string) string {
	return w.cfg.HWGoldenBrowserBaseURL + "/" + suiteName + "/index.html"
}

// resultsImageURL resolves a "suite:test" name to the run's public
// result image.
func (w *SiteWriter) resultsImageURL(id model.RunIdentifier, fqName string) string {
	suite, test := model.SplitSummaryName(fqName)
	return strings.Join(
		[]string{w.cfg.ImagesBaseURL, model.LabelPath(id.Minimal().String()), suite, test + ".png"},
		"/")
}

// goldenImageURL resolves a "suite:test" name against a golden base URL.
func goldenImageURL(goldenBaseURL, fqName string) string {
	suite, test := model.SplitSummaryName(fqName)
	return goldenBaseURL + "/" + suite + "/" + test + ".png"
}

// goldenBaseURL returns the URL prefix of one comparison's golden
// images. Hardware goldens live directly under their own base URL while
// run goldens sit inside the shared results tree.
func (w *SiteWriter) goldenBaseURL(c *model.ComparisonInfo) string {
	if c.IsHardwareGolden() {
		return w.cfg.HWGoldenImagesBaseURL
	}
	return w.cfg.ImagesBaseURL + "/" + model.LabelPath(c.GoldenIdentifier)
}

// --- home page ---

type indexEntry struct {
	ResultsURL string
	Machine    model.PrettyMachineInfo
}

type indexRenderer struct {
	Renderer string
	Entries  []indexEntry
}

type indexPlatform struct {
	Platform  string
	Renderers []indexRenderer
}

type indexGroup struct {
	ToolVersion string
	Platforms   []indexPlatform
}

type indexData struct {
	pageChrome
	Groups []indexGroup
}

// writeHomePage emits the aggregation page linking every discovered
// (tool version, platform, renderer) combination.
func (w *SiteWriter) writeHomePage() error {
	grouped := map[string]map[string]map[string][]indexEntry{}

	for _, root := range sortedKeys(w.results) {
		run := w.results[root]
		machine := run.PrettyInfo()
		entry := indexEntry{
			ResultsURL: strings.Join([]string{ResultsSubdir, run.Identifier.MinimalPath(), "index.html"}, "/"),
			Machine:    machine,
		}

		tool := run.Identifier.ToolVersion
		if grouped[tool] == nil {
			grouped[tool] = map[string]map[string][]indexEntry{}
		}
		if grouped[tool][machine.Platform] == nil {
			grouped[tool][machine.Platform] = map[string][]indexEntry{}
		}
		grouped[tool][machine.Platform][machine.Renderer] = append(grouped[tool][machine.Platform][machine.Renderer], entry)
	}

	data := indexData{pageChrome: w.chrome("Results", w.tree.Root, "")}
	for _, tool := range sortedKeys(grouped) {
		group := indexGroup{ToolVersion: tool}
		for _, platform := range sortedKeys(grouped[tool]) {
			p := indexPlatform{Platform: platform}
			for _, renderer := range sortedKeys(grouped[tool][platform]) {
				p.Renderers = append(p.Renderers, indexRenderer{
					Renderer: renderer,
					Entries:  grouped[tool][platform][renderer],
				})
			}
			group.Platforms = append(group.Platforms, p)
		}
		data.Groups = append(data.Groups, group)
	}

	return w.render("index.html.tmpl", w.tree.HomePage(), data)
}

// --- run pages ---

type failureEntry struct {
	Name     string
	Failures []string
}

type runComparisonView struct {
	GoldenIdentifier string
	GoldenTitle      string
	ComparisonURL    string
	Suites           []linkView
	MissingTests     []linkView
	ExtraTests       []linkView
}

type runPageData struct {
	pageChrome
	Identifier  model.RunIdentifier
	Machine     model.PrettyMachineInfo
	MachineInfo []string
	Suites      []linkView
	FailedTests []failureEntry
	FlakyTests  []failureEntry
	Comparisons []runComparisonView
}

// writeRunPages emits the overview page for one run plus all suite and
// comparison pages below it.
func (w *SiteWriter) writeRunPages(run *model.ResultsInfo) error {
	id := run.Identifier
	runDir := w.tree.RunDir(id)

	data := runPageData{
		Identifier:  id,
		Machine:     run.PrettyInfo(),
		MachineInfo: run.MachineInfo,
	}
	data.pageChrome = w.chrome(id.Minimal().String(), runDir, Rel(runDir, w.tree.HomePage()))

	failed := map[string][]string{}
	flaky := map[string][]string{}
	for _, suite := range run.Suites {
		data.Suites = append(data.Suites, linkView{
			Title: suite.Name,
			URL:   Rel(runDir, w.tree.SuitePage(id, suite.Name)),
		})
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
	data.FailedTests = sortedFailures(failed)
	data.FlakyTests = sortedFailures(flaky)

	for _, comparison := range sortedComparisons(run.Comparisons) {
		view, err := w.writeComparisonPages(run, comparison)
		if err != nil {
			return err
		}
		data.Comparisons = append(data.Comparisons, view)
	}

	return w.render("run.html.tmpl", w.tree.RunPage(id), data)
}

func sortedFailures(m map[string][]string) []failureEntry {
	ret := make([]failureEntry, 0, len(m))
	for _, name := range sortedKeys(m) {
		ret = append(ret, failureEntry{Name: name, Failures: m[name]})
	}
	return ret
}

func sortedComparisons(comparisons []*model.ComparisonInfo) []*model.ComparisonInfo {
	ret := append([]*model.ComparisonInfo{}, comparisons...)
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].GoldenIdentifier < ret[j].GoldenIdentifier
	})
	return ret
}

// --- suite pages ---

type suiteTestView struct {
	Name        string
	URL         string
	Failures    []string
	Description string
}

type suitePageData struct {
	pageChrome
	Identifier model.RunIdentifier
	Machine    model.PrettyMachineInfo
	SuiteName  string
	Descriptor *descriptorView
	Results    []suiteTestView
}

// writeSuitePage emits the page for all test case results within one
// suite: artifact images for tests that produced output, failure
// details for those that did not.
func (w *SiteWriter) writeSuitePage(run *model.ResultsInfo, suite model.SuiteResults) error {
	id := run.Identifier

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

	descriptor := w.packDescriptor(suite.Descriptor)
	data := suitePageData{
		Identifier: id,
		Machine:    run.PrettyInfo(),
		SuiteName:  suite.Name,
		Descriptor: descriptor,
	}
	data.pageChrome = w.chrome(suite.Name, w.tree.SuiteDir(id, suite.Name), "../index.html")

	for _, name := range sortedKeys(views) {
		view := *views[name]
		if descriptor != nil {
			view.Description = descriptor.TestDescriptions[name]
		}
		data.Results = append(data.Results, view)
	}

	return w.render("suite.html.tmpl", w.tree.SuitePage(id, suite.Name), data)
}

// testName extracts the bare test name from a manifest entry.
func testName(fqName string, detail model.TestDetail) string {
	if detail.Name != "" {
		return detail.Name
	}
	_, test := model.SplitManifestName(fqName)
	return test
}

// --- comparison pages ---

type comparisonSuiteSection struct {
	SuiteName  string
	URL        string
	Descriptor *descriptorView
	TestCases  []model.TestCaseComparisonInfo
}

type comparisonPageData struct {
	pageChrome
	SourceIdentifier string
	GoldenIdentifier string
	Suites           []comparisonSuiteSection
}

type comparisonSuitePageData struct {
	pageChrome
	SourceIdentifier string
	GoldenIdentifier string
	SuiteName        string
	GoldenSuiteURL   string
	Descriptor       *descriptorView
	Results          []model.TestCaseComparisonInfo
}

// writeComparisonPages emits the overview page for one run-vs-golden
// comparison and one page per suite with diff artifacts, returning the
// view the run overview embeds.
func (w *SiteWriter) writeComparisonPages(run *model.ResultsInfo, comparison *model.ComparisonInfo) (runComparisonView, error) {
	id := run.Identifier
	goldenID := comparison.GoldenIdentifier
	runDir := w.tree.RunDir(id)
	comparisonDir := w.tree.ComparisonDir(id, goldenID)
	goldenBaseURL := w.goldenBaseURL(comparison)

	suiteCases := w.reconciledCases(comparison, goldenBaseURL)

	navigateUp := Rel(comparisonDir, w.tree.RunPage(id)) + "#" + goldenID

	view := runComparisonView{
		GoldenIdentifier: goldenID,
		GoldenTitle:      strings.ReplaceAll(goldenID, ":", " "),
		ComparisonURL:    Rel(runDir, w.tree.ComparisonPage(id, goldenID)),
	}

	data := comparisonPageData{
		SourceIdentifier: comparison.Summary.ResultIdentifier,
		GoldenIdentifier: goldenID,
	}
	data.pageChrome = w.chrome("Compare vs "+goldenID, comparisonDir, navigateUp)

	for _, suite := range comparison.Results {
		section := comparisonSuiteSection{
			SuiteName:  suite.SuiteName,
			URL:        Rel(comparisonDir, w.tree.ComparisonSuitePage(id, goldenID, suite.SuiteName)),
			Descriptor: w.packDescriptor(suite.Descriptor),
			TestCases:  suiteCases[suite.SuiteName],
		}
		data.Suites = append(data.Suites, section)

		view.Suites = append(view.Suites, linkView{
			Title: suite.SuiteName,
			URL:   Rel(runDir, w.tree.ComparisonSuitePage(id, goldenID, suite.SuiteName)),
		})

		suiteData := comparisonSuitePageData{
			SourceIdentifier: comparison.Summary.ResultIdentifier,
			GoldenIdentifier: comparison.GoldenIdentifier,
			SuiteName:        suite.SuiteName,
			GoldenSuiteURL:   w.goldenSuiteURL(suite.SuiteName),
			Descriptor:       w.packDescriptor(suite.Descriptor),
			Results:          suiteCases[suite.SuiteName],
		}
		suiteData.pageChrome = w.chrome(suite.SuiteName+" vs "+goldenID, comparisonDir, navigateUp)

		if err := w.render("comparison_suite.html.tmpl", w.tree.ComparisonSuitePage(id, goldenID, suite.SuiteName), suiteData); err != nil {
			return runComparisonView{}, err
		}
	}

	for _, fqName := range sortedStrings(comparison.Summary.GoldensWithoutResults) {
		view.MissingTests = append(view.MissingTests, linkView{
			Title: strings.ReplaceAll(fqName, ":", " :: "),
			URL:   goldenImageURL(goldenBaseURL, fqName),
		})
	}
	for _, fqName := range sortedStrings(comparison.Summary.TestsWithoutGoldens) {
		view.ExtraTests = append(view.ExtraTests, linkView{
			Title: strings.ReplaceAll(fqName, ":", " "),
			URL:   w.resultsImageURL(id, fqName),
		})
	}

	if err := w.render("comparison.html.tmpl", w.tree.ComparisonPage(id, goldenID), data); err != nil {
		return runComparisonView{}, err
	}
	return view, nil
}

// reconciledCases merges the three diff populations for one comparison
// into per-suite case lists:
//   - present in both sides with distance above threshold: full diff
//     entry discovered by the scanner;
//   - present in results only: "without golden", distance +Inf;
//   - present in golden only: "without results", distance +Inf.
//
// Cases below the threshold never produced an upstream artifact and are
// omitted entirely. The populations are mutually exclusive per test.
func (w *SiteWriter) reconciledCases(comparison *model.ComparisonInfo, goldenBaseURL string) map[string][]model.TestCaseComparisonInfo {
	ret := map[string][]model.TestCaseComparisonInfo{}
	for _, suite := range comparison.Results {
		ret[suite.SuiteName] = append([]model.TestCaseComparisonInfo{}, suite.TestCases...)
	}

	for _, fqName := range comparison.Summary.GoldensWithoutResults {
		suiteName, test := model.SplitSummaryName(fqName)
		ret[suiteName] = append(ret[suiteName], model.TestCaseComparisonInfo{
			TestName:       test,
			GoldenImageURL: goldenImageURL(goldenBaseURL, fqName),
			Distance:       math.Inf(1),
			DistanceKnown:  true,
		})
	}

	for _, fqName := range comparison.Summary.TestsWithoutGoldens {
		suiteName, test := model.SplitSummaryName(fqName)
		ret[suiteName] = append(ret[suiteName], model.TestCaseComparisonInfo{
			TestName:       test,
			SourceImageURL: w.resultsImageURL(comparison.Identifier, fqName),
			Distance:       math.Inf(1),
			DistanceKnown:  true,
		})
	}

	for suiteName := range ret {
		cases := ret[suiteName]
		sort.Slice(cases, func(i, j int) bool { return cases[i].TestName < cases[j].TestName })
	}
	return ret
}

// --- helpers ---

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedStrings(in []string) []string {
	ret := append([]string{}, in...)
	sort.Strings(ret)
	return ret
}
