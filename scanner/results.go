package scanner

// This file contains the results scanner: discovery of results.json run
// roots and the suite directories below them, joining image artifacts
// with manifest metadata into ResultsInfo values.

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gfxreport/gfxreport/model"
	"github.com/gfxreport/gfxreport/registry"
)

// ManifestFilename marks a run root directory. The run root is the
// parent of the suite directories, one level above the image artifacts.
const ManifestFilename = model.ManifestFilename

// MachineInfoFilename is the optional raw machine description.
const MachineInfoFilename = "machine_info.txt"

// RendererInfoFilename is the optional renderer pipeline description.
const RendererInfoFilename = "renderer.json"

// ResultsScanner discovers and categorizes raw test results.
type ResultsScanner struct {
	logger      zerolog.Logger
	resultsDir  string
	baseURL     string
	comparisons map[model.RunKey][]*model.ComparisonInfo
	descriptors map[string]registry.TestSuiteDescriptor
}

// NewResultsScanner creates a scanner over the given results tree. The
// comparison index produced by a ComparisonScanner is attached to each
// run during Process; runs without comparisons get an empty list.
func NewResultsScanner(
	logger zerolog.Logger,
	resultsDir string,
	baseURL string,
	comparisons map[model.RunKey][]*model.ComparisonInfo,
	descriptors map[string]registry.TestSuiteDescriptor,
) *ResultsScanner {
	return &ResultsScanner{
		logger:      logger,
		resultsDir:  resultsDir,
		baseURL:     baseURL,
		comparisons: comparisons,
		descriptors: descriptors,
	}
}

// Process scans the results directory into ResultsInfo values keyed by
// run root path.
//
// Two distinct run roots reducing to the same minimal identifier would
// silently corrupt the report, so that is a fatal configuration error. A
// run whose manifest cannot be read is logged and skipped; the remaining
// runs are still processed.
func (s *ResultsScanner) Process() (map[string]*model.ResultsInfo, error) {
	runRoots, err := s.findRunRoots()
	if err != nil {
		return nil, err
	}

	seen := make(map[model.RunKey]string)
	ret := make(map[string]*model.ResultsInfo)

	for _, root := range runRoots {
		identifier := model.ParseRunPath(filepath.ToSlash(root))
		key := identifier.Minimal().Key()
		if previous, ok := seen[key]; ok {
			return nil, fmt.Errorf("run identifier %s claimed by both %q and %q", identifier.Minimal().Path(), previous, root)
		}
		seen[key] = root

		info, err := s.processRun(root, identifier)
		if err != nil {
			s.logger.Error().Err(err).Str("run", root).Msg("Skipping unreadable run")
			continue
		}
		ret[root] = info
	}

	return ret, nil
}

func (s *ResultsScanner) findRunRoots() ([]string, error) {
	var roots []string
	err := filepath.WalkDir(s.resultsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == ManifestFilename {
			roots = append(roots, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(roots)
	return roots, nil
}

func (s *ResultsScanner) processRun(root string, identifier model.RunIdentifier) (*model.ResultsInfo, error) {
	manifest, err := model.LoadManifest(filepath.Join(root, ManifestFilename))
	if err != nil {
		return nil, err
	}

	machineInfo, err := model.LoadMachineInfo(filepath.Join(root, MachineInfoFilename))
	if err != nil {
		s.logger.Warn().Err(err).Str("run", root).Msg("Failed to read machine info")
	}

	rendererInfo, err := model.LoadRendererInfo(filepath.Join(root, RendererInfoFilename))
	if err != nil {
		s.logger.Warn().Err(err).Str("run", root).Msg("Failed to read renderer info, assuming non-accelerated backend")
		rendererInfo = model.RendererInfo{Vulkan: false}
	}

	suites, err := s.collectSuites(root, manifest)
	if err != nil {
		return nil, err
	}

	return &model.ResultsInfo{
		Identifier:   identifier,
		MachineInfo:  machineInfo,
		RendererInfo: rendererInfo,
		Suites:       suites,
		Comparisons:  s.comparisons[identifier.Minimal().Key()],
	}, nil
}

// collectSuites walks the run root for leaf directories holding image
// artifacts and materializes one SuiteResults per suite. Suites whose
// tests failed without producing any artifact are synthesized with an
// empty test-results list so the failures still surface.
func (s *ResultsScanner) collectSuites(root string, manifest model.Manifest) ([]model.SuiteResults, error) {
	suites := make(map[string]*model.SuiteResults)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}

		leaf, images, err := leafImages(path)
		if err != nil {
			return err
		}
		if !leaf || len(images) == 0 {
			return nil
		}

		suiteName := filepath.Base(path)
		suite := s.buildSuite(path, suiteName, images, manifest)
		suites[suiteName] = suite
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.synthesizeFailedSuites(suites, manifest)

	names := make([]string, 0, len(suites))
	for name := range suites {
		names = append(names, name)
	}
	sort.Strings(names)

	ret := make([]model.SuiteResults, 0, len(names))
	for _, name := range names {
		ret = append(ret, *suites[name])
	}
	return ret, nil
}

// leafImages reports whether dir has no subdirectories, returning its
// image artifacts if so.
func leafImages(dir string) (bool, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, nil, err
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			return false, nil, nil
		}
		if strings.HasSuffix(entry.Name(), ".png") {
			images = append(images, entry.Name())
		}
	}
	sort.Strings(images)
	return true, images, nil
}

func (s *ResultsScanner) buildSuite(suiteDir, suiteName string, images []string, manifest model.Manifest) *model.SuiteResults {
	prefix := suiteName + model.ManifestSeparator

	testResults := make([]model.TestResult, 0, len(images))
	for _, image := range images {
		testName := strings.TrimSuffix(image, ".png")
		fqName := prefix + testName

		var detail *model.TestDetail
		if d, ok := manifest.Passed[fqName]; ok {
			detail = &d
		} else if d, ok := manifest.Flaky[fqName]; ok {
			detail = &d
		}

		artifactPath := filepath.Join(suiteDir, image)
		testResults = append(testResults, model.TestResult{
			Name:         testName,
			ArtifactPath: artifactPath,
			ArtifactURL:  joinURL(s.baseURL, filepath.ToSlash(artifactPath)),
			Detail:       detail,
		})
	}

	return &model.SuiteResults{
		Name:        suiteName,
		TestResults: testResults,
		FlakyTests:  filterByPrefix(manifest.Flaky, prefix),
		FailedTests: filterByPrefix(manifest.Failed, prefix),
		Descriptor:  registry.Lookup(s.descriptors, suiteName),
	}
}

// synthesizeFailedSuites materializes suites for failed tests that never
// produced an image artifact, e.g. a test that crashed before writing
// output.
func (s *ResultsScanner) synthesizeFailedSuites(suites map[string]*model.SuiteResults, manifest model.Manifest) {
	for fqName := range manifest.Failed {
		suiteName, _ := model.SplitManifestName(fqName)
		if _, ok := suites[suiteName]; ok {
			continue
		}
		suites[suiteName] = &model.SuiteResults{
			Name:        suiteName,
			FailedTests: filterByPrefix(manifest.Failed, suiteName+model.ManifestSeparator),
			FlakyTests:  map[string]model.TestDetail{},
			Descriptor:  registry.Lookup(s.descriptors, suiteName),
		}
	}
}

func filterByPrefix(m map[string]model.TestDetail, prefix string) map[string]model.TestDetail {
	ret := make(map[string]model.TestDetail)
	for name, detail := range m {
		if strings.HasPrefix(name, prefix) {
			ret[name] = detail
		}
	}
	return ret
}
