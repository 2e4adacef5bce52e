package model

// This file contains the typed model for raw test run results: the
// results.json manifest, per-suite results, and run-level metadata.

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gfxreport/gfxreport/registry"
)

// ManifestSeparator separates suite and test in results.json keys
// ("suite::test"). This differs from the single-colon separator used by
// comparison summaries; the two files come from independent producers.
const ManifestSeparator = "::"

// ManifestFilename marks a run root directory.
const ManifestFilename = "results.json"

// TestDetail holds the per-test metadata recorded by the test executor.
type TestDetail struct {
	Name     string   `json:"name,omitempty"`
	Failures []string `json:"failures,omitempty"`
}

// Manifest mirrors the results.json schema written by the test executor.
// Keys are fully qualified "suite::test" names.
type Manifest struct {
	Passed map[string]TestDetail `json:"passed"`
	Failed map[string]TestDetail `json:"failed"`
	Flaky  map[string]TestDetail `json:"flaky"`
}

// LoadManifest reads and parses a results.json file.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return m, nil
}

// SplitManifestName splits a "suite::test" manifest key.
func SplitManifestName(fqName string) (suite, test string) {
	suite, test, _ = strings.Cut(fqName, ManifestSeparator)
	return suite, test
}

// RendererInfo mirrors the optional renderer.json metadata. Runs without
// the file are assumed to have used the non-accelerated backend.
type RendererInfo struct {
	Vulkan bool `json:"vulkan"`
}

// LoadRendererInfo reads renderer.json, defaulting to a non-accelerated
// backend when the file is absent.
func LoadRendererInfo(path string) (RendererInfo, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return RendererInfo{Vulkan: false}, nil
	}
	if err != nil {
		return RendererInfo{}, fmt.Errorf("failed to read renderer info: %w", err)
	}

	var info RendererInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return RendererInfo{}, fmt.Errorf("failed to parse renderer info %s: %w", path, err)
	}
	return info, nil
}

// TestResult describes a single test case's artifact within a suite.
type TestResult struct {
	Name         string
	ArtifactPath string
	ArtifactURL  string
	// Detail carries pass/flaky metadata from the manifest; nil when the
	// artifact has no manifest entry.
	Detail *TestDetail
}

// SuiteResults holds the results for one test suite within a run.
//
// A suite is only materialized on evidence: either image artifacts on
// disk or failures recorded in the manifest.
type SuiteResults struct {
	Name        string
	TestResults []TestResult
	FlakyTests  map[string]TestDetail
	FailedTests map[string]TestDetail
	Descriptor  *registry.TestSuiteDescriptor
}

// ResultsInfo holds one run's full result set. It is constructed once per
// discovered run root and never merged with another ResultsInfo.
type ResultsInfo struct {
	Identifier   RunIdentifier
	MachineInfo  []string
	RendererInfo RendererInfo
	Suites       []SuiteResults
	// Comparisons is populated during the join; empty until then, and
	// staying empty is expected for runs without golden comparisons.
	Comparisons []*ComparisonInfo
}

// MachineInfoDict parses the raw machine info lines into a key/value map.
func (r *ResultsInfo) MachineInfoDict() map[string]string {
	ret := make(map[string]string)
	for _, line := range r.MachineInfo {
		if key, value, ok := strings.Cut(line, ":"); ok {
			value = strings.TrimSpace(value)
			if value != "" {
				ret[key] = value
			}
		} else if strings.HasPrefix(line, "- VK") {
			ret[line[2:]] = line
		}
	}
	return ret
}

// LoadMachineInfo reads machine_info.txt, returning nil when absent.
func LoadMachineInfo(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read machine info: %w", err)
	}
	return strings.Split(string(data), "\n"), nil
}
