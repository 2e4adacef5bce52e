package registry

// This file contains the test suite descriptor model and the fuzzy
// name lookup used to associate suites discovered on disk with their
// registry metadata.

import "strings"

// TestSuiteDescriptor holds human-readable metadata for one test suite.
type TestSuiteDescriptor struct {
	SuiteName        string
	ClassName        string
	Description      []string
	SourceFile       string
	SourceFileLine   int
	TestDescriptions map[string]string
}

// Lookup attempts a permissive lookup of suiteName in descriptors.
//
// Registry keys are generally of the form "TestSuiteTests" whereas suite
// directory names tend to be "Test_suite", so an exact match is tried
// first, then a camel-cased reconstruction of the name, then the
// camel-cased name with a "Tests" suffix. Returns nil when nothing
// matches; a missing descriptor is not an error.
func Lookup(descriptors map[string]TestSuiteDescriptor, suiteName string) *TestSuiteDescriptor {
	for _, candidate := range []string{
		suiteName,
		camelCase(suiteName),
		camelCase(suiteName) + "Tests",
	} {
		if d, ok := descriptors[candidate]; ok {
			return &d
		}
	}
	return nil
}

func camelCase(name string) string {
	var b strings.Builder
	for _, element := range strings.Split(name, "_") {
		if element == "" {
			continue
		}
		b.WriteString(strings.ToUpper(element[:1]))
		b.WriteString(strings.ToLower(element[1:]))
	}
	return b.String()
}
