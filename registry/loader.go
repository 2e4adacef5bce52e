package registry

// This file contains the loader for the external test suite registry.

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// registryDocument mirrors the registry JSON schema.
type registryDocument struct {
	TestSuites []descriptorEntry `json:"test_suites"`
}

type descriptorEntry struct {
	Suite            string            `json:"suite"`
	Class            string            `json:"class"`
	Description      []string          `json:"description"`
	SourceFile       string            `json:"source_file"`
	SourceFileLine   int               `json:"source_file_line"`
	TestDescriptions map[string]string `json:"test_descriptions"`
}

// Loader fetches test suite descriptors from a registry URL.
type Loader struct {
	logger zerolog.Logger
	url    string
	client *retryablehttp.Client
}

// NewLoader creates a Loader for the given registry URL.
func NewLoader(logger zerolog.Logger, url string) *Loader {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.HTTPClient.Timeout = 30 * time.Second
	client.Logger = nil

	return &Loader{
		logger: logger,
		url:    url,
		client: client,
	}
}

// Load fetches and parses the registry, returning descriptors keyed by
// suite name. An unreachable registry or malformed document degrades to
// an empty map rather than failing the caller; pages are simply rendered
// without descriptions.
func (l *Loader) Load() map[string]TestSuiteDescriptor {
	if l.url == "" {
		return map[string]TestSuiteDescriptor{}
	}

	doc, err := l.fetch()
	if err != nil {
		l.logger.Warn().Err(err).Str("url", l.url).Msg("Failed to load test suite registry")
		return map[string]TestSuiteDescriptor{}
	}

	descriptors := make(map[string]TestSuiteDescriptor, len(doc.TestSuites))
	for _, entry := range doc.TestSuites {
		d := TestSuiteDescriptor{
			SuiteName:        strings.ReplaceAll(entry.Suite, " ", "_"),
			ClassName:        entry.Class,
			Description:      entry.Description,
			SourceFile:       entry.SourceFile,
			SourceFileLine:   entry.SourceFileLine,
			TestDescriptions: entry.TestDescriptions,
		}
		descriptors[d.SuiteName] = d
	}

	l.logger.Debug().Int("count", len(descriptors)).Msg("Loaded test suite descriptors")
	return descriptors
}

func (l *Loader) fetch() (*registryDocument, error) {
	resp, err := l.client.Get(l.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry response: %w", err)
	}

	var doc registryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return &doc, nil
}
