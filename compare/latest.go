package compare

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// LatestResultsDir picks the subdirectory of resultsDir with the
// highest emulator version. Directory names look like "xemu-0.7.131";
// everything after the last dash is the version. Directories that do
// not parse are skipped.
func LatestResultsDir(resultsDir string) (string, error) {
	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		return "", fmt.Errorf("failed to read results directory: %w", err)
	}

	var bestName string
	var bestVersion *semver.Version
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		dash := strings.LastIndex(name, "-")
		if dash < 0 {
			continue
		}
		version, err := semver.NewVersion(name[dash+1:])
		if err != nil {
			continue
		}
		if bestVersion == nil || version.GreaterThan(bestVersion) {
			bestName = name
			bestVersion = version
		}
	}

	if bestName == "" {
		return "", fmt.Errorf("no versioned result directories under %s", resultsDir)
	}
	return filepath.Join(resultsDir, bestName), nil
}
