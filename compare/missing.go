package compare

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gfxreport/gfxreport/model"
)

// FindMissingHardwareComparisons returns the runs under resultsDir that
// have no hardware golden comparison under comparisonDir yet, sorted by
// identifier. It drives backfilling after new hardware goldens land.
func FindMissingHardwareComparisons(resultsDir, comparisonDir string) ([]model.RunIdentifier, error) {
	compared := map[model.RunKey]bool{}
	err := filepath.WalkDir(comparisonDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// No comparisons at all is a valid starting state.
			if path == comparisonDir && os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || d.Name() != model.SummaryFilename {
			return nil
		}
		id := model.ParseComparisonPath(filepath.Dir(path))
		if filepath.Base(filepath.Dir(path)) == model.HardwareGoldenIdentifier {
			compared[id.Key()] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan comparison tree: %w", err)
	}

	var missing []model.RunIdentifier
	seen := map[model.RunKey]bool{}
	err = filepath.WalkDir(resultsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != model.ManifestFilename {
			return nil
		}
		id := model.ParseRunPath(filepath.Dir(path))
		key := id.Key()
		if !seen[key] && !compared[key] {
			missing = append(missing, id)
		}
		seen[key] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan results tree: %w", err)
	}

	sort.Slice(missing, func(i, j int) bool {
		return missing[i].Minimal().String() < missing[j].Minimal().String()
	})
	return missing, nil
}
