package compare

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gfxreport/gfxreport/model"
)

// collectImages flattens a run's artifact tree into a map of
// "suite:test" names to image paths. Artifacts live one suite directory
// below root; diff images and files at other depths are ignored.
func collectImages(root string) (map[string]string, error) {
	images := map[string]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() || !strings.HasSuffix(name, ".png") || strings.HasSuffix(name, model.DiffSuffix) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 2 {
			return nil
		}

		suite := parts[0]
		test := strings.TrimSuffix(name, ".png")
		images[suite+model.SummarySeparator+test] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan image tree %s: %w", root, err)
	}
	return images, nil
}
