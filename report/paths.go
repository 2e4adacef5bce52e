package report

// This file contains the output path algebra: logical report keys to
// stable output paths, relative link computation, and collapsing of
// over-long name components.

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"

	"github.com/gfxreport/gfxreport/model"
)

// ResultsSubdir and CompareSubdir partition the output tree so that page
// paths derived from run identifiers can never collide.
const (
	ResultsSubdir = "results"
	CompareSubdir = "compare"
)

// maxNameComponentLength caps filename components derived from fully
// qualified identifiers, which can be very long. Longer names switch to
// a content hash to stay inside filesystem and URL limits.
const maxNameComponentLength = 24

// ShortName collapses name to an md5 hex digest when it is too long to
// use as a filename component. The original name survives only as page
// title text.
func ShortName(name string) string {
	if len(name) < maxNameComponentLength {
		return name
	}
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}

// Rel computes the relative link from the directory fromDir to target.
// Both arguments are paths under the same output root, so a failure to
// relativize indicates a caller bug; the target is returned as-is in
// that case rather than emitting a broken link.
func Rel(fromDir, target string) string {
	rel, err := filepath.Rel(fromDir, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

// Tree maps logical report keys to absolute output paths. All paths are
// pure functions of the run's minimal identifier and the suite or golden
// name, never of insertion order, so regeneration is stable.
type Tree struct {
	Root string
}

func (t Tree) HomePage() string {
	return filepath.Join(t.Root, "index.html")
}

func (t Tree) StylesheetPath() string {
	return filepath.Join(t.Root, "site.css")
}

func (t Tree) ScriptPath() string {
	return filepath.Join(t.Root, "script.js")
}

// RunDir returns the directory holding a run's overview page.
func (t Tree) RunDir(id model.RunIdentifier) string {
	return filepath.Join(t.Root, ResultsSubdir, filepath.FromSlash(id.MinimalPath()))
}

func (t Tree) RunPage(id model.RunIdentifier) string {
	return filepath.Join(t.RunDir(id), "index.html")
}

func (t Tree) SuiteDir(id model.RunIdentifier, suiteName string) string {
	return filepath.Join(t.RunDir(id), suiteName)
}

func (t Tree) SuitePage(id model.RunIdentifier, suiteName string) string {
	return filepath.Join(t.SuiteDir(id, suiteName), "index.html")
}

// ComparisonDir returns the directory holding the pages for one
// run-vs-golden comparison. A run can be compared against several
// goldens, so the golden identifier is part of the path.
func (t Tree) ComparisonDir(id model.RunIdentifier, goldenID string) string {
	return filepath.Join(t.Root, CompareSubdir, filepath.FromSlash(id.MinimalPath()), ShortName(model.LabelDirName(goldenID)))
}

func (t Tree) ComparisonPage(id model.RunIdentifier, goldenID string) string {
	return filepath.Join(t.ComparisonDir(id, goldenID), "index.html")
}

func (t Tree) ComparisonSuitePage(id model.RunIdentifier, goldenID, suiteName string) string {
	return filepath.Join(t.ComparisonDir(id, goldenID), suiteName+".html")
}
