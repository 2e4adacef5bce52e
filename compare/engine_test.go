package compare

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gfxreport/gfxreport/model"
)

// fakeDiffer reports distances keyed by image basename and records a
// placeholder diff artifact the way the real tool does.
type fakeDiffer struct {
	distances map[string]float64
}

func (d *fakeDiffer) Compare(_ context.Context, imagePath, _, diffPath string) (float64, error) {
	if diffPath != "" {
		if err := os.MkdirAll(filepath.Dir(diffPath), 0o755); err != nil {
			return 0, err
		}
		if err := os.WriteFile(diffPath, []byte("diff"), 0o644); err != nil {
			return 0, err
		}
	}
	return d.distances[strings.TrimSuffix(filepath.Base(imagePath), ".png")], nil
}

func writeImageTree(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))
	}
}

func newEngineFixture(t *testing.T, threshold float64) (Request, *Engine) {
	t.Helper()

	resultsDir := t.TempDir()
	goldenDir := t.TempDir()
	writeImageTree(t, resultsDir, "Foo/Alpha.png", "Foo/Beta.png", "Foo/Extra.png")
	writeImageTree(t, goldenDir, "Foo/Alpha.png", "Foo/Beta.png", "Foo/Missing.png")

	differ := &fakeDiffer{distances: map[string]float64{"Alpha": 5, "Beta": 0}}
	engine := NewEngine(zerolog.Nop(), differ, threshold)

	return Request{
		ResultsDir:       resultsDir,
		GoldenDir:        goldenDir,
		OutputDir:        filepath.Join(t.TempDir(), "out"),
		ResultIdentifier: "xemu-1.0.0:Linux:4.0:4.00",
		GoldenIdentifier: model.HardwareGoldenIdentifier,
	}, engine
}

func TestEngineComparePartitionsCases(t *testing.T) {
	req, engine := newEngineFixture(t, 0)

	summary, err := engine.Compare(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, []string{"Foo:Extra"}, summary.TestsWithoutGoldens)
	require.Equal(t, []string{"Foo:Missing"}, summary.GoldensWithoutResults)
	require.Equal(t, map[string]float64{"Foo:Alpha": 5}, summary.TestsWithDifferences)

	// Only the above-threshold case leaves a diff image behind.
	_, err = os.Stat(filepath.Join(req.OutputDir, "Foo", "Alpha-diff.png"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(req.OutputDir, "Foo", "Beta-diff.png"))
	require.True(t, os.IsNotExist(err))

	// The written summary is what the comparison scanner will read back.
	loaded, err := model.LoadSummary(filepath.Join(req.OutputDir, "summary.json"))
	require.NoError(t, err)
	require.Equal(t, summary, loaded)
}

func TestEngineCompareIdenticalImagesAtZeroThreshold(t *testing.T) {
	req, engine := newEngineFixture(t, 0)

	summary, err := engine.Compare(context.Background(), req)
	require.NoError(t, err)

	// Distance zero is never a difference, even at threshold zero.
	require.NotContains(t, summary.TestsWithDifferences, "Foo:Beta")
}

func TestEngineCompareThresholdIsMonotonic(t *testing.T) {
	strictReq, strictEngine := newEngineFixture(t, 0)
	strict, err := strictEngine.Compare(context.Background(), strictReq)
	require.NoError(t, err)

	looseReq, looseEngine := newEngineFixture(t, 10)
	loose, err := looseEngine.Compare(context.Background(), looseReq)
	require.NoError(t, err)

	require.Empty(t, loose.TestsWithDifferences)
	for fqName := range loose.TestsWithDifferences {
		require.Contains(t, strict.TestsWithDifferences, fqName)
	}
}

func TestCollectImagesSkipsDiffArtifacts(t *testing.T) {
	root := t.TempDir()
	writeImageTree(t, root, "Foo/Alpha.png", "Foo/Alpha-diff.png", "Foo/notes.txt", "deep/nested/Skip.png")
	require.NoError(t, os.WriteFile(filepath.Join(root, "toplevel.png"), []byte("png"), 0o644))

	images, err := collectImages(root)
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"Foo:Alpha": filepath.Join(root, "Foo", "Alpha.png"),
	}, images)
}
