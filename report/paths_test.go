package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gfxreport/gfxreport/model"
)

func TestShortName(t *testing.T) {
	require.Equal(t, "short", ShortName("short"))

	long := strings.Repeat("VertexShaderIndependence", 4)
	short := ShortName(long)
	require.Len(t, short, 32)
	require.NotEqual(t, long, short)
	require.Equal(t, short, ShortName(long), "shortening must be deterministic")
}

func TestRel(t *testing.T) {
	tests := []struct {
		name    string
		fromDir string
		target  string
		want    string
	}{
		{"child", "out", "out/results/index.html", "results/index.html"},
		{"sibling subtree", "out/compare/a/b/c", "out/results/a/b/c/index.html", "../../../../results/a/b/c/index.html"},
		{"up to root", "out/results/a/b/c", "out/index.html", "../../../index.html"},
		{"same dir", "out/results", "out/results/index.html", "index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Rel(tt.fromDir, tt.target))
		})
	}
}

func TestTreePaths(t *testing.T) {
	tree := Tree{Root: "out"}
	id := model.ParseRunPath("results/xemu-0.7.131/Linux_5950X/4.0_NVIDIA/4.00")

	require.Equal(t, "out/index.html", tree.HomePage())
	require.Equal(t, "out/results/xemu-0.7.131/Linux_5950X/4.0_NVIDIA:4.00/index.html", tree.RunPage(id))
	require.Equal(t, "out/results/xemu-0.7.131/Linux_5950X/4.0_NVIDIA:4.00/Foo/index.html", tree.SuitePage(id, "Foo"))
	require.Equal(t, "out/compare/xemu-0.7.131/Linux_5950X/4.0_NVIDIA:4.00/Hardware/index.html", tree.ComparisonPage(id, "Hardware"))
	require.Equal(t, "out/compare/xemu-0.7.131/Linux_5950X/4.0_NVIDIA:4.00/Hardware/Foo.html", tree.ComparisonSuitePage(id, "Hardware", "Foo"))
}

func TestTreePathsStableUnderReduction(t *testing.T) {
	tree := Tree{Root: "out"}
	full := model.ParseRunPath("archive/old/results/xemu-0.7.131/Linux_5950X/4.0_NVIDIA/4.00")

	// Output paths depend only on the minimal identifier, so differently
	// rooted discoveries of the same run land on the same pages.
	require.Equal(t, tree.RunPage(full), tree.RunPage(full.Minimal()))
	require.Equal(t, tree.ComparisonDir(full, "Hardware"), tree.ComparisonDir(full.Minimal(), "Hardware"))
}
