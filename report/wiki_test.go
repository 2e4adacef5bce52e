package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gfxreport/gfxreport/model"
)

func newWikiWriterUnderTest(t *testing.T, outputDir string, results map[string]*model.ResultsInfo) *WikiWriter {
	t.Helper()

	return NewWikiWriter(zerolog.Nop(), WikiConfig{
		OutputDir:             outputDir,
		ImagesBaseURL:         "https://img.example.com",
		HWGoldenImagesBaseURL: "https://hw.example.com",
		TestSourceBaseURL:     "https://src.example.com/tests",
	}, results)
}

func TestWikiWriterWritesPages(t *testing.T) {
	outputDir := t.TempDir()
	writer := newWikiWriterUnderTest(t, outputDir, newSiteFixture(t))
	require.NoError(t, writer.Write())

	runName := "xemu-0.7.131__Linux_5950X__4.0_NVIDIA__4.00"
	cmpName := "cmp_" + ShortName(runName) + "_Hardware_Foo"

	home, err := os.ReadFile(filepath.Join(outputDir, "Home.md"))
	require.NoError(t, err)
	require.Contains(t, string(home), "## xemu-0.7.131")
	require.Contains(t, string(home), "]("+runName+")")

	runPage, err := os.ReadFile(filepath.Join(outputDir, runName+".md"))
	require.NoError(t, err)
	require.Contains(t, string(runPage), "[Foo]("+runName+"__Foo)")
	require.Contains(t, string(runPage), "assertion failed")
	require.Contains(t, string(runPage), "https://hw.example.com/Foo/Missing.png")
	require.Contains(t, string(runPage), "https://img.example.com/xemu-0.7.131/Linux_5950X/4.0_NVIDIA/4.00/Foo/Extra.png")

	suitePage, err := os.ReadFile(filepath.Join(outputDir, runName+"__Foo.md"))
	require.NoError(t, err)
	require.Contains(t, string(suitePage), "## Alpha")
	require.Contains(t, string(suitePage), "![Alpha](https://img.example.com/xemu-0.7.131/Linux_5950X/4.0_NVIDIA/4.00/Foo/Alpha.png)")

	cmpPage, err := os.ReadFile(filepath.Join(outputDir, cmpName+".md"))
	require.NoError(t, err)
	require.Contains(t, string(cmpPage), "Distance: 1.5")
	require.Contains(t, string(cmpPage), "![Alpha diff](https://img.example.com/compare/Foo/Alpha-diff.png)")
}

func TestWikiWriterEscapesImageURLs(t *testing.T) {
	results := newSiteFixture(t)
	for _, run := range results {
		run.Suites[0].TestResults[0].ArtifactURL = "https://img.example.com/Foo/Blend Mode.png"
	}

	outputDir := t.TempDir()
	require.NoError(t, newWikiWriterUnderTest(t, outputDir, results).Write())

	suitePage, err := os.ReadFile(filepath.Join(outputDir, "xemu-0.7.131__Linux_5950X__4.0_NVIDIA__4.00__Foo.md"))
	require.NoError(t, err)
	require.Contains(t, string(suitePage), "(https://img.example.com/Foo/Blend%20Mode.png)")
}

func TestWikiWriterDetectsPageNameCollisions(t *testing.T) {
	outputDir := t.TempDir()
	writer := newWikiWriterUnderTest(t, outputDir, newSiteFixture(t))

	require.NoError(t, writer.writePage("Home", "first", "# a\n"))
	err := writer.writePage("Home", "second", "# b\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "collides")
}
