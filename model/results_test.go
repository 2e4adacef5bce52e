package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	content := `{
  "passed": {"Foo::A": {"name": "A"}},
  "failed": {"Foo::X": {"name": "X", "failures": ["crashed before producing output"]}},
  "flaky": {"Bar::B": {"name": "B", "failures": ["intermittent"]}}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Contains(t, m.Passed, "Foo::A")
	require.Equal(t, []string{"crashed before producing output"}, m.Failed["Foo::X"].Failures)
	require.Equal(t, "B", m.Flaky["Bar::B"].Name)
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadManifest(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadManifest(bad)
	require.Error(t, err)
}

func TestSplitNamesHonorDistinctSeparators(t *testing.T) {
	suite, test := SplitManifestName("Foo::test::with_colons")
	require.Equal(t, "Foo", suite)
	require.Equal(t, "test::with_colons", test)

	suite, test = SplitSummaryName("Foo:test:with_colons")
	require.Equal(t, "Foo", suite)
	require.Equal(t, "test:with_colons", test)
}

func TestLoadRendererInfoDefaultsToNonAccelerated(t *testing.T) {
	dir := t.TempDir()

	info, err := LoadRendererInfo(filepath.Join(dir, "renderer.json"))
	require.NoError(t, err)
	require.False(t, info.Vulkan)

	path := filepath.Join(dir, "present.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"vulkan": true}`), 0o644))
	info, err = LoadRendererInfo(path)
	require.NoError(t, err)
	require.True(t, info.Vulkan)
}

func TestMachineInfoDict(t *testing.T) {
	r := &ResultsInfo{
		MachineInfo: []string{
			"CPU: AMD Ryzen 9 5950X",
			"OS_Version: Ubuntu 24.04",
			"GL_VERSION: 4.0",
			"NoValue:",
			"- VK_KHR_surface",
			"not a key value line",
		},
	}

	dict := r.MachineInfoDict()
	require.Equal(t, "AMD Ryzen 9 5950X", dict["CPU"])
	require.Equal(t, "Ubuntu 24.04", dict["OS_Version"])
	require.NotContains(t, dict, "NoValue")
	require.Equal(t, "- VK_KHR_surface", dict["VK_KHR_surface"])
}

func TestPrettyInfo(t *testing.T) {
	id := ParseRunPath("results/xemu-0.7.131/Linux_5950X/4.0_NVIDIA/4.00")

	t.Run("falls back to identifier components", func(t *testing.T) {
		r := &ResultsInfo{Identifier: id}
		pretty := r.PrettyInfo()
		require.Equal(t, "Linux_5950X", pretty.Platform)
		require.Equal(t, "4.0_NVIDIA", pretty.GL)
		require.Equal(t, "4.00", pretty.GLSL)
		require.Equal(t, "OpenGL", pretty.Renderer)
	})

	t.Run("prefers machine info", func(t *testing.T) {
		r := &ResultsInfo{
			Identifier: id,
			MachineInfo: []string{
				"CPU: Ryzen 9",
				"OS_Version: Ubuntu 24.04",
				"GL_VENDOR: NVIDIA",
				"GL_RENDERER: RTX 3080",
				"GL_VERSION: 4.0.123",
				"GL_SHADING_LANGUAGE_VERSION: 4.00 NVIDIA",
			},
			RendererInfo: RendererInfo{Vulkan: true},
		}
		pretty := r.PrettyInfo()
		require.Equal(t, "Ubuntu 24.04 - Ryzen 9", pretty.Platform)
		require.Equal(t, "NVIDIA - RTX 3080 - 4.0.123", pretty.GL)
		require.Equal(t, "4.00 NVIDIA", pretty.GLSL)
		require.Equal(t, "Vulkan", pretty.Renderer)
		require.Equal(t, "Ubuntu 24.04 - Ryzen 9 Vulkan NVIDIA - RTX 3080 - 4.0.123 4.00 NVIDIA", pretty.FlatName())
	})
}

func TestLoadSummary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.json")
	content := `{
  "result_identifier": "xemu-0.7.131:Linux_5950X:4.0_NVIDIA:4.00",
  "golden_identifier": "Hardware",
  "tests_without_goldens": ["Foo:B"],
  "goldens_without_results": ["Foo:C"],
  "tests_with_differences": {"Foo:A": 0.25}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadSummary(path)
	require.NoError(t, err)
	require.Equal(t, "Hardware", s.GoldenIdentifier)
	require.Equal(t, 0.25, s.TestsWithDifferences["Foo:A"])

	incomplete := filepath.Join(dir, "incomplete.json")
	require.NoError(t, os.WriteFile(incomplete, []byte(`{"golden_identifier": "Hardware"}`), 0o644))
	_, err = LoadSummary(incomplete)
	require.Error(t, err)
}
