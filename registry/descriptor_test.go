package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	descriptors := map[string]TestSuiteDescriptor{
		"Exact_name":         {SuiteName: "Exact_name"},
		"TextureFormat":      {SuiteName: "TextureFormat"},
		"DepthBufferTests":   {SuiteName: "DepthBufferTests"},
		"CombinerTests":      {SuiteName: "CombinerTests"},
		"AmbiguousTestsName": {SuiteName: "AmbiguousTestsName"},
	}

	tests := []struct {
		name      string
		suiteName string
		want      string
	}{
		{"exact match wins", "Exact_name", "Exact_name"},
		{"camel cased reconstruction", "texture_format", "TextureFormat"},
		{"camel cased plus suffix", "depth_buffer", "DepthBufferTests"},
		{"suffix form from mixed case input", "COMBINER", "CombinerTests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Lookup(descriptors, tt.suiteName)
			require.NotNil(t, d)
			require.Equal(t, tt.want, d.SuiteName)
		})
	}

	t.Run("no match is not an error", func(t *testing.T) {
		require.Nil(t, Lookup(descriptors, "does_not_exist"))
	})

	t.Run("returned descriptor is a copy", func(t *testing.T) {
		d := Lookup(descriptors, "Exact_name")
		d.SuiteName = "mutated"
		require.Equal(t, "Exact_name", descriptors["Exact_name"].SuiteName)
	})
}

func TestCamelCase(t *testing.T) {
	require.Equal(t, "TextureFormat", camelCase("texture_format"))
	require.Equal(t, "A", camelCase("a"))
	require.Equal(t, "AB", camelCase("a__b"))
	require.Equal(t, "", camelCase(""))
}
