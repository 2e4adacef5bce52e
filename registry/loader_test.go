package registry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoaderLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
  "test_suites": [
    {
      "suite": "Texture format",
      "class": "TextureFormatTests",
      "description": ["Exercises texture formats"],
      "source_file": "src/tests/texture_format_tests.cpp",
      "source_file_line": 120,
      "test_descriptions": {"A": "Tests format A"}
    }
  ]
}`))
	}))
	defer server.Close()

	loader := NewLoader(zerolog.Nop(), server.URL)
	descriptors := loader.Load()

	require.Len(t, descriptors, 1)
	d, ok := descriptors["Texture_format"]
	require.True(t, ok, "suite names should have spaces replaced with underscores")
	require.Equal(t, "TextureFormatTests", d.ClassName)
	require.Equal(t, 120, d.SourceFileLine)
	require.Equal(t, "Tests format A", d.TestDescriptions["A"])
}

func TestLoaderDegradesGracefully(t *testing.T) {
	t.Run("empty url", func(t *testing.T) {
		require.Empty(t, NewLoader(zerolog.Nop(), "").Load())
	})

	t.Run("http error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		loader := NewLoader(zerolog.Nop(), server.URL)
		loader.client.RetryMax = 0
		require.Empty(t, loader.Load())
	})

	t.Run("malformed document", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer server.Close()

		require.Empty(t, NewLoader(zerolog.Nop(), server.URL).Load())
	})
}
