package noalpha

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, alpha uint8) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 40, G: 80, B: 120, A: alpha})
		}
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestStripAlphaRewritesTransparentImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	writePNG(t, path, 10)

	changed, err := StripAlpha(path)
	require.NoError(t, err)
	require.True(t, changed)

	r, g, b, a := decodePNG(t, path).At(0, 0).RGBA()
	require.Equal(t, uint32(0xffff), a)
	// Color channels survive untouched instead of being composited.
	require.Equal(t, uint32(40<<8|40), r)
	require.Equal(t, uint32(80<<8|80), g)
	require.Equal(t, uint32(120<<8|120), b)
}

func TestStripAlphaLeavesOpaqueImageAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	writePNG(t, path, 255)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	changed, err := StripAlpha(path)
	require.NoError(t, err)
	require.False(t, changed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestProcessorUsesReceiptCache(t *testing.T) {
	root := t.TempDir()
	imagePath := filepath.Join(root, "Foo", "shot.png")
	writePNG(t, imagePath, 10)

	processor, err := NewProcessor(zerolog.Nop(), t.TempDir())
	require.NoError(t, err)

	rewritten, err := processor.Process(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, 1, rewritten)

	// Second pass is covered by receipts and does nothing.
	rewritten, err = processor.Process(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, 0, rewritten)

	// A modified image invalidates its receipt.
	writePNG(t, imagePath, 20)
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(imagePath, future, future))

	rewritten, err = processor.Process(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, 1, rewritten)
}

func TestProcessorFailsOnUndecodableImage(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.png"), []byte("not a png"), 0o644))

	processor, err := NewProcessor(zerolog.Nop(), t.TempDir())
	require.NoError(t, err)

	_, err = processor.Process(context.Background(), root)
	require.Error(t, err)
}
