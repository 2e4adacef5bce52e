package noalpha

// This file contains the alpha-channel stripper. Test artifacts carry
// whatever alpha values the framebuffer held, which web browsers render
// as transparency and make screenshots unreadable. Processing forces
// every pixel opaque, in place, tracked by the receipt cache.

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Processor rewrites result images without an alpha channel.
type Processor struct {
	logger zerolog.Logger
	cache  *Cache
}

// NewProcessor creates a processor with a receipt cache under cacheDir.
func NewProcessor(logger zerolog.Logger, cacheDir string) (*Processor, error) {
	cache, err := NewCache(cacheDir)
	if err != nil {
		return nil, err
	}
	return &Processor{logger: logger, cache: cache}, nil
}

// Process walks every .png under root and strips alpha from the ones
// not already covered by a fresh receipt. It returns the number of
// images rewritten. A single unreadable image fails the walk; partial
// trees would silently publish transparent screenshots.
func (p *Processor) Process(ctx context.Context, root string) (int, error) {
	rewritten := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".png") {
			return nil
		}
		if p.cache.IsFresh(path) {
			return nil
		}

		changed, err := StripAlpha(path)
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", path, err)
		}
		if changed {
			rewritten++
			p.logger.Debug().Str("image", path).Msg("Stripped alpha channel")
		}
		return p.cache.Touch(path)
	})
	if err != nil {
		return rewritten, err
	}

	p.logger.Info().Int("rewritten", rewritten).Str("root", root).Msg("Alpha stripping complete")
	return rewritten, nil
}

// StripAlpha forces every pixel of the PNG at path opaque, rewriting
// the file only when at least one pixel was transparent. It reports
// whether the file was rewritten.
func StripAlpha(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	img, err := png.Decode(f)
	f.Close()
	if err != nil {
		return false, fmt.Errorf("failed to decode: %w", err)
	}

	opaque, transparent := flatten(img)
	if !transparent {
		return false, nil
	}

	out, err := os.Create(path)
	if err != nil {
		return false, err
	}
	defer out.Close()
	if err := png.Encode(out, opaque); err != nil {
		return false, fmt.Errorf("failed to encode: %w", err)
	}
	return true, nil
}

// flatten copies img into an NRGBA image with full alpha, reporting
// whether any source pixel was not fully opaque. The color channels are
// kept as stored; the alpha values are framebuffer noise, so compositing
// against them would corrupt the screenshot.
func flatten(img image.Image) (*image.NRGBA, bool) {
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	transparent := false

	if src, ok := img.(*image.NRGBA); ok {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				srcOffset := src.PixOffset(x, y)
				outOffset := out.PixOffset(x, y)
				copy(out.Pix[outOffset:outOffset+3], src.Pix[srcOffset:srcOffset+3])
				if src.Pix[srcOffset+3] != 0xff {
					transparent = true
				}
				out.Pix[outOffset+3] = 0xff
			}
		}
		return out, transparent
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a != 0xffff {
				transparent = true
			}
			offset := out.PixOffset(x, y)
			out.Pix[offset+0] = uint8(r >> 8)
			out.Pix[offset+1] = uint8(g >> 8)
			out.Pix[offset+2] = uint8(b >> 8)
			out.Pix[offset+3] = 0xff
		}
	}
	return out, transparent
}
