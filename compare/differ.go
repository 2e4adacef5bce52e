package compare

import (
	"context"
)

// Differ computes the perceptual distance between two images.
type Differ interface {
	// Compare returns the distance between the image at imagePath and
	// the golden at goldenPath. When diffPath is non-empty and the
	// images differ, a visualization of the difference is written
	// there.
	Compare(ctx context.Context, imagePath, goldenPath, diffPath string) (float64, error)
}
