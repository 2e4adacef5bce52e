package compare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog"
)

// DefaultDifferBinary is the comparison tool used when none is
// configured explicitly.
const DefaultDifferBinary = "perceptualdiff"

var pixelCountPattern = regexp.MustCompile(`(\d+) pixels are different`)

// PerceptualDiffer shells out to the perceptualdiff binary and reports
// the number of perceptually different pixels as the distance.
type PerceptualDiffer struct {
	logger zerolog.Logger
	binary string
}

// NewPerceptualDiffer creates a differ running binary, falling back to
// DefaultDifferBinary when binary is empty.
func NewPerceptualDiffer(logger zerolog.Logger, binary string) *PerceptualDiffer {
	if binary == "" {
		binary = DefaultDifferBinary
	}
	return &PerceptualDiffer{logger: logger, binary: binary}
}

func (d *PerceptualDiffer) Compare(ctx context.Context, imagePath, goldenPath, diffPath string) (float64, error) {
	args := []string{"-verbose", imagePath, goldenPath}
	if diffPath != "" {
		if err := os.MkdirAll(filepath.Dir(diffPath), 0o755); err != nil {
			return 0, fmt.Errorf("failed to create diff output directory: %w", err)
		}
		args = append(args, "-output", diffPath)
	}

	cmd := exec.CommandContext(ctx, d.binary, args...)
	d.logger.Debug().Str("command", shellescape.QuoteCommand(cmd.Args)).Msg("Running image comparison")

	output, err := cmd.CombinedOutput()
	if err != nil {
		// A nonzero exit reports a visible difference, not a failure.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return 0, fmt.Errorf("failed to run %s: %w", d.binary, err)
		}
	}

	match := pixelCountPattern.FindSubmatch(output)
	if match == nil {
		if cmd.ProcessState != nil && cmd.ProcessState.ExitCode() == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to parse %s output: %q", d.binary, output)
	}

	pixels, err := strconv.ParseFloat(string(match[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse pixel count %q: %w", match[1], err)
	}
	return pixels, nil
}
