package compare

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/rs/zerolog"
)

// FetchHardwareGoldens makes the hardware golden image repository
// available at destDir. An existing checkout is pulled forward; an
// empty or missing destDir gets a fresh shallow clone.
func FetchHardwareGoldens(ctx context.Context, logger zerolog.Logger, repoURL, destDir string) error {
	repo, err := git.PlainOpen(destDir)
	if err == git.ErrRepositoryNotExists {
		logger.Info().Str("url", repoURL).Str("dir", destDir).Msg("Cloning hardware goldens")
		_, err = git.PlainCloneContext(ctx, destDir, false, &git.CloneOptions{
			URL:      repoURL,
			Depth:    1,
			Progress: os.Stderr,
		})
		if err != nil {
			return fmt.Errorf("failed to clone %s: %w", repoURL, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open golden checkout %s: %w", destDir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open golden worktree: %w", err)
	}

	logger.Info().Str("dir", destDir).Msg("Updating hardware goldens")
	err = worktree.PullContext(ctx, &git.PullOptions{Depth: 1, Progress: os.Stderr})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to update golden checkout: %w", err)
	}
	return nil
}
