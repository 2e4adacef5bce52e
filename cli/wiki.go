package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/gfxreport/gfxreport/report"
)

func (a *App) generateWiki(ctx *cli.Context) error {
	results, err := a.scanResults(ctx)
	if err != nil {
		return err
	}

	writer := report.NewWikiWriter(a.logger, report.WikiConfig{
		OutputDir:             ctx.String("output"),
		ImagesBaseURL:         imagesBaseURL(ctx),
		HWGoldenImagesBaseURL: ctx.String("hw-golden-base-url"),
		TestSourceBaseURL:     ctx.String("test-source-base-url"),
	}, results)

	if err := writer.Write(); err != nil {
		return fmt.Errorf("failed to generate wiki: %w", err)
	}

	a.logger.Info().Str("output", ctx.String("output")).Msg("Wiki pages generated")
	return nil
}
