package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/gfxreport/gfxreport/report"
)

func (a *App) generateSite(ctx *cli.Context) error {
	results, err := a.scanResults(ctx)
	if err != nil {
		return err
	}

	writer, err := report.NewSiteWriter(a.logger, report.SiteConfig{
		OutputDir:              ctx.String("output"),
		ImagesBaseURL:          imagesBaseURL(ctx),
		HWGoldenImagesBaseURL:  ctx.String("hw-golden-base-url"),
		TestSourceBaseURL:      ctx.String("test-source-base-url"),
		HWGoldenBrowserBaseURL: ctx.String("hw-golden-browser-base-url"),
	}, results)
	if err != nil {
		return err
	}

	if err := writer.Write(); err != nil {
		return fmt.Errorf("failed to generate site: %w", err)
	}

	a.logger.Info().Str("output", ctx.String("output")).Msg("Site generated")
	return nil
}
