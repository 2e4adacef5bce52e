package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "gfxreport"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Aggregate graphics test results into browsable reports",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands,
		&cli.Command{
			Name:   "site",
			Usage:  "Generate the HTML results site",
			Action: app.generateSite,
			Flags: append(scanFlags(),
				&cli.StringFlag{
					Name:     "output",
					Usage:    "Directory to write the site into",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "test-source-base-url",
					Usage: "Source browser prefix for test suite sources",
				},
				&cli.StringFlag{
					Name:  "hw-golden-browser-base-url",
					Usage: "Base URL of the hardware golden browser pages",
				},
			),
		},
		&cli.Command{
			Name:   "wiki",
			Usage:  "Generate flat markdown pages for wiki hosting",
			Action: app.generateWiki,
			Flags: append(scanFlags(),
				&cli.StringFlag{
					Name:     "output",
					Usage:    "Wiki checkout to write pages into",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "test-source-base-url",
					Usage: "Source browser prefix for test suite sources",
				},
			),
		},
		&cli.Command{
			Name:   "compare",
			Usage:  "Diff a run's artifacts against a golden image tree",
			Action: app.compareRun,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "results",
					Usage:    "Artifact directory of the run under test",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "golden",
					Usage: "Golden image directory (a run's artifacts or a golden checkout)",
				},
				&cli.StringFlag{
					Name:  "golden-repo",
					Usage: "Git URL of the hardware golden repository (cloned when --golden is not given)",
				},
				&cli.StringFlag{
					Name:  "golden-checkout",
					Usage: "Local checkout directory for --golden-repo",
					Value: ".goldens",
				},
				&cli.StringFlag{
					Name:     "output",
					Usage:    "Root of the comparison tree to write summary.json and diff images into",
					Required: true,
				},
				&cli.Float64Flag{
					Name:  "threshold",
					Usage: "Distances at or below this value count as matching",
				},
				&cli.StringFlag{
					Name:  "differ",
					Usage: "Image comparison binary",
				},
				&cli.StringFlag{
					Name:  "result-id",
					Usage: "Override the run identifier derived from --results",
				},
				&cli.StringFlag{
					Name:  "golden-id",
					Usage: "Override the golden identifier derived from --golden",
				},
			},
		},
		&cli.Command{
			Name:   "missing",
			Usage:  "List runs without a hardware golden comparison",
			Action: app.listMissing,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "results",
					Usage:    "Root of the results tree",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "comparisons",
					Usage:    "Root of the comparison tree",
					Required: true,
				},
			},
		},
		&cli.Command{
			Name:   "noalpha",
			Usage:  "Strip alpha channels from result images in place",
			Action: app.stripAlpha,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "results",
					Usage:    "Root of the results tree",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "cache-dir",
					Usage: "Receipt cache directory",
					Value: ".noalpha-cache",
				},
			},
		},
		&cli.Command{
			Name:   "latest",
			Usage:  "Print the results directory with the highest tool version",
			Action: app.printLatest,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "results",
					Usage:    "Root of the results tree",
					Required: true,
				},
			},
		},
	)
	return app
}

// scanFlags are shared by the commands that join results with
// comparisons before generating output.
func scanFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "results",
			Usage:    "Root of the results tree",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "comparisons",
			Usage: "Root of the comparison tree",
		},
		&cli.StringFlag{
			Name:  "golden-results",
			Usage: "Root the golden run images live under (default: --results)",
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "Public URL the results repository is reachable at",
		},
		&cli.StringFlag{
			Name:  "hw-golden-base-url",
			Usage: "Public URL the hardware golden images are reachable at",
		},
		&cli.StringFlag{
			Name:  "registry-url",
			Usage: "URL of the test suite registry JSON (optional)",
		},
	}
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}
