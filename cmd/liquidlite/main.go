package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/randalmurphal/liquidlite/config"
	"github.com/randalmurphal/liquidlite/internal/commands"
	"github.com/randalmurphal/liquidlite/internal/logutils"
)

// Release builds set these with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

// build formats the --version string. Binaries from go install carry no
// ldflags, so the module version and VCS stamp are read from build info.
func build() string {
	v, c, d := version, commit, date

	if info, ok := debug.ReadBuildInfo(); ok && v == "dev" {
		if mv := info.Main.Version; mv != "" && mv != "(devel)" {
			v = mv
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				c = s.Value
			case "vcs.time":
				d = s.Value
			}
		}
	}

	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("liquidlite %s (%s, built %s)", v, c, d)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var logCloser func()

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "liquidlite",
		Usage:     "Render minimal Liquid-style templates",
		UsageText: "liquidlite [global options] command [command options]",
		Description: `liquidlite renders text templates with {{ path }} interpolation and
{% if %} / {% else %} / {% endif %} conditionals against variables loaded
from JSON, YAML or TOML files.

Run 'liquidlite render --help' to get started.`,
		Version: build(),
		// --set values may contain commas.
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("LIQUIDLITE_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("LIQUIDLITE_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file (.yaml, .yml or .toml)",
				Sources:     cli.EnvVars("LIQUIDLITE_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// The default config path is optional; an explicit one must exist.
			cfg, err := config.Load(flags.ConfigPath, !c.IsSet("config"))
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			cfg.LoadFromEnv()
			if c.IsSet("log-level") {
				cfg.LogLevel = flags.LogLevel
			}
			if c.IsSet("log-file") {
				cfg.LogFile = flags.LogFile
			}
			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid config: %w", err)
			}
			flags.Config = &cfg

			logger, closer, err := logutils.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			log.Debug().Str("config", flags.ConfigPath).Msg("configuration loaded")

			return logger.WithContext(ctx), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewRenderCmd(flags).Register(app)
	app = commands.NewVarsCmd(flags).Register(app)
	app = commands.NewCheckCmd(flags).Register(app)
	app = commands.NewSchemaCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	stop()
	if runErr != nil {
		_, _ = fmt.Fprintln(os.Stderr, runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
