package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/randalmurphal/liquidlite/render"
	"github.com/randalmurphal/liquidlite/template"
	"github.com/randalmurphal/liquidlite/watch"
)

type RenderCmd struct {
	flags *Flags

	varFiles []string
	sets     []string
	lenient  bool
	out      string
	root     string
	watch    bool
}

// NewRenderCmd creates a new render command.
func NewRenderCmd(flags *Flags) *RenderCmd {
	return &RenderCmd{flags: flags}
}

// Register adds the render command to the application.
func (cmd *RenderCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "render",
		Usage:     "Render templates with variables",
		UsageText: "liquidlite render [options] TEMPLATE|GLOB...",
		Description: `Renders each template against variables loaded from files and inline
assignments. Globs support ** and are expanded before rendering.

A single template without --out is printed to stdout. With --out, results
are written below the output directory, mirroring their path relative to
--root.

Examples:
  liquidlite render --vars site.yaml page.html
  liquidlite render --set user.name=Ryan --lenient greeting.txt
  liquidlite render --vars site.toml --out dist "templates/**/*.html"
  liquidlite render --vars site.yaml --out dist --watch "templates/**/*.html"`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "vars",
				Usage:       "variable file (JSON, YAML or TOML, repeatable; later files win)",
				Destination: &cmd.varFiles,
			},
			&cli.StringSliceFlag{
				Name:        "set",
				Usage:       "set a variable as path=value (repeatable)",
				Destination: &cmd.sets,
			},
			&cli.BoolFlag{
				Name:        "lenient",
				Usage:       "render undefined paths as empty instead of failing",
				Destination: &cmd.lenient,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output directory (defaults to config output, else stdout)",
				Destination: &cmd.out,
			},
			&cli.StringFlag{
				Name:        "root",
				Usage:       "directory output paths are relative to",
				Value:       ".",
				Destination: &cmd.root,
			},
			&cli.BoolFlag{
				Name:        "watch",
				Aliases:     []string{"w"},
				Usage:       "re-render when templates or variable files change",
				Destination: &cmd.watch,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RenderCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return errors.New("at least one template is required")
	}

	paths, err := render.Expand(c.Args().Slice())
	if err != nil {
		return err
	}

	out := cmd.out
	if out == "" {
		out = cmd.flags.config().Output
	}
	if out == "" && len(paths) > 1 {
		return fmt.Errorf("%d templates matched; use --out to render more than one", len(paths))
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "render").Logger()

	renderer, err := cmd.renderer(logger, out)
	if err != nil {
		return err
	}
	if err := cmd.renderPaths(ctx, c.Root().Writer, renderer, paths, logger); err != nil {
		return err
	}

	if !cmd.watch {
		return nil
	}
	return cmd.watchPaths(ctx, c.Root().Writer, paths, out, logger)
}

func (cmd *RenderCmd) renderer(logger zerolog.Logger, out string) (*render.Renderer, error) {
	cfg := cmd.flags.config()

	vars, err := cmd.flags.loadVariables(cmd.varFiles, cmd.sets)
	if err != nil {
		return nil, err
	}

	opts := cfg.EngineOptions(logger)
	if cmd.lenient {
		opts = append(opts, template.WithMissingPath(template.MissingPathLenient))
	}

	return render.New(template.NewEngine(opts...), vars,
		render.WithOutputDir(out),
		render.WithRoot(cmd.root),
		render.WithWorkers(cfg.WorkerCount()),
		render.WithLogger(logger),
	), nil
}

func (cmd *RenderCmd) renderPaths(ctx context.Context, w io.Writer, r *render.Renderer, paths []string, logger zerolog.Logger) error {
	results, err := r.RenderAll(ctx, paths)
	if err != nil {
		return err
	}

	for _, res := range results {
		if res.Path == "" {
			_, _ = fmt.Fprintln(w, res.Output)
			continue
		}
		logger.Info().Str("template", res.Template).Str("output", res.Path).Msg("rendered")
	}
	return nil
}

// watchPaths re-renders on change until ctx is cancelled. A change to a
// variable file reloads variables and re-renders every template. Render
// errors are logged and watching continues.
func (cmd *RenderCmd) watchPaths(ctx context.Context, w io.Writer, paths []string, out string, logger zerolog.Logger) error {
	cfg := cmd.flags.config()

	templates := make(map[string]string, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		templates[abs] = p
	}

	watched := append([]string(nil), paths...)
	watched = append(watched, cmd.flags.variableFiles(cmd.varFiles)...)

	watcher, err := watch.New(watched,
		watch.WithInterval(cfg.PollInterval()),
		watch.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	renderer, err := cmd.renderer(logger, out)
	if err != nil {
		return err
	}

	logger.Info().Int("files", len(watcher.Files())).Msg("watching for changes")

	return watcher.Run(ctx, func(changed []string) {
		var targets []string
		reload := false
		for _, f := range changed {
			if p, ok := templates[f]; ok {
				targets = append(targets, p)
			} else {
				reload = true
			}
		}

		if reload {
			next, err := cmd.renderer(logger, out)
			if err != nil {
				logger.Error().Err(err).Msg("reload variables")
				return
			}
			renderer = next
			targets = paths
		}

		if err := cmd.renderPaths(ctx, w, renderer, targets, logger); err != nil {
			logger.Error().Err(err).Msg("render failed")
		}
	})
}
