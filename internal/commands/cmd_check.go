package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/randalmurphal/liquidlite/render"
	"github.com/randalmurphal/liquidlite/template"
	"github.com/randalmurphal/liquidlite/variables"
)

// ErrCheckFailed is returned when a template references undefined variables.
var ErrCheckFailed = errors.New("check failed")

type CheckCmd struct {
	flags *Flags

	varFiles []string
	sets     []string
}

// NewCheckCmd creates a new check command.
func NewCheckCmd(flags *Flags) *CheckCmd {
	return &CheckCmd{flags: flags}
}

// Register adds the check command to the application.
func (cmd *CheckCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "check",
		Usage:     "Verify variables define every path templates reference",
		UsageText: "liquidlite check [options] TEMPLATE|GLOB...",
		Description: `Checks each template's referenced paths against the loaded variables and
the template's front matter. Every missing path is reported; the command
fails if any are missing.`,
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
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *CheckCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return errors.New("at least one template is required")
	}

	files, err := render.Expand(c.Args().Slice())
	if err != nil {
		return err
	}

	vars, err := cmd.flags.loadVariables(cmd.varFiles, cmd.sets)
	if err != nil {
		return err
	}

	logger := zerolog.Ctx(ctx)
	engine := template.NewEngine()
	w := c.Root().Writer
	missing := 0

	for _, file := range files {
		defaults, body, err := readTemplate(file)
		if err != nil {
			return err
		}

		provided := vars
		if defaults != nil {
			provided = template.Variables{}
			variables.Merge(provided, defaults)
			variables.Merge(provided, vars)
		}

		required, err := engine.Parse(body)
		if err != nil && !errors.Is(err, template.ErrEmpty) {
			return fmt.Errorf("%s: %w", file, err)
		}

		fileMissing := 0
		for _, path := range required {
			if err := template.ValidateVariables([]string{path}, provided); err != nil {
				_, _ = fmt.Fprintf(w, "%s: %v\n", file, err)
				fileMissing++
			}
		}
		if fileMissing == 0 {
			_, _ = fmt.Fprintf(w, "%s: ok\n", file)
		}
		logger.Debug().Str("template", file).Int("paths", len(required)).Int("missing", fileMissing).Msg("checked")
		missing += fileMissing
	}

	if missing > 0 {
		return fmt.Errorf("%w: %d undefined variable path(s)", ErrCheckFailed, missing)
	}
	return nil
}
