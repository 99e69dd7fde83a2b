package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/randalmurphal/liquidlite/render"
	"github.com/randalmurphal/liquidlite/template"
)

type VarsCmd struct {
	flags  *Flags
	format string
}

// NewVarsCmd creates a new vars command.
func NewVarsCmd(flags *Flags) *VarsCmd {
	return &VarsCmd{flags: flags}
}

// Register adds the vars command to the application.
func (cmd *VarsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "vars",
		Usage:       "List the variable paths templates reference",
		UsageText:   "liquidlite vars [options] TEMPLATE|GLOB...",
		Description: "Prints every variable path referenced by interpolations and conditions, in order of first appearance. Literals are not listed.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

type templatePaths struct {
	Template string   `json:"template"`
	Paths    []string `json:"paths"`
}

func (cmd *VarsCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return errors.New("at least one template is required")
	}

	files, err := render.Expand(c.Args().Slice())
	if err != nil {
		return err
	}

	engine := template.NewEngine()
	results := make([]templatePaths, 0, len(files))
	for _, file := range files {
		_, body, err := readTemplate(file)
		if err != nil {
			return err
		}
		paths, err := engine.Parse(body)
		if err != nil && !errors.Is(err, template.ErrEmpty) {
			return fmt.Errorf("%s: %w", file, err)
		}
		if paths == nil {
			paths = []string{}
		}
		results = append(results, templatePaths{Template: file, Paths: paths})
	}

	w := c.Root().Writer
	switch cmd.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "text":
	default:
		return fmt.Errorf("unknown format %q (want text or json)", cmd.format)
	}

	for _, res := range results {
		if len(results) == 1 {
			for _, p := range res.Paths {
				_, _ = fmt.Fprintln(w, p)
			}
			break
		}
		_, _ = fmt.Fprintf(w, "%s:\n", res.Template)
		for _, p := range res.Paths {
			_, _ = fmt.Fprintf(w, "  %s\n", p)
		}
	}
	return nil
}
