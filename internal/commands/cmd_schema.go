package commands

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/randalmurphal/liquidlite/config"
)

type SchemaCmd struct {
	flags *Flags
}

// NewSchemaCmd creates a new schema command.
func NewSchemaCmd(flags *Flags) *SchemaCmd {
	return &SchemaCmd{flags: flags}
}

// Register adds the schema command to the application.
func (cmd *SchemaCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "schema",
		Usage:       "Print the config file JSON schema",
		UsageText:   "liquidlite schema",
		Description: "Prints the JSON schema for liquidlite.yaml and liquidlite.toml, for editor completion and validation.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *SchemaCmd) run(ctx context.Context, c *cli.Command) error {
	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(config.Schema())
}
