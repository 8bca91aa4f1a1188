package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsotimus/monkko/src/helpers"
	"github.com/tsotimus/monkko/src/schemas"
	"github.com/tsotimus/monkko/src/settings"
)

var (
	ErrNoSchemaFile  = errors.New("no schema file given, use --schemas")
	ErrUnknownSchema = errors.New("schema is not declared in the schema file")
)

// cli carries what every subcommand needs once flags are parsed.
type cli struct {
	args   *settings.Arguments
	logger *zap.SugaredLogger
}

// NewRootCommand builds the monkko command tree with its flags bound to args.
func NewRootCommand(args *settings.Arguments) *cobra.Command {
	c := &cli{args: args, logger: zap.NewNop().Sugar()}

	root := &cobra.Command{
		Use:           "monkko",
		Short:         "Typed document mapping over MongoDB",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.prepare(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&args.URI, settings.FlagURI, settings.DefaultURI, "MongoDB connection string")
	flags.StringVar(&args.SchemaFile, settings.FlagSchemas, "", "YAML file declaring the schemas")
	flags.StringVar(&args.ConfigFile, settings.FlagConfig, "", "Path to config file")
	flags.StringVar(&args.LogFile, settings.FlagLogFile, "", "Also write log lines to this file")
	flags.BoolVar(&args.Debug, settings.FlagDebug, false, "Enable debug mode")
	flags.BoolVar(&args.Verbose, settings.FlagVerbose, false, "Enable verbose logging")
	flags.DurationVar(&args.Timeout, settings.FlagTimeout, settings.DefaultTimeout, "Timeout for connecting and running a command")

	root.AddCommand(newInspectCommand(c), newFindCommand(c))
	return root
}

// Execute runs the command line against the process-wide settings.
func Execute() error {
	return NewRootCommand(settings.GetSettings()).Execute()
}

func (c *cli) prepare(cmd *cobra.Command) error {
	if c.args.ConfigFile != "" {
		cfg, err := settings.LoadConfigFile(c.args.ConfigFile)
		if err != nil {
			return err
		}
		c.args.ApplyConfig(cfg, cmd.Flags().Changed)
	}

	if err := c.args.Validate(); err != nil {
		return err
	}

	logger, err := helpers.NewLogger(c.args.Debug, c.args.LogFile)
	if err != nil {
		return err
	}
	c.logger = logger

	if c.args.Verbose {
		c.logger.Infow("monkko starting with options",
			"uri", redact(c.args.URI),
			"schemas", c.args.SchemaFile,
			"config", c.args.ConfigFile,
			"timeout", c.args.Timeout)
	}
	return nil
}

func (c *cli) loadSchemas() ([]schemas.Definition, error) {
	if c.args.SchemaFile == "" {
		return nil, ErrNoSchemaFile
	}
	if !helpers.FileExists(c.args.SchemaFile, c.logger) {
		return nil, fmt.Errorf("schema file %s does not exist", c.args.SchemaFile)
	}

	defs, err := schemas.LoadFile(c.args.SchemaFile)
	if err != nil {
		return nil, err
	}
	c.logger.Debugw("loaded schema file", "path", c.args.SchemaFile, "schemas", len(defs))
	return defs, nil
}
