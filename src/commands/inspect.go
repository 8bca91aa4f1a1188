package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tsotimus/monkko/src/helpers"
	"github.com/tsotimus/monkko/src/schemas"
)

func newInspectCommand(c *cli) *cobra.Command {
	var populate []string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the document shapes inferred from a schema file",
		Example: `  monkko inspect --schemas app.yaml
  monkko inspect --schemas app.yaml --populate User.organisationId`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs, err := c.loadSchemas()
			if err != nil {
				return err
			}

			catalog := schemas.NewCatalog()
			for _, def := range defs {
				catalog.Register(def)
			}

			requested, err := parsePopulate(populate, catalog)
			if err != nil {
				return err
			}

			shapes := make([]schemas.Shape, 0, len(defs))
			for _, def := range defs {
				shape := schemas.InferShape(def)
				if names := requested[def.Name]; len(names) > 0 {
					shape = shape.Populate(catalog, names...)
				}
				shapes = append(shapes, shape)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(shapes); err != nil {
				return fmt.Errorf("failed to encode shapes: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().StringSliceVar(&populate, "populate", nil, "Schema.field to show in populated form (repeatable)")
	return cmd
}

// parsePopulate groups Schema.field arguments by schema name.
func parsePopulate(values []string, catalog *schemas.Catalog) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, v := range values {
		v = helpers.StripQuotes(v)
		schema, field, ok := strings.Cut(v, ".")
		if !ok || schema == "" || field == "" {
			return nil, fmt.Errorf("invalid populate argument %q, expected Schema.field", v)
		}
		if _, ok := catalog.Lookup(schema); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, schema)
		}
		out[schema] = append(out[schema], field)
	}
	return out, nil
}
