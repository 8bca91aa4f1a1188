package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/tsotimus/monkko/src/helpers"
	"github.com/tsotimus/monkko/src/models"
	"github.com/tsotimus/monkko/src/schemas"
	"github.com/tsotimus/monkko/src/store"
)

type findOptions struct {
	schema   string
	filter   string
	populate []string
	one      bool
}

func newFindCommand(c *cli) *cobra.Command {
	opts := findOptions{}

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Run a query, optionally populating references, and print extended JSON",
		Example: `  monkko find --schemas app.yaml --schema User --filter '{"name": "Jo"}' --populate organisationId
  monkko find --schemas app.yaml --schema User --one`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs, err := c.loadSchemas()
			if err != nil {
				return err
			}
			filter, err := parseFilter(opts.filter)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), c.args.Timeout)
			defer cancel()

			client, err := store.Connect(ctx, c.args.URI, c.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := client.Close(context.Background()); err != nil {
					c.logger.Warnw("error closing connection", "error", err)
				}
			}()

			model, err := bindModels(client, defs, opts.schema, c.logger)
			if err != nil {
				return err
			}
			return runFind(ctx, model, filter, opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.schema, "schema", "", "Name of the schema to query")
	flags.StringVar(&opts.filter, "filter", "{}", "Query filter as extended JSON")
	flags.StringSliceVar(&opts.populate, "populate", nil, "Reference field to populate (repeatable)")
	flags.BoolVar(&opts.one, "one", false, "Return only the first matching document")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// bindModels creates a model for every definition, so every reference
// target is registered, and returns the one called name.
func bindModels(client store.Client, defs []schemas.Definition, name string, logger *zap.SugaredLogger) (*models.Model, error) {
	factory := models.NewModelFactory(client, schemas.NewCatalog(), logger)

	var target *models.Model
	for _, def := range defs {
		m, err := factory.NewModel(def)
		if err != nil {
			return nil, err
		}
		if def.Name == name {
			target = m
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return target, nil
}

func parseFilter(text string) (bson.M, error) {
	text = helpers.StripQuotes(text)
	if text == "" {
		return bson.M{}, nil
	}
	var filter bson.M
	if err := bson.UnmarshalExtJSON([]byte(text), false, &filter); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return filter, nil
}

// runFind prints one canonical extended JSON document per line. A single
// query with no match prints null.
func runFind(ctx context.Context, model *models.Model, filter bson.M, opts findOptions, w io.Writer) error {
	var docs []bson.M
	if opts.one {
		q := model.FindOne(filter)
		if len(opts.populate) > 0 {
			q = q.PopulateFields(opts.populate)
		}
		doc, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		if doc == nil {
			_, err := fmt.Fprintln(w, "null")
			return err
		}
		docs = []bson.M{doc}
	} else {
		q := model.Find(filter)
		if len(opts.populate) > 0 {
			q = q.PopulateFields(opts.populate)
		}
		found, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		docs = found
	}

	for _, doc := range docs {
		data, err := bson.MarshalExtJSON(doc, true, false)
		if err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}
		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return err
		}
	}
	return nil
}
