package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

func newSchemaCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schema",
		Aliases: []string{"schemas"},
		Short:   "Manage schemas",
	}
	cmd.AddCommand(newSchemaListCommand(a))
	cmd.AddCommand(newSchemaShowCommand(a))
	cmd.AddCommand(newSchemaCreateCommand(a))
	cmd.AddCommand(newSchemaDeleteCommand(a))
	return cmd
}

func newSchemaListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := a.newSession(cmd.Context())
			if err != nil {
				return err
			}
			return printSchemas(cmd, a.output, session.Schemas().List())
		},
	}
}

func newSchemaShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [schema name]",
		Short: "Show the definition of a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := a.newSession(cmd.Context())
			if err != nil {
				return err
			}
			schema, ok := session.Schemas().ByName(args[0])
			if !ok {
				return fmt.Errorf("schema %q: %w", args[0], nota.ErrSchemaNotFound)
			}
			return printSchema(cmd, a.output, schema)
		},
	}
}

func newSchemaCreateCommand(a *app) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "create [schema name]",
		Short: "Create a schema",
		Long: `Create a schema from --field flags in definition order.

Each field is name:type[:required] with type one of text, number, date,
textarea, boolean, image, video or file.`,
		Example: `  notactl schema create posts --field title:text:required --field body:textarea --field cover:image`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(fields) == 0 {
				return errors.New("at least one --field is required")
			}
			session, _, err := a.newSession(cmd.Context())
			if err != nil {
				return err
			}

			builder := session.NewSchemaBuilder()
			builder.SetName(args[0])
			for _, raw := range fields {
				f, err := parseFieldFlag(raw)
				if err != nil {
					return err
				}
				i := builder.AddField()
				patch := nota.FieldPatch{Name: &f.Name, Type: &f.Type, IsRequired: &f.IsRequired}
				if err := builder.UpdateField(i, patch); err != nil {
					return err
				}
			}

			schema, err := builder.Submit(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Created schema %s (%s)\n", schema.Name, schema.ID)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "field as name:type[:required], repeatable")
	return cmd
}

func newSchemaDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [schema name]",
		Aliases: []string{"delete"},
		Short:   "Delete a schema",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := a.newSession(cmd.Context())
			if err != nil {
				return err
			}
			schema, ok := session.Schemas().ByName(args[0])
			if !ok {
				return fmt.Errorf("schema %q: %w", args[0], nota.ErrSchemaNotFound)
			}
			if err := session.DeleteSchema(cmd.Context(), schema.ID); err != nil {
				return err
			}
			cmd.Printf("Deleted schema %s\n", schema.Name)
			return nil
		},
	}
}
