package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

func newContentCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "content",
		Aliases: []string{"contents"},
		Short:   "Manage content records",
	}
	cmd.AddCommand(newContentListCommand(a))
	cmd.AddCommand(newContentShowCommand(a))
	cmd.AddCommand(newContentCreateCommand(a))
	cmd.AddCommand(newContentUpdateCommand(a))
	cmd.AddCommand(newContentPublishCommand(a, true))
	cmd.AddCommand(newContentPublishCommand(a, false))
	cmd.AddCommand(newContentDeleteCommand(a))
	return cmd
}

func newContentListCommand(a *app) *cobra.Command {
	var published string

	cmd := &cobra.Command{
		Use:   "ls [schema name]",
		Short: "List the records of a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := nota.PublishedFilter(published)
			switch filter {
			case nota.PublishedAll, nota.PublishedOnly, nota.PublishedDraft:
			default:
				return fmt.Errorf("invalid --published %q, want all, true or false", published)
			}

			session, cl, err := a.newSession(cmd.Context())
			if err != nil {
				return err
			}
			schema, ok := session.Schemas().ByName(args[0])
			if !ok {
				return fmt.Errorf("schema %q: %w", args[0], nota.ErrSchemaNotFound)
			}
			raws, err := cl.ListContent(cmd.Context(), schema.Name, nota.ListContentOptions{Published: filter})
			if err != nil {
				return fmt.Errorf("list content: %w", err)
			}
			return printContents(cmd, a.output, schema, nota.NormalizeContents(raws))
		},
	}

	cmd.Flags().StringVar(&published, "published", string(nota.PublishedAll), "all, true or false")
	return cmd
}

// openRecord selects the record id of schemaName in a fresh editor.
func (a *app) openRecord(ctx context.Context, schemaName, id string) (*nota.Editor, error) {
	editor, err := a.newEditor(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	if err := editor.SelectContent(id); err != nil {
		return nil, err
	}
	return editor, nil
}

func newContentShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [schema name] [content id]",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			editor, err := a.openRecord(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			schema, _ := editor.Schema()
			c, _ := editor.Selected()
			return printContent(cmd, a.output, schema, c)
		},
	}
}

func newContentCreateCommand(a *app) *cobra.Command {
	var sets, files []string
	var publish bool

	cmd := &cobra.Command{
		Use:     "create [schema name]",
		Short:   "Create a record",
		Example: `  notactl content create posts --set title=Hello --set featured=true --file cover=./cover.png --publish`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, _, err := a.newSession(ctx)
			if err != nil {
				return err
			}
			draft, err := session.NewDraft(args[0])
			if err != nil {
				return err
			}

			values, err := parseAssignments(draft.Schema(), sets)
			if err != nil {
				return err
			}
			for k, v := range values {
				if err := draft.Set(k, v); err != nil {
					return err
				}
			}
			for _, raw := range files {
				name, path, err := splitAssignment(raw)
				if err != nil {
					return err
				}
				file, f, err := openFile(path)
				if err != nil {
					return err
				}
				url, err := draft.Upload(ctx, name, file)
				_ = f.Close()
				if err != nil {
					return err
				}
				cmd.Printf("Uploaded %s: %s\n", name, url)
			}
			draft.SetPublished(publish)

			created, err := draft.Submit(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("Created content %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as name=value, repeatable")
	cmd.Flags().StringArrayVar(&files, "file", nil, "media field upload as name=path, repeatable")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the record")
	return cmd
}

func newContentUpdateCommand(a *app) *cobra.Command {
	var sets, files []string

	cmd := &cobra.Command{
		Use:     "update [schema name] [content id]",
		Short:   "Edit a record",
		Example: `  notactl content update posts 3f2a... --set title="New title" --file cover=./new.png`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			editor, err := a.openRecord(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			schema, _ := editor.Schema()
			values, err := parseAssignments(schema, sets)
			if err != nil {
				return err
			}

			if err := editor.BeginEdit(); err != nil {
				return err
			}
			for k, v := range values {
				if err := editor.SetField(k, v); err != nil {
					return err
				}
			}
			for _, raw := range files {
				name, path, err := splitAssignment(raw)
				if err != nil {
					return err
				}
				file, f, err := openFile(path)
				if err != nil {
					return err
				}
				url, err := editor.ReplaceFile(ctx, name, file)
				_ = f.Close()
				if err != nil {
					return err
				}
				cmd.Printf("Uploaded %s: %s\n", name, url)
			}

			if err := editor.Save(ctx); err != nil {
				return err
			}
			cmd.Printf("Saved content %s\n", args[1])
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as name=value, repeatable")
	cmd.Flags().StringArrayVar(&files, "file", nil, "replace a media field with the file at path, as name=path")
	return cmd
}

func newContentPublishCommand(a *app, published bool) *cobra.Command {
	use, short, done := "publish", "Publish a record", "Published"
	if !published {
		use, short, done = "unpublish", "Unpublish a record", "Unpublished"
	}
	return &cobra.Command{
		Use:   use + " [schema name] [content id]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			editor, err := a.openRecord(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := editor.SetPublished(cmd.Context(), published); err != nil {
				return err
			}
			cmd.Printf("%s content %s\n", done, args[1])
			return nil
		},
	}
}

func newContentDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [schema name] [content id]",
		Aliases: []string{"delete"},
		Short:   "Delete a record",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			editor, err := a.openRecord(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := editor.Delete(cmd.Context(), ""); err != nil {
				return err
			}
			cmd.Printf("Deleted content %s\n", args[1])
			return nil
		},
	}
}
