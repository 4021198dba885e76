package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

// newTable returns a borderless table writer.
func newTable() table.Writer {
	tw := table.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	return tw
}

// render prints v as JSON or YAML, or the table built by tableFn.
func render(cmd *cobra.Command, output string, v any, tableFn func() string) error {
	switch output {
	case "", "table":
		cmd.Printf("%s\n", tableFn())
	case "json":
		jsonOutput, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		cmd.Print(string(yamlOutput))
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}
	return nil
}

type schemaView struct {
	ID     string       `json:"id" yaml:"id"`
	Name   string       `json:"name" yaml:"name"`
	Fields []nota.Field `json:"definition" yaml:"definition"`
}

func printSchemas(cmd *cobra.Command, output string, schemas []nota.Schema) error {
	views := make([]schemaView, 0, len(schemas))
	for _, s := range schemas {
		views = append(views, schemaView{ID: s.ID, Name: s.Name, Fields: s.Definition})
	}
	return render(cmd, output, views, func() string {
		tw := newTable()
		tw.AppendHeader(table.Row{"NAME", "ID", "FIELDS"})
		for _, s := range schemas {
			names := make([]string, 0, len(s.Definition))
			for _, f := range s.Definition {
				names = append(names, f.Name)
			}
			tw.AppendRow(table.Row{s.Name, s.ID, strings.Join(names, ", ")})
		}
		return tw.Render()
	})
}

func printSchema(cmd *cobra.Command, output string, s nota.Schema) error {
	return render(cmd, output, schemaView{ID: s.ID, Name: s.Name, Fields: s.Definition}, func() string {
		tw := newTable()
		tw.SetTitle(s.Name)
		tw.AppendHeader(table.Row{"FIELD", "TYPE", "REQUIRED"})
		for _, f := range s.Definition {
			tw.AppendRow(table.Row{f.Name, f.Type, f.IsRequired})
		}
		return tw.Render()
	})
}

type contentView struct {
	ID        string         `json:"id" yaml:"id"`
	Title     string         `json:"title" yaml:"title"`
	Published bool           `json:"published" yaml:"published"`
	CreatedAt string         `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt string         `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	Data      map[string]any `json:"data" yaml:"data"`
}

func newContentView(schema nota.Schema, c nota.Content) contentView {
	return contentView{
		ID:        c.ID,
		Title:     schema.Title(c),
		Published: c.Published,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Data:      c.Data,
	}
}

func printContents(cmd *cobra.Command, output string, schema nota.Schema, contents []nota.Content) error {
	views := make([]contentView, 0, len(contents))
	for _, c := range contents {
		views = append(views, newContentView(schema, c))
	}
	return render(cmd, output, views, func() string {
		tw := newTable()
		tw.AppendHeader(table.Row{"ID", "TITLE", "PUBLISHED", "UPDATED AT"})
		for _, v := range views {
			tw.AppendRow(table.Row{v.ID, v.Title, v.Published, v.UpdatedAt})
		}
		return tw.Render()
	})
}

func printContent(cmd *cobra.Command, output string, schema nota.Schema, c nota.Content) error {
	view := newContentView(schema, c)
	return render(cmd, output, view, func() string {
		tw := newTable()
		tw.SetTitle(view.Title)
		tw.AppendHeader(table.Row{"FIELD", "TYPE", "VALUE"})
		for _, f := range schema.Definition {
			tw.AppendRow(table.Row{f.Name, f.Type, displayValue(f, c.Data[f.Name])})
		}
		tw.AppendFooter(table.Row{"", "published", c.Published})
		return tw.Render()
	})
}

// displayValue renders a stored value the way its field type is shown.
func displayValue(f nota.Field, v any) string {
	if f.Type == nota.FieldBoolean {
		if nota.Checked(v) {
			return "[x]"
		}
		return "[ ]"
	}
	s := nota.FormatValue(v)
	if f.Type.IsMedia() && s != "" {
		if kind := nota.PreviewFor(s); kind != nota.PreviewLink {
			return fmt.Sprintf("%s (%s)", s, kind)
		}
	}
	return s
}
