package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

func newShellCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive editing session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := a.newSession(cmd.Context())
			if err != nil {
				return err
			}
			sh := NewShell(cmd, session, a.output)
			return sh.Run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

// Shell drives one editor session from line commands.
type Shell struct {
	cmd     *cobra.Command
	session *nota.Session
	editor  *nota.Editor
	output  string
}

// NewShell creates a shell over session. Output goes to cmd.
func NewShell(cmd *cobra.Command, session *nota.Session, output string) *Shell {
	return &Shell{
		cmd:     cmd,
		session: session,
		editor:  session.NewEditor(),
		output:  output,
	}
}

// Run reads commands from in until exit or end of input.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	reader := bufio.NewReader(in)

	s.cmd.Println("=== Nota Dashboard Shell ===")
	s.cmd.Println("Type 'help' for available commands, 'exit' to quit")
	s.cmd.Println()

	for {
		s.cmd.Print(s.prompt())
		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			if errors.Is(err, io.EOF) {
				s.cmd.Println()
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" || input == "q" {
			s.cmd.Println("Goodbye!")
			return nil
		}
		if err := s.Exec(ctx, input); err != nil {
			s.cmd.Printf("Error: %v\n", err)
		}
	}
}

func (s *Shell) prompt() string {
	if schema, ok := s.editor.Schema(); ok {
		if c, ok := s.editor.Selected(); ok {
			mark := ""
			if s.editor.State() == nota.StateEditing {
				mark = "*"
			}
			return fmt.Sprintf("nota(%s/%s%s)> ", schema.Name, c.ShortID(), mark)
		}
		return fmt.Sprintf("nota(%s)> ", schema.Name)
	}
	return "nota> "
}

// Exec runs one command line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	command, args := parts[0], parts[1:]

	switch command {
	case "help", "h":
		s.showHelp()
		return nil
	case "schemas":
		return printSchemas(s.cmd, s.output, s.session.Schemas().List())
	case "use":
		if len(args) != 1 {
			return errors.New("usage: use <schema>")
		}
		return s.editor.SelectSchema(ctx, args[0])
	case "refresh":
		return s.editor.Refresh(ctx)
	case "list", "ls":
		schema, ok := s.editor.Schema()
		if !ok {
			return nota.ErrNoSchemaSelected
		}
		return printContents(s.cmd, s.output, schema, s.editor.Contents())
	case "show":
		if len(args) > 1 {
			return errors.New("usage: show [content-id]")
		}
		if len(args) == 1 {
			if err := s.editor.SelectContent(args[0]); err != nil {
				return err
			}
		}
		return s.showSelected()
	case "edit":
		return s.editor.BeginEdit()
	case "set":
		if len(args) < 1 {
			return errors.New("usage: set <field> <value>")
		}
		return s.set(args[0], strings.Join(args[1:], " "))
	case "upload":
		if len(args) != 2 {
			return errors.New("usage: upload <field> <path>")
		}
		return s.upload(ctx, args[0], args[1])
	case "save":
		if err := s.editor.Save(ctx); err != nil {
			return err
		}
		s.cmd.Println("Saved")
		return nil
	case "cancel":
		s.editor.CancelEdit()
		return nil
	case "publish", "unpublish":
		if err := s.editor.SetPublished(ctx, command == "publish"); err != nil {
			return err
		}
		if command == "publish" {
			s.cmd.Println("Published")
		} else {
			s.cmd.Println("Unpublished")
		}
		return nil
	case "rm", "delete":
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		if err := s.editor.Delete(ctx, id); err != nil {
			return err
		}
		s.cmd.Println("Deleted")
		return nil
	case "new":
		return s.create(ctx, args)
	case "status":
		s.cmd.Printf("State: %s\n", s.editor.State())
		return nil
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", command)
	}
}

func (s *Shell) showSelected() error {
	schema, ok := s.editor.Schema()
	if !ok {
		return nota.ErrNoSchemaSelected
	}
	c, ok := s.editor.Selected()
	if !ok {
		return nota.ErrNoContentSelected
	}
	if data, editing := s.editor.Editing(); editing {
		c.Data = data
	}
	return printContent(s.cmd, s.output, schema, c)
}

func (s *Shell) set(name, raw string) error {
	schema, ok := s.editor.Schema()
	if !ok {
		return nota.ErrNoSchemaSelected
	}
	v, err := parseValue(schema, name, raw)
	if err != nil {
		return err
	}
	return s.editor.SetField(name, v)
}

func (s *Shell) upload(ctx context.Context, name, path string) error {
	file, f, err := openFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	url, err := s.editor.ReplaceFile(ctx, name, file)
	if err != nil {
		return err
	}
	s.cmd.Printf("Uploaded %s: %s\n", name, url)
	return nil
}

// create submits a new record from name=value arguments to the selected
// schema.
func (s *Shell) create(ctx context.Context, args []string) error {
	schema, ok := s.editor.Schema()
	if !ok {
		return nota.ErrNoSchemaSelected
	}
	draft, err := s.session.NewDraft(schema.Name)
	if err != nil {
		return err
	}
	values, err := parseAssignments(schema, args)
	if err != nil {
		return err
	}
	for k, v := range values {
		if err := draft.Set(k, v); err != nil {
			return err
		}
	}
	created, err := draft.Submit(ctx)
	if err != nil {
		return err
	}
	s.cmd.Printf("Created content %s\n", created.ID)
	return nil
}

func (s *Shell) showHelp() {
	help := `
Available Commands:

  schemas                 List schemas
  use <schema>            Select a schema and load its records
  refresh                 Reload the records of the selected schema
  list, ls                List records of the selected schema
  show [content-id]       Select a record and show it
  new <field=value>...    Create a record in the selected schema

  edit                    Start editing the selected record
  set <field> <value>     Set a field of the edit
  upload <field> <path>   Replace a media field with a local file
  save                    Save the edit
  cancel                  Discard the edit

  publish, unpublish      Toggle the published flag of the selected record
  rm [content-id]         Delete a record (default: the selected one)
  status                  Show the editor state

  help, h                 Show this help message
  exit, quit, q           Exit the shell
`
	s.cmd.Println(help)
}
