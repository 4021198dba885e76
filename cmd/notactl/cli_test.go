package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/nota-dashboard/pkg/nota/notatest"
)

type cli struct {
	t           *testing.T
	srv         *notatest.Server
	sessionFile string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	srv := notatest.New()
	t.Cleanup(srv.Close)
	return &cli{t: t, srv: srv, sessionFile: filepath.Join(t.TempDir(), "session.yaml")}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--api-url", c.srv.APIURL(),
		"--session-file", c.sessionFile,
		"--log-level", "error",
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run("", args...)
	require.NoError(c.t, err, out)
	return out
}

var createdRe = regexp.MustCompile(`Created content (\S+)`)

func TestCLIWorkflow(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	_, err = c.run("", "signup", "-e", "editor@nota.test", "-p", "password1", "--confirm", "password2")
	require.Error(t, err)
	assert.Equal(t, "Passwords do not match", err.Error())

	out := c.mustRun("signup", "-e", "editor@nota.test", "-p", "password1", "--confirm", "password1")
	assert.Contains(t, out, "Account created")

	out, err = c.run("editor@nota.test\npassword1\n", "login")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Logged in as editor@nota.test")
	_, err = os.Stat(c.sessionFile)
	require.NoError(t, err)

	out = c.mustRun("whoami")
	assert.Contains(t, out, "Logged in as editor@nota.test")

	out = c.mustRun("schema", "create", "posts",
		"--field", "title:text:required",
		"--field", "featured:boolean",
		"--field", "cover:image")
	assert.Contains(t, out, "Created schema posts")

	var schemas []map[string]any
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("schema", "ls", "-o", "json")), &schemas))
	require.Len(t, schemas, 1)
	assert.Equal(t, "posts", schemas[0]["name"])

	out = c.mustRun("schema", "show", "posts")
	assert.Contains(t, out, "featured")
	assert.Contains(t, out, "boolean")

	_, err = c.run("", "content", "create", "posts", "--set", "featured=true")
	require.Error(t, err)
	assert.Equal(t, `Field "title" is required.`, err.Error())

	cover := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(cover, []byte("png"), 0o600))
	out = c.mustRun("content", "create", "posts",
		"--set", "title=Hello",
		"--set", "featured=true",
		"--file", "cover="+cover,
		"--publish")
	m := createdRe.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]
	assert.Len(t, c.srv.Media(), 1)

	var contents []map[string]any
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("content", "ls", "posts", "-o", "json")), &contents))
	require.Len(t, contents, 1)
	assert.Equal(t, "Hello", contents[0]["title"])
	assert.Equal(t, true, contents[0]["published"])

	require.NoError(t, json.Unmarshal([]byte(c.mustRun("content", "ls", "posts", "--published", "false", "-o", "json")), &contents))
	assert.Empty(t, contents)

	_, err = c.run("", "content", "ls", "posts", "--published", "maybe")
	assert.Error(t, err)

	c.mustRun("content", "update", "posts", id, "--set", "title=Changed")
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("content", "show", "posts", id, "-o", "json")), &shown))
	assert.Equal(t, "Changed", shown["title"])

	out = c.mustRun("content", "unpublish", "posts", id)
	assert.Contains(t, out, "Unpublished content "+id)
	stored, ok := c.srv.Content(id)
	require.True(t, ok)
	assert.False(t, stored.Published)

	c.mustRun("content", "rm", "posts", id)
	_, ok = c.srv.Content(id)
	assert.False(t, ok)

	c.mustRun("schema", "rm", "posts")
	_, err = c.run("", "schema", "show", "posts")
	assert.Error(t, err)

	c.mustRun("logout")
	_, err = os.Stat(c.sessionFile)
	assert.True(t, os.IsNotExist(err))
}

func TestCLIShell(t *testing.T) {
	c := newCLI(t)
	c.srv.AddUser("editor@nota.test", "password1")
	c.srv.AddSchema("posts", postsSchema.Definition)
	id := c.srv.AddContent("posts", map[string]any{"title": "Hello"}, false)

	c.mustRun("login", "-e", "editor@nota.test", "-p", "password1")

	script := strings.Join([]string{
		"ls",
		"use posts",
		"ls",
		"show " + id,
		"set title nope",
		"edit",
		"set title Shell edit",
		"set views many",
		"status",
		"save",
		"publish",
		"new views=3",
		"new title=Second",
		"bogus",
		"exit",
	}, "\n") + "\n"

	out, err := c.run(script, "shell")
	require.NoError(t, err, out)

	assert.Contains(t, out, "Error: no schema selected")
	assert.Contains(t, out, "nota(posts)> ")
	assert.Contains(t, out, "Error: content is not being edited")
	assert.Contains(t, out, "State: editing")
	assert.Contains(t, out, `"many" is not a number`)
	assert.Contains(t, out, "Saved")
	assert.Contains(t, out, "Published")
	assert.Contains(t, out, `Field "title" is required.`)
	assert.Contains(t, out, "Error: unknown command: bogus")
	assert.Contains(t, out, "Goodbye!")

	stored, ok := c.srv.Content(id)
	require.True(t, ok)
	assert.Equal(t, "Shell edit", stored.Data["title"])
	assert.True(t, stored.Published)
	require.Regexp(t, createdRe, out)
}
