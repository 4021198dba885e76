package nota_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/nota-dashboard/pkg/nota"
)

func TestDraftRequiredGate(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"missing", nil},
		{"empty string", ""},
		{"whitespace", "   "},
		{"empty list", []any{}},
		{"empty object", map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			d := nota.NewDraft(api, postsSchema, nota.NewContentRegistry())
			if tt.value != nil {
				require.NoError(t, d.Set("title", tt.value))
			}
			_, err := d.Submit(context.Background())

			var reqErr *nota.RequiredFieldError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, "title", reqErr.Field)
			assert.Equal(t, `Field "title" is required.`, reqErr.Error())
			assert.Empty(t, api.Calls(), "no request is sent")
		})
	}
}

func TestDraftPresentValues(t *testing.T) {
	schema := nota.Schema{ID: "s", Name: "flags", Definition: []nota.Field{
		{Name: "on", Type: nota.FieldBoolean, IsRequired: true},
		{Name: "count", Type: nota.FieldNumber, IsRequired: true},
	}}
	d := nota.NewDraft(newFakeAPI(), schema, nota.NewContentRegistry())
	require.NoError(t, d.Set("on", false))
	require.NoError(t, d.Set("count", "0"))
	assert.NoError(t, d.Validate())
}

func TestDraftSubmit(t *testing.T) {
	api := newFakeAPI()
	api.addSchema(postsSchema)
	contents := nota.NewContentRegistry()
	contents.ReplaceFor("posts", nil)

	d := nota.NewDraft(api, postsSchema, contents)
	require.NoError(t, d.Set("title", "Hello"))
	url, err := d.Upload(context.Background(), "cover", nota.File{Name: "a.png", Reader: strings.NewReader("1")})
	require.NoError(t, err)
	d.SetPublished(true)

	created, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "schema-posts", created.SchemaID)
	assert.Equal(t, "Hello", created.Data["title"])
	assert.Equal(t, url, created.Data["cover"])
	assert.True(t, created.Published)

	stored, ok := contents.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Hello", stored.Data["title"])
	assert.Empty(t, api.DeletedMedia(), "create flow never deletes media")
	assert.Empty(t, d.Data(), "draft resets after submit")
	assert.Equal(t, []string{"upload", "create content", "list content posts"}, api.Calls())
}

func TestDraftSubmitFailureKeepsValues(t *testing.T) {
	api := newFakeAPI()
	api.createErr = errUnavailable
	d := nota.NewDraft(api, postsSchema, nota.NewContentRegistry())
	require.NoError(t, d.Set("title", "Keep"))

	_, err := d.Submit(context.Background())
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, "Keep", d.Data()["title"])
}

func TestDraftUploadRules(t *testing.T) {
	d := nota.NewDraft(newFakeAPI(), postsSchema, nota.NewContentRegistry())
	_, err := d.Upload(context.Background(), "title", nota.File{Name: "a.png", Reader: strings.NewReader("1")})
	assert.ErrorIs(t, err, nota.ErrNotMediaField)
	_, err = d.Upload(context.Background(), "nope", nota.File{Name: "a.png", Reader: strings.NewReader("1")})
	assert.ErrorIs(t, err, nota.ErrUnknownField)
	assert.ErrorIs(t, d.Set("nope", "x"), nota.ErrUnknownField)
}

func TestReplaceMedia(t *testing.T) {
	api := newFakeAPI()
	url, err := nota.ReplaceMedia(context.Background(), api, "https://cdn.test/old.png",
		nota.File{Name: "new.png", Reader: strings.NewReader("2")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/new.png?2", url)
	assert.Equal(t, []string{"https://cdn.test/old.png"}, api.DeletedMedia())

	api.uploadHook = func(ctx context.Context, file nota.File) (string, error) { return "", nil }
	_, err = nota.ReplaceMedia(context.Background(), api, "", nota.File{Name: "x", Reader: strings.NewReader("")}, nil)
	assert.ErrorIs(t, err, nota.ErrEmptyUploadURL)
}
