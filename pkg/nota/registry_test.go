package nota_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/nota-dashboard/pkg/nota"
)

func TestStoreMutations(t *testing.T) {
	s := nota.NewStore(func(c nota.Content) string { return c.ID })

	var snapshots [][]nota.Content
	unsubscribe := s.Subscribe(func(items []nota.Content) {
		snapshots = append(snapshots, items)
	})

	s.Replace([]nota.Content{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	s.Add(nota.Content{ID: "d"})
	assert.True(t, s.Update(nota.Content{ID: "b", Published: true}))
	assert.False(t, s.Update(nota.Content{ID: "zz"}))
	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))

	got, ok := s.Get("b")
	require.True(t, ok)
	assert.True(t, got.Published)
	assert.Equal(t, 3, s.Len())

	ids := func(items []nota.Content) []string {
		out := []string{}
		for _, c := range items {
			out = append(out, c.ID)
		}
		return out
	}
	assert.Equal(t, []string{"b", "c", "d"}, ids(s.List()))
	require.Len(t, snapshots, 4)
	assert.Equal(t, []string{"a", "b", "c"}, ids(snapshots[0]))

	unsubscribe()
	unsubscribe()
	s.Add(nota.Content{ID: "e"})
	assert.Len(t, snapshots, 4)
}

func TestStoreSnapshotsAreCopies(t *testing.T) {
	s := nota.NewStore(func(c nota.Content) string { return c.ID })
	s.Replace([]nota.Content{{ID: "a"}})
	list := s.List()
	list[0].ID = "mutated"
	_, ok := s.Get("a")
	assert.True(t, ok)
}

func TestDeleteOneOfN(t *testing.T) {
	r := nota.NewContentRegistry()
	items := []nota.Content{}
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		items = append(items, nota.Content{ID: id})
	}
	r.ReplaceFor("posts", items)

	require.True(t, r.Delete("3"))
	assert.Equal(t, 4, r.Len())
	_, ok := r.Get("3")
	assert.False(t, ok)
	assert.Equal(t, "posts", r.SchemaName())
}

func TestContentRegistryOwnership(t *testing.T) {
	r := nota.NewContentRegistry()
	var notified int
	unsubscribe := r.Subscribe(func([]nota.Content) { notified++ })
	defer unsubscribe()

	assert.True(t, r.AddIfOwner("posts", nota.Content{ID: "a1"}), "unowned registry is claimed")
	assert.Equal(t, "posts", r.SchemaName())

	r.ReplaceFor("pages", []nota.Content{{ID: "p1"}})
	assert.False(t, r.AddIfOwner("posts", nota.Content{ID: "a2"}))
	assert.False(t, r.ReplaceIfOwner("posts", []nota.Content{{ID: "a1"}}))
	assert.Equal(t, "pages", r.SchemaName())
	assert.Equal(t, []nota.Content{{ID: "p1"}}, r.List())
	assert.Equal(t, 2, notified, "dropped writes do not notify")

	assert.True(t, r.ReplaceIfOwner("pages", []nota.Content{{ID: "p2"}}))
	assert.Equal(t, []nota.Content{{ID: "p2"}}, r.List())
}

func TestContentRegistryRefreshDropsForeignSchema(t *testing.T) {
	api := newFakeAPI()
	api.addRecord("posts", map[string]any{"id": "a1"})
	r := nota.NewContentRegistry()
	r.ReplaceFor("pages", []nota.Content{{ID: "p1"}})

	require.NoError(t, r.Refresh(context.Background(), api, "posts"))
	assert.Equal(t, "pages", r.SchemaName())
	assert.Equal(t, []nota.Content{{ID: "p1"}}, r.List())
}

func TestSchemaRegistry(t *testing.T) {
	api := newFakeAPI()
	api.addSchema(postsSchema)
	api.addSchema(nota.Schema{ID: "schema-pages", Name: "pages"})

	r := nota.NewSchemaRegistry()
	require.NoError(t, r.Refresh(context.Background(), api))
	assert.Equal(t, 2, r.Len())

	s, ok := r.ByName("posts")
	require.True(t, ok)
	assert.Equal(t, "schema-posts", s.ID)

	_, ok = r.ByName("missing")
	assert.False(t, ok)
}
