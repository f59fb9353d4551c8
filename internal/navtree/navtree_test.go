package navtree

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apidesk/internal/model"
	"apidesk/internal/storage"
)

func ep(method, path, summary string, tags ...string) model.Endpoint {
	return model.Endpoint{Method: method, Path: path, Operation: &model.Operation{Summary: summary, Tags: tags}}
}

func testDoc() *model.Document {
	return &model.Document{
		Tags: []model.Tag{{Name: "Admin-User", Description: "user admin"}},
		Endpoints: []model.Endpoint{
			ep("GET", "/admin/users", "List users", "Admin-User"),
			ep("POST", "/admin/auth", "Login", "Admin-Auth"),
			ep("GET", "/health", "Health"),
			ep("DELETE", "/admin/users/{id}", "Delete user", "Admin-User", "Danger"),
			ep("GET", "/admin", "Admin root", "Admin"),
		},
	}
}

func TestGroupByTag(t *testing.T) {
	groups := GroupByTag(testDoc(), "")
	require.Len(t, groups, 5)
	assert.Equal(t, "Admin-User", groups[0].Tag)
	assert.Len(t, groups[0].Endpoints, 2)
	assert.Equal(t, "Admin-Auth", groups[1].Tag)
	assert.Equal(t, "default", groups[2].Tag)
	assert.Equal(t, "Danger", groups[3].Tag)
	assert.Equal(t, "Admin", groups[4].Tag)
}

func TestFilter(t *testing.T) {
	doc := testDoc()
	got := Filter(doc.Endpoints, "USERS")
	require.Len(t, got, 2)
	assert.Equal(t, "/admin/users", got[0].Path)
	assert.Equal(t, "/admin/users/{id}", got[1].Path)

	assert.Len(t, Filter(doc.Endpoints, "  "), 5)
	assert.Empty(t, Filter(doc.Endpoints, "zzz"))

	// Method is part of the searchable text.
	got = Filter(doc.Endpoints, "delete")
	require.Len(t, got, 1)
}

func TestBuildNestsAndCounts(t *testing.T) {
	doc := testDoc()
	tree := Build(GroupByTag(doc, ""), doc.Tags)

	roots := tree.Roots()
	require.Len(t, roots, 3)
	admin := roots[0]
	assert.Equal(t, "Admin", admin.Name)
	assert.Len(t, admin.Endpoints, 1)
	require.Len(t, admin.Children, 2)
	assert.Equal(t, "Admin-User", admin.Children[0].Name)
	assert.Equal(t, "User", admin.Children[0].Label)
	assert.Equal(t, "user admin", admin.Children[0].Description)
	assert.Equal(t, 4, admin.Count())
	assert.Equal(t, 6, tree.Count())

	assert.Same(t, admin.Children[1], tree.Find("Admin-Auth"))
	assert.Nil(t, tree.Find("Nope"))
}

func TestLinesRespectCollapse(t *testing.T) {
	doc := testDoc()
	tree := Build(GroupByTag(doc, ""), doc.Tags)

	all := tree.Lines(nil)
	// 5 groups (Admin, User, Auth, default, Danger) + 6 endpoint rows.
	assert.Len(t, all, 11)
	assert.True(t, all[0].IsGroup())
	assert.Equal(t, "/admin", all[1].Endpoint.Path, "own endpoints come before children")
	assert.Equal(t, 1, all[2].Depth)

	collapsed := tree.Lines(func(name string) bool { return name != "Admin" })
	assert.Len(t, collapsed, 5)
}

func TestExpandState(t *testing.T) {
	s := NewExpandState(storage.NewMemory(), zerolog.Nop())
	assert.True(t, s.Expanded("Admin"))
	assert.False(t, s.Toggle("Admin"))
	assert.False(t, s.Expanded("Admin"))
	assert.True(t, s.Expanded("Other"))
	assert.True(t, s.Toggle("Admin"))
}

type brokenStore struct{ storage.Store }

func (brokenStore) Get(string) ([]byte, error) { return nil, errors.New("unavailable") }
func (brokenStore) Put(string, []byte) error   { return errors.New("unavailable") }

func TestExpandStateDegradesToExpanded(t *testing.T) {
	s := NewExpandState(brokenStore{}, zerolog.Nop())
	s.Set("Admin", false)
	assert.True(t, s.Expanded("Admin"))
}
