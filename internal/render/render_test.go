package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apidesk/internal/model"
	"apidesk/internal/navtree"
	"apidesk/internal/schema"
)

func TestPainterDisabledIsPlain(t *testing.T) {
	assert.Equal(t, "GET   ", Plain.Method("get"))
	assert.Equal(t, "/users/{id}", Plain.Path("/users/{id}"))
	assert.Equal(t, "404", Plain.Status(404, "404"))
	assert.Equal(t, `{"a":1}`, Plain.Body(`{"a":1}`, "json"))
}

func TestPainterColors(t *testing.T) {
	p := NewPainter(true, "green", true)
	assert.Equal(t, "\x1b[34mGET   \x1b[0m", p.Method("GET"))
	assert.Equal(t, "\x1b[32m200 OK\x1b[0m", p.Status(200, "200 OK"))
	assert.Equal(t, "\x1b[33m404\x1b[0m", p.Status(404, "404"))
	assert.Equal(t, "\x1b[31mError\x1b[0m", p.Status(0, "Error"))
	assert.Equal(t, "/users/\x1b[36m{id}\x1b[0m/posts", p.Path("/users/{id}/posts"))
	assert.Equal(t, "\x1b[32;1mAuth\x1b[0m", p.Accent("Auth"))

	hl := p.Body(`{"a": 1}`, "json")
	assert.NotEqual(t, `{"a": 1}`, hl)
	assert.Contains(t, hl, "\x1b[")
}

func TestTreeLines(t *testing.T) {
	eps := []model.Endpoint{
		{Method: "GET", Path: "/users", Operation: &model.Operation{Summary: "List users", Tags: []string{"Admin-User"}}},
		{Method: "POST", Path: "/login", Operation: &model.Operation{Tags: []string{"Auth"}, Deprecated: true}},
	}
	doc := &model.Document{Endpoints: eps}
	tree := navtree.Build(navtree.GroupByTag(doc, ""), nil)
	collapsed := func(name string) bool { return name != "Auth" }

	got := TreeLines(tree.Lines(collapsed), collapsed, Plain)
	assert.Equal(t, []string{
		"▾ Admin (1)",
		"  ▾ User (1)",
		"    GET    /users List users",
		"▸ Auth (1)",
	}, got)

	assert.Equal(t, "POST   /login (deprecated)", EndpointLine(eps[1], Plain))
}

func TestParamsTable(t *testing.T) {
	var buf bytes.Buffer
	Params(&buf, []model.Param{
		{Name: "id", In: model.ParamInPath, Type: "integer", Format: "int64", Required: true},
		{Name: "status", In: model.ParamInQuery, Type: "string", Enum: []any{"a", "b"}, Description: "filter\nby status"},
		{Name: "body", In: model.ParamInBody},
	}, map[string]string{"id": "7"})
	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "integer (int64)")
	assert.Contains(t, out, "a|b")
	assert.Contains(t, out, "filter by status")
	assert.Contains(t, out, "7")
	assert.NotContains(t, out, "body")
}

func TestHeadersTableMasks(t *testing.T) {
	var buf bytes.Buffer
	Headers(&buf, []model.Header{
		{Key: "Authorization", Value: "Bearer abcdefghijkl"},
		{Key: "X-Trace", Value: "on"},
	})
	out := buf.String()
	assert.Contains(t, out, "Bearer****ijkl")
	assert.NotContains(t, out, "abcdefghijkl")
	assert.Contains(t, out, "on")
}

func TestEnvironmentsMarksCurrent(t *testing.T) {
	var buf bytes.Buffer
	Environments(&buf, []model.Environment{{Name: "dev", BaseURL: "http://dev"}, {Name: "prod", BaseURL: "https://prod"}}, 1)
	assert.Contains(t, buf.String(), "1*")
	assert.NotContains(t, buf.String(), "0*")
}

func TestExampleFormats(t *testing.T) {
	obj := schema.NewObject()
	obj.Set("name", "string")
	inner := schema.NewObject()
	inner.Set("id", 0)
	obj.Set("tags", []any{inner})

	js, err := Example(obj, JSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"string\",\n  \"tags\": [\n    {\n      \"id\": 0\n    }\n  ]\n}", js)

	y, err := Example(obj, YAML)
	require.NoError(t, err)
	assert.Equal(t, "name: string\ntags:\n  - id: 0\n", y)

	_, err = Example(obj, "xml")
	assert.Error(t, err)
}

func TestSnapshot(t *testing.T) {
	var buf bytes.Buffer
	Snapshot(&buf, model.ResponseSnapshot{
		Status:     "201",
		StatusCode: 201,
		ElapsedMs:  12,
		Size:       2048,
		Content:    "{\n  \"ok\": true\n}",
		Headers:    map[string]string{"content-type": "application/json", "x-id": "1"},
	}, false, Plain)
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "201 Created  12ms  2.0 KB", lines[0])
	assert.Equal(t, "content-type: application/json", lines[1])
	assert.NotContains(t, buf.String(), "x-id")
	assert.Contains(t, buf.String(), `"ok": true`)

	buf.Reset()
	Snapshot(&buf, model.ResponseSnapshot{Status: "Error", Content: "connection refused", IsError: true}, true, Plain)
	assert.Equal(t, "Error\n\nconnection refused\n", buf.String())
}

func TestSize(t *testing.T) {
	assert.Equal(t, "18 B", Size(18))
	assert.Equal(t, "1.5 KB", Size(1536))
	assert.Equal(t, "2.0 MB", Size(2*1024*1024))
}
