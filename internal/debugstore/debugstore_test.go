package debugstore

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apidesk/internal/model"
	"apidesk/internal/storage"
)

func TestGetCreatesEmptyEntry(t *testing.T) {
	s := New(storage.NewMemory(), zerolog.Nop())
	e := s.Get("/users", "get")
	assert.Equal(t, model.DebugEntry{Params: map[string]string{}}, e)
}

func TestParamRoundTrip(t *testing.T) {
	s := New(storage.NewMemory(), zerolog.Nop())

	s.SetParam("/users/{id}", "GET", "id", "42")
	s.SetBody("/users/{id}", "GET", `{"a":1}`)

	e := s.Get("/users/{id}", "get")
	assert.Equal(t, "42", e.Params["id"])
	assert.Equal(t, `{"a":1}`, e.Body)

	assert.Equal(t, model.NewDebugEntry(), s.Get("/users/{id}", "DELETE"))
	assert.Equal(t, model.NewDebugEntry(), s.Get("/users", "GET"))
}

func TestFieldHelpersDoNotClobber(t *testing.T) {
	s := New(storage.NewMemory(), zerolog.Nop())

	s.SetParam("/p", "POST", "a", "1")
	s.SetBody("/p", "POST", "body")
	s.SetBodyFields("/p", "POST", map[string]string{"f": "v"})
	s.SetResponse("/p", "POST", &model.ResponseSnapshot{Status: "200", StatusCode: 200, Content: "ok"})
	s.SetParam("/p", "POST", "b", "2")

	e := s.Get("/p", "POST")
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, e.Params)
	assert.Equal(t, "body", e.Body)
	assert.Equal(t, map[string]string{"f": "v"}, e.BodyFields)
	require.NotNil(t, e.Response)
	assert.Equal(t, "200", e.Response.Status)

	s.Reset("/p", "POST")
	assert.Equal(t, model.NewDebugEntry(), s.Get("/p", "POST"))
}

func TestCorruptEntryReadsAsEmpty(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Put(Key("/x", "GET"), []byte("not json")))
	s := New(kv, zerolog.Nop())

	assert.Equal(t, model.NewDebugEntry(), s.Get("/x", "GET"))

	e := s.SetParam("/x", "GET", "q", "v")
	assert.Equal(t, "v", e.Params["q"])
}

func TestStoredShape(t *testing.T) {
	kv := storage.NewMemory()
	s := New(kv, zerolog.Nop())
	s.SetParam("/x", "get", "q", "v")

	raw, err := kv.Get("apidesk_debug_GET_/x")
	require.NoError(t, err)
	assert.JSONEq(t, `{"params":{"q":"v"},"body":"","response":null}`, string(raw))
}
