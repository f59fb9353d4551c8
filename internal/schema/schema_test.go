package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"apidesk/internal/model"
)

func str() *model.Schema  { return &model.Schema{Kind: model.KindString, Type: "string"} }
func intg() *model.Schema { return &model.Schema{Kind: model.KindInteger, Type: "integer"} }

func ref(name string) *model.Schema {
	return &model.Schema{Kind: model.KindRef, Ref: "#/definitions/" + name}
}

func object(props ...model.Property) *model.Schema {
	return &model.Schema{Kind: model.KindObject, Type: "object", Properties: props}
}

func prop(name string, s *model.Schema) model.Property {
	return model.Property{Name: name, Schema: s}
}

func marshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func hasRefOrAllOf(s *model.Schema) bool {
	if s == nil {
		return false
	}
	if s.Kind == model.KindRef || s.Kind == model.KindAllOf {
		return true
	}
	for _, p := range s.Properties {
		if hasRefOrAllOf(p.Schema) {
			return true
		}
	}
	return hasRefOrAllOf(s.Items)
}

func TestResolveRef(t *testing.T) {
	defs := map[string]*model.Schema{
		"User": object(prop("id", intg()), prop("name", str())),
	}
	r := NewResolver(defs)

	got := r.Resolve(&model.Schema{Kind: model.KindRef, Ref: "#/components/schemas/User"})
	require.NotNil(t, got)
	assert.Equal(t, model.KindObject, got.Kind)
	require.Len(t, got.Properties, 2)
	assert.Equal(t, "id", got.Properties[0].Name)
	assert.Equal(t, "name", got.Properties[1].Name)
}

func TestResolveMissingRef(t *testing.T) {
	r := NewResolver(nil)
	got := r.Resolve(ref("Nope"))
	assert.Equal(t, &model.Schema{Kind: model.KindObject, Type: "object"}, got)
}

func TestResolveAllOfLastWins(t *testing.T) {
	a := object(prop("a", intg()))
	a.Required = []string{"a"}
	b := object(prop("a", str()), prop("b", intg()))
	b.Required = []string{"a", "b"}

	r := NewResolver(nil)
	got := r.Resolve(&model.Schema{Kind: model.KindAllOf, AllOf: []*model.Schema{a, b}})

	assert.Equal(t, model.KindObject, got.Kind)
	require.Len(t, got.Properties, 2)
	assert.Equal(t, "a", got.Properties[0].Name)
	assert.Equal(t, model.KindString, got.Properties[0].Schema.Kind)
	assert.Equal(t, "b", got.Properties[1].Name)
	assert.Equal(t, []string{"a", "b"}, got.Required)
}

func TestResolveNestedAndIdempotent(t *testing.T) {
	defs := map[string]*model.Schema{
		"Pet":  object(prop("name", str()), prop("tags", &model.Schema{Kind: model.KindArray, Type: "array", Items: ref("Tag")})),
		"Tag":  object(prop("label", str())),
		"Node": object(prop("next", ref("Node"))),
	}
	r := NewResolver(defs)

	for _, name := range []string{"Pet", "Node"} {
		t.Run(name, func(t *testing.T) {
			once := r.Resolve(ref(name))
			assert.False(t, hasRefOrAllOf(once))
			twice := r.Resolve(once)
			assert.Equal(t, once, twice)
		})
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	in := object(prop("child", ref("Missing")))
	NewResolver(nil).Resolve(in)
	assert.Equal(t, model.KindRef, in.Properties[0].Schema.Kind)
}

func TestExampleShapes(t *testing.T) {
	g := NewGenerator(NewResolver(nil))

	tests := []struct {
		name   string
		schema *model.Schema
		want   string
	}{
		{"string", str(), `"string"`},
		{"enum", &model.Schema{Kind: model.KindString, Enum: []any{"a", "b"}}, `"a"`},
		{"integer", intg(), `0`},
		{"number", &model.Schema{Kind: model.KindNumber}, `0`},
		{"boolean", &model.Schema{Kind: model.KindBoolean}, `true`},
		{"array", &model.Schema{Kind: model.KindArray, Items: str()}, `["string"]`},
		{"array without items", &model.Schema{Kind: model.KindArray}, `[]`},
		{"untyped", &model.Schema{Kind: model.KindUntyped, Properties: []model.Property{prop("x", str())}}, `{"x":"string"}`},
		{"explicit example", &model.Schema{Kind: model.KindInteger, Example: int64(42), HasExample: true}, `42`},
		{"explicit null example", &model.Schema{Kind: model.KindString, HasExample: true}, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, marshal(t, g.Example(tt.schema)))
		})
	}
}

func TestExampleKeepsPropertyOrder(t *testing.T) {
	s := object(prop("zeta", str()), prop("alpha", intg()), prop("mid", &model.Schema{Kind: model.KindBoolean}))
	got := NewGenerator(NewResolver(nil)).Example(s)
	assert.Equal(t, `{"zeta":"string","alpha":0,"mid":true}`, marshal(t, got))
}

func TestExampleSelfReferenceTerminates(t *testing.T) {
	defs := map[string]*model.Schema{"Node": object(prop("value", intg()), prop("next", ref("Node")))}
	g := NewGenerator(NewResolver(defs))

	got := g.Example(ref("Node"))

	// Walk down "next" until the ceiling produces an empty object.
	cur, ok := got.(*Object)
	require.True(t, ok)
	levels := 0
	for cur.Len() > 0 {
		next, ok := cur.Get("next")
		require.True(t, ok)
		cur, ok = next.(*Object)
		require.True(t, ok)
		levels++
		require.Less(t, levels, 10)
	}
	assert.Equal(t, 0, cur.Len())
}

func TestExampleDepthCeiling(t *testing.T) {
	// Seven nested objects: the innermost levels past the ceiling become {}.
	s := str()
	for i := 0; i < 7; i++ {
		s = object(prop("n", s))
	}
	got := NewGenerator(NewResolver(nil)).Example(s)
	assert.Equal(t, `{"n":{"n":{"n":{"n":{"n":{"n":{}}}}}}}`, marshal(t, got))
}

func TestExampleAllOfMergesObjectsOnly(t *testing.T) {
	defs := map[string]*model.Schema{"Base": object(prop("id", intg()))}
	s := &model.Schema{Kind: model.KindAllOf, AllOf: []*model.Schema{
		ref("Base"),
		object(prop("name", str())),
		str(),
	}}
	got := NewGenerator(NewResolver(defs)).Example(s)
	assert.Equal(t, `{"id":0,"name":"string"}`, marshal(t, got))
}

func TestExampleMissingRef(t *testing.T) {
	got := NewGenerator(NewResolver(nil)).Example(ref("Ghost"))
	assert.Equal(t, `{}`, marshal(t, got))
}

func TestResponseExample(t *testing.T) {
	op := &model.Operation{Responses: []model.Response{
		{Status: "204", Description: "no content"},
		{Status: "200", Schema: object(prop("ok", &model.Schema{Kind: model.KindBoolean}))},
		{Status: "404", Schema: object(prop("error", str()))},
	}}
	g := NewGenerator(NewResolver(nil))

	v, ok := g.ResponseExample(op, "404")
	require.True(t, ok)
	assert.Equal(t, `{"error":"string"}`, marshal(t, v))

	v, ok = g.ResponseExample(op, "")
	require.True(t, ok)
	assert.Equal(t, `{"ok":true}`, marshal(t, v))

	_, ok = g.ResponseExample(op, "500")
	assert.False(t, ok)
}

func TestValueOfKeepsOrder(t *testing.T) {
	v := ValueOf(gjson.Parse(`{"b":1,"a":[true,null,"x",1.5],"c":{"z":0,"y":-2}}`))
	assert.Equal(t, `{"b":1,"a":[true,null,"x",1.5],"c":{"z":0,"y":-2}}`, marshal(t, v))
}

func TestObjectYAMLOrder(t *testing.T) {
	o := NewObject()
	o.Set("zeta", "z")
	inner := NewObject()
	inner.Set("b", int64(1))
	inner.Set("a", true)
	o.Set("alpha", inner)

	out, err := yaml.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, "zeta: z\nalpha:\n    b: 1\n    a: true\n", string(out))
}

func TestPretty(t *testing.T) {
	o := NewObject()
	o.Set("k", "v")
	assert.Equal(t, "{\n  \"k\": \"v\"\n}", Pretty(o))
}
