package schema

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Object is a JSON object that remembers key insertion order. Examples are
// built from it so that generated bodies list fields the way the document
// declares them.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{values: map[string]any{}}
}

// Set stores v under k. An existing key keeps its position.
func (o *Object) Set(k string, v any) {
	if _, ok := o.values[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.values[k] = v
}

func (o *Object) Get(k string) (any, bool) {
	v, ok := o.values[k]
	return v, ok
}

func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Object) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if o == nil {
		return node, nil
	}
	for _, k := range o.keys {
		var val yaml.Node
		if err := val.Encode(o.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&val,
		)
	}
	return node, nil
}

// ValueOf converts a parsed JSON value into plain Go values, using *Object
// for objects so that key order survives.
func ValueOf(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		if bytes.ContainsAny([]byte(r.Raw), ".eE") {
			return r.Float()
		}
		return r.Int()
	case gjson.String:
		return r.Str
	}
	if r.IsArray() {
		out := []any{}
		for _, item := range r.Array() {
			out = append(out, ValueOf(item))
		}
		return out
	}
	if r.IsObject() {
		obj := NewObject()
		r.ForEach(func(k, v gjson.Result) bool {
			obj.Set(k.String(), ValueOf(v))
			return true
		})
		return obj
	}
	return nil
}

// Pretty renders an example value as indented JSON.
func Pretty(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
