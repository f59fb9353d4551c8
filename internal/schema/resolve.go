package schema

import (
	"strings"

	"apidesk/internal/model"
)

// MaxResolveDepth bounds resolution of nested and cyclic schemas.
const MaxResolveDepth = 10

var refPrefixes = []string{"#/definitions/", "#/components/schemas/"}

// Resolver expands $ref and allOf against a document's named schemas.
type Resolver struct {
	defs map[string]*model.Schema
}

func NewResolver(defs map[string]*model.Schema) *Resolver {
	if defs == nil {
		defs = map[string]*model.Schema{}
	}
	return &Resolver{defs: defs}
}

// RefName strips the known reference prefixes from a $ref value.
func RefName(ref string) string {
	for _, p := range refPrefixes {
		ref = strings.Replace(ref, p, "", 1)
	}
	return ref
}

// Lookup returns the named schema a $ref points at.
func (r *Resolver) Lookup(ref string) (*model.Schema, bool) {
	s, ok := r.defs[RefName(ref)]
	return s, ok && s != nil
}

// Resolve returns a copy of s with every $ref and allOf replaced by the
// schema it stands for. Missing targets become an empty object. The input
// is never modified.
func (r *Resolver) Resolve(s *model.Schema) *model.Schema {
	return r.resolve(s, 0)
}

func (r *Resolver) resolve(s *model.Schema, depth int) *model.Schema {
	if s == nil {
		return nil
	}
	if depth > MaxResolveDepth {
		if s.Kind == model.KindArray {
			return &model.Schema{Kind: model.KindArray, Type: "array"}
		}
		return emptyObject()
	}

	switch s.Kind {
	case model.KindRef:
		target, ok := r.Lookup(s.Ref)
		if !ok {
			return emptyObject()
		}
		return r.resolve(target, depth+1)

	case model.KindAllOf:
		merged := emptyObject()
		for _, member := range s.AllOf {
			rm := r.resolve(member, depth+1)
			if rm == nil {
				continue
			}
			for _, p := range rm.Properties {
				merged.SetProperty(p.Name, p.Schema)
			}
			merged.Required = append(merged.Required, rm.Required...)
			if merged.Description == "" {
				merged.Description = rm.Description
			}
		}
		if s.Description != "" {
			merged.Description = s.Description
		}
		merged.Required = dedupe(merged.Required)
		return merged
	}

	out := *s
	out.Properties = nil
	for _, p := range s.Properties {
		out.Properties = append(out.Properties, model.Property{Name: p.Name, Schema: r.resolve(p.Schema, depth+1)})
	}
	out.Items = r.resolve(s.Items, depth+1)
	return &out
}

func emptyObject() *model.Schema {
	return &model.Schema{Kind: model.KindObject, Type: "object"}
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
