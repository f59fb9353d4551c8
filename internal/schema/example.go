package schema

import "apidesk/internal/model"

// MaxExampleDepth is the nesting level past which examples collapse to {}.
const MaxExampleDepth = 5

// Generator builds representative example values from schemas.
type Generator struct {
	resolver *Resolver
}

func NewGenerator(r *Resolver) *Generator {
	return &Generator{resolver: r}
}

// Example returns a JSON-ready value shaped like s. Objects are *Object.
func (g *Generator) Example(s *model.Schema) any {
	return g.example(s, 0)
}

func (g *Generator) example(s *model.Schema, depth int) any {
	if depth > MaxExampleDepth || s == nil {
		return NewObject()
	}

	switch s.Kind {
	case model.KindRef:
		target, ok := g.resolver.Lookup(s.Ref)
		if !ok {
			return NewObject()
		}
		return g.example(target, depth+1)

	case model.KindAllOf:
		merged := NewObject()
		for _, member := range s.AllOf {
			sub, ok := g.example(member, depth+1).(*Object)
			if !ok {
				continue
			}
			for _, k := range sub.keys {
				merged.Set(k, sub.values[k])
			}
		}
		return merged
	}

	if s.HasExample {
		return s.Example
	}

	switch s.Kind {
	case model.KindString:
		if len(s.Enum) > 0 {
			return s.Enum[0]
		}
		return "string"
	case model.KindInteger, model.KindNumber:
		return 0
	case model.KindBoolean:
		return true
	case model.KindArray:
		if s.Items == nil {
			return []any{}
		}
		return []any{g.example(s.Items, depth+1)}
	}

	obj := NewObject()
	for _, p := range s.Properties {
		obj.Set(p.Name, g.example(p.Schema, depth+1))
	}
	return obj
}

// RequestExample returns the example for an operation's JSON body, or nil
// when the operation takes none.
func (g *Generator) RequestExample(op *model.Operation) any {
	if op == nil {
		return nil
	}
	s := op.BodySchema()
	if s == nil {
		return nil
	}
	return g.Example(s)
}

// ResponseExample returns the example for the response declared under
// status, falling back to the first declared response with a schema when
// status is empty.
func (g *Generator) ResponseExample(op *model.Operation, status string) (any, bool) {
	if op == nil {
		return nil, false
	}
	for _, r := range op.Responses {
		if r.Schema == nil {
			continue
		}
		if status == "" || r.Status == status {
			return g.Example(r.Schema), true
		}
	}
	return nil, false
}
