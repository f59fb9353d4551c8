package model

// SchemaKind is decided once when a schema node is parsed. A $ref wins over
// allOf, which wins over the declared type.
type SchemaKind int

const (
	KindUntyped SchemaKind = iota
	KindRef
	KindAllOf
	KindString
	KindInteger
	KindNumber
	KindBoolean
	KindArray
	KindObject
)

func (k SchemaKind) String() string {
	switch k {
	case KindRef:
		return "ref"
	case KindAllOf:
		return "allOf"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "untyped"
	}
}

// KindOf maps a declared OpenAPI type to a kind. Unknown types are untyped.
func KindOf(typ string) SchemaKind {
	switch typ {
	case "string":
		return KindString
	case "integer":
		return KindInteger
	case "number":
		return KindNumber
	case "boolean":
		return KindBoolean
	case "array":
		return KindArray
	case "object":
		return KindObject
	default:
		return KindUntyped
	}
}

type Property struct {
	Name   string
	Schema *Schema
}

type Schema struct {
	Kind SchemaKind

	Ref   string
	AllOf []*Schema

	// Type is the declared type string, kept for display even when unknown.
	Type        string
	Format      string
	Description string
	Properties  []Property
	Items       *Schema
	Required    []string
	Enum        []any
	Default     any
	Example     any
	HasExample  bool
}

func (s *Schema) Property(name string) *Schema {
	if s == nil {
		return nil
	}
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// SetProperty replaces an existing property in place or appends a new one.
func (s *Schema) SetProperty(name string, prop *Schema) {
	for i := range s.Properties {
		if s.Properties[i].Name == name {
			s.Properties[i].Schema = prop
			return
		}
	}
	s.Properties = append(s.Properties, Property{Name: name, Schema: prop})
}
