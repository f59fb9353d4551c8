package model

import "strings"

type ParamLocation string

const (
	ParamInPath     ParamLocation = "path"
	ParamInQuery    ParamLocation = "query"
	ParamInHeader   ParamLocation = "header"
	ParamInFormData ParamLocation = "formData"
	ParamInBody     ParamLocation = "body"
	ParamInCookie   ParamLocation = "cookie"
)

// DefaultTag is assigned to operations that declare no tags.
const DefaultTag = "default"

type Tag struct {
	Name        string
	Description string
}

type Param struct {
	Name        string
	In          ParamLocation
	Required    bool
	Type        string
	Format      string
	Description string
	Enum        []any
	Default     any
	Example     any
	// Schema is set for body parameters and OpenAPI 3 parameters.
	Schema *Schema
}

// IsFile reports whether the parameter is a formData file upload.
func (p Param) IsFile() bool {
	return p.In == ParamInFormData && p.Type == "file"
}

type MediaType struct {
	ContentType string
	Schema      *Schema
}

type RequestBody struct {
	Description string
	Required    bool
	Content     []MediaType
}

// JSONSchema returns the schema of the first JSON-like content type.
func (b *RequestBody) JSONSchema() *Schema {
	if b == nil {
		return nil
	}
	for _, mt := range b.Content {
		if strings.Contains(strings.ToLower(mt.ContentType), "json") {
			return mt.Schema
		}
	}
	return nil
}

type Response struct {
	Status      string
	Description string
	Schema      *Schema
}

type Operation struct {
	Summary     string
	Description string
	OperationID string
	Deprecated  bool
	Tags        []string
	Params      []Param
	RequestBody *RequestBody
	Consumes    []string
	Responses   []Response
}

// BodyParam returns the legacy (Swagger 2) body parameter, if any.
func (op *Operation) BodyParam() *Param {
	for i := range op.Params {
		if op.Params[i].In == ParamInBody {
			return &op.Params[i]
		}
	}
	return nil
}

// BodySchema returns the JSON body schema declared by requestBody or a body parameter.
func (op *Operation) BodySchema() *Schema {
	if s := op.RequestBody.JSONSchema(); s != nil {
		return s
	}
	if p := op.BodyParam(); p != nil {
		return p.Schema
	}
	return nil
}

// HasJSONBody reports whether the operation accepts a JSON request body.
func (op *Operation) HasJSONBody() bool {
	if op.RequestBody.JSONSchema() != nil {
		return true
	}
	return op.BodyParam() != nil
}

func (op *Operation) ParamsIn(loc ParamLocation) []Param {
	var out []Param
	for _, p := range op.Params {
		if p.In == loc {
			out = append(out, p)
		}
	}
	return out
}

func (op *Operation) Param(name string) (Param, bool) {
	for _, p := range op.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

type Endpoint struct {
	Method    string
	Path      string
	Operation *Operation
}

// Label is the human name shown in lists: summary, operation id or path.
func (e Endpoint) Label() string {
	if e.Operation != nil {
		if s := strings.TrimSpace(e.Operation.Summary); s != "" {
			return s
		}
		if s := strings.TrimSpace(e.Operation.OperationID); s != "" {
			return s
		}
	}
	return e.Path
}

type Document struct {
	Title       string
	Version     string
	Description string
	BasePath    string
	Servers     []string
	Tags        []Tag
	Endpoints   []Endpoint
	Definitions map[string]*Schema

	// Source is where the document was loaded from: a file path or URL.
	Source string
	// Raw is the document exactly as loaded.
	Raw []byte
}

func (d *Document) Endpoint(path, method string) (Endpoint, bool) {
	if d == nil {
		return Endpoint{}, false
	}
	for _, ep := range d.Endpoints {
		if ep.Path == path && strings.EqualFold(ep.Method, method) {
			return ep, true
		}
	}
	return Endpoint{}, false
}

func (d *Document) Tag(name string) (Tag, bool) {
	for _, t := range d.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}
