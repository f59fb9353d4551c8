package openapi

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"apidesk/internal/model"
	"apidesk/internal/schema"
)

var (
	ErrNotJSON     = errors.New("document is not JSON (YAML documents are not supported)")
	ErrNotOpenAPI  = errors.New("document has no swagger/openapi version or paths")
	httpMethodKeys = map[string]bool{
		"get": true, "put": true, "post": true, "delete": true,
		"options": true, "head": true, "patch": true, "trace": true,
	}
)

// Parse builds the document model from raw JSON, keeping the declaration
// order of paths, operations, properties and tags.
func Parse(raw []byte, log zerolog.Logger) (*model.Document, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrNotJSON
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, ErrNotJSON
	}
	if !root.Get("swagger").Exists() && !root.Get("openapi").Exists() && !root.Get("paths").Exists() {
		return nil, ErrNotOpenAPI
	}

	p := &parser{root: root}
	doc := &model.Document{
		Title:       root.Get("info.title").String(),
		Version:     root.Get("info.version").String(),
		Description: root.Get("info.description").String(),
		BasePath:    root.Get("basePath").String(),
		Definitions: p.definitions(),
		Raw:         raw,
	}

	root.Get("tags").ForEach(func(_, t gjson.Result) bool {
		if name := t.Get("name").String(); name != "" {
			doc.Tags = append(doc.Tags, model.Tag{Name: name, Description: t.Get("description").String()})
		}
		return true
	})

	globalConsumes := stringList(root.Get("consumes"))
	root.Get("paths").ForEach(func(pathKey, item gjson.Result) bool {
		path := pathKey.String()
		shared := p.params(item.Get("parameters"))
		item.ForEach(func(k, opNode gjson.Result) bool {
			method := strings.ToLower(k.String())
			if !httpMethodKeys[method] || !opNode.IsObject() {
				return true
			}
			op := p.operation(opNode, shared)
			if len(op.Consumes) == 0 {
				op.Consumes = globalConsumes
			}
			doc.Endpoints = append(doc.Endpoints, model.Endpoint{
				Method:    strings.ToUpper(method),
				Path:      path,
				Operation: op,
			})
			return true
		})
		return true
	})

	servers, err := declaredServers(raw, root)
	if err != nil {
		log.Warn().Err(err).Msg("could not derive servers from document, using raw fields")
		servers = rawServers(root)
	}
	doc.Servers = servers

	log.Debug().
		Str("title", doc.Title).
		Int("endpoints", len(doc.Endpoints)).
		Int("definitions", len(doc.Definitions)).
		Strs("servers", doc.Servers).
		Msg("parsed document")
	return doc, nil
}

type parser struct {
	root gjson.Result
}

func (p *parser) definitions() map[string]*model.Schema {
	defs := map[string]*model.Schema{}
	p.root.Get("components.schemas").ForEach(func(k, v gjson.Result) bool {
		defs[k.String()] = parseSchema(v)
		return true
	})
	// Swagger 2 definitions take precedence on a name clash.
	p.root.Get("definitions").ForEach(func(k, v gjson.Result) bool {
		defs[k.String()] = parseSchema(v)
		return true
	})
	return defs
}

func (p *parser) operation(node gjson.Result, shared []model.Param) *model.Operation {
	op := &model.Operation{
		Summary:     node.Get("summary").String(),
		Description: node.Get("description").String(),
		OperationID: node.Get("operationId").String(),
		Deprecated:  node.Get("deprecated").Bool(),
		Tags:        stringList(node.Get("tags")),
		Consumes:    stringList(node.Get("consumes")),
	}
	if len(op.Tags) == 0 {
		op.Tags = []string{model.DefaultTag}
	}

	own := p.params(node.Get("parameters"))
	for _, sp := range shared {
		overridden := false
		for _, o := range own {
			if o.Name == sp.Name && o.In == sp.In {
				overridden = true
				break
			}
		}
		if !overridden {
			op.Params = append(op.Params, sp)
		}
	}
	op.Params = append(op.Params, own...)

	if rb := p.deref(node.Get("requestBody"), "#/components/requestBodies/"); rb.Exists() {
		body := &model.RequestBody{
			Description: rb.Get("description").String(),
			Required:    rb.Get("required").Bool(),
		}
		rb.Get("content").ForEach(func(ct, mt gjson.Result) bool {
			body.Content = append(body.Content, model.MediaType{
				ContentType: ct.String(),
				Schema:      parseSchema(mt.Get("schema")),
			})
			return true
		})
		op.RequestBody = body
	}

	node.Get("responses").ForEach(func(status, r gjson.Result) bool {
		r = p.deref(r, "#/components/responses/", "#/responses/")
		op.Responses = append(op.Responses, model.Response{
			Status:      status.String(),
			Description: r.Get("description").String(),
			Schema:      responseSchema(r),
		})
		return true
	})
	return op
}

func (p *parser) params(list gjson.Result) []model.Param {
	var out []model.Param
	list.ForEach(func(_, v gjson.Result) bool {
		v = p.deref(v, "#/parameters/", "#/components/parameters/")
		name := v.Get("name").String()
		if name == "" {
			return true
		}
		param := model.Param{
			Name:        name,
			In:          model.ParamLocation(v.Get("in").String()),
			Required:    v.Get("required").Bool(),
			Type:        v.Get("type").String(),
			Format:      v.Get("format").String(),
			Description: v.Get("description").String(),
			Enum:        values(v.Get("enum")),
			Schema:      parseSchema(v.Get("schema")),
		}
		if d := v.Get("default"); d.Exists() {
			param.Default = schema.ValueOf(d)
		}
		if e := v.Get("example"); e.Exists() {
			param.Example = schema.ValueOf(e)
		}
		if s := v.Get("schema"); param.Type == "" && s.Exists() {
			param.Type = s.Get("type").String()
			if param.Format == "" {
				param.Format = s.Get("format").String()
			}
			if len(param.Enum) == 0 {
				param.Enum = values(s.Get("enum"))
			}
			if d := s.Get("default"); param.Default == nil && d.Exists() {
				param.Default = schema.ValueOf(d)
			}
		}
		out = append(out, param)
		return true
	})
	return out
}

// deref follows a local $ref to a reusable component. Unknown or remote
// refs are returned unchanged.
func (p *parser) deref(v gjson.Result, prefixes ...string) gjson.Result {
	for i := 0; i < 8; i++ {
		ref := v.Get(`\$ref`).String()
		if ref == "" {
			return v
		}
		var target gjson.Result
		for _, prefix := range prefixes {
			if strings.HasPrefix(ref, prefix) {
				target = p.root.Get(pointerPath(ref))
				break
			}
		}
		if !target.Exists() {
			return v
		}
		v = target
	}
	return v
}

// pointerPath turns "#/a/b.c" into the gjson path "a.b\.c".
func pointerPath(ref string) string {
	parts := strings.Split(strings.TrimPrefix(ref, "#/"), "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		parts[i] = gjson.Escape(part)
	}
	return strings.Join(parts, ".")
}

func responseSchema(r gjson.Result) *model.Schema {
	if s := r.Get("schema"); s.Exists() {
		return parseSchema(s)
	}
	var first, jsonLike *model.Schema
	r.Get("content").ForEach(func(ct, mt gjson.Result) bool {
		s := parseSchema(mt.Get("schema"))
		if s == nil {
			return true
		}
		if first == nil {
			first = s
		}
		if strings.Contains(strings.ToLower(ct.String()), "json") {
			jsonLike = s
			return false
		}
		return true
	})
	if jsonLike != nil {
		return jsonLike
	}
	return first
}

func parseSchema(v gjson.Result) *model.Schema {
	if !v.IsObject() {
		return nil
	}
	s := &model.Schema{
		Type:        declaredType(v.Get("type")),
		Format:      v.Get("format").String(),
		Description: v.Get("description").String(),
		Required:    stringList(v.Get("required")),
		Enum:        values(v.Get("enum")),
	}
	if d := v.Get("default"); d.Exists() {
		s.Default = schema.ValueOf(d)
	}
	if e := v.Get("example"); e.Exists() {
		s.Example = schema.ValueOf(e)
		s.HasExample = true
	}

	switch {
	case v.Get(`\$ref`).Exists():
		s.Kind = model.KindRef
		s.Ref = v.Get(`\$ref`).String()
		return s
	case v.Get("allOf").IsArray():
		s.Kind = model.KindAllOf
		v.Get("allOf").ForEach(func(_, m gjson.Result) bool {
			if ms := parseSchema(m); ms != nil {
				s.AllOf = append(s.AllOf, ms)
			}
			return true
		})
		return s
	}

	s.Kind = model.KindOf(s.Type)
	v.Get("properties").ForEach(func(k, pv gjson.Result) bool {
		if ps := parseSchema(pv); ps != nil {
			s.Properties = append(s.Properties, model.Property{Name: k.String(), Schema: ps})
		}
		return true
	})
	s.Items = parseSchema(v.Get("items"))
	return s
}

// declaredType reads "type", which OpenAPI 3.1 allows to be a list.
func declaredType(t gjson.Result) string {
	if !t.IsArray() {
		return t.String()
	}
	for _, item := range t.Array() {
		if item.String() != "null" {
			return item.String()
		}
	}
	return ""
}

func stringList(v gjson.Result) []string {
	var out []string
	v.ForEach(func(_, item gjson.Result) bool {
		if s := item.String(); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}

func values(v gjson.Result) []any {
	if !v.IsArray() {
		return nil
	}
	var out []any
	for _, item := range v.Array() {
		out = append(out, schema.ValueOf(item))
	}
	return out
}
