package openapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"apidesk/internal/model"
)

const swagger2Doc = `{
  "swagger": "2.0",
  "info": {"title": "Pet Store", "version": "1.0.0"},
  "host": "api.example.com",
  "basePath": "/v1",
  "schemes": ["http"],
  "consumes": ["application/json"],
  "tags": [
    {"name": "Admin-User", "description": "user admin"},
    {"name": "pets"}
  ],
  "parameters": {
    "Trace": {"name": "X-Trace", "in": "header", "type": "string"}
  },
  "paths": {
    "/pets/{id}": {
      "parameters": [
        {"name": "id", "in": "path", "required": true, "type": "integer"},
        {"$ref": "#/parameters/Trace"}
      ],
      "put": {
        "tags": ["pets"],
        "summary": "Update pet",
        "parameters": [
          {"name": "X-Trace", "in": "header", "type": "string", "required": true},
          {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/Pet"}}
        ],
        "responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/Pet"}}}
      },
      "get": {
        "summary": "Get pet",
        "responses": {"200": {"description": "ok"}}
      }
    },
    "/upload": {
      "post": {
        "tags": ["Admin-User"],
        "consumes": ["multipart/form-data"],
        "parameters": [
          {"name": "file", "in": "formData", "type": "file", "required": true},
          {"name": "note", "in": "formData", "type": "string"}
        ],
        "responses": {}
      }
    }
  },
  "definitions": {
    "Pet": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "example": "rex"},
        "id": {"type": "integer"},
        "kind": {"type": "string", "enum": ["dog", "cat"]}
      }
    }
  }
}`

const openapi3Doc = `{
  "openapi": "3.0.3",
  "info": {"title": "Orders", "version": "2"},
  "servers": [{"url": "https://{env}.example.com/v2", "variables": {"env": {"default": "api"}}}],
  "paths": {
    "/orders": {
      "post": {
        "operationId": "createOrder",
        "parameters": [{"name": "dry", "in": "query", "schema": {"type": "boolean", "default": false}}],
        "requestBody": {"$ref": "#/components/requestBodies/Order"},
        "responses": {
          "201": {"description": "created", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Order"}}}}
        }
      }
    }
  },
  "components": {
    "requestBodies": {
      "Order": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Order"}}}}
    },
    "schemas": {
      "Order": {"type": "object", "properties": {"sku": {"type": "string"}, "qty": {"type": "integer"}}}
    }
  }
}`

func parse(t *testing.T, raw string) *model.Document {
	t.Helper()
	doc, err := Parse([]byte(raw), zerolog.Nop())
	require.NoError(t, err)
	return doc
}

func TestParseSwagger2(t *testing.T) {
	doc := parse(t, swagger2Doc)

	assert.Equal(t, "Pet Store", doc.Title)
	assert.Equal(t, "/v1", doc.BasePath)
	assert.Equal(t, []string{"http://api.example.com/v1"}, doc.Servers)
	require.Len(t, doc.Tags, 2)
	assert.Equal(t, "user admin", doc.Tags[0].Description)

	require.Len(t, doc.Endpoints, 3)
	assert.Equal(t, "PUT", doc.Endpoints[0].Method)
	assert.Equal(t, "GET", doc.Endpoints[1].Method)
	assert.Equal(t, "/upload", doc.Endpoints[2].Path)

	put := doc.Endpoints[0].Operation
	assert.Equal(t, []string{"pets"}, put.Tags)
	assert.Equal(t, []string{"application/json"}, put.Consumes)
	require.Len(t, put.Params, 3)
	assert.Equal(t, "id", put.Params[0].Name)
	// The operation's own X-Trace replaces the shared one.
	trace, ok := put.Param("X-Trace")
	require.True(t, ok)
	assert.True(t, trace.Required)
	assert.True(t, put.HasJSONBody())
	require.NotNil(t, put.BodySchema())
	assert.Equal(t, model.KindRef, put.BodySchema().Kind)

	get := doc.Endpoints[1].Operation
	assert.Equal(t, []string{model.DefaultTag}, get.Tags)
	require.Len(t, get.Params, 2)
	assert.Equal(t, model.ParamInHeader, get.Params[1].In)

	upload := doc.Endpoints[2].Operation
	assert.Equal(t, []string{"multipart/form-data"}, upload.Consumes)
	assert.True(t, upload.Params[0].IsFile())
	assert.False(t, upload.Params[1].IsFile())
}

func TestParseKeepsPropertyOrder(t *testing.T) {
	doc := parse(t, swagger2Doc)
	pet := doc.Definitions["Pet"]
	require.NotNil(t, pet)
	require.Len(t, pet.Properties, 3)
	assert.Equal(t, "name", pet.Properties[0].Name)
	assert.Equal(t, "id", pet.Properties[1].Name)
	assert.Equal(t, "kind", pet.Properties[2].Name)
	assert.True(t, pet.Properties[0].Schema.HasExample)
	assert.Equal(t, "rex", pet.Properties[0].Schema.Example)
	assert.Equal(t, []any{"dog", "cat"}, pet.Properties[2].Schema.Enum)
	assert.Equal(t, []string{"name"}, pet.Required)
}

func TestParseOpenAPI3(t *testing.T) {
	doc := parse(t, openapi3Doc)

	assert.Equal(t, []string{"https://api.example.com/v2"}, doc.Servers)
	require.Len(t, doc.Endpoints, 1)
	op := doc.Endpoints[0].Operation
	assert.Equal(t, "createOrder", doc.Endpoints[0].Label())

	require.NotNil(t, op.RequestBody)
	assert.True(t, op.RequestBody.Required)
	require.NotNil(t, op.BodySchema())
	assert.Equal(t, "#/components/schemas/Order", op.BodySchema().Ref)

	dry, ok := op.Param("dry")
	require.True(t, ok)
	assert.Equal(t, "boolean", dry.Type)
	assert.Equal(t, false, dry.Default)

	require.Len(t, op.Responses, 1)
	assert.Equal(t, "201", op.Responses[0].Status)
	require.NotNil(t, op.Responses[0].Schema)
}

func TestParseRejects(t *testing.T) {
	_, err := Parse([]byte("openapi: 3.0.0\npaths: {}\n"), zerolog.Nop())
	assert.ErrorIs(t, err, ErrNotJSON)

	_, err = Parse([]byte(`{"hello": "world"}`), zerolog.Nop())
	assert.ErrorIs(t, err, ErrNotOpenAPI)

	_, err = Parse([]byte(`[1,2]`), zerolog.Nop())
	assert.ErrorIs(t, err, ErrNotJSON)
}

func TestSwagger2HostDefaults(t *testing.T) {
	doc := parse(t, `{"swagger":"2.0","host":"h.example","paths":{}}`)
	assert.Equal(t, []string{"https://h.example/"}, doc.Servers)
}

func TestRawServers(t *testing.T) {
	root := gjson.Parse(`{"servers":[{"url":"http://{h}:8080","variables":{"h":{"default":"localhost"}}},{"url":"/api"}]}`)
	assert.Equal(t, []string{"http://localhost:8080", "/api"}, rawServers(root))

	root = gjson.Parse(`{"host":"h.example","basePath":"/v1","schemes":["http","https"]}`)
	assert.Equal(t, []string{"http://h.example/v1"}, rawServers(root))

	assert.Nil(t, rawServers(gjson.Parse(`{}`)))
}

func TestLoadFileAndURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "api.json")
	require.NoError(t, os.WriteFile(path, []byte(openapi3Doc), 0o644))

	l := NewLoader(zerolog.Nop())

	doc, err := l.Load(context.Background(), "@"+path)
	require.NoError(t, err)
	assert.Equal(t, "Orders", doc.Title)
	assert.Equal(t, path, doc.Source)

	doc, err = l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Orders", doc.Title)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(swagger2Doc))
	}))
	defer srv.Close()

	doc, err = l.Load(context.Background(), srv.URL+"/openapi.json")
	require.NoError(t, err)
	assert.Equal(t, "Pet Store", doc.Title)

	_, err = l.Load(context.Background(), srv.URL+"/missing.json")
	assert.Error(t, err)

	_, err = l.Load(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestExportVerbatim(t *testing.T) {
	doc := parse(t, swagger2Doc)
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, doc))
	assert.Equal(t, swagger2Doc, buf.String())

	assert.Error(t, Export(&buf, &model.Document{}))
}
