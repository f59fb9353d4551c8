package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"apidesk/internal/model"
	"apidesk/internal/render"
)

// pane is one editable section of the request builder.
type pane struct {
	name  string
	title string
	loc   model.ParamLocation
}

var paramPanes = []pane{
	{name: "path", title: "Path Params", loc: model.ParamInPath},
	{name: "query", title: "Query Params", loc: model.ParamInQuery},
	{name: "headerparams", title: "Header Params", loc: model.ParamInHeader},
	{name: "form", title: "Form Data", loc: model.ParamInFormData},
}

var bodyPane = pane{name: "body", title: "Body", loc: model.ParamInBody}

// panesFor lists the builder panes an operation needs. An operation with
// nothing to fill in still gets the path pane so the screen is not empty.
func panesFor(op *model.Operation) []pane {
	var out []pane
	if op == nil {
		return []pane{paramPanes[0]}
	}
	for _, p := range paramPanes {
		if len(op.ParamsIn(p.loc)) > 0 {
			out = append(out, p)
		}
	}
	if op.HasJSONBody() {
		out = append(out, bodyPane)
	}
	if len(out) == 0 {
		out = append(out, paramPanes[0])
	}
	return out
}

type row struct {
	Name     string
	Required bool
	Value    string
	Hint     string
}

func paramRows(op *model.Operation, loc model.ParamLocation, entry model.DebugEntry) []row {
	if op == nil {
		return nil
	}
	var rows []row
	for _, p := range op.ParamsIn(loc) {
		rows = append(rows, row{
			Name:     p.Name,
			Required: p.Required,
			Value:    entry.Params[p.Name],
			Hint:     paramHint(p),
		})
	}
	return rows
}

func paramHint(p model.Param) string {
	var parts []string
	if p.IsFile() {
		parts = append(parts, "file paths, comma-separated")
	} else if p.Type != "" {
		parts = append(parts, p.Type)
	}
	if len(p.Enum) > 0 {
		vals := make([]string, len(p.Enum))
		for i, v := range p.Enum {
			vals[i] = fmt.Sprint(v)
		}
		parts = append(parts, strings.Join(vals, "|"))
	}
	if p.Default != nil {
		parts = append(parts, fmt.Sprintf("default: %v", p.Default))
	}
	if d := strings.Join(strings.Fields(p.Description), " "); d != "" {
		parts = append(parts, d)
	}
	return strings.Join(parts, ", ")
}

// rowText is "*name = value"; an empty value shows the hint dimmed.
func rowText(r row, p render.Painter) string {
	req := ""
	if r.Required {
		req = "*"
	}
	if r.Value != "" {
		return fmt.Sprintf("%s%s = %s", req, r.Name, r.Value)
	}
	if r.Hint != "" {
		return fmt.Sprintf("%s%s = %s", req, r.Name, p.Dim(r.Hint))
	}
	return fmt.Sprintf("%s%s = ", req, r.Name)
}

// rowKey extracts the parameter name back out of a rendered row.
func rowKey(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "(") {
		return ""
	}
	line = strings.TrimPrefix(line, "*")
	name, _, _ := strings.Cut(line, " = ")
	return strings.TrimSpace(name)
}

var errInvalidJSON = errors.New("body is not valid JSON")

// checkBody trims an edited body and rejects text that is not JSON. An
// empty body is allowed.
func checkBody(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if !gjson.Valid(text) {
		return "", errInvalidJSON
	}
	return text, nil
}

// parseHeaderInput reads "Key: Value" as typed in the headers dialog.
func parseHeaderInput(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, ":")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected Key: Value, got %q", s)
	}
	return key, strings.TrimSpace(value), nil
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// bodyPreview is the first lines of a body for the builder pane.
func bodyPreview(body string, max int) []string {
	if strings.TrimSpace(body) == "" {
		return []string{"(empty, enter to edit)"}
	}
	lines := strings.Split(body, "\n")
	if len(lines) > max {
		more := len(lines) - max
		lines = append(lines[:max:max], fmt.Sprintf("... %d more lines", more))
	}
	return lines
}
