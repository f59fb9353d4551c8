package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"apidesk/internal/headers"
	"apidesk/internal/model"
	"apidesk/internal/templates"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(true)
	table.SetAutoWrapText(false)
	return table
}

// Params writes the parameter table of an operation. values holds the
// current debug entry values, if any.
func Params(w io.Writer, params []model.Param, values map[string]string) {
	table := newTable(w, []string{"Name", "In", "Type", "Required", "Default", "Value", "Description"})
	for _, p := range params {
		if p.In == model.ParamInBody {
			continue
		}
		typ := p.Type
		if p.Format != "" {
			typ += " (" + p.Format + ")"
		}
		def := cell(p.Default)
		if len(p.Enum) > 0 {
			def = joinAny(p.Enum, "|")
		}
		req := ""
		if p.Required {
			req = "yes"
		}
		table.Append([]string{p.Name, string(p.In), typ, req, def, values[p.Name], oneLine(p.Description)})
	}
	table.Render()
}

// Headers writes the global header list with sensitive values masked.
func Headers(w io.Writer, list []model.Header) {
	table := newTable(w, []string{"#", "Key", "Value"})
	for i, h := range list {
		table.Append([]string{strconv.Itoa(i), h.Key, headers.Mask(h.Key, h.Value)})
	}
	table.Render()
}

func Rules(w io.Writer, rules []model.TokenRule) {
	table := newTable(w, []string{"#", "Enabled", "Path Pattern", "JSON Path", "Header", "Prefix"})
	for i, r := range rules {
		table.Append([]string{strconv.Itoa(i), strconv.FormatBool(r.Enabled), r.PathPattern, r.JSONPath, r.HeaderKey, strconv.Quote(r.Prefix)})
	}
	table.Render()
}

// Environments marks the selected environment with "*".
func Environments(w io.Writer, envs []model.Environment, current int) {
	table := newTable(w, []string{"#", "Name", "Base URL"})
	for i, e := range envs {
		idx := strconv.Itoa(i)
		if i == current {
			idx += "*"
		}
		table.Append([]string{idx, e.Name, e.BaseURL})
	}
	table.Render()
}

func Templates(w io.Writer, list []templates.Template) {
	table := newTable(w, []string{"ID", "Name", "Created"})
	for _, t := range list {
		table.Append([]string{t.ID, t.Name, t.CreatedAt.Format("2006-01-02 15:04")})
	}
	table.Render()
}

func cell(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func joinAny(vs []any, sep string) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = cell(v)
	}
	return strings.Join(parts, sep)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
