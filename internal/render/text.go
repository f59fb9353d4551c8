package render

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"gopkg.in/yaml.v3"

	"apidesk/internal/model"
	"apidesk/internal/navtree"
	"apidesk/internal/schema"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// TreeLines renders navigation rows, one string per row, in the same order
// as lines so callers can map a cursor back to a row.
func TreeLines(lines []navtree.Line, expanded func(string) bool, p Painter) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		indent := strings.Repeat("  ", l.Depth)
		if l.IsGroup() {
			marker := "▾"
			if expanded != nil && !expanded(l.Node.Name) {
				marker = "▸"
			}
			out = append(out, fmt.Sprintf("%s%s %s %s", indent, marker, p.Accent(l.Node.Label), p.Dim(fmt.Sprintf("(%d)", l.Node.Count()))))
			continue
		}
		out = append(out, indent+EndpointLine(*l.Endpoint, p))
	}
	return out
}

// EndpointLine is "METHOD /path summary".
func EndpointLine(ep model.Endpoint, p Painter) string {
	line := p.Method(ep.Method) + " " + p.Path(ep.Path)
	if ep.Operation != nil {
		if s := oneLine(ep.Operation.Summary); s != "" {
			line += " " + p.Dim(s)
		}
		if ep.Operation.Deprecated {
			line += " " + p.Warn("(deprecated)")
		}
	}
	return line
}

// Detail writes the endpoint header, its parameters and its declared
// request and response types.
func Detail(w io.Writer, ep model.Endpoint, values map[string]string, p Painter) {
	fmt.Fprintln(w, EndpointLine(ep, p))
	op := ep.Operation
	if op == nil {
		return
	}
	if d := strings.TrimSpace(op.Description); d != "" {
		fmt.Fprintf(w, "\n%s\n", d)
	}
	fmt.Fprintln(w)
	if op.OperationID != "" {
		fmt.Fprintf(w, "operationId: %s\n", op.OperationID)
	}
	if len(op.Tags) > 0 {
		fmt.Fprintf(w, "tags: %s\n", strings.Join(op.Tags, ", "))
	}
	if len(op.Consumes) > 0 {
		fmt.Fprintf(w, "consumes: %s\n", strings.Join(op.Consumes, ", "))
	}

	var params []model.Param
	for _, prm := range op.Params {
		if prm.In != model.ParamInBody {
			params = append(params, prm)
		}
	}
	if len(params) > 0 {
		fmt.Fprintln(w, "\nParameters:")
		Params(w, params, values)
	}

	if op.RequestBody != nil {
		var types []string
		for _, mt := range op.RequestBody.Content {
			types = append(types, mt.ContentType)
		}
		req := ""
		if op.RequestBody.Required {
			req = " (required)"
		}
		fmt.Fprintf(w, "\nRequest body%s: %s\n", req, strings.Join(types, ", "))
	} else if bp := op.BodyParam(); bp != nil {
		fmt.Fprintf(w, "\nRequest body: %s\n", bp.Name)
	}

	if len(op.Responses) > 0 {
		fmt.Fprintln(w, "\nResponses:")
		for _, r := range op.Responses {
			code, _ := strconv.Atoi(r.Status)
			fmt.Fprintf(w, "  %s  %s\n", p.Status(code, padRight(r.Status, 7)), oneLine(r.Description))
		}
	}
}

// Example encodes a generated example. Objects keep schema property order.
func Example(v any, format Format) (string, error) {
	switch format {
	case JSON, "":
		return schema.Pretty(v), nil
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("encode yaml example: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	return "", fmt.Errorf("unknown format: %v", format)
}

// Snapshot writes a stored response: the status line, timing and size,
// then headers (when verbose) and the body.
func Snapshot(w io.Writer, s model.ResponseSnapshot, verbose bool, p Painter) {
	status := s.Status
	if t := http.StatusText(s.StatusCode); t != "" {
		status += " " + t
	}
	fmt.Fprint(w, p.Status(s.StatusCode, status))
	if s.StatusCode != 0 {
		fmt.Fprint(w, p.Dim(fmt.Sprintf("  %dms  %s", s.ElapsedMs, Size(s.Size))))
	}
	fmt.Fprintln(w)

	if verbose && len(s.Headers) > 0 {
		keys := make([]string, 0, len(s.Headers))
		for k := range s.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s: %s\n", p.Dim(k), s.Headers[k])
		}
	} else if ct := s.Headers["content-type"]; ct != "" {
		fmt.Fprintf(w, "%s\n", p.Dim("content-type: "+ct))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Body(s.Content, lexerFor(s.Headers["content-type"], s.Content)))
}

func lexerFor(contentType, content string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return "json"
	case strings.Contains(ct, "xml"):
		return "xml"
	case strings.Contains(ct, "html"):
		return "html"
	case strings.Contains(ct, "yaml"):
		return "yaml"
	}
	if t := strings.TrimSpace(content); strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
		return "json"
	}
	return ""
}

// Body syntax-highlights content with the named lexer. Unknown lexers and
// disabled painters return the content unchanged.
func (p Painter) Body(content, lexer string) string {
	if !p.enabled || lexer == "" || content == "" {
		return content
	}
	style := "github"
	if p.dark {
		style = "monokai"
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, lexer, "terminal256", style); err != nil {
		return content
	}
	return buf.String()
}

// Size formats a byte count.
func Size(n int) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
}
