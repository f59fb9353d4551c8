package httpclient

import (
	"strings"
)

// Curl renders spec as a shell command.
func Curl(spec RequestSpec) string {
	var b strings.Builder
	b.WriteString("curl -X ")
	b.WriteString(spec.Method)
	b.WriteString(" " + shellQuote(spec.URL))

	for _, h := range spec.Headers {
		// curl computes the multipart boundary itself.
		if spec.Multipart && strings.EqualFold(h.Key, "Content-Type") {
			continue
		}
		b.WriteString(" \\\n  -H " + shellQuote(h.Key+": "+h.Value))
	}

	switch {
	case spec.Multipart:
		for _, f := range spec.Form {
			v := f.Value
			if f.File {
				v = "@" + v
			}
			b.WriteString(" \\\n  -F " + shellQuote(f.Name+"="+v))
		}
	case len(spec.Body) > 0:
		b.WriteString(" \\\n  -d " + shellQuote(string(spec.Body)))
	}
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
