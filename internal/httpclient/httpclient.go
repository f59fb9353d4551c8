package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"apidesk/internal/headers"
	"apidesk/internal/model"
)

type Result struct {
	StatusCode int
	Status     string
	Elapsed    time.Duration
	Size       int
	Headers    map[string]string
	Body       []byte
	// JSON is set when Body parsed as JSON; Pretty is then the indented form.
	JSON   bool
	Pretty string
}

// OK reports a 2xx status.
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// FormField is one multipart or urlencoded field. File fields carry a
// local path in Value.
type FormField struct {
	Name  string
	Value string
	File  bool
}

type RequestSpec struct {
	Method  string
	URL     string
	Headers []model.Header
	Body    []byte
	// Form is kept for display; Body already holds its encoding.
	Form      []FormField
	Multipart bool
}

// Header returns the value of the named header, matched case-insensitively.
func (s RequestSpec) Header(key string) (string, bool) {
	for _, h := range s.Headers {
		if strings.EqualFold(h.Key, key) {
			return h.Value, true
		}
	}
	return "", false
}

// Input is everything a request is assembled from.
type Input struct {
	BaseURL  string
	Endpoint model.Endpoint
	Entry    model.DebugEntry
	Global   []model.Header
}

// Validate checks that every required path, query, header and formData
// parameter has a value.
func Validate(op *model.Operation, entry model.DebugEntry) error {
	if op == nil {
		return nil
	}
	var missing []string
	for _, p := range op.Params {
		switch p.In {
		case model.ParamInPath, model.ParamInQuery, model.ParamInHeader, model.ParamInFormData:
		default:
			continue
		}
		if p.Required && strings.TrimSpace(entry.Params[p.Name]) == "" {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return &MissingParamsError{Names: missing}
	}
	return nil
}

// BuildRequest assembles the request without touching the network.
// Validation failures are returned as *MissingParamsError or
// *InvalidBodyError.
func BuildRequest(in Input) (RequestSpec, error) {
	op := in.Endpoint.Operation
	if op == nil {
		op = &model.Operation{}
	}
	if err := Validate(op, in.Entry); err != nil {
		return RequestSpec{}, err
	}

	path := in.Endpoint.Path
	var query []string
	var hdrs []model.Header
	var form []FormField

	for _, h := range headers.Active(in.Global) {
		hdrs = setHeader(hdrs, h.Key, h.Value)
	}

	for _, p := range op.Params {
		v := in.Entry.Params[p.Name]
		switch p.In {
		case model.ParamInPath:
			if v != "" {
				path = strings.ReplaceAll(path, "{"+p.Name+"}", headers.EscapeComponent(v))
			}
		case model.ParamInQuery:
			if v != "" {
				query = append(query, url.QueryEscape(p.Name)+"="+url.QueryEscape(v))
			}
		case model.ParamInHeader:
			if v != "" && headers.ValidKey(p.Name) {
				hdrs = setHeader(hdrs, p.Name, headers.EncodeValue(v))
			}
		case model.ParamInFormData:
			if p.IsFile() {
				for _, f := range splitPaths(v) {
					form = append(form, FormField{Name: p.Name, Value: f, File: true})
				}
			} else if v != "" {
				form = append(form, FormField{Name: p.Name, Value: v})
			}
		}
	}

	u := strings.TrimRight(in.BaseURL, "/") + path
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + strings.Join(query, "&")
	}
	if _, err := url.Parse(u); err != nil {
		return RequestSpec{}, fmt.Errorf("invalid request url: %w", err)
	}

	spec := RequestSpec{Method: strings.ToUpper(in.Endpoint.Method), URL: u, Form: form}

	switch {
	case hasFile(form):
		body, ct, err := multipartBody(form)
		if err != nil {
			return RequestSpec{}, err
		}
		spec.Body = body
		spec.Multipart = true
		hdrs = setHeader(hdrs, "Content-Type", ct)

	case op.HasJSONBody() && strings.TrimSpace(in.Entry.Body) != "":
		raw := strings.TrimSpace(in.Entry.Body)
		if !json.Valid([]byte(raw)) {
			var check any
			err := json.Unmarshal([]byte(raw), &check)
			return RequestSpec{}, &InvalidBodyError{Err: err}
		}
		spec.Body = []byte(raw)
		hdrs = defaultHeader(hdrs, "Content-Type", "application/json")

	case len(form) > 0:
		var pairs []string
		for _, f := range form {
			pairs = append(pairs, url.QueryEscape(f.Name)+"="+url.QueryEscape(f.Value))
		}
		spec.Body = []byte(strings.Join(pairs, "&"))
		hdrs = defaultHeader(hdrs, "Content-Type", "application/x-www-form-urlencoded")
	}

	spec.Headers = hdrs
	return spec, nil
}

// setHeader replaces a header with the same key (case-insensitively) or
// appends it, keeping first-seen order.
func setHeader(list []model.Header, key, value string) []model.Header {
	for i := range list {
		if strings.EqualFold(list[i].Key, key) {
			list[i] = model.Header{Key: key, Value: value}
			return list
		}
	}
	return append(list, model.Header{Key: key, Value: value})
}

// defaultHeader appends key only when no header with that key is set.
func defaultHeader(list []model.Header, key, value string) []model.Header {
	for _, h := range list {
		if strings.EqualFold(h.Key, key) {
			return list
		}
	}
	return append(list, model.Header{Key: key, Value: value})
}

func splitPaths(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hasFile(form []FormField) bool {
	for _, f := range form {
		if f.File {
			return true
		}
	}
	return false
}

func multipartBody(form []FormField) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range form {
		if !f.File {
			if err := w.WriteField(f.Name, f.Value); err != nil {
				return nil, "", err
			}
			continue
		}
		if err := writeFile(w, f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload %s: %w", path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("read upload %s: %w", path, err)
	}
	return nil
}

// Client executes assembled requests. A zero timeout means none.
type Client struct {
	http *http.Client
	log  zerolog.Logger
}

func New(timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{http: &http.Client{Timeout: timeout}, log: log}
}

// Execute sends the request. A transport failure is a *DispatchError;
// any HTTP status, including 4xx and 5xx, is a normal Result.
func (c *Client) Execute(ctx context.Context, spec RequestSpec) (Result, error) {
	var body io.Reader
	if len(spec.Body) > 0 {
		body = bytes.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, spec.URL, body)
	if err != nil {
		return Result{}, &DispatchError{Method: spec.Method, URL: spec.URL, Err: err}
	}
	for _, h := range spec.Headers {
		req.Header.Set(h.Key, h.Value)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", spec.Method).Str("url", spec.URL).Msg("request failed")
		return Result{}, &DispatchError{Method: spec.Method, URL: spec.URL, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return Result{}, &DispatchError{Method: spec.Method, URL: spec.URL, Err: err}
	}

	res := Result{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Elapsed:    elapsed,
		Size:       len(b),
		Headers:    map[string]string{},
		Body:       b,
	}
	for k := range resp.Header {
		res.Headers[strings.ToLower(k)] = resp.Header.Get(k)
	}
	var pretty bytes.Buffer
	if json.Valid(b) && json.Indent(&pretty, b, "", "  ") == nil {
		res.JSON = true
		res.Pretty = pretty.String()
	}

	c.log.Debug().
		Str("method", spec.Method).
		Str("url", spec.URL).
		Int("status", res.StatusCode).
		Dur("elapsed", elapsed).
		Int("size", res.Size).
		Msg("request completed")
	return res, nil
}
