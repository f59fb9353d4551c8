// Package workbench owns the application state shared by the terminal UI
// and the CLI: the loaded document, every store, the environments, and the
// send flow.
package workbench

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"apidesk/internal/debugstore"
	"apidesk/internal/headers"
	"apidesk/internal/httpclient"
	"apidesk/internal/model"
	"apidesk/internal/navtree"
	"apidesk/internal/openapi"
	"apidesk/internal/prefs"
	"apidesk/internal/schema"
	"apidesk/internal/storage"
	"apidesk/internal/templates"
	"apidesk/internal/tokens"
)

var (
	ErrRequestInFlight = errors.New("a request is already in progress")
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	ErrNoDocument      = errors.New("no document loaded")
)

type Options struct {
	// BaseURL overrides environments and document servers when set.
	BaseURL        string
	Environments   []model.Environment
	GlobalHeaders  []model.Header
	DarkMode       bool
	RequestTimeout time.Duration
}

// Stores are the two key-value backends: durable survives restarts,
// session lives for one run.
type Stores struct {
	Durable storage.Store
	Session storage.Store
}

type Workbench struct {
	log zerolog.Logger

	doc       *model.Document
	resolver  *schema.Resolver
	generator *schema.Generator

	debug     *debugstore.Store
	headers   *headers.Store
	rules     *tokens.Store
	templates *templates.Store
	prefs     *prefs.Prefs
	expand    *navtree.ExpandState
	client    *httpclient.Client

	override string
	envs     []model.Environment

	mu        sync.Mutex
	inFlight  bool
	listeners []Listener
}

func New(doc *model.Document, st Stores, opts Options, log zerolog.Logger) *Workbench {
	w := &Workbench{
		log:       log,
		debug:     debugstore.New(st.Session, log),
		headers:   headers.NewStore(st.Durable, log, opts.GlobalHeaders),
		rules:     tokens.NewStore(st.Durable, log),
		templates: templates.NewStore(st.Durable, log),
		prefs:     prefs.New(st.Durable, log, opts.DarkMode),
		expand:    navtree.NewExpandState(st.Session, log),
		client:    httpclient.New(opts.RequestTimeout, log),
		override:  strings.TrimSpace(opts.BaseURL),
		envs:      opts.Environments,
	}
	w.setDocument(doc)
	return w
}

// SetDocument swaps in a freshly loaded document. It fails with
// ErrRequestInFlight while Send is running, since Send reads the document
// and resolver without holding mu.
func (w *Workbench) SetDocument(doc *model.Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return ErrRequestInFlight
	}
	w.setDocument(doc)
	return nil
}

func (w *Workbench) setDocument(doc *model.Document) {
	w.doc = doc
	var defs map[string]*model.Schema
	if doc != nil {
		defs = doc.Definitions
	}
	w.resolver = schema.NewResolver(defs)
	w.generator = schema.NewGenerator(w.resolver)
}

func (w *Workbench) Document() *model.Document         { return w.doc }
func (w *Workbench) Debug() *debugstore.Store          { return w.debug }
func (w *Workbench) Templates() *templates.Store       { return w.templates }
func (w *Workbench) Prefs() *prefs.Prefs               { return w.prefs }
func (w *Workbench) Resolver() *schema.Resolver        { return w.resolver }
func (w *Workbench) Generator() *schema.Generator      { return w.generator }
func (w *Workbench) ExpandState() *navtree.ExpandState { return w.expand }

func (w *Workbench) Endpoint(path, method string) (model.Endpoint, error) {
	if w.doc == nil {
		return model.Endpoint{}, ErrNoDocument
	}
	ep, ok := w.doc.Endpoint(path, method)
	if !ok {
		return model.Endpoint{}, fmt.Errorf("%w: %s %s", ErrUnknownEndpoint, strings.ToUpper(method), path)
	}
	return ep, nil
}

// Tree builds the navigation tree, filtered by query.
func (w *Workbench) Tree(query string) *navtree.Tree {
	var tags []model.Tag
	if w.doc != nil {
		tags = w.doc.Tags
	}
	return navtree.Build(navtree.GroupByTag(w.doc, query), tags)
}

// Lines is the visible navigation rows given the session's collapsed groups.
func (w *Workbench) Lines(query string) []navtree.Line {
	return w.Tree(query).Lines(w.expand.Expanded)
}

// Environments

func (w *Workbench) Environments() []model.Environment {
	return w.envs
}

func (w *Workbench) CurrentEnv() int {
	return w.prefs.CurrentEnv(len(w.envs))
}

func (w *Workbench) UseEnv(idx int) error {
	if idx < 0 || idx >= len(w.envs) {
		return fmt.Errorf("environment %d out of range (have %d)", idx, len(w.envs))
	}
	w.prefs.SetCurrentEnv(idx)
	w.notify(Info, "environment: "+w.envs[idx].Name)
	return nil
}

// CycleEnv selects the next environment and returns its index, or -1 when
// none are configured.
func (w *Workbench) CycleEnv() int {
	if len(w.envs) == 0 {
		return -1
	}
	next := (w.CurrentEnv() + 1) % len(w.envs)
	_ = w.UseEnv(next)
	return next
}

// BaseURL is the explicit override, else the selected environment, else
// the first server the document declares (or its basePath). A relative
// result is resolved against a remote document's URL.
func (w *Workbench) BaseURL() string {
	base := w.override
	if base == "" && len(w.envs) > 0 {
		base = strings.TrimSpace(w.envs[w.CurrentEnv()].BaseURL)
	}
	if base == "" && w.doc != nil {
		if len(w.doc.Servers) > 0 {
			base = w.doc.Servers[0]
		} else {
			base = w.doc.BasePath
		}
	}
	return w.absolute(base)
}

func (w *Workbench) absolute(base string) string {
	if w.doc == nil || !openapi.IsRemote(w.doc.Source) || openapi.IsRemote(base) {
		return base
	}
	src, err := url.Parse(w.doc.Source)
	if err != nil {
		return base
	}
	if base == "" {
		return src.Scheme + "://" + src.Host
	}
	ref, err := url.Parse(base)
	if err != nil || ref.IsAbs() {
		return base
	}
	return src.ResolveReference(ref).String()
}

// Global headers and token rules

func (w *Workbench) Headers() []model.Header {
	return w.headers.Load()
}

func (w *Workbench) SaveHeaders(list []model.Header) ([]model.Header, error) {
	saved, err := w.headers.Save(list)
	if err != nil {
		w.notify(Error, err.Error())
		return nil, err
	}
	w.notify(Info, "global headers saved")
	return saved, nil
}

// SetHeader upserts one global header.
func (w *Workbench) SetHeader(key, value string) error {
	if !headers.ValidKey(key) {
		err := &headers.InvalidKeysError{Keys: []string{key}}
		w.notify(Error, err.Error())
		return err
	}
	_, err := w.SaveHeaders(headers.Upsert(w.Headers(), key, value))
	return err
}

func (w *Workbench) RemoveHeader(key string) error {
	var keep []model.Header
	for _, h := range w.Headers() {
		if h.Key != key {
			keep = append(keep, h)
		}
	}
	_, err := w.SaveHeaders(keep)
	return err
}

func (w *Workbench) ClearHeaders() error {
	return w.headers.Clear()
}

func (w *Workbench) Rules() []model.TokenRule {
	return w.rules.Load()
}

func (w *Workbench) SaveRules(rules []model.TokenRule) ([]model.TokenRule, error) {
	saved, err := w.rules.Save(rules)
	if err != nil {
		w.notify(Error, err.Error())
		return nil, err
	}
	return saved, nil
}

func (w *Workbench) ClearRules() error {
	return w.rules.Clear()
}

// Examples

type ResponseExample struct {
	Status      string
	Description string
	Value       any
	HasValue    bool
}

type Examples struct {
	Request    any
	HasRequest bool
	Responses  []ResponseExample
}

func (w *Workbench) Examples(op *model.Operation) Examples {
	var ex Examples
	if op == nil {
		return ex
	}
	if s := op.BodySchema(); s != nil {
		ex.Request = w.generator.Example(s)
		ex.HasRequest = true
	}
	for _, r := range op.Responses {
		re := ResponseExample{Status: r.Status, Description: r.Description}
		if r.Schema != nil {
			re.Value = w.generator.Example(r.Schema)
			re.HasValue = true
		}
		ex.Responses = append(ex.Responses, re)
	}
	return ex
}

// DraftBody is the body text to edit: the saved body, else the generated
// request example.
func (w *Workbench) DraftBody(ep model.Endpoint) string {
	if body := w.debug.Get(ep.Path, ep.Method).Body; body != "" {
		return body
	}
	if v := w.generator.RequestExample(ep.Operation); v != nil {
		return schema.Pretty(v)
	}
	return ""
}

// Sending

// Build assembles the request for an endpoint from its debug entry and the
// global headers, without sending it.
func (w *Workbench) Build(path, method string) (httpclient.RequestSpec, error) {
	ep, err := w.Endpoint(path, method)
	if err != nil {
		return httpclient.RequestSpec{}, err
	}
	return httpclient.BuildRequest(httpclient.Input{
		BaseURL:  w.BaseURL(),
		Endpoint: ep,
		Entry:    w.debug.Get(ep.Path, ep.Method),
		Global:   w.Headers(),
	})
}

type Outcome struct {
	Spec     httpclient.RequestSpec
	Result   httpclient.Result
	Snapshot model.ResponseSnapshot
	Updates  []tokens.Update
}

func (w *Workbench) acquire() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return false
	}
	w.inFlight = true
	return true
}

func (w *Workbench) release() {
	w.mu.Lock()
	w.inFlight = false
	w.mu.Unlock()
}

// Send dispatches the endpoint's request. Only one request may be in flight
// at a time. Every received response, and every transport failure, is
// stored in the endpoint's debug entry.
func (w *Workbench) Send(ctx context.Context, path, method string) (Outcome, error) {
	if !w.acquire() {
		w.notify(Error, ErrRequestInFlight.Error())
		return Outcome{}, ErrRequestInFlight
	}
	defer w.release()

	ep, err := w.Endpoint(path, method)
	if err != nil {
		return Outcome{}, err
	}
	spec, err := w.Build(ep.Path, ep.Method)
	if err != nil {
		w.notify(Error, err.Error())
		return Outcome{}, err
	}

	out := Outcome{Spec: spec}
	res, err := w.client.Execute(ctx, spec)
	if err != nil {
		out.Snapshot = model.ResponseSnapshot{Status: "Error", Content: err.Error(), IsError: true}
		w.debug.SetResponse(ep.Path, ep.Method, &out.Snapshot)
		w.notify(Error, err.Error())
		return out, err
	}

	out.Result = res
	out.Snapshot = snapshot(res)
	w.debug.SetResponse(ep.Path, ep.Method, &out.Snapshot)

	if res.OK() && res.JSON {
		out.Updates = w.extract(ep.Path, res.Body)
	}
	w.log.Info().
		Str("method", spec.Method).
		Str("url", spec.URL).
		Int("status", res.StatusCode).
		Dur("elapsed", res.Elapsed).
		Msg("sent")
	return out, nil
}

func (w *Workbench) extract(path string, body []byte) []tokens.Update {
	updates := tokens.Extract(body, path, w.Rules())
	if len(updates) == 0 {
		return nil
	}
	if _, err := w.headers.Save(tokens.Apply(w.Headers(), updates)); err != nil {
		w.log.Warn().Err(err).Msg("could not store extracted headers")
		w.notify(Error, "could not store extracted headers: "+err.Error())
		return updates
	}
	for _, u := range updates {
		w.notify(Info, "extracted "+u.Key)
	}
	return updates
}

func snapshot(res httpclient.Result) model.ResponseSnapshot {
	content := string(res.Body)
	if res.JSON {
		content = res.Pretty
	}
	return model.ResponseSnapshot{
		Status:     strconv.Itoa(res.StatusCode),
		StatusCode: res.StatusCode,
		ElapsedMs:  res.Elapsed.Milliseconds(),
		Size:       res.Size,
		Content:    content,
		IsError:    !res.OK(),
		Headers:    res.Headers,
	}
}
