// Package ui is the gocui terminal interface: an endpoint tree, a request
// builder and a response viewer over a workbench.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jroimartin/gocui"
	"github.com/rs/zerolog"

	"apidesk/internal/model"
	"apidesk/internal/navtree"
	"apidesk/internal/render"
	"apidesk/internal/workbench"
)

type screen int

const (
	screenEndpoints screen = iota
	screenBuilder
	screenResponse
)

type dialogKind int

const (
	dialogNone dialogKind = iota
	dialogHeaders
	dialogTemplates
)

type editKind int

const (
	editParam editKind = iota
	editHeaderNew
	editHeader
	editTemplateName
)

type editTarget struct {
	kind  editKind
	name  string
	index int
}

type Options struct {
	Title string
	// LoadErr is shown until a reload succeeds.
	LoadErr error
	Reload  func(context.Context) (*model.Document, error)
}

type App struct {
	bench *workbench.Workbench
	opts  Options
	log   zerolog.Logger
	ctx   context.Context

	g *gocui.Gui

	scr screen

	filter   string
	lines    []navtree.Line
	selected int

	active  model.Endpoint
	panes   []pane
	paneIdx int
	rowIdx  int

	responseOrigin int

	editing   bool
	edit      editTarget
	editTitle string
	editSeed  string

	dialog    dialogKind
	dialogSel int

	suspendEditorFile string
	sending           bool

	loadErr error

	mu     sync.Mutex
	notice workbench.Notice
}

func New(bench *workbench.Workbench, opts Options, log zerolog.Logger) *App {
	a := &App{
		bench:   bench,
		opts:    opts,
		log:     log,
		scr:     screenEndpoints,
		loadErr: opts.LoadErr,
	}
	bench.AddListener(workbench.ListenerFunc(a.onNotice))
	a.recomputeLines()
	return a
}

func (a *App) onNotice(n workbench.Notice) {
	a.mu.Lock()
	a.notice = n
	a.mu.Unlock()
	a.update(func() {})
}

// update runs fn on the GUI goroutine and redraws. Between GUIs (while the
// external editor runs) fn runs directly.
func (a *App) update(fn func()) {
	a.mu.Lock()
	g := a.g
	a.mu.Unlock()
	if g == nil {
		fn()
		return
	}
	g.Update(func(*gocui.Gui) error {
		fn()
		return nil
	})
}

func (a *App) setNotice(level workbench.Level, msg string) {
	a.mu.Lock()
	a.notice = workbench.Notice{Level: level, Message: msg}
	a.mu.Unlock()
}

func (a *App) clearNotice() {
	a.setNotice(workbench.Info, "")
}

func (a *App) painter() render.Painter {
	prefs := a.bench.Prefs()
	return render.NewPainter(true, prefs.ThemeColor(), prefs.DarkMode())
}

// Run shows the UI until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	// gocui has no suspend/resume, so running $EDITOR means leaving the main
	// loop and building a fresh GUI afterwards.
	for {
		g, err := gocui.NewGui(gocui.Output256)
		if err != nil {
			return err
		}
		a.mu.Lock()
		a.g = g
		a.mu.Unlock()

		a.applyTheme()
		g.Cursor = false
		g.InputEsc = true
		g.SetManagerFunc(a.layout)

		if err := a.bindKeys(); err != nil {
			g.Close()
			return err
		}

		stop := context.AfterFunc(ctx, func() {
			g.Update(func(*gocui.Gui) error { return gocui.ErrQuit })
		})
		err = g.MainLoop()
		stop()
		g.Close()

		a.mu.Lock()
		a.g = nil
		a.mu.Unlock()

		if a.suspendEditorFile != "" {
			file := a.suspendEditorFile
			a.suspendEditorFile = ""
			if err := a.runExternalEditor(file); err != nil {
				a.setNotice(workbench.Error, err.Error())
			}
			continue
		}

		if err != nil && err != gocui.ErrQuit {
			return err
		}
		return nil
	}
}

func (a *App) applyTheme() {
	if a.g == nil {
		return
	}
	if a.bench.Prefs().DarkMode() {
		a.g.BgColor = gocui.ColorBlack
		a.g.FgColor = gocui.ColorWhite
	} else {
		a.g.BgColor = gocui.ColorDefault
		a.g.FgColor = gocui.ColorDefault
	}
}

// accent is the selection color for the chosen theme color.
func (a *App) accent() gocui.Attribute {
	switch strings.ToLower(a.bench.Prefs().ThemeColor()) {
	case "green":
		return gocui.ColorGreen
	case "cyan":
		return gocui.ColorCyan
	case "purple", "magenta":
		return gocui.ColorMagenta
	case "red":
		return gocui.ColorRed
	case "yellow", "orange":
		return gocui.ColorYellow
	}
	return gocui.ColorBlue
}

func (a *App) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if v, err := g.SetView("header", 0, 0, maxX-1, 2); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
	}
	a.renderHeader()

	if v, err := g.SetView("footer", 0, maxY-2, maxX-1, maxY); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
	}
	a.renderFooter()

	var err error
	switch a.scr {
	case screenEndpoints:
		err = a.layoutEndpoints(maxX, maxY)
	case screenBuilder:
		err = a.layoutBuilder(maxX, maxY)
	case screenResponse:
		err = a.layoutResponse(maxX, maxY)
	}
	if err != nil {
		return err
	}

	if a.dialog != dialogNone {
		if err := a.layoutDialog(maxX, maxY); err != nil {
			return err
		}
	}
	if a.editing {
		return a.layoutEdit(maxX, maxY)
	}
	return nil
}

func (a *App) renderHeader() {
	v, err := a.g.View("header")
	if err != nil {
		return
	}
	v.Clear()
	p := a.painter()
	title := a.opts.Title
	if title == "" {
		title = "apidesk"
	}
	line := p.Accent(title)
	if doc := a.bench.Document(); doc != nil {
		line += fmt.Sprintf("  %s %s", doc.Title, p.Dim(doc.Version))
	}
	if envs := a.bench.Environments(); len(envs) > 0 {
		line += "  " + p.Warn("["+envs[a.bench.CurrentEnv()].Name+"]")
	}
	if base := a.bench.BaseURL(); base != "" {
		line += "  " + p.Dim(base)
	}
	fmt.Fprintln(v, line)
}

func (a *App) renderFooter() {
	v, err := a.g.View("footer")
	if err != nil {
		return
	}
	v.Clear()
	p := a.painter()

	a.mu.Lock()
	n := a.notice
	a.mu.Unlock()

	switch {
	case n.Message != "" && n.Level == workbench.Error:
		fmt.Fprint(v, p.Error(n.Message))
	case n.Message != "":
		fmt.Fprint(v, p.Accent(n.Message))
	case a.loadErr != nil:
		fmt.Fprint(v, p.Error("load failed: "+a.loadErr.Error()+"  (ctrl+l: reload)"))
	case a.sending:
		fmt.Fprint(v, p.Dim("sending..."))
	default:
		fmt.Fprint(v, a.help())
	}
}

func (a *App) help() string {
	if a.editing {
		return "enter: ok   esc: cancel"
	}
	switch a.dialog {
	case dialogHeaders:
		return "a: add   enter: edit   x: delete   esc: close"
	case dialogTemplates:
		return "enter: load into body   x: delete   esc: close"
	}
	switch a.scr {
	case screenEndpoints:
		return "type: filter   enter: open/toggle   ←/→: collapse/expand   ctrl+g: headers   ctrl+n: env   ctrl+t: theme   ctrl+l: reload   ctrl+c: quit"
	case screenBuilder:
		msg := "tab: pane   enter: edit   d: reset   ctrl+r: send   v: last response   ctrl+y: copy cURL   ctrl+g: headers   esc: back"
		if a.currentPane().name == bodyPane.name {
			msg = "enter: edit in $EDITOR   s: save template   t: templates   d: reset   ctrl+r: send   ctrl+y: copy cURL   esc: back"
		}
		return msg
	case screenResponse:
		return "↑/↓: scroll   r: resend   ctrl+y: copy cURL   enter: endpoints   esc: back   q: quit"
	}
	return ""
}

var mainViews = []string{
	"filter", "endpoints", "selected", "path", "query", "headerparams", "form", "body", "response",
}

// clearMainViews deletes the main-area views not named in keep.
func (a *App) clearMainViews(keep ...string) {
	keepSet := map[string]bool{}
	for _, k := range keep {
		keepSet[k] = true
	}
	for _, n := range mainViews {
		if keepSet[n] {
			continue
		}
		if v, err := a.g.View(n); err == nil {
			v.Clear()
			a.g.DeleteView(n)
		}
	}
}

func (a *App) quit(*gocui.Gui, *gocui.View) error { return gocui.ErrQuit }

func (a *App) back(*gocui.Gui, *gocui.View) error {
	a.clearNotice()
	if a.editing {
		return a.closeEdit()
	}
	if a.dialog != dialogNone {
		a.closeDialog()
		return nil
	}
	switch a.scr {
	case screenResponse:
		a.scr = screenBuilder
	case screenBuilder:
		a.scr = screenEndpoints
	}
	return nil
}
