package ui

import (
	"fmt"
	"strings"

	"github.com/jroimartin/gocui"

	"apidesk/internal/model"
	"apidesk/internal/render"
	"apidesk/internal/workbench"
)

func (a *App) openBuilder(ep model.Endpoint) {
	a.active = ep
	a.panes = panesFor(ep.Operation)
	a.paneIdx = 0
	a.rowIdx = 0
	a.scr = screenBuilder
	a.clearNotice()
}

func (a *App) currentPane() pane {
	if len(a.panes) == 0 {
		return pane{}
	}
	return a.panes[clamp(a.paneIdx, len(a.panes))]
}

func (a *App) entry() model.DebugEntry {
	return a.bench.Debug().Get(a.active.Path, a.active.Method)
}

func (a *App) layoutBuilder(maxX, maxY int) error {
	keep := []string{"selected"}
	for _, p := range a.panes {
		keep = append(keep, p.name)
	}
	a.clearMainViews(keep...)

	if v, err := a.g.SetView("selected", 0, 2, maxX-1, 5); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Endpoint"
	}

	top, bottom := 5, maxY-3
	height := (bottom - top) / len(a.panes)
	for i, p := range a.panes {
		y0 := top + i*height
		y1 := y0 + height
		if i == len(a.panes)-1 {
			y1 = bottom
		}
		if v, err := a.g.SetView(p.name, 0, y0, maxX-1, y1); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
			v.Title = p.title
		}
	}

	a.renderBuilder()
	a.updatePaneColors()
	return a.focus(a.currentPane().name)
}

func (a *App) updatePaneColors() {
	cur := a.currentPane().name
	for _, p := range a.panes {
		v, err := a.g.View(p.name)
		if err != nil {
			continue
		}
		if p.name == cur && !a.editing && a.dialog == dialogNone {
			v.Highlight = p.name != bodyPane.name
			v.SelBgColor = a.accent()
			v.SelFgColor = gocui.ColorBlack
		} else {
			v.Highlight = false
		}
	}
}

func (a *App) renderBuilder() {
	p := a.painter()
	entry := a.entry()

	if v, err := a.g.View("selected"); err == nil {
		v.Clear()
		fmt.Fprintln(v, render.EndpointLine(a.active, p))
		base := a.bench.BaseURL()
		if base == "" {
			fmt.Fprintln(v, p.Warn("no base URL: configure an environment, base_url or document servers"))
		} else {
			fmt.Fprintln(v, p.Dim(base+a.active.Path))
		}
	}

	for _, pn := range a.panes {
		v, err := a.g.View(pn.name)
		if err != nil {
			continue
		}
		v.Clear()
		if pn.name == bodyPane.name {
			a.renderBody(v, entry, p)
			continue
		}
		rows := paramRows(a.active.Operation, pn.loc, entry)
		if len(rows) == 0 {
			fmt.Fprintln(v, "(none)")
			continue
		}
		for _, r := range rows {
			fmt.Fprintln(v, rowText(r, p))
		}
		if pn.name == a.currentPane().name {
			a.rowIdx = clamp(a.rowIdx, len(rows))
			scrollTo(v, a.rowIdx)
		}
	}
}

func (a *App) renderBody(v *gocui.View, entry model.DebugEntry, p render.Painter) {
	body := entry.Body
	v.Title = bodyPane.title
	if body == "" {
		body = a.bench.DraftBody(a.active)
		if body != "" {
			v.Title = bodyPane.title + " (generated example)"
		}
	}
	_, h := v.Size()
	if h < 2 {
		h = 2
	}
	text := body
	if strings.TrimSpace(body) != "" {
		text = p.Body(body, "json")
	}
	for _, line := range bodyPreview(text, h-1) {
		fmt.Fprintln(v, line)
	}
}

func (a *App) tabPane(*gocui.Gui, *gocui.View) error {
	if a.scr != screenBuilder || a.editing || a.dialog != dialogNone || len(a.panes) == 0 {
		return nil
	}
	a.paneIdx = (a.paneIdx + 1) % len(a.panes)
	a.rowIdx = 0
	return nil
}

func (a *App) moveRow(delta int) handler {
	return func(*gocui.Gui, *gocui.View) error {
		if a.scr != screenBuilder || a.editing {
			return nil
		}
		cur := a.currentPane()
		if cur.name == bodyPane.name {
			return nil
		}
		rows := paramRows(a.active.Operation, cur.loc, a.entry())
		a.rowIdx = clamp(a.rowIdx+delta, len(rows))
		return nil
	}
}

func (a *App) selectedRow() (row, bool) {
	cur := a.currentPane()
	rows := paramRows(a.active.Operation, cur.loc, a.entry())
	if len(rows) == 0 {
		return row{}, false
	}
	return rows[clamp(a.rowIdx, len(rows))], true
}

// resetValue clears the selected parameter, or the body.
func (a *App) resetValue(*gocui.Gui, *gocui.View) error {
	if a.scr != screenBuilder || a.editing {
		return nil
	}
	if a.currentPane().name == bodyPane.name {
		a.bench.Debug().SetBody(a.active.Path, a.active.Method, "")
		return nil
	}
	if r, ok := a.selectedRow(); ok {
		a.bench.Debug().SetParam(a.active.Path, a.active.Method, r.Name, "")
	}
	return nil
}

func (a *App) beginEdit(*gocui.Gui, *gocui.View) error {
	if a.scr != screenBuilder || a.editing {
		return nil
	}
	r, ok := a.selectedRow()
	if !ok {
		return nil
	}
	title := r.Name
	if r.Hint != "" {
		title += " (" + r.Hint + ")"
	}
	a.openEdit(editTarget{kind: editParam, name: r.Name}, title, r.Value)
	return nil
}

func (a *App) showStoredResponse(*gocui.Gui, *gocui.View) error {
	if a.scr != screenBuilder || a.editing {
		return nil
	}
	if a.entry().Response == nil {
		a.setNotice(workbench.Info, "no response yet (ctrl+r to send)")
		return nil
	}
	a.scr = screenResponse
	a.responseOrigin = 0
	return nil
}

func (a *App) saveTemplate(*gocui.Gui, *gocui.View) error {
	if a.scr != screenBuilder || a.editing {
		return nil
	}
	a.openEdit(editTarget{kind: editTemplateName}, "template name (empty for a dated default)", "")
	return nil
}

// templateBody is what a new template stores: the edited body, else the
// generated example.
func (a *App) templateBody() string {
	if body := a.entry().Body; strings.TrimSpace(body) != "" {
		return body
	}
	return a.bench.DraftBody(a.active)
}
