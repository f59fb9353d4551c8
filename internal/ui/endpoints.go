package ui

import (
	"fmt"

	"github.com/jroimartin/gocui"

	"apidesk/internal/render"
)

func (a *App) layoutEndpoints(maxX, maxY int) error {
	a.clearMainViews("filter", "endpoints")

	if v, err := a.g.SetView("filter", 0, 2, maxX-1, 4); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Filter"
	}
	if v, err := a.g.SetView("endpoints", 0, 4, maxX-1, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Endpoints"
		v.Highlight = true
		v.SelFgColor = gocui.ColorBlack
	}
	if v, err := a.g.View("endpoints"); err == nil {
		v.SelBgColor = a.accent()
	}
	a.renderFilter()
	a.renderEndpoints()
	return a.focus("endpoints")
}

// focus makes name current unless a modal owns the keyboard.
func (a *App) focus(name string) error {
	if a.editing || a.dialog != dialogNone {
		return nil
	}
	_, err := a.g.SetCurrentView(name)
	return err
}

func (a *App) recomputeLines() {
	a.lines = a.bench.Lines(a.filter)
	a.selected = clamp(a.selected, len(a.lines))
}

func (a *App) renderFilter() {
	v, err := a.g.View("filter")
	if err != nil {
		return
	}
	v.Clear()
	if a.filter == "" {
		fmt.Fprint(v, a.painter().Dim("type to filter by path, summary or method"))
		return
	}
	fmt.Fprint(v, a.filter)
}

func (a *App) renderEndpoints() {
	v, err := a.g.View("endpoints")
	if err != nil {
		return
	}
	v.Clear()
	if a.bench.Document() == nil {
		fmt.Fprintln(v, "(no document loaded)")
		return
	}
	if len(a.lines) == 0 {
		fmt.Fprintln(v, "(no matching endpoints)")
		return
	}
	v.Title = fmt.Sprintf("Endpoints (%d)", a.bench.Tree(a.filter).Count())
	for _, line := range render.TreeLines(a.lines, a.bench.ExpandState().Expanded, a.painter()) {
		fmt.Fprintln(v, line)
	}
	scrollTo(v, a.selected)
}

func (a *App) appendFilterRune(r rune) handler {
	return func(*gocui.Gui, *gocui.View) error {
		if a.scr != screenEndpoints || a.editing {
			return nil
		}
		a.filter += string(r)
		a.selected = 0
		a.recomputeLines()
		return nil
	}
}

func (a *App) filterBackspace(*gocui.Gui, *gocui.View) error {
	if a.scr != screenEndpoints || a.filter == "" {
		return nil
	}
	r := []rune(a.filter)
	a.filter = string(r[:len(r)-1])
	a.recomputeLines()
	return nil
}

func (a *App) moveSel(delta int) handler {
	return func(*gocui.Gui, *gocui.View) error {
		if a.scr != screenEndpoints || len(a.lines) == 0 {
			return nil
		}
		a.selected = clamp(a.selected+delta, len(a.lines))
		return nil
	}
}

// enterLine toggles a group or opens the builder for an endpoint.
func (a *App) enterLine(*gocui.Gui, *gocui.View) error {
	if a.scr != screenEndpoints || len(a.lines) == 0 {
		return nil
	}
	line := a.lines[a.selected]
	if line.IsGroup() {
		a.bench.ExpandState().Toggle(line.Node.Name)
		a.recomputeLines()
		return nil
	}
	a.openBuilder(*line.Endpoint)
	return nil
}

// setExpanded collapses or expands the group under the cursor, or the
// group of the endpoint under it.
func (a *App) setExpanded(expanded bool) handler {
	return func(*gocui.Gui, *gocui.View) error {
		if a.scr != screenEndpoints || len(a.lines) == 0 {
			return nil
		}
		name := a.lines[a.selected].Node.Name
		a.bench.ExpandState().Set(name, expanded)
		a.recomputeLines()
		for i, l := range a.lines {
			if l.IsGroup() && l.Node.Name == name {
				a.selected = i
				break
			}
		}
		return nil
	}
}

// scrollTo moves the cursor to line i, shifting the origin to keep it
// visible.
func scrollTo(v *gocui.View, i int) {
	_, h := v.Size()
	if h <= 0 {
		return
	}
	_, oy := v.Origin()
	switch {
	case i < oy:
		oy = i
	case i >= oy+h:
		oy = i - h + 1
	}
	v.SetOrigin(0, oy)
	v.SetCursor(0, i-oy)
}
