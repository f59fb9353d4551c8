package ui

import (
	"fmt"

	"github.com/jroimartin/gocui"

	"apidesk/internal/headers"
	"apidesk/internal/model"
	"apidesk/internal/workbench"
)

func (a *App) openHeaders(*gocui.Gui, *gocui.View) error {
	if a.editing {
		return nil
	}
	a.dialog = dialogHeaders
	a.dialogSel = 0
	return nil
}

func (a *App) openTemplates(*gocui.Gui, *gocui.View) error {
	if a.scr != screenBuilder || a.editing {
		return nil
	}
	a.dialog = dialogTemplates
	a.dialogSel = 0
	return nil
}

func (a *App) closeDialog() {
	if v, err := a.g.View("dialog"); err == nil {
		v.Clear()
		a.g.DeleteView("dialog")
	}
	a.dialog = dialogNone
}

func (a *App) dialogLen() int {
	switch a.dialog {
	case dialogHeaders:
		return len(a.bench.Headers())
	case dialogTemplates:
		return len(a.bench.Templates().List(a.active.Method, a.active.Path))
	}
	return 0
}

func (a *App) layoutDialog(maxX, maxY int) error {
	width := 80
	if width > maxX-4 {
		width = maxX - 4
	}
	height := maxY - 10
	if height < 5 {
		height = 5
	}
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2
	v, err := a.g.SetView("dialog", x0, y0, x0+width, y0+height)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Highlight = !a.editing
	v.SelBgColor = a.accent()
	v.SelFgColor = gocui.ColorBlack
	a.renderDialog(v)

	if _, err := a.g.SetViewOnTop("dialog"); err != nil {
		return err
	}
	if a.editing {
		return nil
	}
	_, err = a.g.SetCurrentView("dialog")
	return err
}

func (a *App) renderDialog(v *gocui.View) {
	v.Clear()
	p := a.painter()
	switch a.dialog {
	case dialogHeaders:
		v.Title = " Global headers "
		list := a.bench.Headers()
		if len(list) == 0 {
			fmt.Fprintln(v, p.Dim("(no headers, a to add)"))
			return
		}
		for _, h := range list {
			fmt.Fprintf(v, "%s: %s\n", h.Key, headers.Mask(h.Key, h.Value))
		}
	case dialogTemplates:
		v.Title = fmt.Sprintf(" Templates for %s %s ", a.active.Method, a.active.Path)
		list := a.bench.Templates().List(a.active.Method, a.active.Path)
		if len(list) == 0 {
			fmt.Fprintln(v, p.Dim("(no templates, s on the body pane saves one)"))
			return
		}
		for _, t := range list {
			fmt.Fprintf(v, "%s  %s\n", t.Name, p.Dim(t.CreatedAt.Format("2006-01-02 15:04")))
		}
	}
	a.dialogSel = clamp(a.dialogSel, a.dialogLen())
	scrollTo(v, a.dialogSel)
}

func (a *App) moveDialogSel(delta int) handler {
	return func(*gocui.Gui, *gocui.View) error {
		a.dialogSel = clamp(a.dialogSel+delta, a.dialogLen())
		return nil
	}
}

func (a *App) dialogEnter(*gocui.Gui, *gocui.View) error {
	if a.dialogLen() == 0 {
		return nil
	}
	switch a.dialog {
	case dialogHeaders:
		h := a.bench.Headers()[a.dialogSel]
		a.openEdit(editTarget{kind: editHeader, index: a.dialogSel}, "Key: Value", h.Key+": "+h.Value)
	case dialogTemplates:
		t := a.bench.Templates().List(a.active.Method, a.active.Path)[a.dialogSel]
		a.bench.Debug().SetBody(a.active.Path, a.active.Method, t.Body)
		a.closeDialog()
		a.setNotice(workbench.Info, fmt.Sprintf("loaded template %q", t.Name))
	}
	return nil
}

func (a *App) dialogAdd(*gocui.Gui, *gocui.View) error {
	if a.dialog == dialogHeaders {
		a.openEdit(editTarget{kind: editHeaderNew}, "Key: Value", "")
	}
	return nil
}

func (a *App) dialogDelete(*gocui.Gui, *gocui.View) error {
	if a.dialogLen() == 0 {
		return nil
	}
	var err error
	switch a.dialog {
	case dialogHeaders:
		err = a.bench.RemoveHeader(a.bench.Headers()[a.dialogSel].Key)
	case dialogTemplates:
		t := a.bench.Templates().List(a.active.Method, a.active.Path)[a.dialogSel]
		err = a.bench.Templates().Delete(a.active.Method, a.active.Path, t.ID)
	}
	if err != nil {
		a.setNotice(workbench.Error, err.Error())
	}
	return nil
}

// replaceHeader overwrites the header at i, keeping its position.
func (a *App) replaceHeader(i int, key, value string) error {
	list := a.bench.Headers()
	if i < 0 || i >= len(list) {
		return a.bench.SetHeader(key, value)
	}
	list[i] = model.Header{Key: key, Value: value}
	_, err := a.bench.SaveHeaders(list)
	return err
}
