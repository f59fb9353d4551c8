package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/jroimartin/gocui"

	"apidesk/internal/workbench"
)

type singleLineEditor struct{}

func (e singleLineEditor) Edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	switch {
	case key == gocui.KeyBackspace || key == gocui.KeyBackspace2:
		v.EditDelete(true)
	case key == gocui.KeyDelete:
		v.EditDelete(false)
	case key == gocui.KeyArrowLeft:
		v.MoveCursor(-1, 0, false)
	case key == gocui.KeyArrowRight:
		v.MoveCursor(1, 0, false)
	case key == gocui.KeyHome || key == gocui.KeyCtrlA:
		v.SetCursor(0, 0)
	case key == gocui.KeyEnd || key == gocui.KeyCtrlE:
		v.SetCursor(len(viewText(v)), 0)
	case key == gocui.KeySpace:
		v.EditWrite(' ')
	case key == gocui.KeyEnter:
		// handled by the keybinding
	case ch != 0 && mod == 0:
		v.EditWrite(ch)
	}
}

func (a *App) openEdit(t editTarget, title, seed string) {
	a.editing = true
	a.edit = t
	a.editTitle = title
	a.editSeed = seed
}

// layoutEdit draws the centered single-line modal. The seed is written
// only when the view is created so typing is not overwritten on redraw.
func (a *App) layoutEdit(maxX, maxY int) error {
	width := 70
	if width > maxX-4 {
		width = maxX - 4
	}
	x0 := (maxX - width) / 2
	y0 := (maxY - 3) / 2
	v, err := a.g.SetView("edit", x0, y0, x0+width, y0+2)
	if err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = " " + a.editTitle + " "
		v.Editable = true
		v.Editor = singleLineEditor{}
		fmt.Fprint(v, a.editSeed)
		v.SetCursor(len(a.editSeed), 0)
	}
	a.g.Cursor = true
	if _, err := a.g.SetViewOnTop("edit"); err != nil {
		return err
	}
	_, err = a.g.SetCurrentView("edit")
	return err
}

func (a *App) closeEdit() error {
	if !a.editing {
		return nil
	}
	if v, err := a.g.View("edit"); err == nil {
		v.Clear()
		a.g.DeleteView("edit")
	}
	a.editing = false
	a.edit = editTarget{}
	a.g.Cursor = false
	return nil
}

func (a *App) confirmEdit(_ *gocui.Gui, v *gocui.View) error {
	if !a.editing {
		return nil
	}
	val := strings.TrimSpace(viewText(v))
	t := a.edit
	if err := a.closeEdit(); err != nil {
		return err
	}

	switch t.kind {
	case editParam:
		a.bench.Debug().SetParam(a.active.Path, a.active.Method, t.name, val)
	case editHeaderNew, editHeader:
		key, value, err := parseHeaderInput(val)
		if err != nil {
			a.setNotice(workbench.Error, err.Error())
			return nil
		}
		if t.kind == editHeaderNew {
			err = a.bench.SetHeader(key, value)
		} else {
			err = a.replaceHeader(t.index, key, value)
		}
		if err != nil {
			a.setNotice(workbench.Error, err.Error())
		}
	case editTemplateName:
		tpl, err := a.bench.Templates().Save(a.active.Method, a.active.Path, val, a.templateBody())
		if err != nil {
			a.setNotice(workbench.Error, err.Error())
			return nil
		}
		a.setNotice(workbench.Info, fmt.Sprintf("saved template %q", tpl.Name))
	}
	return nil
}

// editBodyInEditor writes the draft body to a temp file and leaves the main
// loop; Run opens the editor on it and rebuilds the GUI afterwards.
func (a *App) editBodyInEditor(*gocui.Gui, *gocui.View) error {
	if a.scr != screenBuilder || a.editing {
		return nil
	}
	seed := a.bench.DraftBody(a.active)
	if strings.TrimSpace(seed) == "" {
		seed = "{}"
	}
	if !strings.HasSuffix(seed, "\n") {
		seed += "\n"
	}

	f, err := os.CreateTemp("", "apidesk-body-*.json")
	if err != nil {
		a.setNotice(workbench.Error, err.Error())
		return nil
	}
	defer f.Close()
	if _, err := f.WriteString(seed); err != nil {
		a.setNotice(workbench.Error, err.Error())
		return nil
	}
	a.suspendEditorFile = f.Name()
	return gocui.ErrQuit
}

func (a *App) runExternalEditor(file string) error {
	defer os.Remove(file)

	args := splitCommand(editorCommand())
	cmd := exec.Command(args[0], append(args[1:], file)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	body, err := checkBody(string(b))
	if err != nil {
		return err
	}
	a.bench.Debug().SetBody(a.active.Path, a.active.Method, body)
	a.log.Debug().Str("path", a.active.Path).Str("method", a.active.Method).Int("bytes", len(body)).Msg("body edited")
	return nil
}

func editorCommand() string {
	for _, env := range []string{"APIDESK_EDITOR", "EDITOR"} {
		if e := strings.TrimSpace(os.Getenv(env)); e != "" {
			return e
		}
	}
	return "vi"
}

// splitCommand splits on whitespace; quotes are not interpreted.
func splitCommand(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return []string{"vi"}
	}
	return fields
}

func viewText(v *gocui.View) string {
	return strings.TrimSuffix(v.Buffer(), "\n")
}
