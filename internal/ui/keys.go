package ui

import (
	"github.com/jroimartin/gocui"
)

type handler func(*gocui.Gui, *gocui.View) error

type binding struct {
	view string
	key  any
	fn   handler
}

// Global bindings are ctrl keys only: gocui runs every matching binding,
// so a global rune would also fire while typing in the filter or an edit
// modal.
func (a *App) bindings() []binding {
	bs := []binding{
		{"", gocui.KeyCtrlC, a.quit},
		{"", gocui.KeyEsc, a.back},
		{"", gocui.KeyCtrlR, a.send},
		{"", gocui.KeyCtrlY, a.copyCurl},
		{"", gocui.KeyCtrlG, a.openHeaders},
		{"", gocui.KeyCtrlN, a.cycleEnv},
		{"", gocui.KeyCtrlT, a.toggleDark},
		{"", gocui.KeyCtrlL, a.reload},

		// endpoints
		{"endpoints", gocui.KeyArrowDown, a.moveSel(1)},
		{"endpoints", gocui.KeyArrowUp, a.moveSel(-1)},
		{"endpoints", gocui.KeyPgdn, a.moveSel(10)},
		{"endpoints", gocui.KeyPgup, a.moveSel(-10)},
		{"endpoints", gocui.KeyEnter, a.enterLine},
		{"endpoints", gocui.KeyArrowLeft, a.setExpanded(false)},
		{"endpoints", gocui.KeyArrowRight, a.setExpanded(true)},
		{"endpoints", gocui.KeyBackspace, a.filterBackspace},
		{"endpoints", gocui.KeyBackspace2, a.filterBackspace},
		{"endpoints", gocui.KeySpace, a.appendFilterRune(' ')},

		// response
		{"response", gocui.KeyArrowDown, a.scrollResponse(1)},
		{"response", gocui.KeyArrowUp, a.scrollResponse(-1)},
		{"response", gocui.KeyPgdn, a.scrollResponse(10)},
		{"response", gocui.KeyPgup, a.scrollResponse(-10)},
		{"response", 'r', a.send},
		{"response", 'q', a.quit},
		{"response", gocui.KeyEnter, a.responseToEndpoints},

		// edit modal
		{"edit", gocui.KeyEnter, a.confirmEdit},

		// dialogs
		{"dialog", gocui.KeyArrowDown, a.moveDialogSel(1)},
		{"dialog", gocui.KeyArrowUp, a.moveDialogSel(-1)},
		{"dialog", gocui.KeyEnter, a.dialogEnter},
		{"dialog", 'a', a.dialogAdd},
		{"dialog", 'x', a.dialogDelete},
		{"dialog", gocui.KeyDelete, a.dialogDelete},
	}

	// Tab inside the edit modal is ignored by the handler.
	bs = append(bs, binding{"", gocui.KeyTab, a.tabPane})

	for _, p := range append(paramPanes, bodyPane) {
		bs = append(bs,
			binding{p.name, gocui.KeyArrowDown, a.moveRow(1)},
			binding{p.name, gocui.KeyArrowUp, a.moveRow(-1)},
			binding{p.name, 'd', a.resetValue},
			binding{p.name, 'v', a.showStoredResponse},
			binding{p.name, 'q', a.quit},
		)
		if p.name == bodyPane.name {
			bs = append(bs,
				binding{p.name, gocui.KeyEnter, a.editBodyInEditor},
				binding{p.name, 's', a.saveTemplate},
				binding{p.name, 't', a.openTemplates},
			)
			continue
		}
		bs = append(bs, binding{p.name, gocui.KeyEnter, a.beginEdit})
	}

	// printable ASCII feeds the endpoint filter
	for r := rune(33); r <= rune(126); r++ {
		bs = append(bs, binding{"endpoints", r, a.appendFilterRune(r)})
	}
	return bs
}

func (a *App) bindKeys() error {
	for _, b := range a.bindings() {
		if err := a.g.SetKeybinding(b.view, b.key, gocui.ModNone, b.fn); err != nil {
			return err
		}
	}
	return nil
}
