package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/jroimartin/gocui"

	"apidesk/internal/httpclient"
	"apidesk/internal/render"
	"apidesk/internal/workbench"
)

func (a *App) layoutResponse(maxX, maxY int) error {
	a.clearMainViews("selected", "response")

	if v, err := a.g.SetView("selected", 0, 2, maxX-1, 4); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Endpoint"
	}
	if v, err := a.g.SetView("response", 0, 4, maxX-1, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Response"
		v.Wrap = true
	}
	a.renderResponse()
	return a.focus("response")
}

func (a *App) renderResponse() {
	p := a.painter()
	if v, err := a.g.View("selected"); err == nil {
		v.Clear()
		fmt.Fprintln(v, render.EndpointLine(a.active, p))
	}
	v, err := a.g.View("response")
	if err != nil {
		return
	}
	v.Clear()
	snap := a.entry().Response
	if snap == nil {
		fmt.Fprintln(v, "(no response)")
		return
	}
	render.Snapshot(v, *snap, true, p)
	v.SetOrigin(0, a.responseOrigin)
}

func (a *App) scrollResponse(delta int) handler {
	return func(_ *gocui.Gui, v *gocui.View) error {
		if a.scr != screenResponse || v == nil {
			return nil
		}
		a.responseOrigin += delta
		if n := len(v.BufferLines()); a.responseOrigin > n-1 {
			a.responseOrigin = n - 1
		}
		if a.responseOrigin < 0 {
			a.responseOrigin = 0
		}
		return nil
	}
}

func (a *App) responseToEndpoints(*gocui.Gui, *gocui.View) error {
	if a.scr != screenResponse {
		return nil
	}
	a.scr = screenEndpoints
	a.clearNotice()
	return nil
}

// send dispatches the active endpoint in the background and shows the
// response screen when it completes.
func (a *App) send(*gocui.Gui, *gocui.View) error {
	if a.editing || a.dialog != dialogNone {
		return nil
	}
	if a.scr != screenBuilder && a.scr != screenResponse {
		return nil
	}
	if a.sending {
		a.setNotice(workbench.Error, workbench.ErrRequestInFlight.Error())
		return nil
	}
	a.sending = true
	a.clearNotice()
	path, method := a.active.Path, a.active.Method

	go func() {
		_, err := a.bench.Send(a.ctx, path, method)
		a.update(func() {
			a.sending = false
			// Validation failures leave the user on the builder with the notice.
			var de *httpclient.DispatchError
			if err == nil || errors.As(err, &de) {
				a.scr = screenResponse
				a.responseOrigin = 0
			}
		})
	}()
	return nil
}

func (a *App) copyCurl(*gocui.Gui, *gocui.View) error {
	if a.editing || (a.scr != screenBuilder && a.scr != screenResponse) {
		return nil
	}
	spec, err := a.bench.Build(a.active.Path, a.active.Method)
	if err != nil {
		a.setNotice(workbench.Error, err.Error())
		return nil
	}
	if err := clipboard.WriteAll(httpclient.Curl(spec)); err != nil {
		a.setNotice(workbench.Error, "copy failed: "+err.Error())
		return nil
	}
	a.setNotice(workbench.Info, "cURL command copied to clipboard")
	return nil
}

func (a *App) cycleEnv(*gocui.Gui, *gocui.View) error {
	if a.editing {
		return nil
	}
	envs := a.bench.Environments()
	if len(envs) == 0 {
		a.setNotice(workbench.Info, "no environments configured")
		return nil
	}
	i := a.bench.CycleEnv()
	a.setNotice(workbench.Info, fmt.Sprintf("environment: %s (%s)", envs[i].Name, a.bench.BaseURL()))
	return nil
}

func (a *App) toggleDark(*gocui.Gui, *gocui.View) error {
	if a.editing {
		return nil
	}
	a.bench.Prefs().ToggleDarkMode()
	a.applyTheme()
	return nil
}

const reloadTimeout = 30 * time.Second

func (a *App) reload(*gocui.Gui, *gocui.View) error {
	if a.editing || a.opts.Reload == nil {
		return nil
	}
	if a.sending {
		a.setNotice(workbench.Error, "cannot reload while a request is in progress")
		return nil
	}
	a.setNotice(workbench.Info, "reloading...")
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, reloadTimeout)
		defer cancel()
		doc, err := a.opts.Reload(ctx)
		a.update(func() {
			if err != nil {
				a.log.Error().Err(err).Msg("reload failed")
				a.setNotice(workbench.Error, "reload failed: "+err.Error())
				return
			}
			if err := a.bench.SetDocument(doc); err != nil {
				a.setNotice(workbench.Error, "reload failed: "+err.Error())
				return
			}
			a.loadErr = nil
			a.scr = screenEndpoints
			a.recomputeLines()
			a.setNotice(workbench.Info, fmt.Sprintf("loaded %s (%d endpoints)", doc.Title, len(doc.Endpoints)))
		})
	}()
	return nil
}
