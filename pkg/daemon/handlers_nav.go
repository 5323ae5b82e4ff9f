package daemon

import "net/http"

type gotoRequest struct {
	URL string `json:"url"`
}

func (h *handlers) handleGoto(w http.ResponseWriter, r *http.Request) {
	var req gotoRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}
	if req.URL == "" {
		respondError(w, BadInput("url is required"))
		return
	}

	t, idx, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}

	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	maybeDelay(humanDelayLo, humanDelayHi, h.opts.HumanLike)
	if err := Goto(t.page, req.URL, 0); err != nil {
		respondError(w, DriverFailure("goto failed: %v", err))
		return
	}
	maybeDelay(humanDelayLo, humanDelayHi, h.opts.HumanLike)

	h.state.DropConsoleForTab(idx)
	h.refreshTabMeta(t.page, idx)
	h.state.AppendHistory("goto", map[string]interface{}{"url": req.URL})
	writeJSON(w, http.StatusOK, map[string]interface{}{"url": t.page.URL()})
}

func (h *handlers) handleBack(w http.ResponseWriter, r *http.Request) {
	t, idx, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	if _, err := t.page.GoBack(); err != nil {
		respondError(w, DriverFailure("back failed: %v", err))
		return
	}
	h.refreshTabMeta(t.page, idx)
	h.state.AppendHistory("back", map[string]interface{}{})
	writeJSON(w, http.StatusOK, map[string]interface{}{"url": t.page.URL()})
}

func (h *handlers) handleForward(w http.ResponseWriter, r *http.Request) {
	t, idx, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	if _, err := t.page.GoForward(); err != nil {
		respondError(w, DriverFailure("forward failed: %v", err))
		return
	}
	h.refreshTabMeta(t.page, idx)
	h.state.AppendHistory("forward", map[string]interface{}{})
	writeJSON(w, http.StatusOK, map[string]interface{}{"url": t.page.URL()})
}

type reloadRequest struct {
	Hard bool `json:"hard"`
}

func (h *handlers) handleReload(w http.ResponseWriter, r *http.Request) {
	var req reloadRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}

	t, idx, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	if req.Hard {
		session, serr := OpenCDPSession(t.page)
		if serr != nil {
			respondError(w, DriverFailure("hard reload failed: %v", serr))
			return
		}
		if _, serr := session.Send("Page.reload", map[string]interface{}{"ignoreCache": true}); serr != nil {
			respondError(w, DriverFailure("hard reload failed: %v", serr))
			return
		}
		if serr := WaitForLoadState(t.page, "domcontentloaded"); serr != nil {
			respondError(w, DriverFailure("hard reload failed: %v", serr))
			return
		}
	} else if _, err := t.page.Reload(); err != nil {
		respondError(w, DriverFailure("reload failed: %v", err))
		return
	}

	h.state.DropConsoleForTab(idx)
	h.refreshTabMeta(t.page, idx)
	h.state.AppendHistory("reload", map[string]interface{}{"hard": req.Hard})
	writeJSON(w, http.StatusOK, map[string]interface{}{"url": t.page.URL()})
}

func (h *handlers) handleClearCache(w http.ResponseWriter, r *http.Request) {
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	session, serr := OpenCDPSession(t.page)
	if serr != nil {
		respondError(w, DriverFailure("clear cache failed: %v", serr))
		return
	}
	if _, serr := session.Send("Network.clearBrowserCache", map[string]interface{}{}); serr != nil {
		respondError(w, DriverFailure("clear cache failed: %v", serr))
		return
	}
	h.state.AppendHistory("clear-cache", map[string]interface{}{})
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}
