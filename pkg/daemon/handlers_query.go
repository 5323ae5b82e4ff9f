package daemon

import "net/http"

func (h *handlers) handleExists(w http.ResponseWriter, r *http.Request) {
	var req selectorRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	sel, serr := h.resolve(req.Selector)
	if serr != nil {
		respondError(w, serr)
		return
	}

	t.driverMu.Lock()
	count, cerr := t.page.Locator(sel.DriverSelector()).Count()
	t.driverMu.Unlock()
	if cerr != nil {
		respondError(w, DriverFailure("exists failed: %v", cerr))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": count > 0})
}

func (h *handlers) handleVisible(w http.ResponseWriter, r *http.Request) {
	var req selectorRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	sel, serr := h.resolve(req.Selector)
	if serr != nil {
		respondError(w, serr)
		return
	}

	t.driverMu.Lock()
	visible, verr := t.page.Locator(sel.DriverSelector()).First().IsVisible()
	t.driverMu.Unlock()
	if verr != nil {
		visible = false
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": visible})
}

func (h *handlers) handleCount(w http.ResponseWriter, r *http.Request) {
	var req selectorRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	sel, serr := h.resolve(req.Selector)
	if serr != nil {
		respondError(w, serr)
		return
	}

	t.driverMu.Lock()
	count, cerr := t.page.Locator(sel.DriverSelector()).Count()
	t.driverMu.Unlock()
	if cerr != nil {
		respondError(w, DriverFailure("count failed: %v", cerr))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": count})
}

type attrRequest struct {
	Selector  string `json:"selector"`
	Attribute string `json:"attribute"`
}

func (h *handlers) handleAttr(w http.ResponseWriter, r *http.Request) {
	var req attrRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}
	if req.Attribute == "" {
		respondError(w, BadInput("attribute is required"))
		return
	}
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	sel, serr := h.resolve(req.Selector)
	if serr != nil {
		respondError(w, serr)
		return
	}

	t.driverMu.Lock()
	const script = `(el, attr) => el.hasAttribute(attr) ? el.getAttribute(attr) : null`
	result, eerr := t.page.EvalOnSelector(sel.DriverSelector(), script, req.Attribute)
	t.driverMu.Unlock()
	if eerr != nil {
		respondError(w, SelectorMiss(sel.token, "element not found for selector %q", sel.token))
		return
	}
	if result == nil {
		respondError(w, BadInput("attribute %q not present on selector %q", req.Attribute, req.Selector))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"value": result})
}

type waitRequest struct {
	Selector string  `json:"selector"`
	Timeout  float64 `json:"timeout"`
}

func (h *handlers) handleWait(w http.ResponseWriter, r *http.Request) {
	var req waitRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}
	if req.Selector == "" {
		respondError(w, BadInput("selector is required"))
		return
	}
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	sel, serr := h.resolve(req.Selector)
	if serr != nil {
		respondError(w, serr)
		return
	}

	t.driverMu.Lock()
	werr := WaitForSelector(t.page, sel.DriverSelector(), "visible", req.Timeout)
	t.driverMu.Unlock()
	if werr != nil {
		respondError(w, DriverFailure("wait timed out: %v", werr))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (h *handlers) handleWaitFor(w http.ResponseWriter, r *http.Request, state string) {
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	if err := WaitForLoadState(t.page, state); err != nil {
		respondError(w, DriverFailure("wait failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (h *handlers) handleWaitLoad(w http.ResponseWriter, r *http.Request) { h.handleWaitFor(w, r, "load") }
func (h *handlers) handleWaitIdle(w http.ResponseWriter, r *http.Request) {
	h.handleWaitFor(w, r, "networkidle")
}

// domStabilityScript resolves once the DOM has had no mutations for 500ms,
// capped at 10s so a page that mutates continuously (ads, clocks) cannot
// block the request forever.
const domStabilityScript = `() => new Promise((resolve) => {
	let timer;
	const done = () => { observer.disconnect(); clearTimeout(safety); resolve(true); };
	const observer = new MutationObserver(() => {
		clearTimeout(timer);
		timer = setTimeout(done, 500);
	});
	observer.observe(document, { subtree: true, childList: true, attributes: true });
	timer = setTimeout(done, 500);
	const safety = setTimeout(done, 10000);
})`

func (h *handlers) handleWaitStable(w http.ResponseWriter, r *http.Request) {
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	if _, err := Evaluate(t.page, domStabilityScript); err != nil {
		respondError(w, DriverFailure("wait-stable failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}
