package daemon

import (
	"fmt"
	"net/http"
)

type selectorRequest struct {
	Selector string `json:"selector"`
}

func (h *handlers) resolveBody(w http.ResponseWriter, r *http.Request) (*tab, int, resolvedSelector, bool) {
	var req selectorRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return nil, 0, resolvedSelector{}, false
	}
	if req.Selector == "" {
		respondError(w, BadInput("selector is required"))
		return nil, 0, resolvedSelector{}, false
	}
	t, idx, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return nil, 0, resolvedSelector{}, false
	}
	sel, serr := h.resolve(req.Selector)
	if serr != nil {
		respondError(w, serr)
		return nil, 0, resolvedSelector{}, false
	}
	return t, idx, sel, true
}

func (h *handlers) handleScrollIntoView(w http.ResponseWriter, r *http.Request) {
	t, _, sel, ok := h.resolveBody(w, r)
	if !ok {
		return
	}
	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	if _, err := t.page.EvalOnSelector(sel.DriverSelector(), "el => el.scrollIntoView()", nil); err != nil {
		respondError(w, SelectorMiss(sel.token, "element not found for selector %q", sel.token))
		return
	}
	h.state.AppendHistory("scroll-into-view", map[string]interface{}{"selector": sel.token})
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

type scrollToRequest struct {
	Percentage float64 `json:"percentage"`
}

func (h *handlers) handleScrollTo(w http.ResponseWriter, r *http.Request) {
	var req scrollToRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}
	p := req.Percentage
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}

	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	script := fmt.Sprintf("window.scrollTo(0, document.body.scrollHeight * %f / 100)", p)
	if _, err := Evaluate(t.page, script); err != nil {
		respondError(w, DriverFailure("scroll-to failed: %v", err))
		return
	}
	h.state.AppendHistory("scroll-to", map[string]interface{}{"percentage": p})
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (h *handlers) handleChunkScroll(w http.ResponseWriter, r *http.Request, sign int, action string) {
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}
	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	script := fmt.Sprintf("window.scrollBy(0, %d * window.innerHeight)", sign)
	if _, err := Evaluate(t.page, script); err != nil {
		respondError(w, DriverFailure("%s failed: %v", action, err))
		return
	}
	h.state.AppendHistory(action, map[string]interface{}{})
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (h *handlers) handleNextChunk(w http.ResponseWriter, r *http.Request) { h.handleChunkScroll(w, r, 1, "next-chunk") }
func (h *handlers) handlePrevChunk(w http.ResponseWriter, r *http.Request) { h.handleChunkScroll(w, r, -1, "prev-chunk") }

type fillRequest struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
}

func (h *handlers) handleFill(w http.ResponseWriter, r *http.Request) {
	var req fillRequest
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
	defer t.driverMu.Unlock()

	if err := Fill(t.page, sel.DriverSelector(), req.Text); err != nil {
		respondError(w, DriverFailure("fill failed: %v", err))
		return
	}
	h.state.AppendHistory("fill", map[string]interface{}{"selector": req.Selector, "text": req.Text})
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

type fillSecretRequest struct {
	Selector string `json:"selector"`
	Secret   string `json:"secret"`
}

func (h *handlers) handleFillSecret(w http.ResponseWriter, r *http.Request) {
	var req fillSecretRequest
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
	defer t.driverMu.Unlock()

	if err := Fill(t.page, sel.DriverSelector(), req.Secret); err != nil {
		respondError(w, DriverFailure("fill-secret failed: %v", err))
		return
	}
	h.state.AddSecret(req.Secret)
	h.state.AppendHistory("fill-secret", map[string]interface{}{"selector": req.Selector})
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

type typeRequest struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
}

func (h *handlers) handleType(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
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
	defer t.driverMu.Unlock()

	if err := Type(t.page, sel.DriverSelector(), req.Text, h.opts.HumanLike); err != nil {
		respondError(w, DriverFailure("type failed: %v", err))
		return
	}
	h.state.AppendHistory("type", map[string]interface{}{"selector": req.Selector, "text": req.Text})
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

type pressRequest struct {
	Key string `json:"key"`
}

func (h *handlers) handlePress(w http.ResponseWriter, r *http.Request) {
	var req pressRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}
	if req.Key == "" {
		respondError(w, BadInput("key is required"))
		return
	}
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}

	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	if err := KeyboardPress(t.page, req.Key); err != nil {
		respondError(w, DriverFailure("press failed: %v", err))
		return
	}
	h.state.AppendHistory("press", map[string]interface{}{"key": req.Key})
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (h *handlers) handleClick(w http.ResponseWriter, r *http.Request) {
	t, _, sel, ok := h.resolveBody(w, r)
	if !ok {
		return
	}

	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	maybeDelay(humanDelayLo, humanDelayHi, h.opts.HumanLike)
	if err := Click(t.page, sel.DriverSelector()); err != nil {
		respondError(w, DriverFailure("click failed: %v", err))
		return
	}
	h.state.AppendHistory("click", map[string]interface{}{"selector": sel.token})
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// fillSearchCandidates is the fixed ordered list of affordances scanned
// when /fill-search is called without an explicit selector.
var fillSearchCandidates = []string{
	`input[type=search]`,
	`input[name=q]`,
	`input[name=query]`,
	`input[name=search]`,
	`input[placeholder*=search i]`,
	`input[placeholder*=Search i]`,
	`[role=searchbox]`,
}

type fillSearchRequest struct {
	Query    string `json:"query"`
	Selector string `json:"selector"`
}

func (h *handlers) handleFillSearch(w http.ResponseWriter, r *http.Request) {
	var req fillSearchRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}
	if req.Query == "" {
		respondError(w, BadInput("query is required"))
		return
	}
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}

	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	matched := req.Selector
	if matched == "" {
		for _, candidate := range fillSearchCandidates {
			if found, _ := t.page.IsVisible(candidate); found {
				matched = candidate
				break
			}
		}
		if matched == "" {
			respondError(w, SelectorMiss("", "no search affordance found on page"))
			return
		}
	}

	if err := Fill(t.page, matched, req.Query); err != nil {
		respondError(w, DriverFailure("fill-search failed: %v", err))
		return
	}
	if err := KeyboardPress(t.page, "Enter"); err != nil {
		respondError(w, DriverFailure("fill-search failed: %v", err))
		return
	}
	h.state.AppendHistory("fill-search", map[string]interface{}{"query": req.Query, "selector": matched})
	writeJSON(w, http.StatusOK, map[string]interface{}{"selector": matched})
}

type selectRequest struct {
	Selector string `json:"selector"`
	Value    string `json:"value"`
}

func (h *handlers) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
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
	defer t.driverMu.Unlock()

	const script = `(el, value) => {
		el.value = value;
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return el.value;
	}`
	result, err := t.page.EvalOnSelector(sel.DriverSelector(), script, req.Value)
	if err != nil {
		respondError(w, SelectorMiss(sel.token, "element not found for selector %q", sel.token))
		return
	}
	h.state.AppendHistory("select", map[string]interface{}{"selector": req.Selector, "value": req.Value})
	writeJSON(w, http.StatusOK, map[string]interface{}{"value": result})
}

func (h *handlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	t, _, sel, ok := h.resolveBody(w, r)
	if !ok {
		return
	}

	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	const script = `el => {
		const form = el.tagName === 'FORM' ? el : el.closest('form');
		if (!form) { throw new Error('no enclosing form'); }
		form.submit();
		return true;
	}`
	if _, err := t.page.EvalOnSelector(sel.DriverSelector(), script, nil); err != nil {
		respondError(w, BadInput("no enclosing form for selector %q", sel.token))
		return
	}
	h.state.AppendHistory("submit", map[string]interface{}{"selector": sel.token})
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}
