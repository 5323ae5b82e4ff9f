package daemon

import (
	"net/http"

	"github.com/playwright-community/playwright-go"
)

// activeTab returns the active tab and its index, translating the no-tab
// case into the standard bad-input error.
func (h *handlers) activeTab() (*tab, int, error) {
	return h.state.ActiveTab()
}

// resolve classifies selector and returns the string to hand to the
// driver, or a selector-miss/bad-input error.
func (h *handlers) resolve(token string) (resolvedSelector, *Error) {
	return ResolveSelector(h.state, token)
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (h *handlers) handleListTabs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.ListTabs())
}

type switchTabRequest struct {
	Index int `json:"index"`
}

func (h *handlers) handleSwitchTab(w http.ResponseWriter, r *http.Request) {
	var req switchTabRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}
	if err := h.state.SetActiveTab(req.Index); err != nil {
		respondError(w, err)
		return
	}
	h.state.AppendHistory("tabs.switch", map[string]interface{}{"index": req.Index})
	writeJSON(w, http.StatusOK, map[string]interface{}{"index": req.Index})
}

func (h *handlers) handleShutdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "shutting down"})
	h.logger.Infof("shutdown requested over HTTP")
	go h.shutdown()
}

// refreshTabMeta snapshots page's current URL/title back into state after
// a navigation-causing call.
func (h *handlers) refreshTabMeta(page playwright.Page, idx int) {
	h.state.UpdateTab(idx, page.URL(), titleOrEmpty(page))
}

func titleOrEmpty(page playwright.Page) string {
	title, err := page.Title()
	if err != nil {
		return ""
	}
	return title
}
