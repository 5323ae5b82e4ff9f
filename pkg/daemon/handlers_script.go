package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type evalRequest struct {
	Script string `json:"script"`
}

func (h *handlers) handleEval(w http.ResponseWriter, r *http.Request) {
	var req evalRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}
	if req.Script == "" {
		respondError(w, BadInput("script is required"))
		return
	}

	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}

	t.driverMu.Lock()
	result, eerr := Evaluate(t.page, req.Script)
	t.driverMu.Unlock()
	if eerr != nil {
		respondError(w, DriverFailure("eval failed: %v", eerr))
		return
	}

	h.state.AppendHistory("eval", map[string]interface{}{"script": req.Script})
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

type assertRequest struct {
	Script      string `json:"script"`
	Expected    string `json:"expected"`
	HasExpected bool   `json:"-"`
	Message     string `json:"message"`
}

// UnmarshalJSON tracks whether "expected" was present in the request body
// at all, since an absent expected value and an empty-string expected
// value take different branches of the pass/fail rule.
func (a *assertRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Script   string  `json:"script"`
		Expected *string `json:"expected"`
		Message  string  `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Script = raw.Script
	a.Message = raw.Message
	if raw.Expected != nil {
		a.Expected = *raw.Expected
		a.HasExpected = true
	}
	return nil
}

func stringifyResult(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case map[string]interface{}, []interface{}:
		b, err := json.MarshalIndent(val, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func isTruthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	default:
		return true
	}
}

func (h *handlers) handleAssert(w http.ResponseWriter, r *http.Request) {
	var req assertRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}
	if req.Script == "" {
		respondError(w, BadInput("script is required"))
		return
	}

	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}

	t.driverMu.Lock()
	result, eerr := Evaluate(t.page, req.Script)
	t.driverMu.Unlock()
	if eerr != nil {
		respondError(w, DriverFailure("assert failed: %v", eerr))
		return
	}

	actual := stringifyResult(result)
	var pass bool
	if req.HasExpected {
		pass = actual == req.Expected
	} else {
		pass = isTruthy(result)
	}

	h.state.AppendHistory("assert", map[string]interface{}{"script": req.Script})

	resp := map[string]interface{}{"pass": pass, "actual": actual, "message": req.Message}
	if req.HasExpected {
		resp["expected"] = req.Expected
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) handleConsole(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	types := make(map[string]bool)
	if v := q.Get("type"); v != "" {
		for _, t := range strings.Split(v, ",") {
			types[strings.TrimSpace(t)] = true
		}
	}

	tabIndex := -1
	if v := q.Get("tab"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			tabIndex = n
		}
	}

	clear := q.Get("clear") == "true"

	entries := h.state.Console(types, tabIndex, clear)
	writeJSON(w, http.StatusOK, entries)
}

func (h *handlers) handleConsoleClear(w http.ResponseWriter, r *http.Request) {
	h.state.ClearConsole()
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (h *handlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.History())
}

func (h *handlers) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	h.state.ClearHistory()
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}
