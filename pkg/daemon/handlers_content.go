package daemon

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

func (h *handlers) handleHTML(w http.ResponseWriter, r *http.Request) {
	idx := -1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, BadInput("invalid page parameter %q", v))
			return
		}
		idx = n
	}

	var t *tab
	var err error
	if idx >= 0 {
		t, err = h.state.Tab(idx)
	} else {
		t, _, err = h.activeTab()
	}
	if err != nil {
		respondError(w, err)
		return
	}

	t.driverMu.Lock()
	content, cerr := t.page.Content()
	t.driverMu.Unlock()
	if cerr != nil {
		respondError(w, DriverFailure("html failed: %v", cerr))
		return
	}

	writeText(w, http.StatusOK, MaskSecrets(content, h.state.Secrets()))
}

func (h *handlers) handleTree(w http.ResponseWriter, r *http.Request) {
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}

	t.driverMu.Lock()
	tree, idXPath, berr := BuildTree(t.page)
	t.driverMu.Unlock()
	if berr != nil {
		respondError(w, DriverFailure("tree failed: %v", berr))
		return
	}

	h.state.ReplaceIDXPathMap(idXPath)
	writeJSON(w, http.StatusOK, map[string]interface{}{"tree": tree})
}

const (
	extractTextElementCap = 1000
	extractTextWallTime   = 5 * time.Second
)

type extractTextRequest struct {
	Selector string `json:"selector"`
}

func (h *handlers) handleExtractText(w http.ResponseWriter, r *http.Request) {
	var req extractTextRequest
	if derr := decodeJSON(r, &req); derr != nil {
		respondError(w, derr)
		return
	}

	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}

	driverSel := "body"
	if req.Selector != "" {
		sel, serr := h.resolve(req.Selector)
		if serr != nil {
			respondError(w, serr)
			return
		}
		driverSel = sel.DriverSelector()
	}

	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	locators, lerr := t.page.Locator(driverSel).All()
	if lerr != nil {
		respondError(w, DriverFailure("extract-text failed: %v", lerr))
		return
	}

	capped := false
	if len(locators) > extractTextElementCap {
		locators = locators[:extractTextElementCap]
		capped = true
	}

	deadline := time.Now().Add(extractTextWallTime)
	timedOut := false
	texts := make([]string, 0, len(locators))
	for _, loc := range locators {
		if time.Now().After(deadline) {
			timedOut = true
			break
		}
		text, ierr := loc.InnerText()
		if ierr != nil {
			continue
		}
		texts = append(texts, text)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"text":    strings.Join(texts, "\n"),
		"count":   len(texts),
		"capped":  capped,
		"timeout": timedOut,
	})
}

// brTempDir is where screenshots, PDFs, and downloads land when the
// caller does not supply an explicit path.
func brTempDir() (string, error) {
	dir := filepath.Join(os.TempDir(), "br_cli")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "page"
	}
	return u.Hostname()
}

func (h *handlers) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}

	fullPage := r.URL.Query().Get("fullPage") == "true"
	outPath := r.URL.Query().Get("path")

	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	DismissModals(t.page)
	_ = WaitForBypass(t.page, 0)

	if outPath == "" {
		dir, derr := brTempDir()
		if derr != nil {
			respondError(w, DriverFailure("screenshot failed: %v", derr))
			return
		}
		outPath = filepath.Join(dir, fmt.Sprintf("shot-%s-%d.png", domainOf(t.page.URL()), time.Now().Unix()))
	}

	if _, err := Screenshot(t.page, ScreenshotOptions{FullPage: fullPage, Path: outPath}); err != nil {
		respondError(w, DriverFailure("screenshot failed: %v", err))
		return
	}
	h.state.AppendHistory("screenshot", map[string]interface{}{"fullPage": fullPage, "path": outPath})
	writeText(w, http.StatusOK, outPath)
}

func (h *handlers) handlePDF(w http.ResponseWriter, r *http.Request) {
	t, _, err := h.activeTab()
	if err != nil {
		respondError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	outPath := r.URL.Query().Get("path")

	t.driverMu.Lock()
	defer t.driverMu.Unlock()

	if outPath == "" {
		dir, derr := brTempDir()
		if derr != nil {
			respondError(w, DriverFailure("pdf failed: %v", derr))
			return
		}
		outPath = filepath.Join(dir, fmt.Sprintf("page-%s-%d.pdf", domainOf(t.page.URL()), time.Now().Unix()))
	}

	if _, err := PDF(t.page, PDFOptions{Format: format, Path: outPath}); err != nil {
		respondError(w, DriverFailure("pdf failed: %v", err))
		return
	}
	h.state.AppendHistory("pdf", map[string]interface{}{"format": format, "path": outPath})
	writeText(w, http.StatusOK, outPath)
}

type downloadRequest struct {
	Selector string `json:"selector"`
	Output   string `json:"output"`
}

const resolveDownloadURLScript = `el => {
	const raw = el.getAttribute('href') || el.getAttribute('src');
	if (!raw) { return null; }
	return new URL(raw, document.baseURI).toString();
}`

const fetchInPageScript = `async (url) => {
	const res = await fetch(url);
	const buf = await res.arrayBuffer();
	let binary = '';
	const bytes = new Uint8Array(buf);
	for (let i = 0; i < bytes.length; i++) {
		binary += String.fromCharCode(bytes[i]);
	}
	return btoa(binary);
}`

func (h *handlers) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
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

	result, eerr := t.page.EvalOnSelector(sel.DriverSelector(), resolveDownloadURLScript, nil)
	if eerr != nil {
		respondError(w, SelectorMiss(sel.token, "element not found for selector %q", sel.token))
		return
	}
	resolvedURL, _ := result.(string)
	if resolvedURL == "" {
		respondError(w, BadInput("element has no href or src attribute"))
		return
	}

	var data []byte
	if strings.HasPrefix(resolvedURL, "data:") {
		decoded, derr := decodeDataURL(resolvedURL)
		if derr != nil {
			respondError(w, BadInput("invalid data URL: %v", derr))
			return
		}
		data = decoded
	} else {
		fres, ferr := Evaluate(t.page, fetchInPageScript, resolvedURL)
		if ferr != nil {
			respondError(w, DriverFailure("download fetch failed: %v", ferr))
			return
		}
		b64, _ := fres.(string)
		decoded, derr := base64.StdEncoding.DecodeString(b64)
		if derr != nil {
			respondError(w, DriverFailure("download decode failed: %v", derr))
			return
		}
		data = decoded
	}

	outPath := req.Output
	if outPath == "" {
		dir, derr := brTempDir()
		if derr != nil {
			respondError(w, DriverFailure("download failed: %v", derr))
			return
		}
		outPath = filepath.Join(dir, inferFilename(resolvedURL))
	}

	if err := os.WriteFile(outPath, data, 0640); err != nil {
		respondError(w, DriverFailure("failed to write download: %v", err))
		return
	}

	h.state.AppendHistory("download", map[string]interface{}{"selector": req.Selector, "output": outPath})
	writeJSON(w, http.StatusOK, map[string]interface{}{"path": outPath, "size": len(data), "url": resolvedURL})
}

func inferFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}
	base := path.Base(u.Path)
	if base == "" || base == "/" || base == "." {
		return "download"
	}
	return base
}

func decodeDataURL(dataURL string) ([]byte, error) {
	comma := strings.IndexByte(dataURL, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URL")
	}
	meta, payload := dataURL[5:comma], dataURL[comma+1:]
	if strings.Contains(meta, "base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	decoded, err := url.QueryUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(decoded), nil
}
