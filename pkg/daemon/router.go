package daemon

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/entrhq/br/pkg/instance"
	"github.com/entrhq/br/pkg/logging"
)

// handlers bundles everything an HTTP handler needs: the driver, the
// instance state, launch options, a logger, the ad-blocker, and the
// shutdown callback the Supervisor installs.
type handlers struct {
	driver    *Driver
	state     *State
	opts      instance.Options
	logger    *logging.Logger
	adblocker AdBlocker
	shutdown  func()
}

// NewRouter builds the HTTP surface described in the endpoint catalogue:
// every handler is synchronous, validates its own input, and appends to
// Action History on success for side-effecting requests.
func NewRouter(d *Driver, s *State, opts instance.Options, logger *logging.Logger, adblocker AdBlocker, shutdown func()) http.Handler {
	h := &handlers{driver: d, state: s, opts: opts, logger: logger, adblocker: adblocker, shutdown: shutdown}

	r := mux.NewRouter()
	r.Use(recoveryMiddleware(logger), loggingMiddleware(logger))

	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/tabs", h.handleListTabs).Methods(http.MethodGet)
	r.HandleFunc("/tabs/switch", h.handleSwitchTab).Methods(http.MethodPost)

	r.HandleFunc("/goto", h.handleGoto).Methods(http.MethodPost)
	r.HandleFunc("/back", h.handleBack).Methods(http.MethodPost)
	r.HandleFunc("/forward", h.handleForward).Methods(http.MethodPost)
	r.HandleFunc("/reload", h.handleReload).Methods(http.MethodPost)
	r.HandleFunc("/clear-cache", h.handleClearCache).Methods(http.MethodPost)

	r.HandleFunc("/scroll-into-view", h.handleScrollIntoView).Methods(http.MethodPost)
	r.HandleFunc("/scroll-to", h.handleScrollTo).Methods(http.MethodPost)
	r.HandleFunc("/next-chunk", h.handleNextChunk).Methods(http.MethodPost)
	r.HandleFunc("/prev-chunk", h.handlePrevChunk).Methods(http.MethodPost)
	r.HandleFunc("/fill", h.handleFill).Methods(http.MethodPost)
	r.HandleFunc("/fill-secret", h.handleFillSecret).Methods(http.MethodPost)
	r.HandleFunc("/type", h.handleType).Methods(http.MethodPost)
	r.HandleFunc("/press", h.handlePress).Methods(http.MethodPost)
	r.HandleFunc("/click", h.handleClick).Methods(http.MethodPost)
	r.HandleFunc("/fill-search", h.handleFillSearch).Methods(http.MethodPost)
	r.HandleFunc("/select", h.handleSelect).Methods(http.MethodPost)
	r.HandleFunc("/submit", h.handleSubmit).Methods(http.MethodPost)

	r.HandleFunc("/exists", h.handleExists).Methods(http.MethodPost)
	r.HandleFunc("/visible", h.handleVisible).Methods(http.MethodPost)
	r.HandleFunc("/count", h.handleCount).Methods(http.MethodPost)
	r.HandleFunc("/attr", h.handleAttr).Methods(http.MethodPost)

	r.HandleFunc("/wait", h.handleWait).Methods(http.MethodPost)
	r.HandleFunc("/wait-load", h.handleWaitLoad).Methods(http.MethodPost)
	r.HandleFunc("/wait-stable", h.handleWaitStable).Methods(http.MethodPost)
	r.HandleFunc("/wait-idle", h.handleWaitIdle).Methods(http.MethodPost)

	r.HandleFunc("/html", h.handleHTML).Methods(http.MethodGet)
	r.HandleFunc("/tree", h.handleTree).Methods(http.MethodGet)
	r.HandleFunc("/extract-text", h.handleExtractText).Methods(http.MethodPost)

	r.HandleFunc("/screenshot", h.handleScreenshot).Methods(http.MethodGet)
	r.HandleFunc("/pdf", h.handlePDF).Methods(http.MethodGet)
	r.HandleFunc("/download", h.handleDownload).Methods(http.MethodPost)

	r.HandleFunc("/eval", h.handleEval).Methods(http.MethodPost)
	r.HandleFunc("/assert", h.handleAssert).Methods(http.MethodPost)

	r.HandleFunc("/console", h.handleConsole).Methods(http.MethodGet)
	r.HandleFunc("/console/clear", h.handleConsoleClear).Methods(http.MethodPost)

	r.HandleFunc("/history", h.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/history/clear", h.handleHistoryClear).Methods(http.MethodPost)

	r.HandleFunc("/shutdown", h.handleShutdown).Methods(http.MethodPost)

	return r
}

// statusRecorder wraps a ResponseWriter to capture the status code a
// handler wrote, since http.ResponseWriter exposes no way to read it back.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req)
			logger.Debugw("request",
				logging.F("method", req.Method),
				logging.F("path", req.URL.Path),
				logging.F("status", rec.status),
				logging.F("duration", time.Since(start)),
			)
		})
	}
}

func recoveryMiddleware(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Errorf("panic handling %s %s: %v", req.Method, req.URL.Path, rec)
					writeText(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, req)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

// respondError writes err to w using its status code and message, adding
// the selector-hint suffix for selector-miss errors.
func respondError(w http.ResponseWriter, err error) {
	derr, ok := err.(*Error)
	if !ok {
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}
	msg := derr.Message
	if derr.Kind == KindSelectorMiss {
		msg = msg + " (" + selectorHint + ")"
	}
	writeText(w, derr.StatusCode(), msg)
}

// decodeJSON decodes the request body into dst. An empty body is treated
// as a zero-value dst, not an error, since several endpoints have no
// required fields.
func decodeJSON(r *http.Request, dst interface{}) *Error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if err.Error() == "EOF" {
			return nil
		}
		return BadInput("invalid JSON body: %v", err)
	}
	return nil
}
