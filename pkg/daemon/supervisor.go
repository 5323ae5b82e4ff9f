package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/br/pkg/instance"
	"github.com/entrhq/br/pkg/logging"
	"github.com/entrhq/br/pkg/registry"
)

// Supervisor owns the full lifecycle of one daemon process: launching the
// driver, wiring up the first tab and all subsequently opened ones,
// binding the HTTP server on its allocated port, and tearing everything
// down on request or on browser death.
type Supervisor struct {
	name   string
	opts   instance.Options
	logger *logging.Logger
	reg    *registry.Registry

	driver    *Driver
	state     *State
	adblocker AdBlocker
	server    *http.Server

	shuttingDown atomic.Bool
}

// NewSupervisor constructs a Supervisor. Run does the actual launching.
func NewSupervisor(name string, opts instance.Options, logger *logging.Logger, reg *registry.Registry) *Supervisor {
	return &Supervisor{name: name, opts: opts, logger: logger, reg: reg}
}

// Run launches the browser, binds the HTTP server, and blocks until
// shutdown. It is the body of the forked daemon process.
func (s *Supervisor) Run() error {
	adblocker, err := NewAdBlocker(s.opts.Adblock, s.opts.AdblockBase, s.opts.AdblockLists)
	if err != nil {
		return fmt.Errorf("failed to build ad-blocker: %w", err)
	}
	s.adblocker = adblocker
	s.state = NewState()

	userDataDir, err := profileDir(s.name)
	if err != nil {
		return fmt.Errorf("failed to prepare profile directory: %w", err)
	}

	driver, err := Launch(s.opts, userDataDir)
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	s.driver = driver

	driver.OnPage(s.onPageCreated)
	driver.OnClose(s.onBrowserClosed)

	page, err := driver.NewPage()
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to open initial tab: %w", err)
	}
	s.onPageCreated(page)

	var port int
	if s.opts.Port != 0 {
		if !registry.PortBindable(s.opts.Port) {
			_ = driver.Close()
			return fmt.Errorf("port %d is not available", s.opts.Port)
		}
		port = s.opts.Port
	} else {
		port, err = s.reg.AllocatePort(s.name)
		if err != nil {
			_ = driver.Close()
			return fmt.Errorf("failed to allocate port: %w", err)
		}
	}

	if err := s.reg.Register(s.name, port, os.Getpid()); err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to register instance: %w", err)
	}

	handler := NewRouter(s.driver, s.state, s.opts, s.logger, s.adblocker, func() { s.initiateShutdown(0) })
	s.server = &http.Server{Addr: fmt.Sprintf("localhost:%d", port), Handler: handler}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		s.logger.Infof("received shutdown signal")
		s.initiateShutdown(0)
	}()

	s.logger.Infof("running on port %d", port)
	printStartupLine(port)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Errorf("http server failed: %v", err)
		return err
	}
	return nil
}

// onPageCreated registers a newly created page as a tab, attaches its
// console/exception listeners, and applies the ad-blocker. It is both
// the initial-tab path and the Driver.OnPage callback for tabs opened by
// page scripts (window.open, target=_blank links).
func (s *Supervisor) onPageCreated(page playwright.Page) {
	if s.state.IndexOfPage(page) != -1 {
		return
	}
	idx := s.state.AddTab(page)
	if err := s.adblocker.Attach(page); err != nil {
		s.logger.Warnf("ad-blocker attach failed for tab %d: %v", idx, err)
	}
	s.attachListeners(page)
	s.logger.Infof("tab %d opened", idx)
}

// attachListeners wires console and page-error capture. Handlers look up
// the tab's current index at delivery time rather than capturing it, so
// RemoveTab's index compaction on an earlier tab's close never points a
// listener at the wrong tab.
func (s *Supervisor) attachListeners(page playwright.Page) {
	page.OnConsole(func(msg playwright.ConsoleMessage) {
		s.state.PushConsole(ConsoleLogEntry{
			Type:      string(msg.Type()),
			Text:      msg.Text(),
			Timestamp: time.Now(),
			URL:       page.URL(),
			TabIndex:  s.state.IndexOfPage(page),
		})
	})
	page.OnPageError(func(err error) {
		s.state.PushConsole(ConsoleLogEntry{
			Type:      "pageerror",
			Text:      err.Error(),
			Timestamp: time.Now(),
			URL:       page.URL(),
			TabIndex:  s.state.IndexOfPage(page),
		})
	})
	page.OnClose(func(playwright.Page) {
		s.state.RemoveTab(page)
		s.logger.Infof("tab closed")
	})
}

// onBrowserClosed is the Driver.OnClose callback. An unexpected browser
// death is not treated as a fatal error: the daemon has nothing left to
// serve, so it exits 0 ("my browser went away, so did I"). A close caused
// by our own initiateShutdown is a no-op here since that path already
// owns the exit.
func (s *Supervisor) onBrowserClosed() {
	if s.shuttingDown.Load() {
		return
	}
	s.logger.Errorf("browser context closed unexpectedly, exiting")
	_ = s.reg.Unregister(s.name)
	os.Exit(0)
}

// initiateShutdown is idempotent: the first caller (a /shutdown request
// or a signal) performs the teardown; later callers are no-ops.
func (s *Supervisor) initiateShutdown(code int) {
	if !s.shuttingDown.CompareAndSwap(false, true) {
		return
	}
	s.logger.Infof("shutting down")

	_ = s.reg.Unregister(s.name)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.server != nil {
		_ = s.server.Shutdown(ctx)
	}
	if s.driver != nil {
		_ = s.driver.Close()
	}

	os.Exit(code)
}

func profileDir(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".br", "profiles", fmt.Sprintf("%s-%d", name, time.Now().Unix()))
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}

// printStartupLine writes the health-probe-visible "running on port N"
// line to stdout, silently swallowing EPIPE if the reading end (a
// --foreground parent, or a probe loop) has already gone away.
func printStartupLine(port int) {
	_, err := fmt.Fprintf(os.Stdout, "running on port %d\n", port)
	if err != nil && !errors.Is(err, syscall.EPIPE) {
		// Nothing useful to do with a stdout write failure that isn't EPIPE;
		// the log file already has the same line.
		_ = err
	}
}
