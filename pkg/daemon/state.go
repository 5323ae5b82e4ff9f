package daemon

import (
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

const consoleRingCapacity = 1000

// ActionHistoryEntry records one completed side-effecting request.
type ActionHistoryEntry struct {
	Action    string                 `json:"action"`
	Args      map[string]interface{} `json:"args"`
	Timestamp time.Time              `json:"timestamp"`
}

// ConsoleLogEntry records one console message or page error delivered by
// the driver's console listener.
type ConsoleLogEntry struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
	TabIndex  int       `json:"tabIndex"`
}

// TabInfo is the JSON-facing view of a tab returned by GET /tabs.
type TabInfo struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	IsActive bool   `json:"isActive"`
}

// tab bundles a driver page handle with the metadata and per-tab
// serialization lock that travel with it. Listeners that need "which tab
// index am I" look the page up with IndexOfPage at delivery time rather
// than capturing an index, so index compaction on tab close never
// invalidates them.
type tab struct {
	page     playwright.Page
	driverMu sync.Mutex
	url      string
	title    string
}

// State is the single mutable state bag owned by one daemon instance:
// tabs, active tab, action history, console ring, masked secrets, and the
// most recent ID->XPath map. All mutation happens under mu, held only for
// the duration of the bookkeeping itself -- never across a browser call.
type State struct {
	mu sync.Mutex

	tabs      []*tab
	activeIdx int // -1 when there is no active tab

	history []ActionHistoryEntry

	console []ConsoleLogEntry

	secrets map[string]struct{}

	idXPath map[int]string
}

// NewState creates an empty instance state bag.
func NewState() *State {
	return &State{
		activeIdx: -1,
		secrets:   make(map[string]struct{}),
		idXPath:   make(map[int]string),
	}
}

// AddTab registers a newly opened page as the new active tab and returns
// its index.
func (s *State) AddTab(page playwright.Page) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tabs = append(s.tabs, &tab{page: page, url: "about:blank"})
	idx := len(s.tabs) - 1
	s.activeIdx = idx
	return idx
}

// RemoveTab compacts the tab list after a page closes and reassigns the
// active tab if the closed tab was active.
func (s *State) RemoveTab(page playwright.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.tabs {
		if t.page == page {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	s.tabs = append(s.tabs[:idx], s.tabs[idx+1:]...)
	s.compactConsoleForRemovedTabLocked(idx)

	switch {
	case len(s.tabs) == 0:
		s.activeIdx = -1
	case s.activeIdx == idx:
		if idx >= len(s.tabs) {
			s.activeIdx = len(s.tabs) - 1
		} else {
			s.activeIdx = idx
		}
	case s.activeIdx > idx:
		s.activeIdx--
	}
}

// ErrNoActiveTab is returned by tab-dependent operations when the tab list
// is empty.
var ErrNoActiveTab = BadInput("no active tab")

// ActiveTab returns the active tab and its index, or ErrNoActiveTab.
func (s *State) ActiveTab() (*tab, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeIdx < 0 || s.activeIdx >= len(s.tabs) {
		return nil, -1, ErrNoActiveTab
	}
	return s.tabs[s.activeIdx], s.activeIdx, nil
}

// Tab returns the tab at idx, or a bad-input error if out of range.
func (s *State) Tab(idx int) (*tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.tabs) {
		return nil, BadInput("tab index %d out of range (have %d tabs)", idx, len(s.tabs))
	}
	return s.tabs[idx], nil
}

// SetActiveTab sets the active tab index.
func (s *State) SetActiveTab(idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.tabs) {
		return BadInput("tab index %d out of range (have %d tabs)", idx, len(s.tabs))
	}
	s.activeIdx = idx
	return nil
}

// UpdateTab records the current URL/title for a tab, used after
// navigation-causing operations.
func (s *State) UpdateTab(idx int, url, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.tabs) {
		return
	}
	s.tabs[idx].url = url
	s.tabs[idx].title = title
}

// ListTabs returns the current tabs in insertion order.
func (s *State) ListTabs() []TabInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TabInfo, len(s.tabs))
	for i, t := range s.tabs {
		out[i] = TabInfo{Index: i, Title: t.title, URL: t.url, IsActive: i == s.activeIdx}
	}
	return out
}

// IndexOfPage returns the current index of page, or -1 if it is not a
// known tab. Event listeners attached at tab-creation time call this
// lazily rather than capturing an index, since indices shift when earlier
// tabs close.
func (s *State) IndexOfPage(page playwright.Page) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tabs {
		if t.page == page {
			return i
		}
	}
	return -1
}

// TabCount returns the number of open tabs.
func (s *State) TabCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tabs)
}

// AppendHistory appends a completed action to the action history. The
// history is unbounded; no cap is applied.
func (s *State) AppendHistory(action string, args map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, ActionHistoryEntry{
		Action:    action,
		Args:      args,
		Timestamp: time.Now(),
	})
}

// ClearHistory empties the action history.
func (s *State) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// History returns a copy of the current action history.
func (s *State) History() []ActionHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ActionHistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// PushConsole appends a console entry, dropping the oldest entry if the
// ring is at capacity.
func (s *State) PushConsole(entry ConsoleLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.console = append(s.console, entry)
	if over := len(s.console) - consoleRingCapacity; over > 0 {
		s.console = s.console[over:]
	}
}

// compactConsoleForRemovedTabLocked removes entries belonging to the tab
// that just closed at idx and shifts every later tab's entries down by one,
// to stay consistent with RemoveTab's own index compaction. Must be called
// with mu held.
func (s *State) compactConsoleForRemovedTabLocked(idx int) {
	filtered := s.console[:0]
	for _, e := range s.console {
		switch {
		case e.TabIndex == idx:
			continue
		case e.TabIndex > idx:
			e.TabIndex--
		}
		filtered = append(filtered, e)
	}
	s.console = filtered
}

// DropConsoleForTab clears console entries produced by the given tab index,
// used on navigation of that tab. No tab closes here, so indices of every
// other tab's entries are left untouched.
func (s *State) DropConsoleForTab(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.console[:0]
	for _, e := range s.console {
		if e.TabIndex == idx {
			continue
		}
		filtered = append(filtered, e)
	}
	s.console = filtered
}

// ClearConsole empties the console ring.
func (s *State) ClearConsole() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.console = nil
}

// Console returns console entries, optionally filtered to the given types
// (empty = all) and tab index (-1 = all), optionally clearing them after.
func (s *State) Console(types map[string]bool, tabIndex int, clear bool) []ConsoleLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ConsoleLogEntry, 0, len(s.console))
	for _, e := range s.console {
		if len(types) > 0 && !types[e.Type] {
			continue
		}
		if tabIndex >= 0 && e.TabIndex != tabIndex {
			continue
		}
		out = append(out, e)
	}

	if clear {
		s.console = nil
	}
	return out
}

// AddSecret adds a value to the monotonically growing secret set.
func (s *State) AddSecret(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[value] = struct{}{}
}

// Secrets returns a snapshot of the current secret set.
func (s *State) Secrets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.secrets))
	for v := range s.secrets {
		out = append(out, v)
	}
	return out
}

// ReplaceIDXPathMap overwrites the ID->XPath map produced by the most
// recent view-tree call.
func (s *State) ReplaceIDXPathMap(m map[int]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idXPath = m
}

// LookupXPath resolves a numeric accessibility-node ID against the most
// recent ID->XPath map.
func (s *State) LookupXPath(id int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	xpath, ok := s.idXPath[id]
	return xpath, ok
}
