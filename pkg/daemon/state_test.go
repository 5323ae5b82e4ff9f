package daemon

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePage gives each test tab a distinct page handle, since RemoveTab and
// IndexOfPage find a tab by its page.
type fakePage struct {
	playwright.Page
	id int
}

func TestConsoleRingBoundedAt1000(t *testing.T) {
	state := NewState()

	for i := 0; i < 1500; i++ {
		state.PushConsole(ConsoleLogEntry{Type: "log", Text: "msg"})
	}

	entries := state.Console(nil, -1, false)
	require.Len(t, entries, consoleRingCapacity)
	assert.Equal(t, consoleRingCapacity, len(entries))
}

func TestConsoleRingKeepsMostRecent(t *testing.T) {
	state := NewState()

	for i := 0; i < 1500; i++ {
		state.PushConsole(ConsoleLogEntry{Type: "log", Text: "msg"})
	}
	// entries are indistinguishable by content here; push one more
	// distinguishable entry and confirm it survives as the newest.
	state.PushConsole(ConsoleLogEntry{Type: "error", Text: "last"})

	entries := state.Console(nil, -1, false)
	require.Len(t, entries, consoleRingCapacity)
	last := entries[len(entries)-1]
	assert.Equal(t, "error", last.Type)
	assert.Equal(t, "last", last.Text)
}

func TestConsoleFilterByType(t *testing.T) {
	state := NewState()
	state.PushConsole(ConsoleLogEntry{Type: "log", Text: "a"})
	state.PushConsole(ConsoleLogEntry{Type: "error", Text: "b"})
	state.PushConsole(ConsoleLogEntry{Type: "error", Text: "c"})

	entries := state.Console(map[string]bool{"error": true}, -1, false)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "error", e.Type)
	}
}

func TestConsoleClearOnRead(t *testing.T) {
	state := NewState()
	state.PushConsole(ConsoleLogEntry{Type: "log", Text: "a"})

	entries := state.Console(nil, -1, true)
	require.Len(t, entries, 1)
	assert.Empty(t, state.Console(nil, -1, false))
}

func TestAddTabBecomesActive(t *testing.T) {
	state := NewState()

	idx := state.AddTab(nil)
	assert.Equal(t, 0, idx)

	_, activeIdx, err := state.ActiveTab()
	require.Nil(t, err)
	assert.Equal(t, 0, activeIdx)
}

func TestActiveTabWithNoTabs(t *testing.T) {
	state := NewState()

	_, _, err := state.ActiveTab()
	assert.Equal(t, ErrNoActiveTab, err)
}

func TestRemoveTabReassignsActiveWhenClosingActive(t *testing.T) {
	state := NewState()
	state.AddTab(&fakePage{id: 0})
	state.AddTab(&fakePage{id: 1}) // tab 1 becomes active
	require.NoError(t, state.SetActiveTab(1))

	t1, _, err := state.ActiveTab()
	require.Nil(t, err)

	state.RemoveTab(t1.page)

	_, activeIdx, err := state.ActiveTab()
	require.Nil(t, err)
	assert.Equal(t, 0, activeIdx)
}

func TestRemoveTabShiftsLaterActiveIndex(t *testing.T) {
	state := NewState()
	state.AddTab(nil) // index 0
	state.AddTab(nil) // index 1, active
	tabs := state.ListTabs()
	require.Len(t, tabs, 2)

	first, err := state.Tab(0)
	require.Nil(t, err)

	state.RemoveTab(first.page)

	_, activeIdx, err := state.ActiveTab()
	require.Nil(t, err)
	assert.Equal(t, 0, activeIdx)
}

func TestRemoveTabCompactsConsoleAndShiftsLaterIndices(t *testing.T) {
	state := NewState()
	state.AddTab(&fakePage{id: 0})
	state.AddTab(&fakePage{id: 1})
	state.AddTab(&fakePage{id: 2})

	state.PushConsole(ConsoleLogEntry{TabIndex: 0, Text: "tab0"})
	state.PushConsole(ConsoleLogEntry{TabIndex: 1, Text: "tab1"})
	state.PushConsole(ConsoleLogEntry{TabIndex: 2, Text: "tab2"})

	middle, err := state.Tab(1)
	require.Nil(t, err)
	state.RemoveTab(middle.page)

	entries := state.Console(nil, -1, false)
	require.Len(t, entries, 2)
	assert.Equal(t, "tab0", entries[0].Text)
	assert.Equal(t, 0, entries[0].TabIndex)
	assert.Equal(t, "tab2", entries[1].Text)
	assert.Equal(t, 1, entries[1].TabIndex)
}

func TestDropConsoleForTabLeavesOtherIndicesUnshifted(t *testing.T) {
	state := NewState()
	state.AddTab(nil)
	state.AddTab(nil)
	state.AddTab(nil)

	state.PushConsole(ConsoleLogEntry{TabIndex: 0, Text: "tab0"})
	state.PushConsole(ConsoleLogEntry{TabIndex: 1, Text: "tab1"})
	state.PushConsole(ConsoleLogEntry{TabIndex: 2, Text: "tab2"})

	// Simulate a /goto or /reload against the middle tab: no tab closes,
	// so tab 2's entries must keep their original index, unlike the
	// RemoveTab compaction case.
	state.DropConsoleForTab(1)

	entries := state.Console(nil, -1, false)
	require.Len(t, entries, 2)
	assert.Equal(t, "tab0", entries[0].Text)
	assert.Equal(t, 0, entries[0].TabIndex)
	assert.Equal(t, "tab2", entries[1].Text)
	assert.Equal(t, 2, entries[1].TabIndex)
}

func TestIndexOfPageUnknownReturnsNegativeOne(t *testing.T) {
	state := NewState()
	assert.Equal(t, -1, state.IndexOfPage(nil))
}

func TestHistoryAppendAndClear(t *testing.T) {
	state := NewState()
	state.AppendHistory("goto", map[string]interface{}{"url": "https://example.com"})
	state.AppendHistory("click", map[string]interface{}{"selector": "#go"})

	entries := state.History()
	require.Len(t, entries, 2)
	assert.Equal(t, "goto", entries[0].Action)

	state.ClearHistory()
	assert.Empty(t, state.History())
}

func TestSecretsDeduplicate(t *testing.T) {
	state := NewState()
	state.AddSecret("hunter2")
	state.AddSecret("hunter2")
	state.AddSecret("other")

	assert.ElementsMatch(t, []string{"hunter2", "other"}, state.Secrets())
}

func TestLookupXPathMissing(t *testing.T) {
	state := NewState()
	state.ReplaceIDXPathMap(map[int]string{1: "/html"})

	_, ok := state.LookupXPath(2)
	assert.False(t, ok)
}
