package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/br/pkg/instance"
)

func TestNewAdBlockerDisabledIsNoop(t *testing.T) {
	b, err := NewAdBlocker(false, instance.AdblockBaseFull, nil)
	require.Nil(t, err)
	_, ok := b.(noopAdBlocker)
	assert.True(t, ok)
}

func TestNewAdBlockerBaseNoneBlocksNothing(t *testing.T) {
	b, err := NewAdBlocker(true, instance.AdblockBaseNone, nil)
	require.Nil(t, err)
	g, ok := b.(*globAdBlocker)
	require.True(t, ok)
	assert.False(t, g.blocks("https://example.com/"))
	assert.False(t, g.blocks("https://doubleclick.net/pixel"))
}

func TestNewAdBlockerBasePresetBlocksKnownTracker(t *testing.T) {
	b, err := NewAdBlocker(true, instance.AdblockBaseAdsAndTrackers, nil)
	require.Nil(t, err)
	g, ok := b.(*globAdBlocker)
	require.True(t, ok)
	assert.True(t, g.blocks("https://www.google-analytics.com/collect"))
	assert.False(t, g.blocks("https://example.com/app.js"))
}

func TestNewAdBlockerReadsLocalListFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.txt")
	content := "# comment\n\n*://*tracker.example/*\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	b, err := NewAdBlocker(true, instance.AdblockBaseNone, []string{path})
	require.Nil(t, err)
	g, ok := b.(*globAdBlocker)
	require.True(t, ok)
	assert.True(t, g.blocks("https://ads.tracker.example/beacon"))
	assert.False(t, g.blocks("https://example.com/"))
}

func TestNewAdBlockerMissingLocalListFileErrors(t *testing.T) {
	_, err := NewAdBlocker(true, instance.AdblockBaseNone, []string{"/nonexistent/list.txt"})
	assert.NotNil(t, err)
}

func TestNewAdBlockerInvalidPatternErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.txt")
	require.NoError(t, os.WriteFile(path, []byte("[invalid\n"), 0644))

	_, err := NewAdBlocker(true, instance.AdblockBaseNone, []string{path})
	assert.NotNil(t, err)
}
