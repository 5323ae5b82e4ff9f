package instance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, "default", opts.Name)
	assert.Equal(t, 1280, opts.ViewportWidth)
	assert.Equal(t, 720, opts.ViewportHeight)
	assert.Equal(t, AdblockBaseAdsAndTrackers, opts.AdblockBase)
	assert.False(t, opts.Headless)
}

func TestLoadConfigFileMissingIsNotError(t *testing.T) {
	opts := DefaultOptions()
	err := LoadConfigFile(&opts, filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("headless: true\nviewport_width: 1600\nadblock: true\nadblock_base: full\n"), 0644))

	opts := DefaultOptions()
	require.NoError(t, LoadConfigFile(&opts, path))

	assert.True(t, opts.Headless)
	assert.Equal(t, 1600, opts.ViewportWidth)
	assert.True(t, opts.Adblock)
	assert.Equal(t, AdblockBaseFull, opts.AdblockBase)
	assert.Equal(t, 720, opts.ViewportHeight) // untouched field keeps default
}

func TestApplyEnvOverridesOptions(t *testing.T) {
	t.Setenv("BR_HEADLESS", "true")
	t.Setenv("BR_VIEWPORT_WIDTH", "1920")
	t.Setenv("BR_ADBLOCK_BASE", "ads")
	t.Setenv("BR_ADBLOCK_LISTS", "a.txt,b.txt")

	opts := DefaultOptions()
	ApplyEnv(&opts)

	assert.True(t, opts.Headless)
	assert.Equal(t, 1920, opts.ViewportWidth)
	assert.Equal(t, AdblockBaseAds, opts.AdblockBase)
	assert.Equal(t, []string{"a.txt", "b.txt"}, opts.AdblockLists)
}

func TestParseViewport(t *testing.T) {
	w, h, err := ParseViewport("1280x720")
	require.NoError(t, err)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)

	_, _, err = ParseViewport("bogus")
	assert.Error(t, err)
}

func TestValidateRejectsBadAdblockBase(t *testing.T) {
	opts := DefaultOptions()
	opts.AdblockBase = "nonsense"
	assert.Error(t, opts.Validate())
}

func TestValidateRejectsMissingListPath(t *testing.T) {
	opts := DefaultOptions()
	opts.AdblockLists = []string{"/does/not/exist.txt"}
	assert.Error(t, opts.Validate())
}

func TestValidateRejectsBadViewport(t *testing.T) {
	opts := DefaultOptions()
	opts.ViewportWidth = 10
	assert.Error(t, opts.Validate())
}
