package registry

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	dir := t.TempDir()
	reg, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, reg.Register("default", 3030, os.Getpid()))

	entry, ok, err := reg.Lookup("default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3030, entry.Port)
	assert.Equal(t, os.Getpid(), entry.PID)
}

func TestReadPrunesDeadEntries(t *testing.T) {
	dir := t.TempDir()
	reg, err := New(dir)
	require.NoError(t, err)

	// A PID that is essentially guaranteed not to be alive.
	const deadPID = 999999

	require.NoError(t, reg.Register("alive", 3030, os.Getpid()))
	require.NoError(t, reg.Register("dead", 3031, deadPID))

	entries, err := reg.Read()
	require.NoError(t, err)

	_, aliveOK := entries["alive"]
	_, deadOK := entries["dead"]
	assert.True(t, aliveOK)
	assert.False(t, deadOK)

	// The dead entry must also be gone from the file on disk.
	reread, err := reg.Read()
	require.NoError(t, err)
	_, deadOK2 := reread["dead"]
	assert.False(t, deadOK2)
}

func TestUnregister(t *testing.T) {
	dir := t.TempDir()
	reg, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, reg.Register("default", 3030, os.Getpid()))
	require.NoError(t, reg.Unregister("default"))

	_, ok, err := reg.Lookup("default")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMissingFileIsEmptyRegistry(t *testing.T) {
	dir := t.TempDir()
	reg, err := New(dir)
	require.NoError(t, err)

	entries, err := reg.Read()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMalformedFileIsTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	reg, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(dir, 0750))
	require.NoError(t, os.WriteFile(reg.Path(), []byte("{not valid json"), 0640))

	entries, err := reg.Read()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAllocatePortDefaultInstancePrefersDefaultPort(t *testing.T) {
	dir := t.TempDir()
	reg, err := New(dir)
	require.NoError(t, err)

	port, err := reg.AllocatePort("default")
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, port)
}

func TestAllocatePortMonotonicity(t *testing.T) {
	dir := t.TempDir()
	reg, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, reg.Register("a", DefaultPort, os.Getpid()))
	require.NoError(t, reg.Register("b", DefaultPort+1, os.Getpid()))
	require.NoError(t, reg.Register("c", DefaultPort+3, os.Getpid()))

	port, err := reg.AllocatePort("named")
	require.NoError(t, err)
	assert.Equal(t, DefaultPort+2, port)
}
