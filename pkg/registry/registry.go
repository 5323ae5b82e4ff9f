// Package registry implements the on-disk named-instance directory that
// lets multiple br daemons coexist on one host. The registry file is the
// single source of truth for which instances exist; a PID that fails a
// liveness probe is considered dead and pruned on next read.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
)

// DefaultPort is the port the "default" instance prefers.
const DefaultPort = 3030

// Entry is one registered daemon instance.
type Entry struct {
	Port int `json:"port"`
	PID  int `json:"pid"`
}

// Registry reads and writes the shared instances.json file.
type Registry struct {
	dir      string
	path     string
	lockPath string
}

// New creates a Registry rooted at $HOME/.br. dir, if non-empty, overrides
// the home-directory default (used by tests).
func New(dir string) (*Registry, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".br")
	}

	return &Registry{
		dir:      dir,
		path:     filepath.Join(dir, "instances.json"),
		lockPath: filepath.Join(dir, "instances.json.lock"),
	}, nil
}

// Path returns the path of the registry file.
func (r *Registry) Path() string { return r.path }

// Read loads the registry, drops entries whose PID is no longer alive, and
// rewrites the file if anything was dropped. A missing or malformed file is
// treated as an empty registry, never an error.
func (r *Registry) Read() (map[string]Entry, error) {
	var result map[string]Entry

	err := r.withLock(func() error {
		entries, changed, err := r.readAndPruneLocked()
		if err != nil {
			return err
		}
		if changed {
			if werr := r.writeLocked(entries); werr != nil {
				return werr
			}
		}
		result = entries
		return nil
	})
	return result, err
}

// Register atomically adds or replaces an instance entry.
func (r *Registry) Register(name string, port, pid int) error {
	return r.withLock(func() error {
		entries, _, err := r.readAndPruneLocked()
		if err != nil {
			return err
		}
		entries[name] = Entry{Port: port, PID: pid}
		return r.writeLocked(entries)
	})
}

// Unregister atomically removes an instance entry. Removing a name that
// does not exist is not an error.
func (r *Registry) Unregister(name string) error {
	return r.withLock(func() error {
		entries, _, err := r.readAndPruneLocked()
		if err != nil {
			return err
		}
		delete(entries, name)
		return r.writeLocked(entries)
	})
}

// Lookup returns the entry for a named instance after pruning dead entries.
func (r *Registry) Lookup(name string) (Entry, bool, error) {
	entries, err := r.Read()
	if err != nil {
		return Entry{}, false, err
	}
	e, ok := entries[name]
	return e, ok, nil
}

// AllocatePort scans the registry for used ports and returns the lowest
// free integer >= DefaultPort that also passes a bind probe. The "default"
// instance name prefers DefaultPort specifically.
func (r *Registry) AllocatePort(name string) (int, error) {
	entries, err := r.Read()
	if err != nil {
		return 0, err
	}

	used := make(map[int]bool, len(entries))
	for _, e := range entries {
		used[e.Port] = true
	}

	if name == "default" && !used[DefaultPort] && portBindable(DefaultPort) {
		return DefaultPort, nil
	}

	candidate := DefaultPort
	for {
		if !used[candidate] && portBindable(candidate) {
			return candidate, nil
		}
		candidate++
		if candidate > 65535 {
			return 0, fmt.Errorf("no available port found starting at %d", DefaultPort)
		}
	}
}

// List returns the registry sorted by instance name, for CLI display.
func List(entries map[string]Entry) []struct {
	Name string
	Entry
} {
	out := make([]struct {
		Name string
		Entry
	}, 0, len(entries))
	for name, e := range entries {
		out = append(out, struct {
			Name string
			Entry
		}{Name: name, Entry: e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PortBindable reports whether port can currently be bound on localhost,
// used by callers that want to honor a caller-specified port (BR_PORT)
// instead of going through AllocatePort.
func PortBindable(port int) bool {
	return portBindable(port)
}

func portBindable(port int) bool {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	ln.Close()
	return true
}

// readAndPruneLocked reads the registry file (missing/malformed => empty)
// and drops entries whose process is no longer alive. Must be called while
// holding the file lock.
func (r *Registry) readAndPruneLocked() (map[string]Entry, bool, error) {
	entries := make(map[string]Entry)

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, false, nil
		}
		return entries, false, nil // torn/unreadable file treated as empty
	}

	if jsonErr := json.Unmarshal(data, &entries); jsonErr != nil {
		// Malformed JSON is treated as an empty registry, not an error.
		return make(map[string]Entry), false, nil
	}

	changed := false
	for name, e := range entries {
		if !processAlive(e.PID) {
			delete(entries, name)
			changed = true
		}
	}

	return entries, changed, nil
}

func (r *Registry) writeLocked(entries map[string]Entry) error {
	if err := os.MkdirAll(r.dir, 0750); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	tempFile, err := os.CreateTemp(r.dir, ".instances-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp registry file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write registry data: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync registry file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp registry file: %w", err)
	}
	tempFile = nil

	if err := os.Chmod(tempPath, 0640); err != nil {
		return fmt.Errorf("failed to set registry file permissions: %w", err)
	}
	if err := os.Rename(tempPath, r.path); err != nil {
		return fmt.Errorf("failed to rename registry file: %w", err)
	}
	return nil
}

// withLock brackets fn with an exclusive, cross-process file lock so that
// concurrent start/stop invocations do not tear the registry file.
func (r *Registry) withLock(fn func() error) error {
	if err := os.MkdirAll(r.dir, 0750); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fileLock := flock.New(r.lockPath)
	locked, err := fileLock.TryLockContext(ctx, 25*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire registry lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire registry lock within timeout")
	}
	defer fileLock.Unlock()

	return fn()
}
