package editor

import (
	"time"

	"github.com/interpretive-systems/codecraft/internal/execution"
	"github.com/interpretive-systems/codecraft/internal/store"
	"github.com/interpretive-systems/codecraft/internal/vfs"
)

// State is a read-only copy of the session for renderers.
type State struct {
	ActiveFileID string
	OpenFileIDs  []string
	Language     string
	Theme        string
	FontSize     int
	Autocomplete bool
	AutoDelay    time.Duration

	Output   string
	Error    string
	Running  bool
	Result   *execution.Result
	Degraded bool
}

// State returns the current session state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := State{
		ActiveFileID: e.activeID,
		OpenFileIDs:  append([]string(nil), e.openIDs...),
		Language:     e.language,
		Theme:        e.theme,
		FontSize:     e.fontSize,
		Autocomplete: e.autocomplete,
		AutoDelay:    e.autoDelay,
		Output:       e.output,
		Error:        e.runError,
		Degraded:     e.degraded,
	}
	if e.runner != nil {
		s.Running = e.runner.Running()
	}
	if e.result != nil {
		r := *e.result
		s.Result = &r
	}
	return s
}

// Snapshot returns the persistable part of the session.
func (e *Editor) Snapshot() store.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() store.Snapshot {
	return store.Snapshot{
		Files:        e.tree.Nodes(),
		ActiveFileID: e.activeID,
		OpenFileIDs:  append([]string{}, e.openIDs...),
	}
}

// ActiveFile returns the active file, if any.
func (e *Editor) ActiveFile() (vfs.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.File(e.activeID)
}

// Node returns a copy of a node.
func (e *Editor) Node(id string) (vfs.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Get(id)
}

// Len is the number of nodes in the tree.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Len()
}

// Path is the slash separated path of a node.
func (e *Editor) Path(id string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Path(id)
}

// Descendants returns id and every node below it, or nil for an unknown id.
func (e *Editor) Descendants(id string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Descendants(id)
}

// Find resolves a path to a node.
func (e *Editor) Find(path string) (vfs.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Find(path)
}

// Entry is one visible row of the explorer.
type Entry struct {
	Node  vfs.Node
	Depth int
	Path  string
}

// Entries lists the tree in display order. Children of collapsed folders are
// left out unless all is set.
func (e *Editor) Entries(all bool) []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Entry
	e.tree.Walk(func(n vfs.Node, depth int) bool {
		out = append(out, Entry{Node: n, Depth: depth, Path: e.tree.Path(n.ID)})
		return all || n.IsOpen
	})
	return out
}
