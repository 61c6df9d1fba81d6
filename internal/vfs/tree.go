// Package vfs implements the virtual file tree behind the editor: files and
// folders keyed by id, each carrying a back-reference to its parent folder.
package vfs

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/interpretive-systems/codecraft/internal/logging"
)

// Tree owns every node. It keeps a parent -> children index next to the node
// map so that child and root listings do not scan the whole tree. Root
// children are indexed under "".
//
// Tree is not safe for concurrent use; callers serialize access.
type Tree struct {
	nodes    map[string]*Node
	children map[string][]string
	newID    func() string
}

// Option configures a Tree.
type Option func(*Tree)

// WithIDFunc replaces the UUID generator, mainly for tests.
func WithIDFunc(fn func() string) Option {
	return func(t *Tree) { t.newID = fn }
}

// New returns an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Get returns a copy of the node with the given id.
func (t *Tree) Get(id string) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// File returns the node only when it exists and is a file.
func (t *Tree) File(id string) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok || n.Type != KindFile {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns a copy of the id -> node map.
func (t *Tree) Nodes() map[string]Node {
	out := make(map[string]Node, len(t.nodes))
	for id, n := range t.nodes {
		out[id] = *n
	}
	return out
}

// Roots returns the nodes without a parent in insertion order.
func (t *Tree) Roots() []Node { return t.Children("") }

// Children returns the direct children of id in insertion order.
func (t *Tree) Children(id string) []Node {
	ids := t.children[id]
	out := make([]Node, 0, len(ids))
	for _, cid := range ids {
		out = append(out, *t.nodes[cid])
	}
	return out
}

// CreateFile inserts a file under parentID ("" for the root).
func (t *Tree) CreateFile(parentID, name, language, content string) (Node, error) {
	if err := t.checkParent("create file", parentID); err != nil {
		return Node{}, err
	}
	n := &Node{
		ID:       t.newID(),
		Name:     name,
		Type:     KindFile,
		ParentID: parentID,
		Content:  content,
		Language: language,
	}
	t.insert(n)
	return *n, nil
}

// CreateFolder inserts an expanded folder under parentID ("" for the root).
func (t *Tree) CreateFolder(parentID, name string) (Node, error) {
	if err := t.checkParent("create folder", parentID); err != nil {
		return Node{}, err
	}
	n := &Node{
		ID:       t.newID(),
		Name:     name,
		Type:     KindFolder,
		ParentID: parentID,
		IsOpen:   true,
	}
	t.insert(n)
	return *n, nil
}

// Rename sets the name verbatim. It reports false for unknown ids.
func (t *Tree) Rename(id, name string) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	n.Name = name
	return true
}

// ToggleOpen flips a folder's expanded state.
func (t *Tree) ToggleOpen(id string) bool {
	n, ok := t.nodes[id]
	if !ok || n.Type != KindFolder {
		return false
	}
	n.IsOpen = !n.IsOpen
	return true
}

// SetContent overwrites a file's content.
func (t *Tree) SetContent(id, content string) bool {
	n, ok := t.nodes[id]
	if !ok || n.Type != KindFile {
		return false
	}
	n.Content = content
	return true
}

// SetLanguage overwrites a file's language.
func (t *Tree) SetLanguage(id, language string) bool {
	n, ok := t.nodes[id]
	if !ok || n.Type != KindFile {
		return false
	}
	n.Language = language
	return true
}

// Move reparents id under newParentID. Moving a folder below itself fails
// with ErrCycle.
func (t *Tree) Move(id, newParentID string) error {
	n, ok := t.nodes[id]
	if !ok {
		return &NodeError{Op: "move", ID: id, Err: ErrNotFound}
	}
	if err := t.checkParent("move", newParentID); err != nil {
		return err
	}
	for p := newParentID; p != ""; p = t.nodes[p].ParentID {
		if p == id {
			return &NodeError{Op: "move", ID: id, Err: ErrCycle}
		}
	}
	t.unlink(n)
	n.ParentID = newParentID
	t.children[newParentID] = append(t.children[newParentID], id)
	return nil
}

// Delete removes id and all of its descendants and returns the removed ids,
// target first. Unknown ids are a no-op.
func (t *Tree) Delete(id string) []string {
	if _, ok := t.nodes[id]; !ok {
		return nil
	}
	removed := t.collect(id)
	t.unlink(t.nodes[id])
	for _, rid := range removed {
		delete(t.nodes, rid)
		delete(t.children, rid)
	}
	return removed
}

// Descendants returns id and every node below it, depth first.
func (t *Tree) Descendants(id string) []string {
	if _, ok := t.nodes[id]; !ok {
		return nil
	}
	return t.collect(id)
}

// collect walks the children index from id. The visited set keeps a corrupt
// parent cycle from looping forever.
func (t *Tree) collect(id string) []string {
	visited := map[string]bool{}
	stack := []string{id}
	var out []string
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		out = append(out, cur)
		kids := t.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// Walk visits nodes depth first in display order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	visited := map[string]bool{}
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, id := range t.sortedChildren(parent) {
			if visited[id] {
				continue
			}
			visited[id] = true
			n := t.nodes[id]
			if fn(*n, depth) && n.Type == KindFolder {
				walk(id, depth+1)
			}
		}
	}
	walk("", 0)
}

// sortedChildren orders folders before files, then by name.
func (t *Tree) sortedChildren(parent string) []string {
	ids := append([]string(nil), t.children[parent]...)
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := t.nodes[ids[i]], t.nodes[ids[j]]
		if a.Type != b.Type {
			return a.Type == KindFolder
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return ids
}

// Path joins the names from the root down to id with "/".
func (t *Tree) Path(id string) string {
	var parts []string
	seen := map[string]bool{}
	for cur := id; cur != "" && !seen[cur]; {
		n, ok := t.nodes[cur]
		if !ok {
			break
		}
		seen[cur] = true
		parts = append(parts, n.Name)
		cur = n.ParentID
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Find resolves a slash separated path of names to a node.
func (t *Tree) Find(path string) (Node, bool) {
	parent := ""
	var found *Node
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		found = nil
		for _, cid := range t.children[parent] {
			if t.nodes[cid].Name == part {
				found = t.nodes[cid]
				break
			}
		}
		if found == nil {
			return Node{}, false
		}
		parent = found.ID
	}
	if found == nil {
		return Node{}, false
	}
	return *found, true
}

// Load replaces the tree contents. Nodes whose parent is missing or is not a
// folder are moved to the root so the result satisfies the parent invariant.
func (t *Tree) Load(nodes map[string]Node) {
	t.nodes = make(map[string]*Node, len(nodes))
	t.children = make(map[string][]string)
	ids := make([]string, 0, len(nodes))
	for id, n := range nodes {
		n := n
		n.ID = id
		t.nodes[id] = &n
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		n := t.nodes[id]
		if n.ParentID == "" {
			continue
		}
		p, ok := t.nodes[n.ParentID]
		if !ok || p.Type != KindFolder || t.inCycle(id) {
			logging.L().Warn("re-rooting orphaned node",
				zap.String("id", id), zap.String("parent", n.ParentID))
			n.ParentID = ""
		}
	}
	for _, id := range ids {
		n := t.nodes[id]
		t.children[n.ParentID] = append(t.children[n.ParentID], id)
	}
}

// inCycle reports whether following parent links from id leads back to id.
func (t *Tree) inCycle(id string) bool {
	seen := map[string]bool{}
	for cur := t.nodes[id].ParentID; cur != ""; {
		if cur == id {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		p, ok := t.nodes[cur]
		if !ok {
			return false
		}
		cur = p.ParentID
	}
	return false
}

func (t *Tree) checkParent(op, parentID string) error {
	if parentID == "" {
		return nil
	}
	p, ok := t.nodes[parentID]
	if !ok || p.Type != KindFolder {
		return &NodeError{Op: op, ID: parentID, Err: ErrInvalidParent}
	}
	return nil
}

func (t *Tree) insert(n *Node) {
	t.nodes[n.ID] = n
	t.children[n.ParentID] = append(t.children[n.ParentID], n.ID)
}

func (t *Tree) unlink(n *Node) {
	sib := t.children[n.ParentID]
	for i, id := range sib {
		if id == n.ID {
			t.children[n.ParentID] = append(sib[:i:i], sib[i+1:]...)
			break
		}
	}
	if len(t.children[n.ParentID]) == 0 {
		delete(t.children, n.ParentID)
	}
}
