package vfs

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind distinguishes files from folders.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Node is a file or folder entry. ParentID is empty for root nodes.
type Node struct {
	ID       string
	Name     string
	Type     Kind
	ParentID string

	// Files only.
	Content  string
	Language string

	// Folders only: expanded state in the explorer.
	IsOpen bool
}

// IsFile reports whether n is a file.
func (n Node) IsFile() bool { return n.Type == KindFile }

// IsFolder reports whether n is a folder.
func (n Node) IsFolder() bool { return n.Type == KindFolder }

type wireNode struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     Kind    `json:"type"`
	ParentID *string `json:"parentId"`
	IsOpen   *bool   `json:"isOpen,omitempty"`
	Content  *string `json:"content,omitempty"`
	Language *string `json:"language,omitempty"`
}

// MarshalJSON writes the snapshot form: parentId is null for roots and only
// the fields relevant to the node kind are present.
func (n Node) MarshalJSON() ([]byte, error) {
	w := wireNode{ID: n.ID, Name: n.Name, Type: n.Type}
	if n.ParentID != "" {
		p := n.ParentID
		w.ParentID = &p
	}
	switch n.Type {
	case KindFolder:
		open := n.IsOpen
		w.IsOpen = &open
	default:
		content, lang := n.Content, n.Language
		w.Content = &content
		if lang != "" {
			w.Language = &lang
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the snapshot form.
func (n *Node) UnmarshalJSON(b []byte) error {
	var w wireNode
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Type != KindFile && w.Type != KindFolder {
		return fmt.Errorf("node %s: unknown type %q", w.ID, w.Type)
	}
	*n = Node{ID: w.ID, Name: w.Name, Type: w.Type}
	if w.ParentID != nil && *w.ParentID != "root" {
		n.ParentID = *w.ParentID
	}
	if w.IsOpen != nil {
		n.IsOpen = *w.IsOpen
	}
	if w.Content != nil {
		n.Content = *w.Content
	}
	if w.Language != nil {
		n.Language = *w.Language
	}
	return nil
}

// Sentinel errors returned by tree mutations.
var (
	ErrNotFound      = errors.New("node not found")
	ErrInvalidParent = errors.New("invalid parent")
	ErrCycle         = errors.New("folder cannot move into its own subtree")
)

// NodeError records the operation and node that failed.
type NodeError struct {
	Op  string
	ID  string
	Err error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *NodeError) Unwrap() error { return e.Err }
