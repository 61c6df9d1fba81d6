package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/interpretive-systems/codecraft/internal/vfs"
)

// SnapshotKey is the fixed key holding the file tree and session.
const SnapshotKey = "editor-files-v1"

// ErrCorruptSnapshot means a snapshot exists but cannot be decoded.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Snapshot is the unit persisted after every mutation.
type Snapshot struct {
	Files        map[string]vfs.Node `json:"files"`
	ActiveFileID string              `json:"-"`
	OpenFileIDs  []string            `json:"openFileIds"`
}

type wireSnapshot struct {
	Files        map[string]vfs.Node `json:"files"`
	ActiveFileID *string             `json:"activeFileId"`
	OpenFileIDs  []string            `json:"openFileIds"`
}

// MarshalJSON writes activeFileId as null when no file is active.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	w := wireSnapshot{Files: s.Files, OpenFileIDs: s.OpenFileIDs}
	if w.Files == nil {
		w.Files = map[string]vfs.Node{}
	}
	if w.OpenFileIDs == nil {
		w.OpenFileIDs = []string{}
	}
	if s.ActiveFileID != "" {
		id := s.ActiveFileID
		w.ActiveFileID = &id
	}
	return json.Marshal(w)
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var w wireSnapshot
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*s = Snapshot{Files: w.Files, OpenFileIDs: w.OpenFileIDs}
	if s.Files == nil {
		s.Files = map[string]vfs.Node{}
	}
	if s.OpenFileIDs == nil {
		s.OpenFileIDs = []string{}
	}
	if w.ActiveFileID != nil {
		s.ActiveFileID = *w.ActiveFileID
	}
	return nil
}

// SaveSnapshot serializes snap and overwrites the stored copy.
func SaveSnapshot(ctx context.Context, kv KV, snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := kv.Set(ctx, SnapshotKey, string(b)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the stored snapshot. ok is false when none was saved.
// Undecodable data yields ErrCorruptSnapshot.
func LoadSnapshot(ctx context.Context, kv KV) (Snapshot, bool, error) {
	raw, ok, err := kv.Get(ctx, SnapshotKey)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		return Snapshot{}, false, nil
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return snap, true, nil
}
