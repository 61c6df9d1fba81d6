package store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/interpretive-systems/codecraft/internal/vfs"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Files: map[string]vfs.Node{
			"d": {ID: "d", Name: "src", Type: vfs.KindFolder, IsOpen: true},
			"f": {ID: "f", Name: "main.js", Type: vfs.KindFile, ParentID: "d", Content: "console.log(1)", Language: "javascript"},
			"g": {ID: "g", Name: "empty.py", Type: vfs.KindFile, Content: ""},
		},
		ActiveFileID: "f",
		OpenFileIDs:  []string{"g", "f"},
	}
}

func backends(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()
	f, err := OpenFile(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	b, err := OpenBolt(filepath.Join(dir, "state.db"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return map[string]KV{
		"memory": NewMemory(),
		"file":   f,
		"bolt":   b,
		"s3":     newS3(newFakeObjects(), "bucket", "ws/alice"),
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := LoadSnapshot(ctx, kv); ok || err != nil {
				t.Fatalf("fresh store: ok=%v err=%v", ok, err)
			}
			for _, snap := range []Snapshot{{}, sampleSnapshot()} {
				if err := SaveSnapshot(ctx, kv, snap); err != nil {
					t.Fatalf("save: %v", err)
				}
				got, ok, err := LoadSnapshot(ctx, kv)
				if err != nil || !ok {
					t.Fatalf("load: ok=%v err=%v", ok, err)
				}
				if len(snap.Files) == 0 {
					if len(got.Files) != 0 || len(got.OpenFileIDs) != 0 || got.ActiveFileID != "" {
						t.Fatalf("empty snapshot changed: %+v", got)
					}
					continue
				}
				if !reflect.DeepEqual(got, snap) {
					t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, snap)
				}
			}
		})
	}
}

func TestEmptySnapshotWire(t *testing.T) {
	kv := NewMemory()
	if err := SaveSnapshot(context.Background(), kv, Snapshot{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _, _ := kv.Get(context.Background(), SnapshotKey)
	if raw != `{"files":{},"activeFileId":null,"openFileIds":[]}` {
		t.Fatalf("wire form %s", raw)
	}
}

func TestCorruptSnapshot(t *testing.T) {
	kv := NewMemory()
	kv.Set(context.Background(), SnapshotKey, "{not json")
	if _, _, err := LoadSnapshot(context.Background(), kv); !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("want ErrCorruptSnapshot, got %v", err)
	}
}

func TestFileStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := f.Set(context.Background(), "editor-theme", "monokai"); err != nil {
		t.Fatalf("set: %v", err)
	}
	again, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, ok, _ := again.Get(context.Background(), "editor-theme"); !ok || v != "monokai" {
		t.Fatalf("got %q %v", v, ok)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestFileStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	os.WriteFile(path, []byte("[]"), 0o644)
	if _, err := OpenFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), Config{Backend: "etcd"}); err == nil {
		t.Fatalf("expected error")
	}
	kv, err := Open(context.Background(), Config{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	kv.Set(context.Background(), "b", "2")
	kv.Set(context.Background(), "a", "1")
	if keys := kv.(*Memory).Keys(); !reflect.DeepEqual(keys, []string{"a", "b"}) {
		t.Fatalf("keys %v", keys)
	}
}

func TestS3UsesPrefix(t *testing.T) {
	fake := newFakeObjects()
	kv := newS3(fake, "bucket", "/ws/alice/")
	kv.Set(context.Background(), "editor-language", "go")
	if _, ok := fake.objects["ws/alice/editor-language"]; !ok {
		t.Fatalf("objects %v", fake.objects)
	}
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string]string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string]string{}}
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(v))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = string(b)
	return &s3.PutObjectOutput{}, nil
}
