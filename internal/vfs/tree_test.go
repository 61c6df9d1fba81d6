package vfs

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func seqIDs() Option {
	n := 0
	return WithIDFunc(func() string {
		n++
		return fmt.Sprintf("n%d", n)
	})
}

// assertParents fails when any node points at a missing or non-folder parent.
func assertParents(t *testing.T, tr *Tree) {
	t.Helper()
	for id, n := range tr.Nodes() {
		if n.ParentID == "" {
			continue
		}
		p, ok := tr.Get(n.ParentID)
		if !ok || !p.IsFolder() {
			t.Fatalf("node %s has dangling parent %s", id, n.ParentID)
		}
	}
}

func TestCreateRejectsInvalidParent(t *testing.T) {
	tr := New(seqIDs())
	f, err := tr.CreateFile("", "main.js", "javascript", "x")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tr.CreateFile("missing", "a.js", "javascript", ""); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("want ErrInvalidParent for unknown parent, got %v", err)
	}
	if _, err := tr.CreateFolder(f.ID, "sub"); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("want ErrInvalidParent for file parent, got %v", err)
	}
	var ne *NodeError
	_, err = tr.CreateFile(f.ID, "b.js", "javascript", "")
	if !errors.As(err, &ne) || ne.ID != f.ID {
		t.Fatalf("expected NodeError naming the parent, got %v", err)
	}
	if tr.Len() != 1 {
		t.Fatalf("failed creates must not insert, len=%d", tr.Len())
	}
}

func TestCascadeDelete(t *testing.T) {
	tr := New(seqIDs())
	src, _ := tr.CreateFolder("", "src")
	lib, _ := tr.CreateFolder(src.ID, "lib")
	a, _ := tr.CreateFile(lib.ID, "a.js", "javascript", "")
	b, _ := tr.CreateFile(src.ID, "b.js", "javascript", "")
	keep, _ := tr.CreateFile("", "keep.js", "javascript", "")

	removed := tr.Delete(src.ID)
	want := map[string]bool{src.ID: true, lib.ID: true, a.ID: true, b.ID: true}
	if len(removed) != len(want) || removed[0] != src.ID {
		t.Fatalf("removed %v", removed)
	}
	for _, id := range removed {
		if !want[id] {
			t.Fatalf("unexpected removal %s", id)
		}
		if _, ok := tr.Get(id); ok {
			t.Fatalf("%s still present", id)
		}
	}
	if _, ok := tr.Get(keep.ID); !ok || tr.Len() != 1 {
		t.Fatalf("unrelated node lost")
	}
	if len(tr.Children(src.ID)) != 0 || len(tr.Roots()) != 1 {
		t.Fatalf("index not updated")
	}
	assertParents(t, tr)

	if got := tr.Delete("nope"); got != nil {
		t.Fatalf("unknown delete should be a no-op, got %v", got)
	}
}

func TestParentsStayValidAcrossMutations(t *testing.T) {
	tr := New(seqIDs())
	var folders []string
	for i := 0; i < 30; i++ {
		parent := ""
		if len(folders) > 0 {
			parent = folders[i%len(folders)]
		}
		switch i % 3 {
		case 0:
			f, err := tr.CreateFolder(parent, "dir")
			if err == nil {
				folders = append(folders, f.ID)
			}
		case 1:
			tr.CreateFile(parent, "f.js", "javascript", "")
		case 2:
			if len(folders) > 2 {
				tr.Delete(folders[len(folders)-2])
				var live []string
				for _, id := range folders {
					if _, ok := tr.Get(id); ok {
						live = append(live, id)
					}
				}
				folders = live
			}
		}
		assertParents(t, tr)
	}
}

func TestDeleteTerminatesOnCorruptCycle(t *testing.T) {
	tr := New(seqIDs())
	a, _ := tr.CreateFolder("", "a")
	b, _ := tr.CreateFolder(a.ID, "b")
	// Corrupt the index so that b lists a as its child.
	tr.children[b.ID] = append(tr.children[b.ID], a.ID)

	removed := tr.Delete(a.ID)
	if len(removed) != 2 {
		t.Fatalf("expected each node once, got %v", removed)
	}
	if tr.Len() != 0 {
		t.Fatalf("tree not empty: %d", tr.Len())
	}
}

func TestRenameToggleAndContent(t *testing.T) {
	tr := New(seqIDs())
	d, _ := tr.CreateFolder("", "d")
	f, _ := tr.CreateFile(d.ID, "x.py", "python", "")

	if !tr.Rename(f.ID, "") {
		t.Fatalf("rename should accept empty names")
	}
	if tr.Rename("missing", "x") {
		t.Fatalf("rename of unknown id should report false")
	}
	if tr.ToggleOpen(f.ID) {
		t.Fatalf("toggle on a file must be a no-op")
	}
	tr.ToggleOpen(d.ID)
	if n, _ := tr.Get(d.ID); n.IsOpen {
		t.Fatalf("folder should be collapsed")
	}
	if tr.SetContent(d.ID, "nope") {
		t.Fatalf("folders have no content")
	}
	tr.SetContent(f.ID, "print(1)")
	if n, _ := tr.File(f.ID); n.Content != "print(1)" {
		t.Fatalf("content %q", n.Content)
	}
}

func TestMoveRejectsCycles(t *testing.T) {
	tr := New(seqIDs())
	a, _ := tr.CreateFolder("", "a")
	b, _ := tr.CreateFolder(a.ID, "b")
	f, _ := tr.CreateFile("", "f.js", "javascript", "")

	if err := tr.Move(a.ID, b.ID); !errors.Is(err, ErrCycle) {
		t.Fatalf("want ErrCycle, got %v", err)
	}
	if err := tr.Move(a.ID, a.ID); !errors.Is(err, ErrCycle) {
		t.Fatalf("want ErrCycle for self move, got %v", err)
	}
	if err := tr.Move(f.ID, b.ID); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := tr.Path(f.ID); got != "a/b/f.js" {
		t.Fatalf("path %q", got)
	}
	if n, ok := tr.Find("a/b/f.js"); !ok || n.ID != f.ID {
		t.Fatalf("find failed")
	}
	if len(tr.Roots()) != 1 {
		t.Fatalf("roots %v", tr.Roots())
	}
}

func TestWalkOrdersFoldersFirst(t *testing.T) {
	tr := New(seqIDs())
	tr.CreateFile("", "z.js", "javascript", "")
	d, _ := tr.CreateFolder("", "lib")
	tr.CreateFile(d.ID, "b.js", "javascript", "")
	tr.CreateFile("", "a.js", "javascript", "")

	var got []string
	tr.Walk(func(n Node, depth int) bool {
		got = append(got, fmt.Sprintf("%d:%s", depth, n.Name))
		return n.IsOpen
	})
	want := []string{"0:lib", "1:b.js", "0:a.js", "0:z.js"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("walk = %v, want %v", got, want)
	}
}

func TestLoadRepairsOrphansAndCycles(t *testing.T) {
	tr := New()
	tr.Load(map[string]Node{
		"a": {ID: "a", Name: "a", Type: KindFolder, ParentID: "b"},
		"b": {ID: "b", Name: "b", Type: KindFolder, ParentID: "a"},
		"f": {ID: "f", Name: "f", Type: KindFile, ParentID: "gone"},
		"g": {ID: "g", Name: "g", Type: KindFile, ParentID: "f"},
	})
	assertParents(t, tr)
	visible := 0
	tr.Walk(func(Node, int) bool { visible++; return true })
	if visible != 4 {
		t.Fatalf("every node should be reachable after load, saw %d", visible)
	}
}

func TestNodeJSONShape(t *testing.T) {
	root := Node{ID: "1", Name: "main.js", Type: KindFile, Content: "", Language: "javascript"}
	b, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"1","name":"main.js","type":"file","parentId":null,"content":"","language":"javascript"}`
	if string(b) != want {
		t.Fatalf("got %s", b)
	}

	var n Node
	if err := json.Unmarshal([]byte(`{"id":"2","name":"d","type":"folder","parentId":"root","isOpen":false}`), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n.ParentID != "" || n.IsOpen || !n.IsFolder() {
		t.Fatalf("unexpected %+v", n)
	}
	if err := json.Unmarshal([]byte(`{"id":"3","type":"symlink"}`), &n); err == nil {
		t.Fatalf("unknown type should fail")
	}
}
