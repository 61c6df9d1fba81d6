package diffview

import "testing"

func TestFromUnifiedReplaceAndAdd(t *testing.T) {
	unified := `--- a.js
+++ a.js (suggested)
@@ -1,3 +1,4 @@
 line1
-line2
+line2 changed
 line3
+line4`

	rows := FromUnified(unified)
	var adds, reps, ctx, hunks int
	for _, r := range rows {
		switch r.Kind {
		case RowAdd:
			adds++
			if r.RightNo != 4 {
				t.Fatalf("added line number = %d", r.RightNo)
			}
		case RowReplace:
			reps++
			if r.LeftNo != 2 || r.RightNo != 2 || r.Right != "line2 changed" {
				t.Fatalf("replace row = %+v", r)
			}
		case RowContext:
			ctx++
		case RowHunk:
			hunks++
		}
	}
	if hunks != 1 || reps != 1 || adds != 1 || ctx != 2 {
		t.Fatalf("hunks=%d reps=%d adds=%d ctx=%d", hunks, reps, adds, ctx)
	}
}

func TestFromUnifiedDeletionOnly(t *testing.T) {
	rows := FromUnified("@@ -4,2 +3,0 @@\n-old1\n-old2")
	if len(rows) != 3 || rows[1].Kind != RowDel || rows[2].LeftNo != 5 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestCompare(t *testing.T) {
	before := "function add(a, b) {\n  return a - b;\n}\n"
	after := "function add(a, b) {\n  return a + b;\n}\n"
	rows := Compare("main.js", before, after)
	added, removed := Stats(rows)
	if added != 1 || removed != 1 {
		t.Fatalf("stats = +%d -%d", added, removed)
	}
	if rows[0].Kind != RowHunk {
		t.Fatalf("first row = %+v", rows[0])
	}
	if Compare("x", "same\n", "same\n") != nil {
		t.Fatalf("identical input should produce no rows")
	}
}
