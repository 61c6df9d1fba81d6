// Package diffview lays out a before/after comparison of a source file as
// side-by-side rows, used to preview code suggested by the assistant.
package diffview

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// RowKind is the role of a row in the side-by-side layout.
type RowKind int

const (
	RowContext RowKind = iota
	RowAdd
	RowDel
	RowReplace
	RowHunk
)

// Row is one visual line. Line numbers are 1-based; 0 means the side is
// empty.
type Row struct {
	Left    string
	Right   string
	LeftNo  int
	RightNo int
	Kind    RowKind
	Header  string
}

// Compare diffs before against after with three lines of context.
func Compare(name, before, after string) []Row {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name,
		ToFile:   name + " (suggested)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return nil
	}
	return FromUnified(text)
}

// FromUnified parses unified diff text. Within a hunk, deletions are paired
// with the additions that follow them as replacements; unpaired lines are
// shown on one side only. File headers are skipped.
func FromUnified(unified string) []Row {
	s := bufio.NewScanner(strings.NewReader(unified))
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		rows    []Row
		dels    []Row
		inHunk  bool
		leftNo  int
		rightNo int
	)
	flush := func() {
		rows = append(rows, dels...)
		dels = dels[:0]
	}

	for s.Scan() {
		line := strings.TrimSuffix(s.Text(), "\r")
		switch {
		case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "):
			if !inHunk {
				continue
			}
		case strings.HasPrefix(line, "@@ "):
			flush()
			leftNo, rightNo = hunkStarts(line)
			rows = append(rows, Row{Kind: RowHunk, Header: line})
			inHunk = true
			continue
		}
		if !inHunk {
			continue
		}

		if line == "" {
			flush()
			rows = append(rows, Row{LeftNo: leftNo, RightNo: rightNo, Kind: RowContext})
			leftNo++
			rightNo++
			continue
		}
		text := line[1:]
		switch line[0] {
		case ' ':
			flush()
			rows = append(rows, Row{Left: text, Right: text, LeftNo: leftNo, RightNo: rightNo, Kind: RowContext})
			leftNo++
			rightNo++
		case '-':
			dels = append(dels, Row{Left: text, LeftNo: leftNo, Kind: RowDel})
			leftNo++
		case '+':
			if len(dels) > 0 {
				r := dels[0]
				dels = dels[1:]
				r.Right, r.RightNo, r.Kind = text, rightNo, RowReplace
				rows = append(rows, r)
			} else {
				rows = append(rows, Row{Right: text, RightNo: rightNo, Kind: RowAdd})
			}
			rightNo++
		}
	}
	flush()
	return rows
}

// Stats counts added and removed lines; a replacement counts as both.
func Stats(rows []Row) (added, removed int) {
	for _, r := range rows {
		switch r.Kind {
		case RowAdd:
			added++
		case RowDel:
			removed++
		case RowReplace:
			added++
			removed++
		}
	}
	return added, removed
}

// hunkStarts reads the start lines from "@@ -l,s +r,s @@".
func hunkStarts(header string) (left, right int) {
	fields := strings.Fields(header)
	if len(fields) < 3 {
		return 1, 1
	}
	return rangeStart(fields[1]), rangeStart(fields[2])
}

func rangeStart(f string) int {
	f = strings.TrimLeft(f, "-+")
	if i := strings.IndexByte(f, ','); i >= 0 {
		f = f[:i]
	}
	n, err := strconv.Atoi(f)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
