package differ

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffOp classifies a diff line.
type DiffOp int

const (
	DiffEqual DiffOp = iota
	DiffInsert
	DiffDelete
)

// DiffLine is a single line of a line-level diff, in document order.
type DiffLine struct {
	Op   DiffOp
	Text string
}

// ComputeLineDiff computes a line-based diff between two texts. The
// result is purely presentational: applying a FileChange writes the full
// modified text and never consults the diff.
func ComputeLineDiff(original, modified string) []DiffLine {
	dmp := diffmatchpatch.New()

	// Line-level reduction avoids char-level noise inside lines.
	charsA, charsB, lineArray := dmp.DiffLinesToChars(original, modified)
	diffs := dmp.DiffMain(charsA, charsB, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []DiffLine
	for _, diff := range diffs {
		op := DiffEqual
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			op = DiffInsert
		case diffmatchpatch.DiffDelete:
			op = DiffDelete
		}

		text := diff.Text
		// Split the block into individual lines, dropping the artifact of
		// a trailing newline.
		split := strings.Split(text, "\n")
		if len(split) > 0 && split[len(split)-1] == "" {
			split = split[:len(split)-1]
		}
		for _, line := range split {
			lines = append(lines, DiffLine{Op: op, Text: line})
		}
	}

	return lines
}
