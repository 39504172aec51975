package textdiff

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	BinarySampleSize   = 8192 // Bytes to sample for text/binary detection
	BinaryThresholdPct = 10   // Max % non-printable chars for text content
)

// IsText determines if content is likely text or binary.
//
// Detection heuristic (in order):
//  1. Null bytes present → binary
//  2. Invalid UTF-8 → binary
//  3. >10% non-printable control chars → binary
func IsText(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	if bytes.IndexByte(data, 0) != -1 {
		return false
	}

	sample := data[:min(len(data), BinarySampleSize)]

	if !utf8.Valid(sample) {
		return false
	}

	nonPrintable := 0
	for _, b := range sample {
		// Allow common whitespace: space, tab, newline, carriage return
		if b < 32 && b != 9 && b != 10 && b != 13 {
			nonPrintable++
		}
		if b == 127 { // DEL character
			nonPrintable++
		}
	}

	threshold := len(sample) * BinaryThresholdPct / 100
	return nonPrintable <= threshold
}

// Equal reports whether two contents are identical (based on SHA-256 hash).
func Equal(a, b []byte) bool {
	ha := sha256.Sum256(a)
	hb := sha256.Sum256(b)
	return bytes.Equal(ha[:], hb[:])
}

// Stats counts lines added and removed going from old to new.
type Stats struct {
	Added   int
	Removed int
}

func (s Stats) String() string {
	return fmt.Sprintf("+%d -%d", s.Added, s.Removed)
}

// Unified returns a unified diff from old to new, or an empty string when
// they are identical. Binary content yields a one-line notice instead.
func Unified(oldName, newName string, oldData, newData []byte) string {
	if Equal(oldData, newData) {
		return ""
	}

	if !IsText(oldData) || !IsText(newData) {
		return fmt.Sprintf("Binary content %s and %s differ\n", oldName, newName)
	}

	dmp := diffmatchpatch.New()
	oldStr := string(oldData)
	diffs := lineDiffs(dmp, oldStr, string(newData))

	patches := dmp.PatchMake(oldStr, diffs)
	if len(patches) == 0 {
		return ""
	}

	var result strings.Builder
	fmt.Fprintf(&result, "--- %s\n", oldName)
	fmt.Fprintf(&result, "+++ %s\n", newName)
	result.WriteString(dmp.PatchToText(patches))

	return result.String()
}

// Stat counts changed lines between old and new.
func Stat(oldData, newData []byte) Stats {
	var s Stats
	dmp := diffmatchpatch.New()
	for _, d := range lineDiffs(dmp, string(oldData), string(newData)) {
		n := strings.Count(d.Text, "\n")
		if !strings.HasSuffix(d.Text, "\n") && d.Text != "" {
			n++
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Added += n
		case diffmatchpatch.DiffDelete:
			s.Removed += n
		}
	}
	return s
}

// lineDiffs runs a line-mode diff, which is faster and reads better than a
// character diff for documents.
func lineDiffs(dmp *diffmatchpatch.DiffMatchPatch, a, b string) []diffmatchpatch.Diff {
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffMain(ca, cb, false)
	return dmp.DiffCharsToLines(diffs, lines)
}
