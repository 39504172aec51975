package textdiff

import (
	"strings"
	"testing"
)

func TestIsText_Text(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"plain ASCII text", []byte("Hello, World!\nThis is a test.")},
		{"UTF-8 with special chars", []byte("Hello 世界! Ñoño café")},
		{"empty", []byte("")},
		{"newlines and spaces", []byte("\n\n  \t  \n")},
		{"JSON content", []byte(`{"key": "value", "number": 123}`)},
		{"YAML content", []byte("name: x\nvalue: 1\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsText(tt.content) {
				t.Errorf("IsText() for %s = false, want true", tt.name)
			}
		})
	}
}

func TestIsText_Binary(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"content with null bytes", []byte("Hello\x00World")},
		{"random binary data", []byte{0xFF, 0xFE, 0x00, 0x01, 0xAB, 0xCD}},
		{"non-UTF-8 sequences", []byte{0x80, 0x81, 0x82, 0x83, 0x84}},
		{"lots of non-printable", []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsText(tt.content) {
				t.Errorf("IsText() for %s = true, want false", tt.name)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		want bool
	}{
		{"identical text", []byte("Hello, World!"), []byte("Hello, World!"), true},
		{"identical empty", []byte(""), nil, true},
		{"identical binary", []byte{0x00, 0x01, 0xFF}, []byte{0x00, 0x01, 0xFF}, true},
		{"different text", []byte("data1"), []byte("data2"), false},
		{"different length", []byte("short"), []byte("much longer content"), false},
		{"case difference", []byte("Hello"), []byte("hello"), false},
		{"whitespace difference", []byte("Hello World"), []byte("Hello  World"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnified_Identical(t *testing.T) {
	content := []byte("line1\nline2\n")
	if got := Unified("vault", "local", content, content); got != "" {
		t.Errorf("Identical content should produce no diff, got:\n%s", got)
	}
}

func TestUnified_SingleLineChange(t *testing.T) {
	old := []byte("name: x\nvalue: 1\ntags: [a]\n")
	updated := []byte("name: x\nvalue: 2\ntags: [a]\n")

	got := Unified("vault:/tmp/a.svlt", "local.json", old, updated)

	for _, want := range []string{
		"--- vault:/tmp/a.svlt\n",
		"+++ local.json\n",
		"@@",
		"-value: 1",
		"+value: 2",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Diff should contain %q, got:\n%s", want, got)
		}
	}
}

func TestUnified_Binary(t *testing.T) {
	got := Unified("a", "b", []byte{0x00, 0x01}, []byte{0x00, 0x02})
	if !strings.HasPrefix(got, "Binary content") {
		t.Errorf("Expected binary notice, got %q", got)
	}
}

func TestStat(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     Stats
	}{
		{"identical", "a\nb\n", "a\nb\n", Stats{}},
		{"added line", "a\nb\n", "a\nb\nc\n", Stats{Added: 1}},
		{"removed line", "a\nb\nc\n", "a\nc\n", Stats{Removed: 1}},
		{"changed lines", "a\nb\nc\nd\n", "a\nB\nc\nD\n", Stats{Added: 2, Removed: 2}},
		{"no trailing newline", "a", "b", Stats{Added: 1, Removed: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Stat([]byte(tt.old), []byte(tt.new))
			if got != tt.want {
				t.Errorf("Stat() = %v, want %v", got, tt.want)
			}
		})
	}
}
