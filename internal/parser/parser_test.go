package parser

import "testing"

func TestTitle(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"plain first line", "New Note", "New Note"},
		{"heading", "# Grocery list\n\n- milk", "Grocery list"},
		{"emphasis stripped", "**Meeting** with _Ana_", "Meeting with Ana"},
		{"first line only", "first line\nsecond line", "first line"},
		{"leading blank lines", "\n\n  Ideas  \nmore", "Ideas"},
		{"empty", "", UntitledNote},
		{"whitespace", "   \n  ", UntitledNote},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Title(tc.content); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestPreviewSkipsTitle(t *testing.T) {
	got := Preview("# Title\n\nfirst paragraph\n\nsecond   paragraph", 0)
	if got != "first paragraph second paragraph" {
		t.Fatalf("unexpected preview %q", got)
	}
}

func TestPreviewTruncates(t *testing.T) {
	got := Preview("Title\nabcdefghij", 5)
	if got != "abcd…" {
		t.Fatalf("unexpected preview %q", got)
	}
}
