// Package parser extracts display text from note bodies.
package parser

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// UntitledNote is shown for notes with no text.
const UntitledNote = "Untitled"

// Title returns the note's display title: the text of its first block, which
// is the first line of the note with any markdown markup removed.
func Title(content string) string {
	source := []byte(content)
	document := goldmark.DefaultParser().Parse(text.NewReader(source))

	for n := document.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.Kind() {
		case ast.KindHeading, ast.KindParagraph:
			if title := firstLine(plainText(n, source)); title != "" {
				return title
			}
		}
	}

	if title := firstLine(content); title != "" {
		return title
	}
	return UntitledNote
}

// Preview returns up to max runes of the note's plain text, skipping the
// title line.
func Preview(content string, max int) string {
	source := []byte(content)
	document := goldmark.DefaultParser().Parse(text.NewReader(source))

	var parts []string
	first := true
	for n := document.FirstChild(); n != nil; n = n.NextSibling() {
		t := strings.TrimSpace(plainText(n, source))
		if t == "" {
			continue
		}
		if first {
			first = false
			if i := strings.IndexByte(t, '\n'); i >= 0 {
				t = strings.TrimSpace(t[i+1:])
			} else {
				continue
			}
		}
		if t != "" {
			parts = append(parts, strings.Join(strings.Fields(t), " "))
		}
	}
	return truncate(strings.Join(parts, " "), max)
}

func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(v.Value)
		case *ast.CodeSpan:
			for c := v.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					buf.Write(t.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		if line != "" {
			return line
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max-1])) + "…"
}
