// Package fzf lets the user pick a note with a fuzzy finder.
package fzf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/hkfi/insight-notes/internal/parser"
	"github.com/hkfi/insight-notes/internal/types"
	"github.com/hkfi/insight-notes/internal/views"
)

// ErrNoSelection is returned when the picker is closed without a choice.
var ErrNoSelection = errors.New("no note selected")

type finderFunc func(items []types.Note, label func(int) string, opts ...fuzzyfinder.Option) (int, error)

func defaultFinder(items []types.Note, label func(int) string, opts ...fuzzyfinder.Option) (int, error) {
	return fuzzyfinder.Find(items, label, opts...)
}

// NotePicker presents notes by title and tags with a rendered preview.
type NotePicker struct {
	Header string
	notes  []types.Note
	labels []string
	find   finderFunc
}

func NewNotePicker(notes []types.Note, header string) *NotePicker {
	p := &NotePicker{Header: header, notes: notes, find: defaultFinder}
	for _, n := range notes {
		p.labels = append(p.labels, Label(n))
	}
	return p
}

// Label formats one picker row.
func Label(n types.Note) string {
	title := parser.Title(n.Content)
	if len(n.Tags) == 0 {
		return fmt.Sprintf("%s [No tags] ", title)
	}
	names := make([]string, 0, len(n.Tags))
	for _, t := range n.Tags {
		names = append(names, t.ID)
	}
	return fmt.Sprintf("%s [Tags: %s] ", title, strings.Join(names, ", "))
}

// Pick runs the finder, seeded with query when it is not empty.
func (p *NotePicker) Pick(query string) (types.Note, error) {
	if len(p.notes) == 0 {
		return types.Note{}, ErrNoSelection
	}

	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(p.preview),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}
	if p.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(p.Header))
	}

	idx, err := p.find(p.notes, func(i int) string { return p.labels[i] }, options...)
	if errors.Is(err, fuzzyfinder.ErrAbort) || (err == nil && idx < 0) {
		return types.Note{}, ErrNoSelection
	}
	if err != nil {
		return types.Note{}, fmt.Errorf("error selecting note: %w", err)
	}
	return p.notes[idx], nil
}

func (p *NotePicker) preview(i, w, h int) string {
	if i < 0 || i >= len(p.notes) {
		return ""
	}
	return views.Markdown(p.notes[i].Content, w-4)
}
