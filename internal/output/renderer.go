// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"gopkg.in/yaml.v2"

	"github.com/tfctl/tfdelta/internal/driller"
	"github.com/tfctl/tfdelta/internal/log"
	"github.com/tfctl/tfdelta/internal/snapshot"
	"github.com/tfctl/tfdelta/internal/state"
	"github.com/tfctl/tfdelta/streamdiff"
)

// Options control a Renderer.
type Options struct {
	Format Format
	// Color enables lipgloss colouring of text output and deltas.
	Color bool
	// Palette is used when Color is set. The zero value means
	// DefaultPalette.
	Palette Palette
	// Headers prints a line naming the snapshot before its first action.
	Headers bool
	// Detail prints an attribute delta under an Add that follows a Remove of
	// the same label in the same snapshot.
	Detail bool
	// Show lists attribute paths whose values are printed with each
	// resource. Paths that do not resolve are left out.
	Show []string
}

// record is the json and yaml shape of one action.
type record[T any] struct {
	Action   streamdiff.Kind `json:"action" yaml:"action"`
	Snapshot int             `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	Serial   int64           `json:"serial,omitempty" yaml:"serial,omitempty"`
	Version  string          `json:"version,omitempty" yaml:"version,omitempty"`
	Element  T               `json:"element" yaml:"element"`
	Show     ordered         `json:"show,omitempty" yaml:"show,omitempty"`
}

// Renderer writes actions one at a time as they are delivered.
type Renderer[T any] struct {
	w     io.Writer
	opts  Options
	label func(T) string
	attrs func(T) string
	enc   *json.Encoder

	event   *snapshot.Event
	headed  bool
	removed map[string]string

	added, dropped, snapshots int
}

// NewRenderer returns a Renderer writing to w. label names an element in text
// output.
func NewRenderer[T any](w io.Writer, opts Options, label func(T) string) *Renderer[T] {
	if opts.Color && opts.Palette == (Palette{}) {
		opts.Palette = DefaultPalette()
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Renderer[T]{
		w:       w,
		opts:    opts,
		label:   label,
		enc:     enc,
		removed: map[string]string{},
	}
}

// NewResourceRenderer returns a Renderer for state resources, labelled by
// address, with attribute deltas available to Detail.
func NewResourceRenderer(w io.Writer, opts Options) *Renderer[state.Resource] {
	r := NewRenderer(w, opts, state.Resource.String)
	r.attrs = func(res state.Resource) string { return res.Attributes }
	return r
}

// Version marks the start of a new snapshot. It fits snapshot.Options.OnVersion.
func (r *Renderer[T]) Version(e snapshot.Event) {
	r.snapshots++
	r.event = &e
	r.headed = false
	clear(r.removed)
}

// Render writes one action.
func (r *Renderer[T]) Render(a streamdiff.Action[T]) error {
	switch a.Kind {
	case streamdiff.Add:
		r.added++
	case streamdiff.Remove:
		r.dropped++
	default:
		return fmt.Errorf("invalid action kind %d", a.Kind)
	}

	switch r.opts.Format {
	case FormatJSON:
		return r.enc.Encode(r.record(a))
	case FormatYAML:
		out, err := yaml.Marshal(r.record(a))
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = fmt.Fprintf(r.w, "---\n%s", out)
		return err
	default:
		return r.text(a)
	}
}

func (r *Renderer[T]) record(a streamdiff.Action[T]) record[T] {
	rec := record[T]{Action: a.Kind, Element: a.Element}
	if r.event != nil {
		rec.Snapshot = r.event.Index
		if sv := r.event.Version; sv != nil {
			rec.Serial = sv.Serial
			rec.Version = sv.ID
		}
	}
	rec.Show = r.show(a.Element)
	return rec
}

// show drills the Show paths out of the element's attributes.
func (r *Renderer[T]) show(el T) ordered {
	if len(r.opts.Show) == 0 || r.attrs == nil {
		return nil
	}
	doc := r.attrs(el)
	var out ordered
	for _, path := range r.opts.Show {
		if v, ok := driller.Value(doc, path); ok {
			out = append(out, yaml.MapItem{Key: path, Value: v})
		}
	}
	return out
}

func (r *Renderer[T]) text(a streamdiff.Action[T]) error {
	if r.opts.Headers && r.event != nil && !r.headed {
		r.headed = true
		if _, err := fmt.Fprintln(r.w, r.paint(r.opts.Palette.Header, Header(*r.event))); err != nil {
			return err
		}
	}

	label := r.label(a.Element)
	line := "+ " + label
	c := r.opts.Palette.Add
	if a.Kind == streamdiff.Remove {
		line = "- " + label
		c = r.opts.Palette.Remove
	}
	for _, kv := range r.show(a.Element) {
		line += fmt.Sprintf("  %s=%s", kv.Key, kv.Value)
	}
	if _, err := fmt.Fprintln(r.w, r.paint(c, line)); err != nil {
		return err
	}

	if !r.opts.Detail || r.attrs == nil {
		return nil
	}
	if a.Kind == streamdiff.Remove {
		r.removed[label] = r.attrs(a.Element)
		return nil
	}
	before, ok := r.removed[label]
	if !ok {
		return nil
	}
	delete(r.removed, label)

	delta, err := Delta(before, r.attrs(a.Element), r.opts.Color)
	if err != nil {
		log.WithError(err).Warnf("no detail for %s", label)
		return nil
	}
	if delta == "" {
		return nil
	}
	_, err = fmt.Fprintln(r.w, indent(delta, "    "))
	return err
}

func (r *Renderer[T]) paint(c color.Color, s string) string {
	if !r.opts.Color || c == nil {
		return s
	}
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// Counts returns the number of adds, removes and snapshots seen so far.
func (r *Renderer[T]) Counts() (added, removed, snapshots int) {
	return r.added, r.dropped, r.snapshots
}

// Summary describes the totals, for example "3 added, 1 removed over 4
// snapshots".
func (r *Renderer[T]) Summary() string {
	return fmt.Sprintf("%s added, %s removed over %s",
		humanize.Comma(int64(r.added)),
		humanize.Comma(int64(r.dropped)),
		english.Plural(r.snapshots, "snapshot", "snapshots"))
}

// Header labels a snapshot, for example "@ serial 12 (sv-abc, 3 hours ago)
// [2/5]".
func Header(e snapshot.Event) string {
	sv := e.Version
	if sv == nil {
		return fmt.Sprintf("@ snapshot %d", e.Index)
	}

	details := []string{sv.ID}
	if !sv.CreatedAt.IsZero() {
		details = append(details, humanize.Time(sv.CreatedAt))
	}
	head := fmt.Sprintf("@ serial %d (%s)", sv.Serial, strings.Join(details, ", "))
	if e.Total > 0 {
		head += fmt.Sprintf(" [%d/%d]", e.Index, e.Total)
	}
	return head
}
