// Package view composes cache subscriptions into the rows a list or detail
// page actually renders: client-side filtering, explicit render phases, and
// lookup-table label resolution for foreign keys. Everything here is pure
// over the cached data; rendering itself stays with the host application.
package view

import (
	"fmt"
	"strings"

	"github.com/dokumatek/erpkit/query"
)

// Record is one entity row as decoded from the API.
type Record = map[string]any

// Rows converts a cached list payload into records. JSON lists decode as
// []any of objects; anything else yields no rows.
func Rows(data any) []Record {
	switch rows := data.(type) {
	case []Record:
		return rows
	case []any:
		out := make([]Record, 0, len(rows))
		for _, row := range rows {
			if rec, ok := row.(Record); ok {
				out = append(out, rec)
			}
		}
		return out
	default:
		return nil
	}
}

// Filter narrows a list client-side: a case-insensitive substring match
// over Fields combined with exact matches over Equals. A zero Filter keeps
// every row.
type Filter struct {
	Term   string
	Fields []string
	Equals map[string]string
}

// Apply returns the rows matching the filter. The result preserves the
// input order with non-matching rows removed, and the input slice and its
// records are never modified.
func (f Filter) Apply(rows []Record) []Record {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		if f.matches(row, term) {
			out = append(out, row)
		}
	}
	return out
}

func (f Filter) matches(row Record, term string) bool {
	for field, want := range f.Equals {
		if textField(row, field) != want {
			return false
		}
	}
	if term == "" {
		return true
	}
	for _, field := range f.Fields {
		if strings.Contains(strings.ToLower(textField(row, field)), term) {
			return true
		}
	}
	return false
}

// textField renders a record field as text for matching and display.
func textField(row Record, name string) string {
	v, ok := row[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Phase is the explicit render state of a list or detail view. It is
// derived from the snapshot, never implied by a nil payload.
type Phase int

// Render phases.
const (
	PhaseLoading Phase = iota
	PhaseError
	PhaseEmpty
	PhaseReady
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseEmpty:
		return "empty"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// PhaseOf derives the render phase from a snapshot and the filtered row
// count. A failed refetch with surviving data stays renderable: reads
// degrade quietly, only a view with nothing to show reaches PhaseError.
func PhaseOf(snap query.Snapshot, rowCount int) Phase {
	switch {
	case snap.Data == nil && snap.Loading:
		return PhaseLoading
	case snap.Data == nil && snap.Err != nil:
		return PhaseError
	case snap.Data == nil:
		return PhaseLoading
	case rowCount == 0:
		return PhaseEmpty
	default:
		return PhaseReady
	}
}

// Lookup resolves foreign keys to display labels from a cached lookup
// table, e.g. department or role names on a user list.
type Lookup struct {
	labels map[string]string
}

// NewLookup indexes a lookup table by idField, keeping labelField as the
// display text.
func NewLookup(rows []Record, idField, labelField string) Lookup {
	labels := make(map[string]string, len(rows))
	for _, row := range rows {
		id := textField(row, idField)
		if id == "" {
			continue
		}
		labels[id] = textField(row, labelField)
	}
	return Lookup{labels: labels}
}

// Label returns the display text for id, falling back to the id itself for
// rows whose lookup entry has not loaded.
func (l Lookup) Label(id any) string {
	key := fmt.Sprintf("%v", id)
	if label, ok := l.labels[key]; ok && label != "" {
		return label
	}
	return key
}
