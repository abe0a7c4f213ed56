package view

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dokumatek/erpkit/mutation"
	"github.com/dokumatek/erpkit/notify"
	"github.com/dokumatek/erpkit/query"
)

func fabricRows() []Record {
	return []Record{
		{"id": "1", "name": "Pamuklu", "status": "active"},
		{"id": "2", "name": "Polyester", "status": "active"},
		{"id": "3", "name": "Viskon", "status": "passive"},
	}
}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	rows := fabricRows()
	got := Filter{Term: "pol", Fields: []string{"name"}}.Apply(rows)

	if len(got) != 1 || got[0]["name"] != "Polyester" {
		t.Errorf("Apply() = %v, want only Polyester", got)
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	rows := fabricRows()
	want := fabricRows()

	Filter{Term: "pol", Fields: []string{"name"}}.Apply(rows)

	if !reflect.DeepEqual(rows, want) {
		t.Errorf("filtering mutated the cached rows: %v", rows)
	}
}

func TestFilter_PreservesServerOrder(t *testing.T) {
	rows := fabricRows()
	got := Filter{Term: "o", Fields: []string{"name"}}.Apply(rows)

	names := make([]string, len(got))
	for i, r := range got {
		names[i] = r["name"].(string)
	}
	want := []string{"Pamuklu", "Polyester", "Viskon"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("row order changed: %v, want %v", names, want)
	}
}

func TestFilter_EqualityAndTermCombined(t *testing.T) {
	rows := fabricRows()
	got := Filter{
		Term:   "o",
		Fields: []string{"name"},
		Equals: map[string]string{"status": "active"},
	}.Apply(rows)

	if len(got) != 2 {
		t.Fatalf("Apply() returned %d rows, want 2", len(got))
	}
	for _, r := range got {
		if r["status"] != "active" {
			t.Errorf("equality filter leaked row %v", r)
		}
	}
}

func TestFilter_ZeroFilterKeepsEverything(t *testing.T) {
	rows := fabricRows()
	if got := (Filter{}).Apply(rows); len(got) != len(rows) {
		t.Errorf("zero filter dropped rows: %d of %d", len(got), len(rows))
	}
}

func TestRows_DecodedJSONList(t *testing.T) {
	data := any([]any{
		map[string]any{"id": "1"},
		"not a record",
		map[string]any{"id": "2"},
	})
	got := Rows(data)
	if len(got) != 2 {
		t.Errorf("Rows() = %v", got)
	}
	if Rows(nil) != nil {
		t.Errorf("Rows(nil) should be nil")
	}
}

func TestPhaseOf(t *testing.T) {
	tests := []struct {
		name string
		snap query.Snapshot
		rows int
		want Phase
	}{
		{"initial load", query.Snapshot{Loading: true}, 0, PhaseLoading},
		{"first fetch failed", query.Snapshot{Err: errors.New("boom")}, 0, PhaseError},
		{"loaded but empty", query.Snapshot{Data: []any{}}, 0, PhaseEmpty},
		{"loaded with rows", query.Snapshot{Data: []any{1}}, 1, PhaseReady},
		{"failed refetch with stale data", query.Snapshot{Data: []any{1}, Err: errors.New("boom")}, 1, PhaseReady},
		{"refetching with data", query.Snapshot{Data: []any{1}, Loading: true}, 1, PhaseReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PhaseOf(tt.snap, tt.rows); got != tt.want {
				t.Errorf("PhaseOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLookup_ResolvesLabels(t *testing.T) {
	departments := []Record{
		{"id": "10", "name": "Dokuma"},
		{"id": "20", "name": "Boyahane"},
	}
	lookup := NewLookup(departments, "id", "name")

	if got := lookup.Label("20"); got != "Boyahane" {
		t.Errorf("Label(20) = %q", got)
	}
	if got := lookup.Label("99"); got != "99" {
		t.Errorf("unknown id should fall back to itself, got %q", got)
	}
}

type stubNotifier struct{}

func (stubNotifier) Notify(ctx context.Context, kind notify.Kind, title, description string) {}

func deleteMutation(t *testing.T, executed *bool) *mutation.Mutation[string, struct{}] {
	t.Helper()
	cache, err := query.New(query.Config{
		Capacity:           16,
		NumShards:          2,
		Retention:          time.Minute,
		EvictionPercentage: 10,
	})
	if err != nil {
		t.Fatalf("query.New() failed: %v", err)
	}
	return mutation.New(mutation.Descriptor[string, struct{}]{
		Name: "delete fabric type",
		Execute: func(ctx context.Context, id string) (struct{}, error) {
			*executed = true
			return struct{}{}, nil
		},
	}, cache, stubNotifier{})
}

func TestConfirmedDelete_DeclinedTouchesNothing(t *testing.T) {
	executed := false
	m := deleteMutation(t, &executed)

	decline := func(ctx context.Context, prompt string) bool { return false }
	attempted, err := ConfirmedDelete(context.Background(), decline, "Delete Pamuklu?", m, "1")
	if err != nil {
		t.Fatalf("ConfirmedDelete() failed: %v", err)
	}
	if attempted || executed {
		t.Errorf("declined confirmation still ran the mutation")
	}
}

func TestConfirmedDelete_ApprovedRunsMutation(t *testing.T) {
	executed := false
	m := deleteMutation(t, &executed)

	approve := func(ctx context.Context, prompt string) bool { return true }
	attempted, err := ConfirmedDelete(context.Background(), approve, "Delete Pamuklu?", m, "1")
	if err != nil {
		t.Fatalf("ConfirmedDelete() failed: %v", err)
	}
	if !attempted || !executed {
		t.Errorf("approved confirmation did not run the mutation")
	}
}
