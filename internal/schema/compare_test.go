package schema

import (
	"testing"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/google/go-cmp/cmp"
)

func TestSortRecordsIsStable(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	tbl := s.TableByIDIfExists("tblTasks")

	recs := []model.Record{
		{ID: "a", Fields: model.Fields{"fldPriority": "b"}},
		{ID: "b", Fields: model.Fields{"fldPriority": "A"}},
		{ID: "c", Fields: model.Fields{"fldPriority": "b"}},
		{ID: "d", Fields: model.Fields{}},
		{ID: "e", Fields: model.Fields{"fldPriority": "a"}},
	}
	SortRecords(tbl, recs, []model.Sort{{FieldID: "fldPriority", Direction: model.Ascending}})

	got := make([]string, len(recs))
	for i, r := range recs {
		got[i] = r.ID
	}
	// "A" < "a" only on the case-sensitive tiebreak; equal values keep input order.
	want := []string{"d", "b", "e", "a", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortRecordsDescendingAndUnknownField(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	tbl := s.TableByIDIfExists("tblTasks")

	recs := []model.Record{
		{ID: "a", Fields: model.Fields{"fldDone": false}},
		{ID: "b", Fields: model.Fields{"fldDone": true}},
		{ID: "c"},
	}
	SortRecords(tbl, recs, []model.Sort{
		{FieldID: "fldMissing", Direction: model.Ascending},
		{FieldID: "fldDone", Direction: model.Descending},
	})
	got := []string{recs[0].ID, recs[1].ID, recs[2].ID}
	if diff := cmp.Diff([]string{"b", "a", "c"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		typ  FieldType
		a, b any
		want int
	}{
		{"empty first", SingleLineText, nil, "x", -1},
		{"empty string is empty", SingleLineText, "", nil, 0},
		{"case-insensitive", SingleLineText, "apple", "Banana", -1},
		{"numbers", Number, 10.0, 9.0, 1},
		{"unchecked first", Checkbox, false, true, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareValues(tt.typ, tt.a, tt.b); got != tt.want {
				t.Errorf("CompareValues(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
