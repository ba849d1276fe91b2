package todo

import (
	"testing"

	"github.com/Makepad-fr/tada/internal/globalconfig"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/schema"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type mapConfig map[globalconfig.Key]string

func (m mapConfig) Get(k globalconfig.Key) string { return m[k] }

type fakeSub struct {
	records []model.Record
	updates chan []model.Record
	closed  bool
}

func (s *fakeSub) Records() []model.Record        { return s.records }
func (s *fakeSub) Updates() <-chan []model.Record { return s.updates }
func (s *fakeSub) Close() {
	if !s.closed {
		s.closed = true
		close(s.updates)
	}
}

type update struct {
	TableID  string
	RecordID string
	Fields   model.Fields
}

type fakeSource struct {
	records []model.Record
	denied  map[string]bool // "create", "update", "delete"

	queries []model.Query
	subs    []*fakeSub
	creates []model.Fields
	updates []update
	deletes []string
}

func (f *fakeSource) Subscribe(q model.Query) (model.Subscription, error) {
	f.queries = append(f.queries, q)
	s := &fakeSub{records: f.records, updates: make(chan []model.Record, 1)}
	f.subs = append(f.subs, s)
	return s, nil
}

func (f *fakeSource) check(op string) model.PermissionCheck {
	if f.denied[op] {
		return model.Deny("You do not have permission to " + op + " records")
	}
	return model.Allow()
}

func (f *fakeSource) CheckCreatePermission(string, model.Fields) model.PermissionCheck {
	return f.check("create")
}

func (f *fakeSource) CheckUpdatePermission(string, model.Record, model.Fields) model.PermissionCheck {
	return f.check("update")
}

func (f *fakeSource) CheckDeletePermission(string, model.Record) model.PermissionCheck {
	return f.check("delete")
}

func done() <-chan error {
	ch := make(chan error, 1)
	ch <- nil
	return ch
}

func (f *fakeSource) CreateRecordAsync(_ string, fields model.Fields) <-chan error {
	f.creates = append(f.creates, fields)
	return done()
}

func (f *fakeSource) UpdateRecordAsync(tableID string, rec model.Record, fields model.Fields) <-chan error {
	f.updates = append(f.updates, update{TableID: tableID, RecordID: rec.ID, Fields: fields})
	return done()
}

func (f *fakeSource) DeleteRecordAsync(_ string, rec model.Record) <-chan error {
	f.deletes = append(f.deletes, rec.ID)
	return done()
}

func fullConfig() mapConfig {
	return mapConfig{
		globalconfig.SelectedTable:         "tblTasks",
		globalconfig.SelectedView:          "viwAll",
		globalconfig.SelectedDoneField:     "fldDone",
		globalconfig.SelectedPriorityField: "fldPriority",
	}
}

func sampleRecords() []model.Record {
	return []model.Record{
		{ID: "rec1", Name: "Buy milk", Fields: model.Fields{"fldName": "Buy milk", "fldPriority": "High"}},
		{ID: "rec2", Name: "", Fields: model.Fields{"fldDone": true}},
		{ID: "rec3", Name: "Call mom", Fields: model.Fields{"fldName": "Call mom", "fldDone": false, "fldPriority": "Low"}},
	}
}

func newApp(t *testing.T, cfg mapConfig, src *fakeSource, exp Expander) *App {
	t.Helper()
	sch, err := schema.Default()
	require.NoError(t, err)
	a := New(cfg, sch, src, exp, nil)
	require.NoError(t, a.Refresh())
	t.Cleanup(a.Close)
	return a
}

func TestUnresolvedSelectionIssuesNoQuery(t *testing.T) {
	cases := map[string]mapConfig{
		"empty":         {},
		"no done field": {globalconfig.SelectedTable: "tblTasks", globalconfig.SelectedView: "viwAll", globalconfig.SelectedPriorityField: "fldPriority"},
		"no priority":   {globalconfig.SelectedTable: "tblTasks", globalconfig.SelectedView: "viwAll", globalconfig.SelectedDoneField: "fldDone"},
		"deleted table": {globalconfig.SelectedTable: "tblGone", globalconfig.SelectedView: "viwAll", globalconfig.SelectedDoneField: "fldDone", globalconfig.SelectedPriorityField: "fldPriority"},
		"deleted field": {globalconfig.SelectedTable: "tblTasks", globalconfig.SelectedView: "viwAll", globalconfig.SelectedDoneField: "fldGone", globalconfig.SelectedPriorityField: "fldPriority"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			src := &fakeSource{records: sampleRecords()}
			a := newApp(t, cfg, src, nil)
			require.Empty(t, src.queries)
			require.Nil(t, a.Rows())
			require.Nil(t, a.Form())
			require.Nil(t, a.Updates())
			require.False(t, a.Toggle(0))
		})
	}
}

func TestUnresolvedViewKeepsForm(t *testing.T) {
	cfg := fullConfig()
	cfg[globalconfig.SelectedView] = "viwGone"
	src := &fakeSource{records: sampleRecords()}
	a := newApp(t, cfg, src, nil)

	require.Empty(t, src.queries)
	require.Empty(t, a.Rows())
	require.NotNil(t, a.Form())
}

func TestQueryShape(t *testing.T) {
	src := &fakeSource{}
	newApp(t, fullConfig(), src, nil)

	want := []model.Query{{
		TableID: "tblTasks",
		ViewID:  "viwAll",
		Fields:  []string{"fldName", "fldDone", "fldPriority"},
		Sorts:   []model.Sort{{FieldID: "fldPriority", Direction: model.Ascending}},
	}}
	if diff := cmp.Diff(want, src.queries); diff != "" {
		t.Fatalf("queries mismatch (-want +got):\n%s", diff)
	}
}

func TestRowsFollowSourceOrder(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	a := newApp(t, fullConfig(), src, nil)

	var texts []string
	for _, r := range a.Rows() {
		texts = append(texts, r.Text())
	}
	require.Equal(t, []string{
		"Buy milk - Priority: High",
		"Unnamed record - Priority: None",
		"Call mom - Priority: Low",
	}, texts)

	rows := a.Rows()
	require.False(t, rows[0].Done)
	require.True(t, rows[1].Done)
	require.True(t, rows[0].Toggle.Allowed)
	require.True(t, rows[0].Remove.Allowed)
}

func TestApplyReplacesSequence(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	a := newApp(t, fullConfig(), src, nil)

	next := []model.Record{{ID: "rec9", Name: "New", Fields: model.Fields{"fldPriority": "A"}}}
	require.True(t, a.Apply(a.Updates(), next))
	require.Len(t, a.Rows(), 1)
	require.Equal(t, "New - Priority: A", a.Rows()[0].Text())
}

func TestApplyDropsStaleSequence(t *testing.T) {
	cfg := fullConfig()
	src := &fakeSource{records: sampleRecords()}
	a := newApp(t, cfg, src, nil)
	old := a.Updates()

	cfg[globalconfig.SelectedView] = "viwOpen"
	require.NoError(t, a.Refresh())
	require.Len(t, src.queries, 2)
	require.True(t, src.subs[0].closed)

	require.False(t, a.Apply(old, nil))
	require.Len(t, a.Rows(), 3)
}

func TestRefreshKeepsUnchangedQuery(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	a := newApp(t, fullConfig(), src, nil)
	require.NoError(t, a.Refresh())
	require.Len(t, src.queries, 1)
	require.False(t, src.subs[0].closed)
}

func TestRefreshClosesQueryWhenUnset(t *testing.T) {
	cfg := fullConfig()
	src := &fakeSource{records: sampleRecords()}
	a := newApp(t, cfg, src, nil)

	delete(cfg, globalconfig.SelectedDoneField)
	require.NoError(t, a.Refresh())
	require.True(t, src.subs[0].closed)
	require.Nil(t, a.Rows())
	require.Nil(t, a.Form())
}

func TestToggleSendsOnlyDone(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	a := newApp(t, fullConfig(), src, nil)

	require.True(t, a.Toggle(0))
	require.True(t, a.Toggle(1))
	want := []update{
		{TableID: "tblTasks", RecordID: "rec1", Fields: model.Fields{"fldDone": true}},
		{TableID: "tblTasks", RecordID: "rec2", Fields: model.Fields{"fldDone": false}},
	}
	if diff := cmp.Diff(want, src.updates); diff != "" {
		t.Fatalf("updates mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, src.creates)
	require.Empty(t, src.deletes)
}

func TestDeleteTargetsRow(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	a := newApp(t, fullConfig(), src, nil)

	require.True(t, a.Delete(2))
	require.Equal(t, []string{"rec3"}, src.deletes)
	require.False(t, a.Delete(3))
	require.False(t, a.Delete(-1))
	require.Len(t, src.deletes, 1)
}

func TestOpenExpandsRecord(t *testing.T) {
	var got []string
	exp := ExpanderFunc(func(table *schema.Table, rec model.Record) {
		got = append(got, table.ID+"/"+rec.ID)
	})
	src := &fakeSource{records: sampleRecords()}
	a := newApp(t, fullConfig(), src, exp)

	require.True(t, a.Open(1))
	require.Equal(t, []string{"tblTasks/rec2"}, got)
}

func TestDeniedActionsAreNotInvoked(t *testing.T) {
	src := &fakeSource{
		records: sampleRecords(),
		denied:  map[string]bool{"create": true, "update": true, "delete": true},
	}
	a := newApp(t, fullConfig(), src, nil)

	rows := a.Rows()
	require.False(t, rows[0].Toggle.Allowed)
	require.NotEmpty(t, rows[0].Toggle.Reason)
	require.False(t, rows[0].Remove.Allowed)

	require.False(t, a.Toggle(0))
	require.False(t, a.Delete(0))

	f := a.Form()
	require.False(t, f.Enabled().Allowed)
	f.SetName("Buy milk")
	require.False(t, f.Submit())
	require.Equal(t, "Buy milk", f.Name())

	require.Empty(t, src.updates)
	require.Empty(t, src.deletes)
	require.Empty(t, src.creates)
}

func TestSubmitCreatesAndClears(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	a := newApp(t, fullConfig(), src, nil)

	f := a.Form()
	f.SetName("Buy milk")
	f.SetPriority("High")
	require.True(t, f.Submit())
	require.Equal(t, "", f.Name())
	require.Equal(t, "", f.Priority())

	require.True(t, f.Submit())
	want := []model.Fields{
		{"fldName": "Buy milk", "fldPriority": "High"},
		{"fldName": "", "fldPriority": ""},
	}
	if diff := cmp.Diff(want, src.creates); diff != "" {
		t.Fatalf("creates mismatch (-want +got):\n%s", diff)
	}
}

func TestFormSurvivesRefresh(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	a := newApp(t, fullConfig(), src, nil)
	a.Form().SetName("draft")
	require.NoError(t, a.Refresh())
	require.Equal(t, "draft", a.Form().Name())
}
