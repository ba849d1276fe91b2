package model

// Direction of a sort.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

type Sort struct {
	FieldID   string
	Direction Direction
}

// Query asks the record base for the records of one view, projected to
// Fields and ordered by Sorts on top of the view's own order.
type Query struct {
	TableID string
	ViewID  string
	Fields  []string
	Sorts   []Sort
}

// Equal reports whether two queries select the same live sequence.
func (q Query) Equal(o Query) bool {
	if q.TableID != o.TableID || q.ViewID != o.ViewID {
		return false
	}
	if len(q.Fields) != len(o.Fields) || len(q.Sorts) != len(o.Sorts) {
		return false
	}
	for i := range q.Fields {
		if q.Fields[i] != o.Fields[i] {
			return false
		}
	}
	for i := range q.Sorts {
		if q.Sorts[i] != o.Sorts[i] {
			return false
		}
	}
	return true
}

// Subscription is a live query. Updates delivers a replacement sequence
// every time the underlying table changes and is closed by Close.
type Subscription interface {
	Records() []Record
	Updates() <-chan []Record
	Close()
}
