package journal

import (
	"fmt"
	"github.com/blugelabs/bluge"
	"time"
)

type Kind string

const (
	Compute Kind = "compute"
	Undo    Kind = "undo"
	Redo    Kind = "redo"
	Reset   Kind = "reset"
	Failure Kind = "error"
)

// Entry is one state transition, or one rejected request, of a session.
type Entry struct {
	ID        string    `json:"id"`
	Session   string    `json:"session"`
	Seq       uint64    `json:"seq"`
	Kind      Kind      `json:"kind"`
	Operator  string    `json:"operator,omitempty"`
	Left      *float64  `json:"left,omitempty"`
	Right     *float64  `json:"right,omitempty"`
	Before    float64   `json:"before"`
	After     float64   `json:"after"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Query selects journal entries. An empty Session or Kind matches all.
type Query struct {
	Session string
	Kind    Kind
	Limit   int
}

const (
	idField        = "_id"
	sessionField   = "session"
	seqField       = "seq"
	kindField      = "kind"
	operatorField  = "operator"
	leftField      = "left"
	rightField     = "right"
	beforeField    = "before"
	afterField     = "after"
	errorField     = "error"
	timestampField = "timestamp"
)

const defaultKeywordIndexingOptions = bluge.Index | bluge.Sortable | bluge.Store
const defaultNumericIndexingOptions = bluge.Index | bluge.Sortable | bluge.Store | bluge.Aggregatable
const defaultDateTimeIndexingOptions = bluge.Index | bluge.Sortable | bluge.Store | bluge.Aggregatable

func (q Query) bluge() bluge.Query {
	if q.Session == "" && q.Kind == "" {
		return bluge.NewMatchAllQuery()
	}

	query := bluge.NewBooleanQuery()
	if q.Session != "" {
		query.AddMust(bluge.NewTermQuery(q.Session).SetField(sessionField))
	}
	if q.Kind != "" {
		query.AddMust(bluge.NewTermQuery(string(q.Kind)).SetField(kindField))
	}
	return query
}

func (e *Entry) document() *bluge.Document {
	d := bluge.NewDocument(e.ID)
	d.AddField(keyword(sessionField, e.Session))
	d.AddField(keyword(kindField, string(e.Kind)))
	d.AddField(numeric(seqField, float64(e.Seq)))
	d.AddField(numeric(beforeField, e.Before))
	d.AddField(numeric(afterField, e.After))

	if e.Operator != "" {
		d.AddField(keyword(operatorField, e.Operator))
	}
	if e.Left != nil {
		d.AddField(numeric(leftField, *e.Left))
	}
	if e.Right != nil {
		d.AddField(numeric(rightField, *e.Right))
	}
	if e.Error != "" {
		d.AddField(keyword(errorField, e.Error))
	}

	ts := bluge.NewDateTimeField(timestampField, e.Timestamp)
	ts.FieldOptions = defaultDateTimeIndexingOptions
	d.AddField(ts)
	return d
}

func (e *Entry) decode(field string, value []byte) error {
	switch field {
	case idField:
		e.ID = string(value)
	case sessionField:
		e.Session = string(value)
	case kindField:
		e.Kind = Kind(value)
	case operatorField:
		e.Operator = string(value)
	case errorField:
		e.Error = string(value)
	case timestampField:
		t, err := bluge.DecodeDateTime(value)
		if err != nil {
			return fmt.Errorf("decoding field '%s': %w", field, err)
		}
		e.Timestamp = t.UTC()
	case seqField, leftField, rightField, beforeField, afterField:
		v, err := bluge.DecodeNumericFloat64(value)
		if err != nil {
			return fmt.Errorf("decoding field '%s': %w", field, err)
		}
		switch field {
		case seqField:
			e.Seq = uint64(v)
		case leftField:
			e.Left = &v
		case rightField:
			e.Right = &v
		case beforeField:
			e.Before = v
		case afterField:
			e.After = v
		}
	}
	return nil
}

func keyword(name, value string) bluge.Field {
	f := bluge.NewKeywordField(name, value)
	f.FieldOptions = defaultKeywordIndexingOptions
	return f
}

func numeric(name string, value float64) bluge.Field {
	f := bluge.NewNumericField(name, value)
	f.FieldOptions = defaultNumericIndexingOptions
	return f
}
