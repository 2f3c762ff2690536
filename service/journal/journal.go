package journal

import (
	"context"
	"fmt"
	"github.com/aleph-zero/abacus/telemetry"
	"github.com/blugelabs/bluge"
	log "github.com/go-chi/httplog/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"sync/atomic"
	"time"
)

const defaultLimit = 100

type Service interface {
	Record(ctx context.Context, entry *Entry) error
	Search(ctx context.Context, query Query) ([]*Entry, error)
	Forget(ctx context.Context, session string) error
	Close() error
}

// ServiceProvider keeps the journal in a memory-only bluge index; nothing
// outlives the process.
type ServiceProvider struct {
	writer *bluge.Writer
	seq    atomic.Uint64
}

func NewService() (*ServiceProvider, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, Error{ErrorCode: IndexWriterError, Message: "opening journal index", Err: err}
	}
	return &ServiceProvider{writer: writer}, nil
}

func (s *ServiceProvider) Close() error {
	return s.writer.Close()
}

// Record stores entry, assigning its ID, sequence number and (if unset)
// timestamp.
func (s *ServiceProvider) Record(ctx context.Context, entry *Entry) error {
	ctx, span := telemetry.StartSpan(ctx, "journal.Record", trace.WithAttributes(
		attribute.String("session", entry.Session),
		attribute.String("kind", string(entry.Kind))))
	defer span.End()

	entry.ID = uuid.New().String()
	entry.Seq = s.seq.Add(1)
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := s.writer.Insert(entry.document()); err != nil {
		log.LogEntry(ctx).Error("Error writing journal entry", "session", entry.Session, "err", err)
		return Error{ErrorCode: IndexWriterError, Message: "writing journal entry", Err: err}
	}
	return nil
}

// Search returns matching entries, newest first.
func (s *ServiceProvider) Search(ctx context.Context, query Query) ([]*Entry, error) {
	ctx, span := telemetry.StartSpan(ctx, "journal.Search", trace.WithAttributes(attribute.String("session", query.Session)))
	defer span.End()

	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	reader, closer, err := s.reader()
	if err != nil {
		log.LogEntry(ctx).Error("Error creating journal reader", "err", err)
		return nil, err
	}
	defer closer()

	request := bluge.NewTopNSearch(limit, query.bluge()).SortBy([]string{"-" + seqField})
	dmi, err := reader.Search(ctx, request)
	if err != nil {
		log.LogEntry(ctx).Error("Error searching journal", "session", query.Session, "err", err)
		return nil, Error{ErrorCode: IndexReaderError, Message: "searching journal", Err: err}
	}

	entries := make([]*Entry, 0)
	next, err := dmi.Next()
	for err == nil && next != nil {
		entry := &Entry{}
		var decodeErr error
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			decodeErr = entry.decode(field, value)
			return decodeErr == nil
		})
		if err == nil {
			err = decodeErr
		}
		if err != nil {
			break
		}
		entries = append(entries, entry)
		next, err = dmi.Next()
	}

	if err != nil {
		log.LogEntry(ctx).Error("Error iterating journal entries", "session", query.Session, "err", err)
		return nil, Error{ErrorCode: IndexReaderError, Message: "reading journal entries", Err: err}
	}
	telemetry.SetAttributes(span, attribute.Int("hits", len(entries)))
	return entries, nil
}

// Forget deletes every entry recorded for session.
func (s *ServiceProvider) Forget(ctx context.Context, session string) error {
	ctx, span := telemetry.StartSpan(ctx, "journal.Forget", trace.WithAttributes(attribute.String("session", session)))
	defer span.End()

	reader, closer, err := s.reader()
	if err != nil {
		return err
	}
	defer closer()

	query := Query{Session: session}
	dmi, err := reader.Search(ctx, bluge.NewAllMatches(query.bluge()))
	if err != nil {
		return Error{ErrorCode: IndexReaderError, Message: "searching journal", Err: err}
	}

	batch := bluge.NewBatch()
	count := 0
	next, err := dmi.Next()
	for err == nil && next != nil {
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			if field == idField {
				batch.Delete(bluge.Identifier(value))
				count++
				return false
			}
			return true
		})
		if err != nil {
			break
		}
		next, err = dmi.Next()
	}
	if err != nil {
		return Error{ErrorCode: IndexReaderError, Message: "reading journal entries", Err: err}
	}

	if count == 0 {
		return nil
	}
	if err := s.writer.Batch(batch); err != nil {
		log.LogEntry(ctx).Error("Error deleting journal entries", "session", session, "err", err)
		return Error{ErrorCode: IndexWriterError, Message: "deleting journal entries", Err: err}
	}
	log.LogEntry(ctx).Info("Forgot journal entries", "session", session, "count", count)
	return nil
}

func (s *ServiceProvider) reader() (*bluge.Reader, func(), error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, nil, Error{ErrorCode: IndexReaderError, Message: "opening journal reader", Err: err}
	}
	return reader, func() { reader.Close() }, nil
}

/* *** Errors *** */

type ErrorCode int

const (
	IndexWriterError ErrorCode = iota + 1
	IndexReaderError
)

type Error struct {
	ErrorCode ErrorCode
	Message   string
	Err       error
}

func (e Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e Error) Unwrap() error {
	return e.Err
}
