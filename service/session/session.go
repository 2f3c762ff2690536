package session

import (
	"context"
	"fmt"
	"github.com/aleph-zero/abacus/engine"
	"github.com/aleph-zero/abacus/engine/ast"
	"github.com/aleph-zero/abacus/engine/evaluator"
	"github.com/aleph-zero/abacus/engine/parser"
	"github.com/aleph-zero/abacus/service/journal"
	"github.com/aleph-zero/abacus/telemetry"
	log "github.com/go-chi/httplog/v2"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"math"
	"sync"
	"time"
)

type Service interface {
	Create(ctx context.Context) (*Model, error)
	Get(ctx context.Context, id string) (*Model, error)
	Value(ctx context.Context, id string) (float64, error)
	Delete(ctx context.Context, id string) error
	Compute(ctx context.Context, id string, left float64, operator string, right float64) (*Model, error)
	Undo(ctx context.Context, id string) (*Model, error)
	Redo(ctx context.Context, id string) (*Model, error)
	Reset(ctx context.Context, id string) (*Model, error)
	History(ctx context.Context, id string) (*engine.Snapshot, error)
	Execute(ctx context.Context, id string, statement string) (*ExecuteResult, error)
	Journal(ctx context.Context, id string, kind journal.Kind, limit int) ([]*journal.Entry, error)
	Count() int
}

type ServiceProvider struct {
	sessions   *cache.Cache
	journal    journal.Service
	operations metric.Int64Counter

	listenerLock sync.Mutex
	listeners    []func(count int)
}

// session pairs a Calculator with the lock that serialises every operation
// on it.
type session struct {
	lock       sync.Mutex
	id         string
	created    time.Time
	closed     bool
	calculator *engine.Calculator
	evaluator  *evaluator.Evaluator
}

func NewService(config *Config, journalSvc journal.Service) *ServiceProvider {
	operations, err := telemetry.Meter().Int64Counter("abacus.operations",
		metric.WithDescription("Calculator operations applied to sessions"))
	if err != nil {
		operations = noop.Int64Counter{}
	}

	sp := &ServiceProvider{
		sessions:   cache.New(config.TTL, config.CleanupInterval),
		journal:    journalSvc,
		operations: operations,
	}
	sp.sessions.OnEvicted(sp.evicted)
	return sp
}

// OnCountChange registers fn to be called with the number of live sessions
// whenever a session is created or removed.
func (sp *ServiceProvider) OnCountChange(fn func(count int)) {
	sp.listenerLock.Lock()
	defer sp.listenerLock.Unlock()
	sp.listeners = append(sp.listeners, fn)
}

// Count reports live sessions. Expired sessions the janitor has not swept yet
// are not counted, though count listeners only hear of them once swept.
func (sp *ServiceProvider) Count() int {
	return len(sp.sessions.Items())
}

func (sp *ServiceProvider) Create(ctx context.Context) (*Model, error) {
	ctx, span := telemetry.StartSpan(ctx, "session.Create")
	defer span.End()

	calculator := engine.NewCalculator()
	s := &session{
		id:         uuid.NewString(),
		created:    time.Now().UTC(),
		calculator: calculator,
		evaluator:  evaluator.New(calculator),
	}
	if err := sp.sessions.Add(s.id, s, cache.DefaultExpiration); err != nil {
		return nil, fmt.Errorf("registering session: %w", err)
	}

	telemetry.SetAttributes(span, attribute.String("session", s.id))
	log.LogEntry(ctx).Info("Created session", "session", s.id)
	sp.notify()
	return s.model(), nil
}

func (sp *ServiceProvider) Get(ctx context.Context, id string) (*Model, error) {
	s, err := sp.lookup(id)
	if err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return nil, noSuchSession(id)
	}
	return s.model(), nil
}

func (sp *ServiceProvider) Value(ctx context.Context, id string) (float64, error) {
	model, err := sp.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return model.Value, nil
}

func (sp *ServiceProvider) History(ctx context.Context, id string) (*engine.Snapshot, error) {
	s, err := sp.lookup(id)
	if err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return nil, noSuchSession(id)
	}
	snapshot := s.calculator.History()
	return &snapshot, nil
}

func (sp *ServiceProvider) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "session.Delete", trace.WithAttributes(attribute.String("session", id)))
	defer span.End()

	v, ok := sp.sessions.Get(id)
	if !ok {
		return noSuchSession(id)
	}

	// Closing under the session lock makes exactly one concurrent Delete win.
	s := v.(*session)
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return noSuchSession(id)
	}
	s.closed = true
	s.lock.Unlock()

	sp.sessions.Delete(id)
	log.LogEntry(ctx).Info("Deleted session", "session", id)
	return nil
}

func (sp *ServiceProvider) Compute(ctx context.Context, id string, left float64, operator string, right float64) (*Model, error) {
	ctx, span := telemetry.StartSpan(ctx, "session.Compute", trace.WithAttributes(
		attribute.String("session", id),
		attribute.String("operator", operator)))
	defer span.End()

	return sp.apply(ctx, id, journal.Compute, func(s *session) (*journal.Entry, error) {
		entry := &journal.Entry{Operator: operator, Left: finite(left), Right: finite(right)}
		op, err := engine.ParseOperator(operator)
		if err != nil {
			return entry, err
		}
		if err := checkFinite(left, right, op); err != nil {
			return entry, err
		}
		_, err = s.calculator.Compute(left, right, op)
		return entry, err
	})
}

func (sp *ServiceProvider) Undo(ctx context.Context, id string) (*Model, error) {
	ctx, span := telemetry.StartSpan(ctx, "session.Undo", trace.WithAttributes(attribute.String("session", id)))
	defer span.End()

	return sp.apply(ctx, id, journal.Undo, func(s *session) (*journal.Entry, error) {
		_, err := s.calculator.Undo()
		return &journal.Entry{}, err
	})
}

func (sp *ServiceProvider) Redo(ctx context.Context, id string) (*Model, error) {
	ctx, span := telemetry.StartSpan(ctx, "session.Redo", trace.WithAttributes(attribute.String("session", id)))
	defer span.End()

	return sp.apply(ctx, id, journal.Redo, func(s *session) (*journal.Entry, error) {
		_, err := s.calculator.Redo()
		return &journal.Entry{}, err
	})
}

func (sp *ServiceProvider) Reset(ctx context.Context, id string) (*Model, error) {
	ctx, span := telemetry.StartSpan(ctx, "session.Reset", trace.WithAttributes(attribute.String("session", id)))
	defer span.End()

	return sp.apply(ctx, id, journal.Reset, func(s *session) (*journal.Entry, error) {
		s.calculator.Reset()
		return &journal.Entry{}, nil
	})
}

// Execute parses and runs one command statement against the session.
func (sp *ServiceProvider) Execute(ctx context.Context, id string, statement string) (*ExecuteResult, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "session.Execute", trace.WithAttributes(
		attribute.String("session", id),
		attribute.String("statement", statement)))
	defer span.End()

	node, err := parser.Parse(statement)
	if err != nil {
		log.LogEntry(ctx).Info("Error parsing statement", "session", id, "statement", statement, "err", err)
		return nil, err
	}

	var result *ExecuteResult
	kind, entry := classify(node)
	model, err := sp.apply(ctx, id, kind, func(s *session) (*journal.Entry, error) {
		if err := checkStatement(node); err != nil {
			result = &ExecuteResult{}
			return entry, err
		}
		err := s.evaluator.Evaluate(node)
		result = &ExecuteResult{Message: s.evaluator.Message, Halt: s.evaluator.Halt}
		return entry, err
	})
	if model == nil {
		return nil, err
	}
	result.Model = *model
	result.Duration = time.Since(start)
	return result, err
}

func (sp *ServiceProvider) Journal(ctx context.Context, id string, kind journal.Kind, limit int) ([]*journal.Entry, error) {
	if _, err := sp.lookup(id); err != nil {
		return nil, err
	}
	return sp.journal.Search(ctx, journal.Query{Session: id, Kind: kind, Limit: limit})
}

// apply runs fn under the session lock and journals the outcome. An empty
// kind marks a read-only statement that is not journaled.
func (sp *ServiceProvider) apply(ctx context.Context, id string, kind journal.Kind, fn func(*session) (*journal.Entry, error)) (*Model, error) {
	s, err := sp.lookup(id)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return nil, noSuchSession(id)
	}

	before := s.calculator.Value()
	entry, err := fn(s)
	model := s.model()

	if kind != "" {
		sp.operations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", string(kind)),
			attribute.Bool("error", err != nil)))

		entry.Session, entry.Kind, entry.Before, entry.After = id, kind, before, model.Value
		if err != nil {
			entry.Kind, entry.Error = journal.Failure, err.Error()
		}
		if jerr := sp.journal.Record(ctx, entry); jerr != nil {
			log.LogEntry(ctx).Error("Error journaling operation", "session", id, "kind", kind, "err", jerr)
		}
	}

	if err != nil {
		log.LogEntry(ctx).Info("Operation rejected", "session", id, "kind", kind, "err", err)
	}
	return model, err
}

func (sp *ServiceProvider) lookup(id string) (*session, error) {
	v, ok := sp.sessions.Get(id)
	if !ok {
		return nil, noSuchSession(id)
	}
	// Replace only succeeds for a live entry, so touching never resurrects a
	// session that was deleted concurrently.
	if err := sp.sessions.Replace(id, v, cache.DefaultExpiration); err != nil {
		return nil, noSuchSession(id)
	}
	return v.(*session), nil
}

func (sp *ServiceProvider) evicted(id string, v interface{}) {
	s := v.(*session)
	s.lock.Lock()
	s.closed = true
	s.lock.Unlock()

	if err := sp.journal.Forget(context.Background(), id); err != nil {
		log.LogEntry(context.Background()).Error("Error forgetting session journal", "session", id, "err", err)
	}
	sp.notify()
}

func (sp *ServiceProvider) notify() {
	count := sp.Count()
	sp.listenerLock.Lock()
	defer sp.listenerLock.Unlock()
	for _, fn := range sp.listeners {
		fn(count)
	}
}

func (s *session) model() *Model {
	value := s.calculator.Value()
	return &Model{
		ID:        s.id,
		Value:     value,
		Display:   engine.FormatValue(value),
		UndoDepth: s.calculator.UndoDepth(),
		RedoDepth: s.calculator.RedoDepth(),
		Created:   s.created,
	}
}

// checkFinite rejects computations on or producing values that JSON cannot
// carry. Invalid operators and zero divisors are left for the Calculator to
// report.
func checkFinite(left, right float64, op engine.Operator) error {
	if finite(left) == nil || finite(right) == nil {
		return engine.ErrNonFiniteResult
	}
	if op == engine.Divide && right == 0 {
		return nil
	}
	if finite(op.Apply(left, right)) == nil {
		return engine.ErrNonFiniteResult
	}
	return nil
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func checkStatement(node ast.VisitableNode) error {
	n, ok := node.(*ast.ComputeStatementNode)
	if !ok {
		return nil
	}
	op, err := engine.ParseOperator(n.Operator.Symbol)
	if err != nil {
		return nil
	}
	return checkFinite(n.Left.Value, n.Right.Value, op)
}

// classify maps a statement to the journal kind it produces. Statements that
// only read state map to the empty kind.
func classify(node ast.VisitableNode) (journal.Kind, *journal.Entry) {
	switch n := node.(type) {
	case *ast.ComputeStatementNode:
		return journal.Compute, &journal.Entry{Operator: n.Operator.Symbol, Left: finite(n.Left.Value), Right: finite(n.Right.Value)}
	case *ast.UndoStatementNode:
		return journal.Undo, &journal.Entry{}
	case *ast.RedoStatementNode:
		return journal.Redo, &journal.Entry{}
	case *ast.ClearStatementNode:
		return journal.Reset, &journal.Entry{}
	default:
		return "", &journal.Entry{}
	}
}
