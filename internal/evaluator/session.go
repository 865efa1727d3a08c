package evaluator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leengari/hybrideval/internal/accel"
	"github.com/leengari/hybrideval/internal/parser"
	"github.com/leengari/hybrideval/internal/table"
)

// Session ties one table, an optional grouping, a handler registry and a
// resolver together for a sequence of evaluations. Sessions are meant for a
// single evaluation context at a time; they are not safe for concurrent use.
type Session struct {
	tbl       *table.Table
	grouping  *table.Grouping
	registry  *accel.Registry
	resolver  accel.Resolver
	config    *EvalConfig
	observers []Observer
	passID    string // ID of the evaluation pass in flight
}

// NewSession creates a session over t using the process-wide handler
// registry and default configuration.
func NewSession(t *table.Table) *Session {
	return &Session{
		tbl:       t,
		registry:  accel.Default(),
		resolver:  accel.NewTableResolver(t),
		config:    DefaultEvalConfig(),
		observers: make([]Observer, 0),
	}
}

// SetRegistry replaces the handler registry used for dispatch.
func (s *Session) SetRegistry(r *accel.Registry) { s.registry = r }

// SetConfig replaces the evaluation configuration.
func (s *Session) SetConfig(cfg *EvalConfig) { s.config = cfg }

// AddObserver subscribes an observer to evaluation lifecycle events.
func (s *Session) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Table returns the session's table.
func (s *Session) Table() *table.Table { return s.tbl }

// Grouping returns the active grouping, nil when ungrouped.
func (s *Session) Grouping() *table.Grouping { return s.grouping }

// GroupBy partitions the session's table by the given key columns.
func (s *Session) GroupBy(keys ...string) error {
	g, err := table.GroupTable(s.tbl, keys...)
	if err != nil {
		return err
	}
	s.grouping = g
	return nil
}

// Ungroup drops the active grouping; subsequent evaluations run over the
// whole table.
func (s *Session) Ungroup() { s.grouping = nil }

func (s *Session) notify(event Event) {
	event.PassID = s.passID
	event.Timestamp = time.Now()
	for _, o := range s.observers {
		o.OnEvent(event)
	}
}

// ResultSet is the outcome of one evaluation: the group key columns (when
// grouped) followed by the result column.
type ResultSet struct {
	Columns []*table.Column
	Message string
}

// Evaluate parses input and evaluates it, per group when a grouping is
// active and over the whole table otherwise.
func (s *Session) Evaluate(input string) (*ResultSet, error) {
	s.passID = uuid.New().String()
	defer func() { s.passID = "" }()

	s.notify(Event{Type: EventParseStart, Data: input})
	node, err := parser.ParseExpression(input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	s.notify(Event{Type: EventParseEnd, Data: node.String()})

	s.notify(Event{Type: EventEvalStart, Data: node.String()})

	if s.grouping == nil {
		v, err := s.EvalTable(node)
		if err != nil {
			return nil, err
		}
		col, err := table.FromValues(node.String(), []interface{}{v})
		if err != nil {
			return nil, err
		}
		s.notify(Event{Type: EventEvalEnd, Data: "1 row"})
		return &ResultSet{
			Columns: []*table.Column{col},
			Message: "Returned 1 row",
		}, nil
	}

	result, err := s.EvalGrouped(node)
	if err != nil {
		return nil, err
	}

	// Prepend one column per grouping key so each output row identifies its
	// group.
	columns := make([]*table.Column, 0, len(s.grouping.Keys())+1)
	for _, key := range s.grouping.Keys() {
		labels := make([]interface{}, s.grouping.NumGroups())
		for i := range labels {
			labels[i] = s.grouping.Label(i)[key]
		}
		keyCol, err := table.FromValues(key, labels)
		if err != nil {
			return nil, err
		}
		columns = append(columns, keyCol)
	}
	columns = append(columns, result)

	s.notify(Event{Type: EventEvalEnd, Data: fmt.Sprintf("%d groups", s.grouping.NumGroups())})
	return &ResultSet{
		Columns: columns,
		Message: fmt.Sprintf("Returned %d groups", s.grouping.NumGroups()),
	}, nil
}
