package index

import (
	"fmt"
	"strings"
)

// Query is a structured query understood by a Searcher
type Query interface {
	fmt.Stringer
	query()
}

// SinglePhraseQuery matches documents whose field matches value
type SinglePhraseQuery struct {
	Field string
	Value string
}

func (SinglePhraseQuery) query() {}

func (q SinglePhraseQuery) String() string {
	return fmt.Sprintf("%s:%q", q.Field, q.Value)
}

// Operator joins a clause into a CompoundQuery
type Operator int

const (
	// And requires the clause to match
	And Operator = iota
	// Or lets the clause match optionally
	Or
	// Not excludes documents matching the clause
	Not
)

func (o Operator) String() string {
	switch o {
	case And:
		return "AND"
	case Or:
		return "OR"
	case Not:
		return "NOT"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// ParseOperator converts "and", "or" or "not" in any case
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(s) {
	case "and", "":
		return And, nil
	case "or":
		return Or, nil
	case "not":
		return Not, nil
	}
	return And, fmt.Errorf("unknown query operator: %s", s)
}

// Clause is one member of a CompoundQuery
type Clause struct {
	Operator Operator
	Query    Query
}

// CompoundQuery combines queries with boolean operators
type CompoundQuery struct {
	Clauses []Clause
}

func (*CompoundQuery) query() {}

// NewCompoundQuery creates an empty compound query
func NewCompoundQuery() *CompoundQuery {
	return &CompoundQuery{}
}

// And adds a required clause
func (q *CompoundQuery) And(sub Query) *CompoundQuery {
	q.Clauses = append(q.Clauses, Clause{Operator: And, Query: sub})
	return q
}

// Or adds an optional clause
func (q *CompoundQuery) Or(sub Query) *CompoundQuery {
	q.Clauses = append(q.Clauses, Clause{Operator: Or, Query: sub})
	return q
}

// Not adds an excluding clause
func (q *CompoundQuery) Not(sub Query) *CompoundQuery {
	q.Clauses = append(q.Clauses, Clause{Operator: Not, Query: sub})
	return q
}

func (q *CompoundQuery) String() string {
	parts := make([]string, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		parts = append(parts, c.Operator.String()+" "+c.Query.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}
