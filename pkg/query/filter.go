// Package query parses filter expressions and builds sibling comparators
// over loader items.
package query

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vanderheijden86/treegrid/pkg/loader"
	"github.com/vanderheijden86/treegrid/pkg/treetable"
)

// ErrBadExpression is returned for filter expressions that cannot be parsed.
var ErrBadExpression = errors.New("bad filter expression")

type predicate func(it *loader.Item) bool

// Expr is a parsed filter expression. Every term must hold.
type Expr struct {
	source string
	terms  []predicate
}

var _ treetable.Filter = (*Expr)(nil)

// Parse compiles a filter expression. Terms are separated by whitespace:
//
//	status:open        field equality (id, kind, status), case-insensitive
//	priority:<2        priority comparison (=, <, <=, >, >=)
//	label:foo          label substring, as is a bare word
//	-kind:bug          negation
//
// An empty expression yields a nil Filter, meaning every node matches.
func Parse(expr string) (treetable.Filter, error) {
	e, err := Compile(expr)
	if err != nil || e == nil {
		return nil, err
	}
	return e, nil
}

// Compile is Parse returning the concrete expression.
func Compile(expr string) (*Expr, error) {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return nil, nil
	}
	e := &Expr{source: strings.Join(fields, " ")}
	for _, f := range fields {
		p, err := parseTerm(f)
		if err != nil {
			return nil, err
		}
		e.terms = append(e.terms, p)
	}
	return e, nil
}

// Accept reports whether obj is an item satisfying every term.
func (e *Expr) Accept(obj any) bool {
	it, ok := obj.(*loader.Item)
	if !ok || it == nil {
		return false
	}
	for _, t := range e.terms {
		if !t(it) {
			return false
		}
	}
	return true
}

// String returns the normalized expression.
func (e *Expr) String() string { return e.source }

func parseTerm(term string) (predicate, error) {
	negate := false
	if strings.HasPrefix(term, "-") && len(term) > 1 {
		negate = true
		term = term[1:]
	}
	p, err := parsePositive(term)
	if err != nil {
		return nil, err
	}
	if negate {
		return func(it *loader.Item) bool { return !p(it) }, nil
	}
	return p, nil
}

func parsePositive(term string) (predicate, error) {
	field, value, ok := strings.Cut(term, ":")
	if !ok {
		return labelContains(term), nil
	}
	if value == "" {
		return nil, errors.Wrapf(ErrBadExpression, "%q has no value", term)
	}
	switch strings.ToLower(field) {
	case "label":
		return labelContains(value), nil
	case "id":
		return func(it *loader.Item) bool { return strings.EqualFold(it.ID, value) }, nil
	case "kind", "type":
		return func(it *loader.Item) bool { return strings.EqualFold(it.Kind, value) }, nil
	case "status":
		return func(it *loader.Item) bool { return strings.EqualFold(it.Status, value) }, nil
	case "priority", "p":
		return parsePriority(term, value)
	default:
		return nil, errors.Wrapf(ErrBadExpression, "unknown field %q", field)
	}
}

func labelContains(s string) predicate {
	needle := strings.ToLower(s)
	return func(it *loader.Item) bool {
		return strings.Contains(strings.ToLower(it.Label), needle)
	}
}

func parsePriority(term, value string) (predicate, error) {
	op := "="
	for _, candidate := range []string{"<=", ">=", "<", ">", "="} {
		if strings.HasPrefix(value, candidate) {
			op = candidate
			value = value[len(candidate):]
			break
		}
	}
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(value), "P"))
	if err != nil {
		return nil, errors.Wrapf(ErrBadExpression, "%q: priority must be a number", term)
	}
	switch op {
	case "<":
		return func(it *loader.Item) bool { return it.Priority < n }, nil
	case "<=":
		return func(it *loader.Item) bool { return it.Priority <= n }, nil
	case ">":
		return func(it *loader.Item) bool { return it.Priority > n }, nil
	case ">=":
		return func(it *loader.Item) bool { return it.Priority >= n }, nil
	default:
		return func(it *loader.Item) bool { return it.Priority == n }, nil
	}
}
