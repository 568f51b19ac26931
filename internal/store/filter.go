package store

import (
	"fmt"
	"strings"

	"github.com/roach88/transition/internal/model"
)

// predicate is a WHERE clause fragment over the link view.
// Sealed: only the types below implement it.
type predicate interface {
	isPredicate()
}

// equals matches column = value.
type equals struct {
	Column string
	Value  any
}

// and is the conjunction of its predicates. Empty is always true.
type and struct {
	Predicates []predicate
}

func (equals) isPredicate() {}
func (and) isPredicate()    {}

// Columns of the link view that a filter may reference.
const (
	colAppType = "t.name"
	colAppName = "a.name"
	colHost    = "c.short_name"
	colEnabled = "l.enabled"
)

const linkSelect = `SELECT t.name, a.name, c.short_name, l.enabled
	FROM app_works_with_com_app l
	JOIN app a ON a.id = l.id_app
	JOIN app_type t ON t.id = a.id_app_type
	JOIN com_app c ON c.id = l.id_com_app`

// linkOrder keeps results deterministic.
const linkOrder = ` ORDER BY t.name COLLATE BINARY ASC, a.name COLLATE BINARY ASC, c.short_name COLLATE BINARY ASC`

// filterPredicate converts a ListFilter into a predicate tree.
// Nil fields contribute nothing.
func filterPredicate(f model.ListFilter) predicate {
	var preds []predicate
	if f.AppType != nil {
		preds = append(preds, equals{colAppType, *f.AppType})
	}
	if f.AppName != nil {
		preds = append(preds, equals{colAppName, model.AppName(*f.AppName)})
	}
	if f.Host != nil {
		preds = append(preds, equals{colHost, model.HostName(*f.Host)})
	}
	if f.Enabled != nil {
		preds = append(preds, equals{colEnabled, *f.Enabled})
	}
	return and{Predicates: preds}
}

// compileLinkQuery builds the parameterized link query for f.
// Values are never interpolated.
func compileLinkQuery(f model.ListFilter) (string, []any, error) {
	where, params, err := compilePredicate(filterPredicate(f))
	if err != nil {
		return "", nil, err
	}
	query := linkSelect
	if where != "" {
		query += " WHERE " + where
	}
	return query + linkOrder, params, nil
}

// compilePredicate returns the SQL fragment and its parameters.
// An empty fragment means no restriction.
func compilePredicate(p predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "", nil, nil
	case equals:
		return compileEquals(pred)
	case and:
		return compileAnd(pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq equals) (string, []any, error) {
	switch eq.Column {
	case colAppType, colAppName, colHost, colEnabled:
	default:
		return "", nil, fmt.Errorf("unknown column %q", eq.Column)
	}
	return eq.Column + " = ?", []any{eq.Value}, nil
}

func compileAnd(a and) (string, []any, error) {
	var parts []string
	var params []any
	for _, pred := range a.Predicates {
		sql, ps, err := compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	return strings.Join(parts, " AND "), params, nil
}
