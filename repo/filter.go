package repo

import (
	"fmt"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Op identifies a comparison operator in a filter predicate.
type Op int

const (
	// OpEq compares a column for equality.
	OpEq Op = iota
	// OpLte compares a column with less-or-equal.
	OpLte
	// OpGte compares a column with greater-or-equal.
	OpGte
	// OpIn checks column membership in a set of values.
	OpIn
)

func (op Op) String() string {
	switch op {
	case OpEq:
		return "="
	case OpLte:
		return "<="
	case OpGte:
		return ">="
	case OpIn:
		return "IN"
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Predicate is a single column comparison. Predicates are combined
// with logical AND; there is no OR, nesting or negation.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

// Eq builds an equality predicate on the given column.
func Eq(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: value}
}

// Lte builds a less-or-equal predicate on the given column.
func Lte(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpLte, Value: value}
}

// Gte builds a greater-or-equal predicate on the given column.
func Gte(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpGte, Value: value}
}

// In builds a set-membership predicate on the given column.
// The values slice must be a slice type, e.g. []string or []int64.
func In(column string, values any) Predicate {
	return Predicate{Column: column, Op: OpIn, Value: values}
}

// Filter is a conjunction of predicates against the bound entity's columns.
// A nil or empty filter places no constraint on the query, which is distinct
// from matching nothing. Column names are validated against the entity's
// declared columns when the filter is applied.
type Filter []Predicate

// Where builds a filter from the given predicates.
func Where(preds ...Predicate) Filter {
	return Filter(preds)
}

// IsZero reports whether the filter places no constraint.
func (f Filter) IsZero() bool {
	return len(f) == 0
}

// equalityOnly reports whether every predicate uses the equality operator.
func (f Filter) equalityOnly() bool {
	for _, p := range f {
		if p.Op != OpEq {
			return false
		}
	}
	return true
}

// validate checks every predicate column against the table definition.
func (f Filter) validate(table *schema.Table) error {
	for _, p := range f {
		if _, ok := table.FieldMap[p.Column]; !ok {
			return errx.New(
				fmt.Sprintf("unknown column %q in filter for table %s", p.Column, table.Name),
				errx.WithType(errx.T_Validation),
				errx.WithCode(CodeInvalidFilter),
			)
		}
	}
	return nil
}

// applyToSelect appends the filter predicates to a select query.
// Columns are qualified with the model table alias.
func (f Filter) applyToSelect(q *bun.SelectQuery) *bun.SelectQuery {
	for _, p := range f {
		switch p.Op {
		case OpIn:
			q = q.Where("?TableAlias.? IN (?)", bun.Ident(p.Column), bun.In(p.Value))
		case OpLte:
			q = q.Where("?TableAlias.? <= ?", bun.Ident(p.Column), p.Value)
		case OpGte:
			q = q.Where("?TableAlias.? >= ?", bun.Ident(p.Column), p.Value)
		default:
			q = q.Where("?TableAlias.? = ?", bun.Ident(p.Column), p.Value)
		}
	}
	return q
}

// applyToUpdate appends the filter predicates to an update query.
// Columns are left unqualified: single-table updates have no ambiguity
// and alias rendering in UPDATE differs across dialects.
func (f Filter) applyToUpdate(q *bun.UpdateQuery) *bun.UpdateQuery {
	for _, p := range f {
		switch p.Op {
		case OpIn:
			q = q.Where("? IN (?)", bun.Ident(p.Column), bun.In(p.Value))
		case OpLte:
			q = q.Where("? <= ?", bun.Ident(p.Column), p.Value)
		case OpGte:
			q = q.Where("? >= ?", bun.Ident(p.Column), p.Value)
		default:
			q = q.Where("? = ?", bun.Ident(p.Column), p.Value)
		}
	}
	return q
}
