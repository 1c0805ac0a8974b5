package repo

import (
	"fmt"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// assignKind distinguishes plain assignments from arithmetic ones.
type assignKind int

const (
	assignSet assignKind = iota
	assignAdd
)

// assignment is a single column-value pair applied by an update.
type assignment struct {
	column string
	value  any
	kind   assignKind
}

// Changes is an ordered set of column assignments for partial updates.
// Only the columns explicitly set are written; everything else on the
// row is left untouched. Column names are validated against the entity's
// declared columns when the changes are applied.
type Changes struct {
	assignments []assignment
}

// Set builds a change set from a single column assignment.
func Set(column string, value any) Changes {
	return Changes{assignments: []assignment{{column: column, value: value}}}
}

// Set adds a column assignment to the change set and returns it for chaining.
// Setting the same column twice keeps the last value.
func (c Changes) Set(column string, value any) Changes {
	for i, a := range c.assignments {
		if a.column == column {
			c.assignments[i] = assignment{column: column, value: value}
			return c
		}
	}
	c.assignments = append(c.assignments, assignment{column: column, value: value})
	return c
}

// Add builds a change set that adds delta to the current column value.
// Use a negative delta to decrement. The arithmetic happens in the
// database, so concurrent updates never observe stale values.
func Add(column string, delta any) Changes {
	return Changes{assignments: []assignment{{column: column, value: delta, kind: assignAdd}}}
}

// Add appends an arithmetic assignment to the change set and returns it
// for chaining.
func (c Changes) Add(column string, delta any) Changes {
	c.assignments = append(c.assignments, assignment{column: column, value: delta, kind: assignAdd})
	return c
}

// IsZero reports whether the change set assigns nothing.
func (c Changes) IsZero() bool {
	return len(c.assignments) == 0
}

// hasArithmetic reports whether the change set carries an Add assignment.
func (c Changes) hasArithmetic() bool {
	for _, a := range c.assignments {
		if a.kind == assignAdd {
			return true
		}
	}
	return false
}

// contains reports whether the change set assigns the given column.
func (c Changes) contains(column string) bool {
	for _, a := range c.assignments {
		if a.column == column {
			return true
		}
	}
	return false
}

// validate checks every assigned column against the table definition.
// Assigning the primary key is rejected: the surrogate identifier is
// immutable after creation.
func (c Changes) validate(table *schema.Table) error {
	for _, a := range c.assignments {
		field, ok := table.FieldMap[a.column]
		if !ok {
			return errx.New(
				fmt.Sprintf("unknown column %q in changes for table %s", a.column, table.Name),
				errx.WithType(errx.T_Validation),
				errx.WithCode(CodeInvalidChanges),
			)
		}
		if field.IsPK {
			return errx.New(
				fmt.Sprintf("column %q is a primary key and cannot be updated", a.column),
				errx.WithType(errx.T_Validation),
				errx.WithCode(CodeInvalidChanges),
			)
		}
	}
	return nil
}

// applyToUpdate appends the assignments to an update query.
func (c Changes) applyToUpdate(q *bun.UpdateQuery) *bun.UpdateQuery {
	for _, a := range c.assignments {
		switch a.kind {
		case assignAdd:
			q = q.Set("? = ? + ?", bun.Ident(a.column), bun.Ident(a.column), a.value)
		default:
			q = q.Set("? = ?", bun.Ident(a.column), a.value)
		}
	}
	return q
}
