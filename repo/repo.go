// Package repo provides a generic repository over the bun ORM.
//
// A Repository is bound to one entity type and one database handle for its
// lifetime. The handle (a *bun.DB, bun.Conn or bun.Tx) is the unit of
// transactional scope: the repository owns no persistent state itself and
// delegates query execution, transaction management and locking to bun.
// Filters and partial updates are expressed with typed builders whose column
// names are validated against the entity's declared columns.
package repo

import (
	"fmt"
	"reflect"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/schema"
)

// Error codes surfaced by repository operations. Callers can match them
// with errx.IsCodeIn.
const (
	CodeMultipleRowsFound      = "MULTIPLE_ROWS_FOUND"
	CodeIncorrectRowsAffection = "INCORRECT_ROWS_AFFECTION"
	CodeInvalidFilter          = "INVALID_FILTER"
	CodeInvalidChanges         = "INVALID_CHANGES"
)

// Repository provides filter-based queries, CRUD and upsert operations for
// entities of type E. Construct one with New and rebind it to a transaction
// with WithDB when several operations must share one transactional scope.
type Repository[E any] struct {
	idb        bun.IDB
	entityName string
	schemaName string

	// conflictCodes maps database constraint names to application error
	// codes. E.g. map["users_email_key"] = "EMAIL_ALREADY_EXISTS".
	conflictCodes map[string]string
}

// Option configures a Repository during construction.
type Option func(*options)

type options struct {
	schemaName    string
	conflictCodes map[string]string
}

// WithSchema sets the database schema the entity table lives in.
// It only takes effect on PostgreSQL.
func WithSchema(name string) Option {
	return func(o *options) {
		o.schemaName = name
	}
}

// WithConflictCodes maps database constraint names to application error
// codes, so that unique constraint violations surface as conflict errors
// with a stable code instead of raw driver errors.
func WithConflictCodes(codes map[string]string) Option {
	return func(o *options) {
		o.conflictCodes = codes
	}
}

// New creates a repository for entities of type E bound to the given
// database handle.
func New[E any](idb bun.IDB, opts ...Option) *Repository[E] {
	o := options{
		schemaName: "public",
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Repository[E]{
		idb:           idb,
		entityName:    nameOf(new(E)),
		schemaName:    o.schemaName,
		conflictCodes: o.conflictCodes,
	}
}

// WithDB returns a copy of the repository bound to the given database
// handle, typically a transaction started by the caller. The caller owns
// the transaction lifecycle: operations on the returned repository neither
// commit nor roll it back.
func (r *Repository[E]) WithDB(idb bun.IDB) *Repository[E] {
	clone := *r
	clone.idb = idb
	return &clone
}

// table returns the bun schema definition of the bound entity type.
func (r *Repository[E]) table() *schema.Table {
	return r.idb.Dialect().Tables().Get(reflect.TypeOf((*E)(nil)).Elem())
}

// pkColumn returns the column name of the surrogate identifier.
func (r *Repository[E]) pkColumn() string {
	table := r.table()
	if len(table.PKs) > 0 {
		return table.PKs[0].Name
	}
	return "id"
}

func (r *Repository[E]) isPG() bool {
	return r.idb.Dialect().Name() == dialect.PG
}

// Schema qualification is applied on PostgreSQL only. Other dialects
// (in particular SQLite used in tests) have no schema support.

func (r *Repository[E]) applySelectTableExpr(q *bun.SelectQuery) *bun.SelectQuery {
	if !r.isPG() {
		return q
	}
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	return q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))
}

func (r *Repository[E]) applyInsertTableExpr(q *bun.InsertQuery) *bun.InsertQuery {
	if !r.isPG() {
		return q
	}
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	return q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))
}

func (r *Repository[E]) applyUpdateTableExpr(q *bun.UpdateQuery) *bun.UpdateQuery {
	if !r.isPG() {
		return q
	}
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	return q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))
}

func (r *Repository[E]) applyDeleteTableExpr(q *bun.DeleteQuery) *bun.DeleteQuery {
	if !r.isPG() {
		return q
	}
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	return q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))
}

// setEntityField assigns a value to the named column's struct field,
// converting the value when the types are convertible.
func setEntityField(table *schema.Table, strct reflect.Value, column string, value any) error {
	field, ok := table.FieldMap[column]
	if !ok {
		return errx.New(
			fmt.Sprintf("unknown column %q for table %s", column, table.Name),
			errx.WithType(errx.T_Validation),
			errx.WithCode(CodeInvalidChanges),
		)
	}

	fv := field.Value(strct)
	if value == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}

	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(fv.Type()) {
		if !rv.Type().ConvertibleTo(fv.Type()) {
			return errx.New(
				fmt.Sprintf("cannot assign value of type %T to column %q", value, column),
				errx.WithType(errx.T_Validation),
				errx.WithCode(CodeInvalidChanges),
			)
		}
		rv = rv.Convert(fv.Type())
	}
	fv.Set(rv)

	return nil
}

// nameOf returns the name of the type of the given value.
// If the value is a pointer, it returns the name of the pointed-to type.
func nameOf(v any) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		return t.Elem().Name()
	}
	return t.Name()
}
