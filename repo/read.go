package repo

import (
	"context"
	"fmt"
	"math"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/order-inventory-platform/pg"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// FindOneBy returns the unique entity matching the filter, or nil when
// nothing matches. The filter is assumed to identify at most one row;
// uniqueness is not enforced here, and when more than one row matches
// the call fails with the MULTIPLE_ROWS_FOUND code.
func (r *Repository[E]) FindOneBy(ctx context.Context, filter Filter) (*E, error) {
	if err := filter.validate(r.table()); err != nil {
		return nil, err
	}

	entities := make([]E, 0)
	q := r.idb.NewSelect().Model(&entities).Limit(2) //nolint:mnd // limit 2 to detect multiple rows
	q = r.applySelectTableExpr(q)
	q = filter.applyToSelect(q)

	err := q.Scan(ctx)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	if len(entities) == 0 {
		return nil, nil //nolint:nilnil // absence is not an error for single-entity lookups
	}

	if len(entities) > 1 {
		return nil, errx.New(
			fmt.Sprintf("multiple %s matched a unique lookup", r.entityName),
			errx.WithCode(CodeMultipleRowsFound),
			errx.WithDetails(pg.GetPgErrorDetails(err, q)),
		)
	}

	return &entities[0], nil
}

// FindFirst returns the first entity matching the filter, or nil when
// nothing matches. Row order is storage-default: no explicit ordering is
// applied, so the result is not deterministic across calls unless the
// filter itself is unique.
func (r *Repository[E]) FindFirst(ctx context.Context, filter Filter) (*E, error) {
	if err := filter.validate(r.table()); err != nil {
		return nil, err
	}

	entities := make([]E, 0)
	q := r.idb.NewSelect().Model(&entities).Limit(1)
	q = r.applySelectTableExpr(q)
	q = filter.applyToSelect(q)

	err := q.Scan(ctx)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	if len(entities) == 0 {
		return nil, nil //nolint:nilnil // absence is not an error for single-entity lookups
	}

	return &entities[0], nil
}

// FindAllBy returns all entities matching the filter, ordered ascending
// by the surrogate identifier. Pagination, eager-loading, related-entity
// filtering and deduplication are applied through options.
func (r *Repository[E]) FindAllBy(ctx context.Context, filter Filter, opts ...ListOption) ([]E, error) {
	table := r.table()
	if err := filter.validate(table); err != nil {
		return nil, err
	}

	o := listOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	entities := make([]E, 0)
	q := r.idb.NewSelect().Model(&entities)
	q = r.applySelectTableExpr(q)
	q = filter.applyToSelect(q)

	for _, name := range o.relations {
		if _, ok := table.Relations[name]; !ok {
			return nil, errx.New(
				fmt.Sprintf("unknown relation %q on %s", name, r.entityName),
				errx.WithType(errx.T_Validation),
				errx.WithCode(CodeInvalidFilter),
			)
		}
		q = q.Relation(name)
	}

	for _, rf := range o.relatedFilters {
		var err error
		q, err = r.applyRelatedFilter(q, table, rf)
		if err != nil {
			return nil, err
		}
	}

	if o.distinct {
		q = q.Distinct()
	}

	q = q.OrderExpr("?TableAlias.? ASC", bun.Ident(r.pkColumn()))

	if o.offset > 0 {
		if o.limit <= 0 && !r.isPG() {
			// SQLite rejects OFFSET without LIMIT.
			q = q.Limit(math.MaxInt32)
		}
		q = q.Offset(o.offset)
	}
	if o.limit > 0 {
		q = q.Limit(o.limit)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	return entities, nil
}

// Count returns the number of entities matching the filter.
func (r *Repository[E]) Count(ctx context.Context, filter Filter) (int, error) {
	if err := filter.validate(r.table()); err != nil {
		return 0, err
	}

	q := r.idb.NewSelect().Model((*E)(nil))
	q = r.applySelectTableExpr(q)
	q = filter.applyToSelect(q)

	count, err := q.Count(ctx)
	if err != nil {
		return 0, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	return count, nil
}

// Exists checks if any entity matches the filter.
func (r *Repository[E]) Exists(ctx context.Context, filter Filter) (bool, error) {
	if err := filter.validate(r.table()); err != nil {
		return false, err
	}

	q := r.idb.NewSelect().Model((*E)(nil))
	q = r.applySelectTableExpr(q)
	q = filter.applyToSelect(q)

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	return exists, nil
}

// applyRelatedFilter joins the relationship named by rf and applies its
// equality predicates on the joined table's columns.
func (r *Repository[E]) applyRelatedFilter(
	q *bun.SelectQuery,
	table *schema.Table,
	rf relatedFilter,
) (*bun.SelectQuery, error) {
	rel, ok := table.Relations[rf.relation]
	if !ok {
		return nil, errx.New(
			fmt.Sprintf("unknown relation %q on %s", rf.relation, r.entityName),
			errx.WithType(errx.T_Validation),
			errx.WithCode(CodeInvalidFilter),
		)
	}

	join := rel.JoinTable
	for _, p := range rf.preds {
		if p.Op != OpEq {
			return nil, errx.New(
				fmt.Sprintf("related filter on %q supports equality only", rf.relation),
				errx.WithType(errx.T_Validation),
				errx.WithCode(CodeInvalidFilter),
			)
		}
		if _, ok := join.FieldMap[p.Column]; !ok {
			return nil, errx.New(
				fmt.Sprintf("unknown column %q on relation %q", p.Column, rf.relation),
				errx.WithType(errx.T_Validation),
				errx.WithCode(CodeInvalidFilter),
			)
		}
	}

	if r.isPG() {
		q = q.Join("JOIN ?.? AS ?", bun.Ident(r.schemaName), bun.Ident(join.Name), join.SQLAlias)
	} else {
		q = q.Join("JOIN ? AS ?", join.SQLName, join.SQLAlias)
	}

	for i := range rel.BasePKs {
		q = q.JoinOn(
			"?TableAlias.? = ?.?",
			bun.Ident(rel.BasePKs[i].Name),
			join.SQLAlias,
			bun.Ident(rel.JoinPKs[i].Name),
		)
	}

	for _, p := range rf.preds {
		q = q.Where("?.? = ?", join.SQLAlias, bun.Ident(p.Column), p.Value)
	}

	return q, nil
}
