package repo

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/order-inventory-platform/pg"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

const updatedAtColumn = "updated_at"

// Create inserts a new entity and returns it refreshed from storage,
// including storage-assigned columns such as the identifier and timestamps.
func (r *Repository[E]) Create(ctx context.Context, entity *E) (*E, error) {
	q := r.idb.NewInsert().Model(entity).Returning("*")
	q = r.applyInsertTableExpr(q)

	_, err := q.Exec(ctx)
	if err != nil {
		if code, exists := r.conflictCodes[pg.ConstraintName(err)]; exists {
			return nil, errx.New(
				fmt.Sprintf("conflict while creating %s", r.entityName),
				errx.WithCode(code),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(pg.GetPgErrorDetails(err, q)),
			)
		}
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	return entity, nil
}

// Delete removes the entity identified by its primary key.
func (r *Repository[E]) Delete(ctx context.Context, entity *E) error {
	q := r.idb.NewDelete().Model(entity).WherePK()
	q = r.applyDeleteTableExpr(q)

	result, err := q.Exec(ctx)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	if rowsAffected == 0 {
		return errx.New(
			fmt.Sprintf("no %s found to delete", r.entityName),
			errx.WithCode(CodeIncorrectRowsAffection),
			errx.WithDetails(pg.GetPgErrorDetails(err, q)),
		)
	}

	return nil
}

// UpdateMany applies the changes to every entity matching the filter and
// returns the number of affected rows. An empty filter is a no-op that
// returns 0: updating the entire collection unconditionally is refused.
func (r *Repository[E]) UpdateMany(ctx context.Context, filter Filter, changes Changes) (int64, error) {
	if filter.IsZero() {
		return 0, nil
	}

	table := r.table()
	if err := filter.validate(table); err != nil {
		return 0, err
	}
	if err := r.validateChanges(table, changes); err != nil {
		return 0, err
	}

	q := r.idb.NewUpdate().Model((*E)(nil))
	q = r.applyUpdateTableExpr(q)
	q = changes.applyToUpdate(q)
	q = r.touchUpdatedAt(q, changes)
	q = filter.applyToUpdate(q)

	result, err := q.Exec(ctx)
	if err != nil {
		if code, exists := r.conflictCodes[pg.ConstraintName(err)]; exists {
			return 0, errx.New(
				fmt.Sprintf("conflict while updating %s", r.entityName),
				errx.WithCode(code),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(pg.GetPgErrorDetails(err, q)),
			)
		}
		return 0, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	return rowsAffected, nil
}

// UpdateOne selects a single entity matching the filter under a row-level
// write lock, applies the changes and returns the updated entity refreshed
// from storage. Returns nil when nothing matches. With WithSkipLocked,
// rows locked by concurrent transactions are skipped instead of blocked on.
// Locking is effective on PostgreSQL only.
func (r *Repository[E]) UpdateOne(
	ctx context.Context,
	filter Filter,
	changes Changes,
	opts ...UpdateOption,
) (*E, error) {
	table := r.table()
	if err := filter.validate(table); err != nil {
		return nil, err
	}
	if err := r.validateChanges(table, changes); err != nil {
		return nil, err
	}

	o := updateOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	var updated *E
	err := r.idb.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		entities := make([]E, 0, 1)
		sq := tx.NewSelect().Model(&entities).Limit(1)
		sq = r.applySelectTableExpr(sq)
		sq = filter.applyToSelect(sq)
		if r.isPG() {
			if o.skipLocked {
				sq = sq.For("UPDATE SKIP LOCKED")
			} else {
				sq = sq.For("UPDATE")
			}
		}

		if err := sq.Scan(ctx); err != nil {
			return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, sq)))
		}
		if len(entities) == 0 {
			return nil
		}

		entity := &entities[0]
		uq := tx.NewUpdate().Model(entity).WherePK().Returning("*")
		uq = r.applyUpdateTableExpr(uq)
		uq = changes.applyToUpdate(uq)
		uq = r.touchUpdatedAt(uq, changes)

		if _, err := uq.Exec(ctx); err != nil {
			if code, exists := r.conflictCodes[pg.ConstraintName(err)]; exists {
				return errx.New(
					fmt.Sprintf("conflict while updating %s", r.entityName),
					errx.WithCode(code),
					errx.WithType(errx.T_Conflict),
					errx.WithDetails(pg.GetPgErrorDetails(err, uq)),
				)
			}
			return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, uq)))
		}

		updated = entity
		return nil
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return updated, nil
}

// GetOrCreate looks up an entity by the lookup filter. When found it is
// returned unchanged with created=false. When absent, a new entity is
// created from the lookup values merged with the defaults (defaults win
// on collision) and returned with created=true. Defaults must be Set
// assignments: Add has no base value on the creation path and is rejected.
//
// The lookup-then-create sequence is not atomic against concurrent callers
// with the same lookup: protection relies on a unique storage constraint,
// whose violation surfaces as a conflict error via the conflict code map.
func (r *Repository[E]) GetOrCreate(ctx context.Context, lookup Filter, defaults Changes) (*E, bool, error) {
	entity, found, err := r.lookupForUpsert(ctx, lookup, defaults)
	if err != nil {
		return nil, false, err
	}
	if found != nil {
		return found, false, nil
	}

	created, err := r.Create(ctx, entity)
	if err != nil {
		return nil, false, err
	}

	return created, true, nil
}

// UpdateOrCreate looks up an entity by the lookup filter. When found, the
// defaults are applied to it as a partial update and the refreshed entity
// is returned with created=false. When absent, a new entity is created
// from the lookup values merged with the defaults and returned with
// created=true. Same non-atomicity and Set-only defaults rules as
// GetOrCreate.
func (r *Repository[E]) UpdateOrCreate(ctx context.Context, lookup Filter, defaults Changes) (*E, bool, error) {
	entity, found, err := r.lookupForUpsert(ctx, lookup, defaults)
	if err != nil {
		return nil, false, err
	}

	if found != nil {
		if defaults.IsZero() {
			return found, false, nil
		}

		uq := r.idb.NewUpdate().Model(found).WherePK().Returning("*")
		uq = r.applyUpdateTableExpr(uq)
		uq = defaults.applyToUpdate(uq)
		uq = r.touchUpdatedAt(uq, defaults)

		if _, err := uq.Exec(ctx); err != nil {
			if code, exists := r.conflictCodes[pg.ConstraintName(err)]; exists {
				return nil, false, errx.New(
					fmt.Sprintf("conflict while updating %s", r.entityName),
					errx.WithCode(code),
					errx.WithType(errx.T_Conflict),
					errx.WithDetails(pg.GetPgErrorDetails(err, uq)),
				)
			}
			return nil, false, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, uq)))
		}

		return found, false, nil
	}

	created, err := r.Create(ctx, entity)
	if err != nil {
		return nil, false, err
	}

	return created, true, nil
}

// lookupForUpsert validates the upsert arguments, runs the unique lookup
// and prepares a candidate entity from lookup values merged with defaults
// for the creation path. Returns the found entity when the lookup matched.
func (r *Repository[E]) lookupForUpsert(ctx context.Context, lookup Filter, defaults Changes) (*E, *E, error) {
	table := r.table()

	if lookup.IsZero() {
		return nil, nil, errx.New(
			"upsert lookup must not be empty",
			errx.WithType(errx.T_Validation),
			errx.WithCode(CodeInvalidFilter),
		)
	}
	if !lookup.equalityOnly() {
		return nil, nil, errx.New(
			"upsert lookup supports equality predicates only",
			errx.WithType(errx.T_Validation),
			errx.WithCode(CodeInvalidFilter),
		)
	}
	if err := lookup.validate(table); err != nil {
		return nil, nil, err
	}
	if err := defaults.validate(table); err != nil {
		return nil, nil, err
	}
	if defaults.hasArithmetic() {
		return nil, nil, errx.New(
			"upsert defaults must be absolute assignments",
			errx.WithType(errx.T_Validation),
			errx.WithCode(CodeInvalidChanges),
		)
	}

	found, err := r.FindOneBy(ctx, lookup)
	if err != nil {
		return nil, nil, err
	}

	entity := new(E)
	strct := reflect.ValueOf(entity).Elem()
	for _, p := range lookup {
		if err := setEntityField(table, strct, p.Column, p.Value); err != nil {
			return nil, nil, err
		}
	}
	for _, a := range defaults.assignments {
		if err := setEntityField(table, strct, a.column, a.value); err != nil {
			return nil, nil, err
		}
	}

	return entity, found, nil
}

// validateChanges rejects empty change sets and validates columns.
func (r *Repository[E]) validateChanges(table *schema.Table, changes Changes) error {
	if changes.IsZero() {
		return errx.New(
			fmt.Sprintf("empty changes for %s update", r.entityName),
			errx.WithType(errx.T_Validation),
			errx.WithCode(CodeInvalidChanges),
		)
	}
	return changes.validate(table)
}

// touchUpdatedAt refreshes the update timestamp on bulk updates when the
// table tracks one and the caller did not set it explicitly.
func (r *Repository[E]) touchUpdatedAt(q *bun.UpdateQuery, changes Changes) *bun.UpdateQuery {
	if _, ok := r.table().FieldMap[updatedAtColumn]; !ok {
		return q
	}
	if changes.contains(updatedAtColumn) {
		return q
	}
	return q.Set("? = ?", bun.Ident(updatedAtColumn), time.Now())
}
