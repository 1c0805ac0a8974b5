package repo

// relatedFilter restricts a query through a named relationship by joining
// on it and applying equality predicates on the related entity's columns.
type relatedFilter struct {
	relation string
	preds    []Predicate
}

type listOptions struct {
	offset         int
	limit          int
	relations      []string
	relatedFilters []relatedFilter
	distinct       bool
}

// ListOption configures a FindAllBy query.
type ListOption func(*listOptions)

// WithOffset skips the first n matching rows.
func WithOffset(n int) ListOption {
	return func(o *listOptions) {
		o.offset = n
	}
}

// WithLimit caps the number of returned rows. Zero means no limit.
func WithLimit(n int) ListOption {
	return func(o *listOptions) {
		o.limit = n
	}
}

// WithRelations eagerly loads the named relationships in the same query,
// avoiding follow-up queries per row. Names refer to the relation fields
// declared on the entity struct.
func WithRelations(names ...string) ListOption {
	return func(o *listOptions) {
		o.relations = append(o.relations, names...)
	}
}

// WithRelatedFilter joins the named relationship and applies equality
// predicates on the related entity's columns. Only equality comparisons
// are supported on related columns.
func WithRelatedFilter(relation string, preds ...Predicate) ListOption {
	return func(o *listOptions) {
		o.relatedFilters = append(o.relatedFilters, relatedFilter{relation: relation, preds: preds})
	}
}

// WithDistinct deduplicates result rows. Required when eagerly loading
// or joining one-to-many relationships, where the join fan-out would
// otherwise repeat parent rows.
func WithDistinct() ListOption {
	return func(o *listOptions) {
		o.distinct = true
	}
}

type updateOptions struct {
	skipLocked bool
}

// UpdateOption configures an UpdateOne operation.
type UpdateOption func(*updateOptions)

// WithSkipLocked excludes rows already locked by a concurrent transaction
// from the match instead of blocking on them. Only effective on PostgreSQL.
func WithSkipLocked() UpdateOption {
	return func(o *updateOptions) {
		o.skipLocked = true
	}
}
