package pg

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Model provides the surrogate primary key and timestamp fields shared
// by all persisted models. Embed it in concrete model structs next to
// bun.BaseModel.
type Model struct {
	// ID is the auto-incrementing primary key of the record.
	ID int64 `bun:"id,pk,autoincrement" json:"id"`
	// CreatedAt stores the timestamp when the record was created.
	CreatedAt time.Time `bun:",nullzero" json:"created_at"`
	// UpdatedAt stores the timestamp when the record was last updated.
	UpdatedAt time.Time `bun:",nullzero" json:"updated_at"`
}

// Verify that Model implements bun.BeforeAppendModelHook.
var _ bun.BeforeAppendModelHook = (*Model)(nil)

// BeforeAppendModel implements bun.BeforeAppendModelHook interface to automatically
// update timestamp fields before database operations.
func (m *Model) BeforeAppendModel(_ context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		m.CreatedAt = time.Now()
		m.UpdatedAt = time.Now()
	case *bun.UpdateQuery:
		m.UpdatedAt = time.Now()
	}
	return nil
}
