package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/order-inventory-platform/pagination"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		req      pagination.Request
		opts     []pagination.Option
		wantPage int
		wantSize int
	}{
		{
			name:     "defaults applied",
			req:      pagination.Request{},
			wantPage: 1,
			wantSize: 20,
		},
		{
			name:     "negative values replaced",
			req:      pagination.Request{PageNumber: -1, PageSize: -5},
			wantPage: 1,
			wantSize: 20,
		},
		{
			name:     "size capped at max",
			req:      pagination.Request{PageNumber: 2, PageSize: 500},
			wantPage: 2,
			wantSize: 100,
		},
		{
			name:     "custom max page size",
			req:      pagination.Request{PageSize: 50},
			opts:     []pagination.Option{pagination.WithMaxPageSize(25)},
			wantPage: 1,
			wantSize: 25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(tt.opts...)
			assert.Equal(t, tt.wantPage, tt.req.PageNumber)
			assert.Equal(t, tt.wantSize, tt.req.PageSize)
		})
	}
}

func TestOffsetLimit(t *testing.T) {
	req := pagination.Request{PageNumber: 3, PageSize: 10}
	assert.Equal(t, 20, req.Offset())
	assert.Equal(t, 10, req.Limit())
}

func TestNewResponse(t *testing.T) {
	req := pagination.Request{PageNumber: 2, PageSize: 10}
	resp := pagination.NewResponse([]string{"a", "b"}, 25, req)

	assert.Equal(t, 2, resp.PageNumber)
	assert.Equal(t, 10, resp.PageSize)
	assert.Equal(t, 3, resp.PageCount)
	assert.Equal(t, int64(25), resp.TotalCount)
	assert.Equal(t, []string{"a", "b"}, resp.PageContent)
}
