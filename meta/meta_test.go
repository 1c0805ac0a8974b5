// Package meta_test contains tests for the meta package.
package meta_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/order-inventory-platform/meta"
)

func TestInjectAndExtract(t *testing.T) {
	tests := []struct {
		name     string
		data     map[meta.ContextKey]string
		expected map[meta.ContextKey]string
	}{
		{
			name:     "single value",
			data:     map[meta.ContextKey]string{meta.TraceID: "abc-123"},
			expected: map[meta.ContextKey]string{meta.TraceID: "abc-123"},
		},
		{
			name: "multiple values",
			data: map[meta.ContextKey]string{
				meta.TraceID:       "abc-123",
				meta.RequestUserID: "42",
				meta.IPAddress:     "10.0.0.1",
			},
			expected: map[meta.ContextKey]string{
				meta.TraceID:       "abc-123",
				meta.RequestUserID: "42",
				meta.IPAddress:     "10.0.0.1",
			},
		},
		{
			name: "empty values are skipped",
			data: map[meta.ContextKey]string{
				meta.TraceID:   "abc-123",
				meta.UserAgent: "",
			},
			expected: map[meta.ContextKey]string{meta.TraceID: "abc-123"},
		},
		{
			name:     "no values",
			data:     map[meta.ContextKey]string{},
			expected: map[meta.ContextKey]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := meta.InjectMetaToContext(t.Context(), tt.data)
			assert.Equal(t, tt.expected, meta.ExtractMetaFromContext(ctx))
		})
	}
}

func TestFind(t *testing.T) {
	ctx := meta.InjectMetaToContext(t.Context(), map[meta.ContextKey]string{
		meta.RequestUserID: "7",
	})

	assert.Equal(t, "7", meta.Find(ctx, meta.RequestUserID))
	assert.Empty(t, meta.Find(ctx, meta.UserAgent))
}
