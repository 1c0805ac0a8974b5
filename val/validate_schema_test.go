package val_test

import (
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/order-inventory-platform/val"
)

type registerSchema struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name       string
		schema     registerSchema
		wantErr    bool
		wantFields []string
	}{
		{
			name:   "valid schema",
			schema: registerSchema{Email: "a@x.com", Username: "alice", Role: "user"},
		},
		{
			name:       "missing required fields",
			schema:     registerSchema{},
			wantErr:    true,
			wantFields: []string{"email", "username"},
		},
		{
			name:       "invalid email and role",
			schema:     registerSchema{Email: "not-an-email", Username: "alice", Role: "root"},
			wantErr:    true,
			wantFields: []string{"email", "role"},
		},
		{
			name:       "username too short",
			schema:     registerSchema{Email: "a@x.com", Username: "ab"},
			wantErr:    true,
			wantFields: []string{"username"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := val.ValidateSchema(tt.schema)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errx.IsCodeIn(err, val.CodeValidationFailed))

			errX := errx.AsErrorX(err)
			assert.Equal(t, errx.T_Validation, errX.Type())
			for _, field := range tt.wantFields {
				assert.Contains(t, errX.Fields(), field)
			}
		})
	}
}
