package mask_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/order-inventory-platform/mask"
)

func toPlainMap(t *testing.T, v any) map[string]any {
	t.Helper()

	om := mask.StructToOrdMap(v)
	require.NotNil(t, om)

	out := make(map[string]any)
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

func TestStructToOrdMap(t *testing.T) {
	type credentials struct {
		Username string `json:"username"`
		Password string `json:"password" mask:"true"`
	}

	type request struct {
		Email  string      `json:"email"`
		Creds  credentials `json:"creds"`
		APIKey string      `json:"api_key"   mask:"true"`
		Debug  bool        `json:"-"`
		Token  *string     `json:"token"     mask:"true"`
	}

	t.Run("masks tagged fields and flattens nested structs", func(t *testing.T) {
		got := toPlainMap(t, request{
			Email:  "a@x.com",
			Creds:  credentials{Username: "alice", Password: "hunter2"},
			APIKey: "key-123",
		})

		assert.Equal(t, "a@x.com", got["email"])
		assert.Equal(t, "alice", got["creds.username"])
		assert.Equal(t, "[redacted]", got["creds.password"])
		assert.Equal(t, "[redacted]", got["api_key"])
	})

	t.Run("skipped and empty fields", func(t *testing.T) {
		got := toPlainMap(t, request{})

		_, hasDebug := got["Debug"]
		assert.False(t, hasDebug)

		// empty secrets stay visible as empty, nil pointers as nil
		assert.Equal(t, "", got["api_key"])
		assert.Nil(t, got["token"])
	})

	t.Run("pointer input", func(t *testing.T) {
		got := toPlainMap(t, &request{APIKey: "key"})
		assert.Equal(t, "[redacted]", got["api_key"])
	})

	t.Run("field name fallbacks", func(t *testing.T) {
		type cfg struct {
			Host   string `yaml:"host"`
			Plain  string
			Secret string `yaml:"secret" mask:"true"`
		}

		got := toPlainMap(t, cfg{Host: "db", Plain: "x", Secret: "s"})
		assert.Equal(t, "db", got["host"])
		assert.Equal(t, "x", got["Plain"])
		assert.Equal(t, "[redacted]", got["secret"])
	})

	t.Run("nil input", func(t *testing.T) {
		assert.Nil(t, mask.StructToOrdMap(nil))
	})
}
