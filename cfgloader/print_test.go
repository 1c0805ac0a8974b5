package cfgloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type dbConfig struct {
	Host     string `yaml:"host"`
	Password string `yaml:"password" mask:"true"`
}

type appConfig struct {
	Name   string    `yaml:"name"`
	Secret string    `yaml:"secret" mask:"true"`
	DB     dbConfig  `yaml:"db"`
	DBPtr  *dbConfig `yaml:"db_ptr"`
}

func TestMaskStruct(t *testing.T) {
	cfg := appConfig{
		Name:   "orders",
		Secret: "supersecret",
		DB: dbConfig{
			Host:     "localhost",
			Password: "pass123",
		},
		DBPtr: &dbConfig{
			Host:     "replica",
			Password: "pass456",
		},
	}

	masked, ok := maskStruct(&cfg).(appConfig)
	assert.True(t, ok)

	assert.Equal(t, "orders", masked.Name)
	assert.Equal(t, "***********", masked.Secret)
	assert.Equal(t, "localhost", masked.DB.Host)
	assert.Equal(t, "*******", masked.DB.Password)
	assert.Equal(t, "replica", masked.DBPtr.Host)
	assert.Equal(t, "*******", masked.DBPtr.Password)

	// original struct is untouched
	assert.Equal(t, "supersecret", cfg.Secret)
	assert.Equal(t, "pass456", cfg.DBPtr.Password)
}
