package mongo

import (
	"testing"

	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "default", mutate: func(c *Config) {}},
		{name: "missing uri", mutate: func(c *Config) { c.URI = "" }, wantErr: true},
		{name: "missing database", mutate: func(c *Config) { c.Database = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.ConnectTimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database = ""

	_, err := New(cfg, logger.NewNop())
	assert.ErrorContains(t, err, "database is required")
}
