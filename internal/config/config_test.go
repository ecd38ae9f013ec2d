package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/gateway-sync/internal/config"
	"github.com/olusolaa/gateway-sync/internal/core/domain"
)

const sampleYAML = `
settings:
  log_level: debug
  reporter: json
gateway:
  admin_url: http://kong:8001
  workspace: team-a
  timeout: 5s
control_plane:
  region: eu
  control_plane_id: cp-1
  token: kpat_x
audit:
  path: /var/lib/gwsync/audit.jsonl
sync:
  page_size: 250
entities:
  - type: services
    compare_fields: [host, port]
`

func load(t *testing.T, doc string) *config.Config {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	cfg := config.DefaultConfig()
	require.NoError(t, v.Unmarshal(cfg))
	return cfg
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, validator.New(validator.WithRequiredStructEnabled()).Struct(cfg))
	assert.Equal(t, ".gateway-sync/audit.jsonl", cfg.Audit.Path)
	assert.Equal(t, config.DefaultPageSize, cfg.Sync.PageSize)
	assert.False(t, cfg.ControlPlane.Configured())
}

func TestUnmarshal(t *testing.T) {
	cfg := load(t, sampleYAML)

	assert.Equal(t, "debug", string(cfg.Settings.LogLevel))
	assert.Equal(t, "text", string(cfg.Settings.LogFormat), "defaults survive a partial file")
	assert.Equal(t, "json", cfg.Settings.ReporterType)
	assert.Equal(t, "http://kong:8001/team-a", cfg.Gateway.BaseURL())
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.True(t, cfg.ControlPlane.Configured())
	assert.Equal(t, "https://eu.api.konghq.com/v2/control-planes/cp-1/core-entities", cfg.ControlPlane.EntitiesURL())
	assert.Equal(t, 250, cfg.Sync.PageSize)
	assert.Equal(t, []string{"host", "port"}, cfg.CompareFieldsFor(domain.EntityTypeService))
	assert.Nil(t, cfg.CompareFieldsFor(domain.EntityTypeRoute))
	require.NoError(t, validator.New(validator.WithRequiredStructEnabled()).Struct(cfg))
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"Bad Admin URL", func(c *config.Config) { c.Gateway.AdminURL = "not a url" }, "AdminURL"},
		{"Bad Region", func(c *config.Config) { c.ControlPlane.Region = "mars" }, "Region"},
		{"Empty Audit Path", func(c *config.Config) { c.Audit.Path = "" }, "Path"},
		{"Page Size", func(c *config.Config) { c.Sync.PageSize = 0 }, "PageSize"},
		{"Unknown Entity Type", func(c *config.Config) {
			c.Entities = []config.EntityConfig{{Type: "widgets"}}
		}, "Type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}

func TestSetCompareFields(t *testing.T) {
	cfg := load(t, sampleYAML)

	cfg.SetCompareFields(domain.EntityTypeService, []string{"path"})
	cfg.SetCompareFields(domain.EntityTypeRoute, []string{"paths", "hosts"})

	assert.Equal(t, map[domain.EntityType][]string{
		domain.EntityTypeService: {"path"},
		domain.EntityTypeRoute:   {"paths", "hosts"},
	}, cfg.CompareFields())
}
