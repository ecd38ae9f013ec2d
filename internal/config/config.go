package config

import (
	"path/filepath"

	"github.com/olusolaa/gateway-sync/internal/adapters/platform/kong"
	"github.com/olusolaa/gateway-sync/internal/adapters/platform/konnect"
	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/log"
	"github.com/olusolaa/gateway-sync/internal/reporting/json"
	"github.com/olusolaa/gateway-sync/internal/reporting/text"
)

const (
	DefaultAuditDir  = ".gateway-sync"
	DefaultAuditFile = "audit.jsonl"
	DefaultPageSize  = 100
)

type Config struct {
	Settings     SettingsConfig `mapstructure:"settings" yaml:"settings"`
	Gateway      kong.Config    `mapstructure:"gateway" yaml:"gateway"`
	ControlPlane konnect.Config `mapstructure:"control_plane" yaml:"control_plane"`
	Audit        AuditConfig    `mapstructure:"audit" yaml:"audit"`
	Sync         SyncConfig     `mapstructure:"sync" yaml:"sync"`
	Entities     []EntityConfig `mapstructure:"entities" yaml:"entities" validate:"dive"`
}

type SettingsConfig struct {
	LogLevel     log.Level       `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat    log.Format      `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
	ReporterType string          `mapstructure:"reporter" yaml:"reporter" validate:"oneof=text json"`
	Reporter     ReporterConfigs `mapstructure:"reporter_config" yaml:"reporter_config"`
}

type ReporterConfigs struct {
	Text *text.Config `mapstructure:"text" yaml:"text,omitempty"`
	JSON *json.Config `mapstructure:"json" yaml:"json,omitempty"`
}

type AuditConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

type SyncConfig struct {
	// IgnoreFields replaces the default server-managed exclusions when set.
	IgnoreFields []string `mapstructure:"ignore_fields" yaml:"ignore_fields"`
	PageSize     int      `mapstructure:"page_size" yaml:"page_size" validate:"min=1,max=1000"`

	// SelectTags limits both systems to entities carrying all of these tags.
	SelectTags []string `mapstructure:"select_tags" yaml:"select_tags"`
}

type EntityConfig struct {
	Type          domain.EntityType `mapstructure:"type" yaml:"type" validate:"required,oneof=services routes consumers plugins upstreams certificates"`
	CompareFields []string          `mapstructure:"compare_fields" yaml:"compare_fields"`
}

// CompareFieldsFor returns the configured compare fields of t, or nil when
// the schema default applies.
func (c *Config) CompareFieldsFor(t domain.EntityType) []string {
	for _, ec := range c.Entities {
		if ec.Type == t {
			return ec.CompareFields
		}
	}
	return nil
}

// CompareFields maps every type with explicit compare fields.
func (c *Config) CompareFields() map[domain.EntityType][]string {
	out := make(map[domain.EntityType][]string)
	for _, ec := range c.Entities {
		if len(ec.CompareFields) > 0 {
			out[ec.Type] = ec.CompareFields
		}
	}
	return out
}

// SetCompareFields overrides the compare fields of t, adding an entry when
// none exists.
func (c *Config) SetCompareFields(t domain.EntityType, fields []string) {
	for i := range c.Entities {
		if c.Entities[i].Type == t {
			c.Entities[i].CompareFields = fields
			return
		}
	}
	c.Entities = append(c.Entities, EntityConfig{Type: t, CompareFields: fields})
}

func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogLevel:     log.LevelInfo,
			LogFormat:    log.FormatText,
			ReporterType: text.ReporterTypeText,
			Reporter: ReporterConfigs{
				Text: &text.Config{NoColor: false},
				JSON: &json.Config{Indent: true},
			},
		},
		Gateway: kong.Config{
			AdminURL: "http://localhost:8001",
		},
		ControlPlane: konnect.Config{
			Region: konnect.DefaultRegion,
		},
		Audit: AuditConfig{
			Path: filepath.Join(DefaultAuditDir, DefaultAuditFile),
		},
		Sync: SyncConfig{
			PageSize: DefaultPageSize,
		},
		Entities: []EntityConfig{},
	}
}
