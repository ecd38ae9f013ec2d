// Package kong wires entity managers for the gateway admin API.
package kong

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/olusolaa/gateway-sync/internal/adapters/platform/rest"
	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
)

const (
	SystemName       = "gateway"
	AdminTokenHeader = "Kong-Admin-Token"
)

type Config struct {
	AdminURL  string        `mapstructure:"admin_url" yaml:"admin_url" validate:"required,url"`
	Workspace string        `mapstructure:"workspace" yaml:"workspace"`
	Token     string        `mapstructure:"token" yaml:"token"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RPS       int           `mapstructure:"rps" yaml:"rps" validate:"omitempty,min=1,max=100"`
}

// BaseURL is the admin URL prefixed with the workspace, when set.
func (c Config) BaseURL() string {
	base := strings.TrimSuffix(c.AdminURL, "/")
	if c.Workspace != "" {
		base += "/" + strings.Trim(c.Workspace, "/")
	}
	return base
}

// NewManagers returns a manager for every entity type. httpClient may be
// nil.
func NewManagers(ctx context.Context, cfg Config, httpClient *http.Client, logger ports.Logger) (map[domain.EntityType]ports.EntityManager, error) {
	log := logger.WithFields(map[string]any{"system": SystemName})
	client, err := rest.NewClient(rest.ClientConfig{
		System:     SystemName,
		BaseURL:    cfg.BaseURL(),
		AuthHeader: AdminTokenHeader,
		Token:      cfg.Token,
		Timeout:    cfg.Timeout,
		UserAgent:  "gateway-sync",
	}, httpClient, rest.NewLimiter(ctx, cfg.RPS, log), logger)
	if err != nil {
		return nil, err
	}
	log.Debugf(ctx, "Gateway admin API at %s", cfg.BaseURL())
	return rest.NewManagerSet(client, rest.OffsetPagination{}, logger), nil
}
