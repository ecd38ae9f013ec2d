// Package konnect wires entity managers for the control plane API.
package konnect

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/olusolaa/gateway-sync/internal/adapters/platform/rest"
	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

const (
	SystemName    = "control_plane"
	DefaultRegion = "us"
)

type Config struct {
	// BaseURL overrides the regional API host.
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	Region         string        `mapstructure:"region" yaml:"region" validate:"omitempty,oneof=us eu au me in"`
	ControlPlaneID string        `mapstructure:"control_plane_id" yaml:"control_plane_id"`
	Token          string        `mapstructure:"token" yaml:"token"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RPS            int           `mapstructure:"rps" yaml:"rps" validate:"omitempty,min=1,max=100"`
}

// Configured reports whether enough is set to reach a control plane.
func (c Config) Configured() bool {
	return c.ControlPlaneID != "" && c.Token != ""
}

// EntitiesURL is the core entities root of the configured control plane.
func (c Config) EntitiesURL() string {
	host := strings.TrimSuffix(c.BaseURL, "/")
	if host == "" {
		region := c.Region
		if region == "" {
			region = DefaultRegion
		}
		host = fmt.Sprintf("https://%s.api.konghq.com", region)
	}
	return fmt.Sprintf("%s/v2/control-planes/%s/core-entities", host, c.ControlPlaneID)
}

// NewManagers returns a manager for every entity type. It fails with
// NOT_CONFIGURED when the control plane id or token is missing.
func NewManagers(ctx context.Context, cfg Config, httpClient *http.Client, logger ports.Logger) (map[domain.EntityType]ports.EntityManager, error) {
	if !cfg.Configured() {
		return nil, errors.NewUserFacing(errors.CodeNotConfigured, "control plane is not configured",
			"Set control_plane.control_plane_id and control_plane.token.")
	}
	log := logger.WithFields(map[string]any{"system": SystemName})
	client, err := rest.NewClient(rest.ClientConfig{
		System:    SystemName,
		BaseURL:   cfg.EntitiesURL(),
		Token:     cfg.Token,
		Timeout:   cfg.Timeout,
		UserAgent: "gateway-sync",
	}, httpClient, rest.NewLimiter(ctx, cfg.RPS, log), logger)
	if err != nil {
		return nil, err
	}
	log.Debugf(ctx, "Control plane API at %s", cfg.EntitiesURL())
	return rest.NewManagerSet(client, rest.CursorPagination{}, logger), nil
}
