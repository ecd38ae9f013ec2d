package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/olusolaa/gateway-sync/internal/adapters/audit/jsonl"
	"github.com/olusolaa/gateway-sync/internal/adapters/platform/kong"
	"github.com/olusolaa/gateway-sync/internal/adapters/platform/konnect"
	"github.com/olusolaa/gateway-sync/internal/config"
	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/core/service"
	"github.com/olusolaa/gateway-sync/internal/errors"
	"github.com/olusolaa/gateway-sync/internal/log"
	"github.com/olusolaa/gateway-sync/internal/reporting/json"
	"github.com/olusolaa/gateway-sync/internal/reporting/text"
)

// CompareFieldsKey is the viper key of the --compare-fields override.
const CompareFieldsKey = "compare_fields"

func loadConfig(ctx context.Context, v *viper.Viper) (*config.Config, ports.Logger, error) {
	cfg := config.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeConfigParseError, "failed to unmarshal configuration")
	}

	logger, err := log.NewLogger(log.Config{Level: cfg.Settings.LogLevel, Format: cfg.Settings.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "logger initialization failed")
	}
	logger.Debugf(ctx, "Logger initialized (Level: %s, Format: %s)", cfg.Settings.LogLevel, cfg.Settings.LogFormat)
	if v.ConfigFileUsed() != "" {
		logger.Debugf(ctx, "Using configuration file: %s", v.ConfigFileUsed())
	} else {
		logger.Debugf(ctx, "No configuration file found, using defaults/env/flags.")
	}

	if override := v.GetString(CompareFieldsKey); override != "" {
		logger.Debugf(ctx, "Applying compare field overrides from command line: %s", override)
		for entityType, fields := range parseCompareFieldsOverride(ctx, override, logger) {
			logger.Debugf(ctx, "Overriding compare fields for '%s' with: %v", entityType, fields)
			cfg.SetCompareFields(entityType, fields)
		}
	}

	if err := validateConfig(ctx, cfg); err != nil {
		logger.Errorf(ctx, err, "Configuration validation failed")
		return nil, nil, err
	}
	logger.Debugf(ctx, "Configuration validated successfully")
	return cfg, logger, nil
}

func validateConfig(ctx context.Context, cfg *config.Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.StructCtx(ctx, cfg)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, errors.CodeConfigValidation, "configuration validation failed")
	}
	var details strings.Builder
	details.WriteString("Configuration validation failed:")
	for _, fe := range validationErrors {
		details.WriteString(fmt.Sprintf("\n - Field '%s': Failed on '%s' validation (value: '%v')", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.NewUserFacing(errors.CodeConfigValidation, details.String(), "Please check your configuration file or flags.")
}

// buildRegistry registers the gateway managers and, when configured, the
// control plane managers.
func buildRegistry(ctx context.Context, cfg *config.Config, logger ports.Logger) (*service.ManagerRegistry, error) {
	registry := service.NewManagerRegistry()

	gatewayLog := logger.WithFields(map[string]any{"provider": kong.SystemName})
	gateway, err := kong.NewManagers(ctx, cfg.Gateway, nil, gatewayLog)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigValidation, "failed to initialize gateway managers")
	}
	if err := registerAll(registry, domain.SystemGateway, gateway); err != nil {
		return nil, err
	}
	gatewayLog.Infof(ctx, "Using gateway admin API: %s", cfg.Gateway.BaseURL())

	cpLog := logger.WithFields(map[string]any{"provider": konnect.SystemName})
	controlPlane, err := konnect.NewManagers(ctx, cfg.ControlPlane, nil, cpLog)
	switch {
	case errors.Is(err, errors.CodeNotConfigured):
		cpLog.Warnf(ctx, "Control plane not configured; sync commands are unavailable")
	case err != nil:
		return nil, errors.Wrap(err, errors.CodeConfigValidation, "failed to initialize control plane managers")
	default:
		if err := registerAll(registry, domain.SystemControlPlane, controlPlane); err != nil {
			return nil, err
		}
		cpLog.Infof(ctx, "Using control plane: %s", cfg.ControlPlane.ControlPlaneID)
	}
	return registry, nil
}

func registerAll(registry *service.ManagerRegistry, system domain.System, managers map[domain.EntityType]ports.EntityManager) error {
	for _, t := range domain.AllEntityTypes() {
		m, ok := managers[t]
		if !ok {
			continue
		}
		if err := registry.Register(system, t, m); err != nil {
			return err
		}
	}
	return nil
}

func buildReporter(ctx context.Context, cfg *config.Config, logger ports.Logger) (ports.Reporter, error) {
	reportLog := logger.WithFields(map[string]any{"component": "reporter", "type": cfg.Settings.ReporterType})
	switch cfg.Settings.ReporterType {
	case text.ReporterTypeText:
		if cfg.Settings.Reporter.Text == nil {
			cfg.Settings.Reporter.Text = config.DefaultConfig().Settings.Reporter.Text
		}
		reporter, err := text.NewReporter(*cfg.Settings.Reporter.Text, reportLog)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize Text reporter")
		}
		reportLog.Debugf(ctx, "Using Text reporter (Color: %t)", !cfg.Settings.Reporter.Text.NoColor)
		return reporter, nil
	case json.ReporterTypeJSON:
		if cfg.Settings.Reporter.JSON == nil {
			cfg.Settings.Reporter.JSON = config.DefaultConfig().Settings.Reporter.JSON
		}
		reporter, err := json.NewReporter(*cfg.Settings.Reporter.JSON, reportLog)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize JSON reporter")
		}
		return reporter, nil
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("unsupported reporter type: %s", cfg.Settings.ReporterType), "Supported: text, json")
	}
}

func BuildApplicationFromViper(ctx context.Context, v *viper.Viper) (*Application, error) {
	cfg, logger, err := loadConfig(ctx, v)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := jsonl.New(cfg.Audit.Path, logger.WithFields(map[string]any{"component": "audit_store"}))
	if err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "Audit log at %s", store.Path())

	reporter, err := buildReporter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	application, err := NewApplication(cfg, logger, registry, store, reporter, text.NewPrompter())
	if err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "Application bootstrap complete")
	return application, nil
}
