package app

import (
	"context"
	"strings"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
)

// parseCompareFieldsOverride reads "services=host,port;routes=paths".
// Malformed pairs and unknown types are skipped with a warning.
func parseCompareFieldsOverride(ctx context.Context, override string, logger ports.Logger) map[domain.EntityType][]string {
	if override == "" {
		return nil
	}
	parsed := make(map[domain.EntityType][]string)
	for _, pair := range strings.Split(override, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			logger.Warnf(ctx, "Skipping invalid compare field override: %s", pair)
			continue
		}

		entityType, err := domain.ParseEntityType(parts[0])
		if err != nil {
			logger.Warnf(ctx, "Ignoring compare field override for unknown type '%s'", strings.TrimSpace(parts[0]))
			continue
		}
		fieldsRaw := strings.Split(parts[1], ",")
		fields := make([]string, 0, len(fieldsRaw))
		for _, f := range fieldsRaw {
			if trimmed := strings.TrimSpace(f); trimmed != "" {
				fields = append(fields, trimmed)
			}
		}

		if len(fields) > 0 {
			parsed[entityType] = fields
		}
	}
	if len(parsed) == 0 {
		return nil
	}
	return parsed
}
