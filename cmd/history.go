package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/olusolaa/gateway-sync/internal/app"
	apperrors "github.com/olusolaa/gateway-sync/internal/errors"
)

var (
	historySyncID     string
	historyEntityType string
	historyEntityName string
	historySince      string
	historyLimit      int

	rollbackDryRun bool
	rollbackForce  bool
	rollbackType   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded syncs or the audit entries of one sync or entity.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := parseSince(historySince, time.Now())
		if err != nil {
			return err
		}
		application, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		return application.History(cmd.Context(), app.HistoryOptions{
			SyncID:     historySyncID,
			EntityType: historyEntityType,
			EntityName: historyEntityName,
			Since:      since,
			Limit:      historyLimit,
		})
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback <sync-id>",
	Short: "Revert the writes of one sync.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		_, err = application.Rollback(cmd.Context(), args[0], app.RollbackOptions{
			DryRun: rollbackDryRun,
			Force:  rollbackForce,
			Type:   rollbackType,
		})
		return err
	},
}

// parseSince accepts a duration back from now ("24h") or an RFC 3339
// timestamp or date.
func parseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewUserFacing(apperrors.CodeValidation,
		fmt.Sprintf("invalid --since value: %s", s), "Use a duration such as 24h, or a date such as 2024-05-01.")
}

func init() {
	historyCmd.Flags().StringVar(&historySyncID, "sync-id", "", "Show the entries of one sync")
	historyCmd.Flags().StringVar(&historyEntityType, "entity-type", "", "Restrict to one entity type")
	historyCmd.Flags().StringVar(&historyEntityName, "entity-name", "", "Show the history of one entity (requires --entity-type)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Only syncs after this duration ago or date")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of rows")

	rollbackCmd.Flags().BoolVar(&rollbackDryRun, "dry-run", false, "Preview the rollback without writing")
	rollbackCmd.Flags().BoolVar(&rollbackForce, "force", false, "Skip confirmation")
	rollbackCmd.Flags().StringVar(&rollbackType, "type", "", "Restrict to one entity type")
}
