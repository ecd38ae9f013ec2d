package main

import (
	"github.com/spf13/cobra"

	"github.com/olusolaa/gateway-sync/internal/app"
)

var (
	syncDryRun bool
	syncForce  bool
	syncPrune  bool
	syncType   string
	statusType string
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Copy gateway state to the control plane.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		_, err = application.Push(cmd.Context(), syncOptions())
		return err
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Copy control plane state to the gateway.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		_, err = application.Pull(cmd.Context(), syncOptions())
		return err
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show drift between the gateway and the control plane.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		_, err = application.Status(cmd.Context(), statusType)
		return err
	},
}

func syncOptions() app.SyncOptions {
	return app.SyncOptions{
		DryRun: syncDryRun,
		Force:  syncForce,
		Prune:  syncPrune,
		Type:   syncType,
	}
}

func init() {
	for _, c := range []*cobra.Command{pushCmd, pullCmd} {
		c.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show and audit what would change without writing")
		c.Flags().BoolVar(&syncForce, "force", false, "Skip confirmation and keep the source state for every conflict")
		c.Flags().BoolVar(&syncPrune, "prune", false, "Delete entities that exist only on the target")
		c.Flags().StringVar(&syncType, "type", "", "Restrict to one entity type")
	}
	statusCmd.Flags().StringVar(&statusType, "type", "", "Restrict to one entity type")
}
