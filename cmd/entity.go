package main

import (
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	apperrors "github.com/olusolaa/gateway-sync/internal/errors"
)

var (
	entityFile          string
	entityData          string
	entityDataPlaneOnly bool
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Write one entity to the gateway and mirror it to the control plane.",
}

var entityCreateCmd = &cobra.Command{
	Use:   "create <type>",
	Short: "Create an entity.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := readPayload(entityFile, entityData, cmd.InOrStdin())
		if err != nil {
			return err
		}
		application, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		_, err = application.EntityCreate(cmd.Context(), args[0], payload, entityDataPlaneOnly)
		return err
	},
}

var entityUpdateCmd = &cobra.Command{
	Use:   "update <type> <id-or-name>",
	Short: "Replace an entity.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := readPayload(entityFile, entityData, cmd.InOrStdin())
		if err != nil {
			return err
		}
		application, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		_, err = application.EntityUpdate(cmd.Context(), args[0], args[1], payload, entityDataPlaneOnly)
		return err
	},
}

var entityDeleteCmd = &cobra.Command{
	Use:   "delete <type> <id-or-name>",
	Short: "Delete an entity.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		_, err = application.EntityDelete(cmd.Context(), args[0], args[1], entityDataPlaneOnly)
		return err
	},
}

// readPayload decodes a JSON object from --data, or from --file where "-"
// is stdin.
func readPayload(file, data string, stdin io.Reader) (domain.Entity, error) {
	var raw []byte
	switch {
	case data != "":
		raw = []byte(data)
	case file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeValidation, "failed to read payload from stdin")
		}
		raw = b
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, apperrors.WrapUserFacing(err, apperrors.CodeValidation, "failed to read payload file "+file, "")
		}
		raw = b
	default:
		return nil, apperrors.NewUserFacing(apperrors.CodeValidation, "an entity payload is required", "Pass --data '{...}' or --file path.json.")
	}

	var payload domain.Entity
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.WrapUserFacing(err, apperrors.CodeValidation, "payload is not a JSON object", "")
	}
	if payload == nil {
		return nil, apperrors.NewUserFacing(apperrors.CodeValidation, "payload is not a JSON object", "")
	}
	return payload, nil
}

func init() {
	for _, c := range []*cobra.Command{entityCreateCmd, entityUpdateCmd} {
		c.Flags().StringVarP(&entityFile, "file", "f", "", "JSON payload file, or - for stdin")
		c.Flags().StringVar(&entityData, "data", "", "Inline JSON payload")
	}
	for _, c := range []*cobra.Command{entityCreateCmd, entityUpdateCmd, entityDeleteCmd} {
		c.Flags().BoolVar(&entityDataPlaneOnly, "data-plane-only", false, "Write the gateway only")
	}
	entityCmd.AddCommand(entityCreateCmd, entityUpdateCmd, entityDeleteCmd)
}
