package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olusolaa/gateway-sync/internal/app"
	apperrors "github.com/olusolaa/gateway-sync/internal/errors"
)

var (
	cfgFile       string
	logLevel      string
	logFormat     string
	reporterType  string
	noColor       bool
	compareFields string
	selectTags    []string
)

var rootCmd = &cobra.Command{
	Use:   "gateway-sync",
	Short: "Reconciles gateway entities between a data plane and its control plane.",
	Long: `gateway-sync compares services, routes, consumers, plugins, upstreams and
certificates on a gateway admin API with the same entities on a control plane,
pushes or pulls the differences, and records every write in an audit log that
can be rolled back.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default is .gateway-sync.yaml in the current or home directory)")
	flags.StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "Override log format (text, json)")
	flags.StringVar(&reporterType, "output", "", "Output format (text, json)")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&compareFields, "compare-fields", "", "Override compared fields per type (e.g., 'services=host,port;routes=paths')")
	flags.StringSliceVar(&selectTags, "select-tags", nil, "Only sync entities carrying all of these tags")

	viper.BindPFlag("settings.log_level", flags.Lookup("log-level"))
	viper.BindPFlag("settings.log_format", flags.Lookup("log-format"))
	viper.BindPFlag("settings.reporter", flags.Lookup("output"))
	viper.BindPFlag("settings.reporter_config.text.no_color", flags.Lookup("no-color"))
	viper.BindPFlag(app.CompareFieldsKey, flags.Lookup("compare-fields"))
	viper.BindPFlag("sync.select_tags", flags.Lookup("select-tags"))

	viper.SetEnvPrefix("GWSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(pushCmd, pullCmd, statusCmd, historyCmd, rollbackCmd, entityCmd)
}

func initializeConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".gateway-sync")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return apperrors.Wrap(err, apperrors.CodeConfigReadError, "failed to read config file")
		}
	}
	return nil
}

func bootstrap(cmd *cobra.Command) (*app.Application, error) {
	application, err := app.BuildApplicationFromViper(cmd.Context(), viper.GetViper())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "application initialization failed")
	}
	return application, nil
}

func printError(err error) {
	userMsg, suggestion, ok := apperrors.GetUserFacingMessage(err)
	if !ok {
		userMsg = err.Error()
	}
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", userMsg)
	if suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
	}
}
