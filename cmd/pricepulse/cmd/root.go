package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/pricepulse-web/internal/adapter/backend"
	"github.com/user/pricepulse-web/pkg/config"
	"github.com/user/pricepulse-web/pkg/logger"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	baseURL string
	token   string
	verbose bool
	loc     *time.Location

	// configErr is why the environment's configuration was not used.
	configErr error

	client *backend.Client
	logger *zap.Logger
}

// NewRootCmd builds the command tree. Flag defaults come from the same
// environment and .env file the web front-end reads.
func NewRootCmd() *cobra.Command {
	a := &app{loc: time.Local}
	defaults := config.Config{BackendBaseURL: "http://localhost:8000"}
	if cfg, err := config.Load(); err != nil {
		a.configErr = err
	} else {
		defaults = *cfg
		if loc, err := cfg.Location(); err != nil {
			a.configErr = fmt.Errorf("DISPLAY_TIMEZONE: %w", err)
		} else {
			a.loc = loc
		}
	}

	rootCmd := &cobra.Command{
		Use:           "pricepulse",
		Short:         "pricepulse is a command-line client for the PricePulse price-tracking backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.baseURL, "base-url", defaults.BackendBaseURL, "backend base URL")
	rootCmd.PersistentFlags().StringVar(&a.token, "token", defaults.BackendToken, "bearer token for the backend")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log backend calls to stderr")

	rootCmd.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newTrackCmd(a),
		newProductCmd(a),
		newHistoryCmd(a),
		newCompareCmd(a),
		newAlertCmd(a),
		newProductsCmd(a),
		newAlertsCmd(a),
		newUntrackCmd(a),
		newUnalertCmd(a),
	)
	return rootCmd
}

func (a *app) setup(stderr io.Writer) error {
	if a.verbose && a.configErr != nil {
		fmt.Fprintf(stderr, "warning: ignoring configuration, using built-in defaults: %v\n", a.configErr)
	}

	a.logger = zap.NewNop()
	if a.verbose {
		l, err := logger.New("debug")
		if err != nil {
			return err
		}
		a.logger = l
	}

	client, err := backend.NewClient(backend.Options{BaseURL: a.baseURL, Token: a.token}, nil, a.logger)
	if err != nil {
		return err
	}
	a.client = client
	return nil
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
