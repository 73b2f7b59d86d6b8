package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/pricepulse-web/internal/adapter/memory"
	"github.com/user/pricepulse-web/internal/entity"
	"github.com/user/pricepulse-web/internal/form"
	"github.com/user/pricepulse-web/internal/usecase"
)

const (
	cliSession = "cli"
	// cliViewTTL only has to outlive a single command.
	cliViewTTL = time.Minute
)

func newTrackCmd(a *app) *cobra.Command {
	var f form.ProductForm
	cmd := &cobra.Command{
		Use:   "track <url>",
		Short: "Tracks a product URL and prints its price, history and comparisons.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.URL = args[0]

			views := memory.NewViewStateRepo(cliViewTTL)
			home := usecase.NewHome(a.client, views, nil, a.logger)

			var (
				v   entity.HomeView
				err error
			)
			if !f.Submit(func(req entity.TrackRequest) {
				v, err = home.Track(cmd.Context(), cliSession, req)
			}) {
				return errors.New("a non-empty url and a numeric target price are required")
			}
			if err != nil && v.Notice != "" {
				return fmt.Errorf("%s: %w", v.Notice, err)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderProduct(out, v.Product)
			renderHistory(out, v.History, a.loc)
			renderComparisons(out, v.Comparisons)
			renderAlertStatus(out, v.AlertStatus)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Email, "email", "", "email for a price alert")
	cmd.Flags().StringVar(&f.TargetPrice, "target-price", "", "target price for a price alert")
	return cmd
}
