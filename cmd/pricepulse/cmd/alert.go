package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/pricepulse-web/internal/entity"
	"github.com/user/pricepulse-web/internal/form"
)

func newAlertCmd(a *app) *cobra.Command {
	var f form.AlertForm
	cmd := &cobra.Command{
		Use:   "alert <id>",
		Short: "Registers an email alert for when the product drops to the target price.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if !f.Submit(func(p form.AlertPayload) {
				_, err = a.client.SetAlert(cmd.Context(), entity.AlertRequest{
					ProductID:   args[0],
					Email:       p.Email,
					TargetPrice: p.TargetPrice,
				})
			}) {
				return errors.New("--email and a numeric --target-price are required")
			}
			if err != nil {
				return err
			}
			renderAlertStatus(cmd.OutOrStdout(), entity.AlertScheduled)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Email, "email", "", "email to notify")
	cmd.Flags().StringVar(&f.TargetPrice, "target-price", "", "price to wait for")
	return cmd
}

func newAlertsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "alerts <id>",
		Short: "Lists the alerts registered for a product.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alerts, err := a.client.ListProductAlerts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderAlerts(cmd.OutOrStdout(), alerts, a.loc)
			return nil
		},
	}
}

func newUnalertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unalert <alert-id>",
		Short: "Deletes an alert.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteAlert(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Alert %s deleted.\n", args[0])
			return nil
		},
	}
}
