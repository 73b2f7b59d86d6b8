package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProductCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Prints a tracked product.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderProduct(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Prints the recorded prices of a product.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.client.GetPriceHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), history, a.loc)
			return nil
		},
	}
}

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id>",
		Short: "Prints the product's price on other platforms.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.client.GetComparisons(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderComparisons(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

func newProductsCmd(a *app) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Lists tracked products.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := a.client.ListProducts(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			renderProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of products to skip")
	return cmd
}

func newUntrackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "untrack <id>",
		Short: "Stops tracking a product.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteProduct(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s deleted.\n", args[0])
			return nil
		},
	}
}
