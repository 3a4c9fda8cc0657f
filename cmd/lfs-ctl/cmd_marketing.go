package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuanvumaihuynh/lfs/internal/service"
)

// lfs-ctl calculate-sales
var calculateSalesCmd = &cobra.Command{
	Use:   "calculate-sales",
	Short: "Recalculate the sales of every product from closed orders",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		n, err := e.svcs.Marketing.CalculateProductSales(cmd.Context())
		if err != nil {
			return fmt.Errorf("calculate product sales: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "updated sales of %d products\n", n)
		return nil
	}),
}

var (
	ratingMailsTest bool
	ratingMailsBcc  []string
)

// lfs-ctl send-rating-mails
var sendRatingMailsCmd = &cobra.Command{
	Use:   "send-rating-mails",
	Short: "Ask customers of recently closed orders to rate their products",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		n, err := e.svcs.Marketing.SendRatingMails(cmd.Context(), service.SendRatingMailsParams{
			Test: ratingMailsTest,
			Bcc:  ratingMailsBcc,
		})
		if err != nil {
			return fmt.Errorf("send rating mails: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "sent %d rating mails\n", n)
		return nil
	}),
}

func init() {
	sendRatingMailsCmd.Flags().BoolVar(&ratingMailsTest, "test", false, "send every mail to the shop notification addresses and record nothing")
	sendRatingMailsCmd.Flags().StringSliceVar(&ratingMailsBcc, "bcc", nil, "blind copy recipients")
}
