package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/draftwise/draftwise/adapter/cli"
	billingQueries "github.com/draftwise/draftwise/internal/billing/application/queries"
	"github.com/draftwise/draftwise/internal/billing/domain"
	"github.com/spf13/cobra"
)

var (
	previewTier     string
	previewInterval string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the cost of a plan change",
	Long: `Quote what a plan change would cost without applying it.

Examples:
  draftwise billing preview --tier premium
  draftwise billing preview --tier professional --interval annual`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.PreviewChangeHandler == nil {
			return errors.New("previewing requires database connection")
		}
		if previewTier == "" {
			return errors.New("tier is required")
		}

		result, err := app.PreviewChangeHandler.Handle(cmd.Context(), billingQueries.PreviewChangeQuery{
			UserID:         app.CurrentUserID,
			TargetTier:     domain.Tier(previewTier),
			TargetInterval: domain.Interval(previewInterval),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if result.Quote.AppliesAtPeriodEnd {
			fmt.Fprintf(out, "%s to %s takes effect %s. Nothing is due now.\n",
				result.Kind, previewTier, result.Quote.PeriodEnd.Local().Format(time.RFC1123))
		} else {
			fmt.Fprintf(out, "%s to %s: %s due now.\n",
				result.Kind, previewTier, formatCents(result.Quote.AmountDueNowCents))
		}
		if result.Quote.Note != "" {
			fmt.Fprintf(out, "Note: %s\n", result.Quote.Note)
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewTier, "tier", "", "target tier (free, professional, premium)")
	previewCmd.Flags().StringVar(&previewInterval, "interval", "monthly", "billing interval (monthly, annual)")
}
