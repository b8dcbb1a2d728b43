package billing

import (
	"fmt"
	"time"

	"github.com/draftwise/draftwise/adapter/cli"
	billingQueries "github.com/draftwise/draftwise/internal/billing/application/queries"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show subscription status",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetSubscriptionHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Billing status requires database connection.")
			return nil
		}

		snapshot, err := app.GetSubscriptionHandler.Handle(cmd.Context(), billingQueries.GetSubscriptionQuery{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return err
		}

		statusLine := string(snapshot.Status)
		if snapshot.Tier.IsPaid() {
			statusLine = fmt.Sprintf("%s %s (%s)", snapshot.Tier, snapshot.Interval, statusLine)
		} else {
			statusLine = fmt.Sprintf("%s (%s)", snapshot.Tier, statusLine)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subscription: %s\n", statusLine)

		if snapshot.Unlimited {
			fmt.Fprintf(cmd.OutOrStdout(), "Drafts: %d used this period (unlimited)\n", snapshot.UsageCount)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Drafts: %d of %d used, %d remaining\n",
				snapshot.UsageCount, snapshot.MonthlyLimit, snapshot.RemainingDrafts)
		}

		label := "Renews"
		if snapshot.CancelAtPeriodEnd {
			label = "Ends"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", label, snapshot.PeriodEnd.Local().Format(time.RFC1123))

		if snapshot.ScheduledTier != nil && snapshot.ScheduledChangeDate != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled change: %s on %s\n",
				*snapshot.ScheduledTier, snapshot.ScheduledChangeDate.Local().Format(time.RFC1123))
		}

		return nil
	},
}
