package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/draftwise/draftwise/adapter/cli"
	billingCommands "github.com/draftwise/draftwise/internal/billing/application/commands"
	"github.com/draftwise/draftwise/internal/billing/domain"
	"github.com/spf13/cobra"
)

var (
	changeTier     string
	changeInterval string
	changeEmail    string
)

var changeCmd = &cobra.Command{
	Use:   "change",
	Short: "Change subscription tier or billing interval",
	Long: `Change to a different tier or billing interval.

Upgrades and interval switches apply immediately with a prorated
charge. Downgrades take effect at the end of the current period.

Examples:
  draftwise billing change --tier professional --interval monthly
  draftwise billing change --tier premium --interval annual
  draftwise billing change --tier free`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ChangePlanHandler == nil {
			return errors.New("changing plans requires database connection")
		}
		if changeTier == "" {
			return errors.New("tier is required")
		}

		result, err := app.ChangePlanHandler.Handle(cmd.Context(), billingCommands.ChangePlanCommand{
			UserID:         app.CurrentUserID,
			Email:          changeEmail,
			TargetTier:     domain.Tier(changeTier),
			TargetInterval: domain.Interval(changeInterval),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		sub := result.Subscription
		switch {
		case result.TrialStarted:
			fmt.Fprintf(out, "Trial started on %s %s. Trial ends %s.\n",
				sub.Tier, sub.Interval, sub.PeriodEnd.Local().Format(time.RFC1123))
		case result.Scheduled:
			fmt.Fprintf(out, "Downgrade to %s scheduled for %s. Your current plan stays active until then.\n",
				changeTier, sub.PeriodEnd.Local().Format(time.RFC1123))
		case result.Quote != nil:
			fmt.Fprintf(out, "Switched to %s %s. Charged %s now.\n",
				sub.Tier, sub.Interval, formatCents(result.Quote.AmountDueNowCents))
		default:
			fmt.Fprintf(out, "Switched to %s %s.\n", sub.Tier, sub.Interval)
		}
		return nil
	},
}

func init() {
	changeCmd.Flags().StringVar(&changeTier, "tier", "", "target tier (free, professional, premium)")
	changeCmd.Flags().StringVar(&changeInterval, "interval", "monthly", "billing interval (monthly, annual)")
	changeCmd.Flags().StringVar(&changeEmail, "email", "", "billing email for new paid subscriptions")
}
