package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/draftwise/draftwise/adapter/cli"
	billingCommands "github.com/draftwise/draftwise/internal/billing/application/commands"
	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel your subscription at period end",
	Long: `Cancel a paid subscription. You keep full access until the end
of the billing period you already paid for, then drop to the free tier.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CancelSubscriptionHandler == nil {
			return errors.New("cancellation requires database connection")
		}

		snapshot, err := app.CancelSubscriptionHandler.Handle(cmd.Context(), billingCommands.CancelSubscriptionCommand{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Subscription will end on %s. Run 'draftwise billing resume' to keep it.\n",
			snapshot.PeriodEnd.Local().Format(time.RFC1123))
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Withdraw a pending cancellation",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ResubscribeHandler == nil {
			return errors.New("resuming requires database connection")
		}

		snapshot, err := app.ResubscribeHandler.Handle(cmd.Context(), billingCommands.ResubscribeCommand{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Subscription resumed. %s %s renews on %s.\n",
			snapshot.Tier, snapshot.Interval, snapshot.PeriodEnd.Local().Format(time.RFC1123))
		return nil
	},
}

var revertCmd = &cobra.Command{
	Use:   "revert",
	Short: "Withdraw a scheduled downgrade",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CancelScheduledChangeHandler == nil {
			return errors.New("reverting requires database connection")
		}

		snapshot, err := app.CancelScheduledChangeHandler.Handle(cmd.Context(), billingCommands.CancelScheduledChangeCommand{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Staying on %s %s.\n", snapshot.Tier, snapshot.Interval)
		return nil
	},
}
