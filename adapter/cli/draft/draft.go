package draft

import (
	"errors"
	"fmt"
	"time"

	"github.com/draftwise/draftwise/adapter/cli"
	billingDomain "github.com/draftwise/draftwise/internal/billing/domain"
	draftCommands "github.com/draftwise/draftwise/internal/drafting/application/commands"
	draftQueries "github.com/draftwise/draftwise/internal/drafting/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Cmd is the draft command group.
var Cmd = &cobra.Command{
	Use:   "draft",
	Short: "Generate and browse message drafts",
}

var (
	newClientID string
	newKind     string
	newPrompt   string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a draft for a client",
	Long: `Generate a message draft. Each draft consumes one unit of your
monthly quota.

Examples:
  draftwise draft new --client <client-id> --kind email --prompt "nudge about the overdue invoice"
  draftwise draft new --client <client-id> --kind proposal --prompt "website redesign, 6 weeks"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GenerateDraftHandler == nil {
			return errors.New("draft generation requires database connection")
		}
		if newClientID == "" {
			return errors.New("client is required")
		}
		if newPrompt == "" {
			return errors.New("prompt is required")
		}

		clientID, err := uuid.Parse(newClientID)
		if err != nil {
			return fmt.Errorf("invalid client id: %w", err)
		}

		result, err := app.GenerateDraftHandler.Handle(cmd.Context(), draftCommands.GenerateDraftCommand{
			UserID:   app.CurrentUserID,
			ClientID: clientID,
			Kind:     newKind,
			Prompt:   newPrompt,
		})
		if errors.Is(err, billingDomain.ErrQuotaExceeded) {
			return errors.New("monthly draft quota exhausted; upgrade with 'draftwise billing change' or wait for the period to reset")
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, result.Body)
		fmt.Fprintln(out)
		if result.Unlimited {
			fmt.Fprintf(out, "Draft %s saved.\n", result.DraftID)
		} else {
			fmt.Fprintf(out, "Draft %s saved. %d drafts remaining this period.\n", result.DraftID, result.RemainingDrafts)
		}
		return nil
	},
}

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListDraftsHandler == nil {
			return errors.New("draft listing requires database connection")
		}

		drafts, err := app.ListDraftsHandler.Handle(cmd.Context(), draftQueries.ListDraftsQuery{
			UserID: app.CurrentUserID,
			Limit:  listLimit,
		})
		if err != nil {
			return err
		}
		if len(drafts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No drafts yet.")
			return nil
		}

		for _, d := range drafts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s %s  %s\n",
				d.ID, d.Kind, d.CreatedAt.Local().Format(time.DateTime), d.Prompt)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <draft-id>",
	Short: "Show a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetDraftHandler == nil {
			return errors.New("draft listing requires database connection")
		}

		draftID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid draft id: %w", err)
		}

		d, err := app.GetDraftHandler.Handle(cmd.Context(), draftQueries.GetDraftQuery{
			UserID:  app.CurrentUserID,
			DraftID: draftID,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), d.Body)
		return nil
	},
}

func init() {
	newCmd.Flags().StringVar(&newClientID, "client", "", "client the draft is for")
	newCmd.Flags().StringVar(&newKind, "kind", "email", "draft kind (email, followup, proposal, pitch)")
	newCmd.Flags().StringVar(&newPrompt, "prompt", "", "what the message should say")

	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum drafts to list")

	Cmd.AddCommand(newCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
}
