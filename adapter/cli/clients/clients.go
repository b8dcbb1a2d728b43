package clients

import (
	"errors"
	"fmt"

	"github.com/draftwise/draftwise/adapter/cli"
	clientCommands "github.com/draftwise/draftwise/internal/clients/application/commands"
	clientQueries "github.com/draftwise/draftwise/internal/clients/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Cmd is the clients command group.
var Cmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage your client roster",
}

var (
	addName    string
	addCompany string
	addEmail   string
	addNotes   string
	addTone    string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a client",
	Long: `Add a client to your roster.

Examples:
  draftwise clients add --name "Ada Lovelace" --company "Analytical Engines" --tone friendly`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateClientHandler == nil {
			return errors.New("client management requires database connection")
		}
		if addName == "" {
			return errors.New("name is required")
		}

		result, err := app.CreateClientHandler.Handle(cmd.Context(), clientCommands.CreateClientCommand{
			UserID:  app.CurrentUserID,
			Name:    addName,
			Company: addCompany,
			Email:   addEmail,
			Notes:   addNotes,
			Tone:    addTone,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added client %s (%s)\n", addName, result.ClientID)
		return nil
	},
}

var listArchived bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListClientsHandler == nil {
			return errors.New("client management requires database connection")
		}

		result, err := app.ListClientsHandler.Handle(cmd.Context(), clientQueries.ListClientsQuery{
			UserID:          app.CurrentUserID,
			IncludeArchived: listArchived,
		})
		if err != nil {
			return err
		}
		if len(result) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No clients yet.")
			return nil
		}

		for _, c := range result {
			line := fmt.Sprintf("%s  %s", c.ID, c.Name)
			if c.Company != "" {
				line += " (" + c.Company + ")"
			}
			line += "  tone: " + c.Tone
			if c.IsArchived {
				line += "  [archived]"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

var (
	updateName    string
	updateCompany string
	updateEmail   string
	updateNotes   string
	updateTone    string
)

var updateCmd = &cobra.Command{
	Use:   "update <client-id>",
	Short: "Update a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateClientHandler == nil {
			return errors.New("client management requires database connection")
		}

		clientID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid client id: %w", err)
		}

		update := clientCommands.UpdateClientCommand{
			UserID:   app.CurrentUserID,
			ClientID: clientID,
		}
		if cmd.Flags().Changed("name") {
			update.Name = &updateName
		}
		if cmd.Flags().Changed("company") {
			update.Company = &updateCompany
		}
		if cmd.Flags().Changed("email") {
			update.Email = &updateEmail
		}
		if cmd.Flags().Changed("notes") {
			update.Notes = &updateNotes
		}
		if cmd.Flags().Changed("tone") {
			update.Tone = &updateTone
		}

		if err := app.UpdateClientHandler.Handle(cmd.Context(), update); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Client updated.")
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <client-id>",
	Short: "Archive a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ArchiveClientHandler == nil {
			return errors.New("client management requires database connection")
		}

		clientID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid client id: %w", err)
		}

		if err := app.ArchiveClientHandler.Handle(cmd.Context(), clientCommands.ArchiveClientCommand{
			UserID:   app.CurrentUserID,
			ClientID: clientID,
		}); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Client archived.")
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "client name")
	addCmd.Flags().StringVar(&addCompany, "company", "", "company name")
	addCmd.Flags().StringVar(&addEmail, "email", "", "contact email")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes")
	addCmd.Flags().StringVar(&addTone, "tone", "", "preferred tone (professional, friendly, formal, casual)")

	listCmd.Flags().BoolVar(&listArchived, "archived", false, "include archived clients")

	updateCmd.Flags().StringVar(&updateName, "name", "", "client name")
	updateCmd.Flags().StringVar(&updateCompany, "company", "", "company name")
	updateCmd.Flags().StringVar(&updateEmail, "email", "", "contact email")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "free-form notes")
	updateCmd.Flags().StringVar(&updateTone, "tone", "", "preferred tone (professional, friendly, formal, casual)")

	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(archiveCmd)
}
