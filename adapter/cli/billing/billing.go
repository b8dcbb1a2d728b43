package billing

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Cmd is the billing command group.
var Cmd = &cobra.Command{
	Use:   "billing",
	Short: "Manage your subscription",
	Long:  `Inspect subscription status, change plans, and manage cancellation.`,
}

func init() {
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(changeCmd)
	Cmd.AddCommand(previewCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(resumeCmd)
	Cmd.AddCommand(revertCmd)
}

// formatCents renders a minor-unit amount as dollars.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
