package billing

import (
	"context"
	"strings"
	"testing"

	"github.com/draftwise/draftwise/adapter/cli"
	billingCommands "github.com/draftwise/draftwise/internal/billing/application/commands"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func resetFlags() {
	changeTier = ""
	changeInterval = "monthly"
	changeEmail = ""
	previewTier = ""
	previewInterval = "monthly"
}

func TestStatusCmd_NoApp(t *testing.T) {
	resetFlags()
	cli.SetApp(nil)

	var output strings.Builder
	statusCmd.SetContext(context.Background())
	statusCmd.SetOut(&output)

	err := statusCmd.RunE(statusCmd, []string{})
	assert.NoError(t, err)
	assert.Contains(t, output.String(), "requires database connection")
}

func TestChangeCmd_NoApp(t *testing.T) {
	resetFlags()
	cli.SetApp(nil)

	changeCmd.SetContext(context.Background())
	err := changeCmd.RunE(changeCmd, []string{})
	assert.ErrorContains(t, err, "requires database connection")
}

func TestChangeCmd_RequiresTier(t *testing.T) {
	resetFlags()
	app := &cli.App{
		CurrentUserID:     uuid.New(),
		ChangePlanHandler: billingCommands.NewChangePlanHandler(nil, nil, nil, nil, nil, nil, 14),
	}
	cli.SetApp(app)
	defer cli.SetApp(nil)

	changeCmd.SetContext(context.Background())
	err := changeCmd.RunE(changeCmd, []string{})
	assert.ErrorContains(t, err, "tier is required")
}

func TestPreviewCmd_NoApp(t *testing.T) {
	resetFlags()
	cli.SetApp(nil)

	previewCmd.SetContext(context.Background())
	err := previewCmd.RunE(previewCmd, []string{})
	assert.ErrorContains(t, err, "requires database connection")
}

func TestCancelCmd_NoApp(t *testing.T) {
	resetFlags()
	cli.SetApp(nil)

	cancelCmd.SetContext(context.Background())
	err := cancelCmd.RunE(cancelCmd, []string{})
	assert.ErrorContains(t, err, "requires database connection")

	resumeCmd.SetContext(context.Background())
	err = resumeCmd.RunE(resumeCmd, []string{})
	assert.ErrorContains(t, err, "requires database connection")

	revertCmd.SetContext(context.Background())
	err = revertCmd.RunE(revertCmd, []string{})
	assert.ErrorContains(t, err, "requires database connection")
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$29.00", formatCents(2900))
	assert.Equal(t, "$0.00", formatCents(0))
	assert.Equal(t, "$0.05", formatCents(5))
	assert.Equal(t, "$123.45", formatCents(12345))
	assert.Equal(t, "-$12.50", formatCents(-1250))
}
