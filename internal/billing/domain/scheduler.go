package domain

import "time"

// ChangeKind classifies a requested plan change relative to the current
// plan. Upgrades and lateral switches apply immediately with proration;
// downgrades are always deferred to the period boundary.
type ChangeKind int

const (
	ChangeNone ChangeKind = iota
	ChangeUpgrade
	ChangeDowngrade
	ChangeLateral
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeUpgrade:
		return "upgrade"
	case ChangeDowngrade:
		return "downgrade"
	case ChangeLateral:
		return "lateral"
	default:
		return "none"
	}
}

// Classify orders tiers free < professional < premium. A lateral switch is
// the same tier on a different billing interval.
func Classify(currentTier Tier, currentInterval Interval, targetTier Tier, targetInterval Interval) ChangeKind {
	switch {
	case targetTier.rank() > currentTier.rank():
		return ChangeUpgrade
	case targetTier.rank() < currentTier.rank():
		return ChangeDowngrade
	case targetInterval != currentInterval:
		return ChangeLateral
	default:
		return ChangeNone
	}
}

// AdvancePeriod returns the next period boundary after from. Monthly
// periods advance by one calendar month, annual by one year.
func AdvancePeriod(interval Interval, from time.Time) time.Time {
	if interval == IntervalAnnual {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
