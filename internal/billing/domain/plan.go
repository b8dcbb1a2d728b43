package domain

// Tier identifies a subscription plan tier.
type Tier string

const (
	TierFree         Tier = "free"
	TierProfessional Tier = "professional"
	TierPremium      Tier = "premium"
)

// IsValid reports whether the tier is a known plan tier.
func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierProfessional, TierPremium:
		return true
	}
	return false
}

// IsPaid reports whether the tier requires a paid gateway subscription.
func (t Tier) IsPaid() bool {
	return t == TierProfessional || t == TierPremium
}

// rank implements the strict total order free < professional < premium.
func (t Tier) rank() int {
	switch t {
	case TierProfessional:
		return 1
	case TierPremium:
		return 2
	default:
		return 0
	}
}

// Interval identifies a billing interval. It is meaningless for the free
// tier, whose quota window always rolls monthly.
type Interval string

const (
	IntervalMonthly Interval = "monthly"
	IntervalAnnual  Interval = "annual"
)

// IsValid reports whether the interval is a known billing interval.
func (i Interval) IsValid() bool {
	return i == IntervalMonthly || i == IntervalAnnual
}

// UnlimitedDrafts is the monthly limit sentinel for tiers without a draft
// quota. Any limit at or above it means checkAndConsume never increments
// the counter.
const UnlimitedDrafts = 1_000_000

// Plan describes a sellable tier: prices in minor currency units (cents)
// and the monthly draft quota.
type Plan struct {
	Tier              Tier
	Name              string
	MonthlyPriceCents int64
	AnnualPriceCents  int64
	MonthlyDraftLimit int
}

var (
	PlanFree = Plan{
		Tier:              TierFree,
		Name:              "Free",
		MonthlyDraftLimit: 10,
	}
	PlanProfessional = Plan{
		Tier:              TierProfessional,
		Name:              "Professional",
		MonthlyPriceCents: 2900,
		AnnualPriceCents:  29000,
		MonthlyDraftLimit: 100,
	}
	PlanPremium = Plan{
		Tier:              TierPremium,
		Name:              "Premium",
		MonthlyPriceCents: 9900,
		AnnualPriceCents:  99000,
		MonthlyDraftLimit: UnlimitedDrafts,
	}
)

// AllPlans lists the sellable plans in tier order.
func AllPlans() []Plan {
	return []Plan{PlanFree, PlanProfessional, PlanPremium}
}

// PlanForTier returns the plan definition for a tier. Unknown tiers map to
// the free plan.
func PlanForTier(tier Tier) Plan {
	switch tier {
	case TierProfessional:
		return PlanProfessional
	case TierPremium:
		return PlanPremium
	default:
		return PlanFree
	}
}

// Price returns the price in cents for a tier at a billing interval.
func Price(tier Tier, interval Interval) int64 {
	plan := PlanForTier(tier)
	if interval == IntervalAnnual {
		return plan.AnnualPriceCents
	}
	return plan.MonthlyPriceCents
}
