package domain

import (
	"math"
	"time"
)

// RoundingPolicy selects how the prorated amount is rounded to whole cents.
type RoundingPolicy string

const (
	RoundHalfUp  RoundingPolicy = "half-up"
	RoundBankers RoundingPolicy = "bankers"
)

// ProrationQuote is an ephemeral price preview for a plan change. It is
// recomputed on every request and never persisted or cached.
type ProrationQuote struct {
	AmountDueNowCents  int64
	PeriodEnd          time.Time
	AppliesAtPeriodEnd bool
	Note               string
}

// ProrationCalculator computes the amount owed for a plan change that
// applies immediately. It is a pure computation with no I/O.
type ProrationCalculator struct {
	rounding RoundingPolicy
}

// NewProrationCalculator creates a calculator with the given rounding
// policy. An unknown policy falls back to round-half-up.
func NewProrationCalculator(rounding RoundingPolicy) *ProrationCalculator {
	if rounding != RoundBankers {
		rounding = RoundHalfUp
	}
	return &ProrationCalculator{rounding: rounding}
}

// Quote computes the immediate charge for moving from the current plan to
// the target plan with the remaining fraction of the billing period. The
// credit for unused time on the current plan is netted against the
// prorated cost of the target plan, floored at zero.
//
// Downgrades never charge immediately; if one reaches Quote the result is
// a zero quote marked as applying at the period end.
func (c *ProrationCalculator) Quote(currentTier Tier, currentInterval Interval, targetTier Tier, targetInterval Interval, periodStart, periodEnd, now time.Time) ProrationQuote {
	if Classify(currentTier, currentInterval, targetTier, targetInterval) == ChangeDowngrade {
		return ProrationQuote{
			PeriodEnd:          periodEnd,
			AppliesAtPeriodEnd: true,
			Note:               "no charge, applies at period end",
		}
	}

	fraction := fractionRemaining(periodStart, periodEnd, now)
	currentRemaining := float64(Price(currentTier, currentInterval)) * fraction
	targetProrated := float64(Price(targetTier, targetInterval)) * fraction

	amount := c.round(targetProrated - currentRemaining)
	if amount < 0 {
		amount = 0
	}

	return ProrationQuote{
		AmountDueNowCents: amount,
		PeriodEnd:         periodEnd,
	}
}

func (c *ProrationCalculator) round(v float64) int64 {
	if c.rounding == RoundBankers {
		return int64(math.RoundToEven(v))
	}
	return int64(math.Floor(v + 0.5))
}

// fractionRemaining clamps to [0, 1] so clock skew around the period
// boundary never produces a negative charge or a credit above full price.
func fractionRemaining(periodStart, periodEnd, now time.Time) float64 {
	total := periodEnd.Sub(periodStart)
	if total <= 0 {
		return 0
	}
	remaining := periodEnd.Sub(now)
	if remaining <= 0 {
		return 0
	}
	if remaining >= total {
		return 1
	}
	return float64(remaining) / float64(total)
}
