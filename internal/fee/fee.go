// Package fee computes what a donor is charged under each fee-coverage policy.
// Everything here is pure arithmetic on minor currency units.
package fee

import (
	"fmt"

	"github.com/shopspring/decimal"

	"donation-settle-api/internal/constant"
)

// Policy says who absorbs the processor and platform fees.
type Policy string

const (
	PolicyOrgPays       Policy = "org_pays"
	PolicyDonorPlatform Policy = "donor_platform"
	PolicyDonorRail     Policy = "donor_rail"
	PolicyDonorBoth     Policy = "donor_both"
)

// ParsePolicy accepts only the four known policy strings.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(s)
	if !p.Valid() {
		return "", constant.Newf(constant.CodePolicyInvalid, "unknown fee-coverage policy %q", s)
	}
	return p, nil
}

func (p Policy) Valid() bool {
	switch p {
	case PolicyOrgPays, PolicyDonorPlatform, PolicyDonorRail, PolicyDonorBoth:
		return true
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// Schedule holds the processor and platform fee model.
type Schedule struct {
	ProcessorRate  decimal.Decimal // fraction, 0.029
	ProcessorFixed int64           // minor units
	PlatformRate   decimal.Decimal // fraction, 0.01
}

// DefaultSchedule is 2.9% + 30 for the processor and 1% for the platform.
func DefaultSchedule() Schedule {
	return Schedule{
		ProcessorRate:  decimal.RequireFromString("0.029"),
		ProcessorFixed: 30,
		PlatformRate:   decimal.RequireFromString("0.01"),
	}
}

// ScheduleFromPercent builds a schedule from percentage strings ("2.9", "1").
// Empty strings keep the default for that component.
func ScheduleFromPercent(processorPct string, processorFixed int64, platformPct string) (Schedule, error) {
	s := DefaultSchedule()
	if processorPct != "" {
		v, err := decimal.NewFromString(processorPct)
		if err != nil {
			return s, fmt.Errorf("processor rate: %w", err)
		}
		s.ProcessorRate = v.Div(hundred)
	}
	if processorFixed > 0 {
		s.ProcessorFixed = processorFixed
	}
	if platformPct != "" {
		v, err := decimal.NewFromString(platformPct)
		if err != nil {
			return s, fmt.Errorf("platform rate: %w", err)
		}
		s.PlatformRate = v.Div(hundred)
	}
	if s.ProcessorRate.IsNegative() || s.ProcessorRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return s, fmt.Errorf("processor rate %s out of range", s.ProcessorRate)
	}
	if s.PlatformRate.IsNegative() || s.PlatformRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return s, fmt.Errorf("platform rate %s out of range", s.PlatformRate)
	}
	return s, nil
}

// Quote is the result of a fee calculation.
type Quote struct {
	Policy       Policy `json:"policy"`
	Donation     int64  `json:"donation_amount"`
	Charge       int64  `json:"charge_amount"`
	PlatformFee  int64  `json:"platform_fee_amount"`
	ProcessorFee int64  `json:"estimated_processor_fee"`
	DonorCovers  int64  `json:"donor_covered_amount"`
}

// Calculate returns the charge for donation under policy. The charge always rounds
// up so that any rounding remainder lands on the donor, never on the destination
// or the platform. The platform fee is taken from the original donation.
func (s Schedule) Calculate(donation int64, policy Policy) (Quote, error) {
	if donation < 1 {
		return Quote{}, constant.NewError(constant.CodeDonationAmountInvalid)
	}
	if !policy.Valid() {
		return Quote{}, constant.Newf(constant.CodePolicyInvalid, "unknown fee-coverage policy %q", string(policy))
	}

	d := decimal.NewFromInt(donation)
	one := decimal.NewFromInt(1)
	fixed := decimal.NewFromInt(s.ProcessorFixed)
	keep := one.Sub(s.ProcessorRate)

	var charge decimal.Decimal
	switch policy {
	case PolicyOrgPays:
		charge = d
	case PolicyDonorPlatform:
		charge = d.Mul(one.Add(s.PlatformRate)).Ceil()
	case PolicyDonorRail:
		charge = divCeil(d.Add(fixed), keep)
	case PolicyDonorBoth:
		charge = divCeil(d.Mul(one.Add(s.PlatformRate)).Add(fixed), keep)
	}

	c := charge.IntPart()
	return Quote{
		Policy:       policy,
		Donation:     donation,
		Charge:       c,
		PlatformFee:  s.PlatformFee(donation),
		ProcessorFee: s.ProcessorFee(c),
		DonorCovers:  c - donation,
	}, nil
}

// PlatformFee is round(donation × platform rate), half away from zero.
func (s Schedule) PlatformFee(donation int64) int64 {
	return decimal.NewFromInt(donation).Mul(s.PlatformRate).Round(0).IntPart()
}

// ProcessorFee estimates the processor's cut of a charge, for disclosure only.
func (s Schedule) ProcessorFee(charge int64) int64 {
	return decimal.NewFromInt(charge).Mul(s.ProcessorRate).Round(0).IntPart() + s.ProcessorFixed
}

// divCeil returns the smallest integer c with c × den ≥ num.
func divCeil(num, den decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	c := num.DivRound(den, 12).Ceil()
	// the 12-digit quotient can land one off the true ceiling; settle it on the product
	if c.Mul(den).LessThan(num) {
		return c.Add(one)
	}
	if prev := c.Sub(one); prev.Mul(den).GreaterThanOrEqual(num) {
		return prev
	}
	return c
}
