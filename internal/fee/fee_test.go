package fee

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"donation-settle-api/internal/constant"
)

func TestCalculate_KnownAmounts(t *testing.T) {
	s := DefaultSchedule()
	cases := []struct {
		donation int64
		policy   Policy
		charge   int64
		platform int64
	}{
		{2000, PolicyOrgPays, 2000, 20},
		{2000, PolicyDonorPlatform, 2020, 20},
		{2000, PolicyDonorRail, 2091, 20},
		{2000, PolicyDonorBoth, 2112, 20},
		{1, PolicyDonorBoth, 32, 0},
		{150, PolicyDonorPlatform, 152, 2},
		{999, PolicyDonorRail, 1060, 10},
		{12345, PolicyDonorBoth, 12872, 123},
	}
	for _, tc := range cases {
		q, err := s.Calculate(tc.donation, tc.policy)
		if err != nil {
			t.Fatalf("%d/%s: unexpected error: %v", tc.donation, tc.policy, err)
		}
		if q.Charge != tc.charge {
			t.Errorf("%d/%s: charge = %d, want %d", tc.donation, tc.policy, q.Charge, tc.charge)
		}
		if q.PlatformFee != tc.platform {
			t.Errorf("%d/%s: platform fee = %d, want %d", tc.donation, tc.policy, q.PlatformFee, tc.platform)
		}
		if q.DonorCovers != q.Charge-tc.donation {
			t.Errorf("%d/%s: donor covers = %d", tc.donation, tc.policy, q.DonorCovers)
		}
	}
}

// The destination never nets less than the donation once the markup covers fees.
func TestCalculate_DestinationMadeWhole(t *testing.T) {
	s := DefaultSchedule()
	one := decimal.NewFromInt(1)
	for d := int64(1); d <= 50000; d += 37 {
		donation := decimal.NewFromInt(d)
		platform := donation.Mul(s.PlatformRate)

		rail, err := s.Calculate(d, PolicyDonorRail)
		if err != nil {
			t.Fatal(err)
		}
		net := decimal.NewFromInt(rail.Charge).Mul(one.Sub(s.ProcessorRate)).Sub(decimal.NewFromInt(s.ProcessorFixed))
		if net.LessThan(donation) {
			t.Fatalf("donor_rail %d: net after processor fee %s < donation", d, net)
		}
		// one unit less would leave the destination short
		short := decimal.NewFromInt(rail.Charge - 1).Mul(one.Sub(s.ProcessorRate)).Sub(decimal.NewFromInt(s.ProcessorFixed))
		if !short.LessThan(donation) {
			t.Fatalf("donor_rail %d: charge %d is not minimal", d, rail.Charge)
		}

		both, err := s.Calculate(d, PolicyDonorBoth)
		if err != nil {
			t.Fatal(err)
		}
		net = decimal.NewFromInt(both.Charge).Mul(one.Sub(s.ProcessorRate)).Sub(decimal.NewFromInt(s.ProcessorFixed)).Sub(platform)
		if net.LessThan(donation) {
			t.Fatalf("donor_both %d: net after all fees %s < donation", d, net)
		}
	}
}

func TestCalculate_PlatformFeeFromOriginalDonation(t *testing.T) {
	s := DefaultSchedule()
	for _, p := range []Policy{PolicyOrgPays, PolicyDonorPlatform, PolicyDonorRail, PolicyDonorBoth} {
		q, err := s.Calculate(10000, p)
		if err != nil {
			t.Fatal(err)
		}
		if q.PlatformFee != 100 {
			t.Errorf("%s: platform fee = %d, want 100", p, q.PlatformFee)
		}
	}
}

func TestCalculate_OrgPaysIsIdentity(t *testing.T) {
	s := DefaultSchedule()
	for _, d := range []int64{1, 7, 2000, 987654321} {
		q, err := s.Calculate(d, PolicyOrgPays)
		if err != nil {
			t.Fatal(err)
		}
		if q.Charge != d || q.DonorCovers != 0 {
			t.Errorf("org_pays %d: charge = %d", d, q.Charge)
		}
	}
}

func TestCalculate_RejectsBadInput(t *testing.T) {
	s := DefaultSchedule()
	for _, d := range []int64{0, -1} {
		_, err := s.Calculate(d, PolicyOrgPays)
		if constant.CodeOf(err) != constant.CodeDonationAmountInvalid {
			t.Errorf("amount %d: got %v", d, err)
		}
	}
	_, err := s.Calculate(100, Policy("donor_everything"))
	if constant.CodeOf(err) != constant.CodePolicyInvalid {
		t.Errorf("unknown policy: got %v", err)
	}
	var ce constant.Error
	if !errors.As(err, &ce) {
		t.Errorf("expected constant.Error, got %T", err)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy("donor_both"); err != nil || p != PolicyDonorBoth {
		t.Errorf("ParsePolicy(donor_both) = %q, %v", p, err)
	}
	if _, err := ParsePolicy(""); err == nil {
		t.Error("empty policy accepted")
	}
}

func TestScheduleFromPercent(t *testing.T) {
	s, err := ScheduleFromPercent("2.9", 30, "1")
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultSchedule()
	if !s.ProcessorRate.Equal(def.ProcessorRate) || !s.PlatformRate.Equal(def.PlatformRate) || s.ProcessorFixed != 30 {
		t.Errorf("schedule = %+v", s)
	}
	if _, err := ScheduleFromPercent("100", 30, "1"); err == nil {
		t.Error("processor rate of 100% accepted")
	}
	if _, err := ScheduleFromPercent("abc", 30, ""); err == nil {
		t.Error("non-numeric rate accepted")
	}
}
