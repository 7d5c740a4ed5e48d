package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"donation-settle-api/internal/constant"
	"donation-settle-api/internal/dto"
	"donation-settle-api/internal/event"
	"donation-settle-api/internal/fee"
	mainmodel "donation-settle-api/internal/model/main"
)

type donationFixture struct {
	svc   *DonationService
	store *memStore
	guard *fakeGuard
	proc  *fakeCapture
	pub   *recordingPublisher
	alert *recordingAlerter
}

func newDonationFixture() *donationFixture {
	st := newMemStore()
	st.orgs[orgA] = &mainmodel.Organization{OrgID: orgA, OwnerID: aliceA, SubAccount: "acct_a"}
	st.orgs[orgB] = &mainmodel.Organization{OrgID: orgB, OwnerID: carolB, DelegatedAdminID: bobB, SubAccount: "acct_b"}
	st.orgs[orgC] = &mainmodel.Organization{OrgID: orgC, OwnerID: malloryC}
	f := &donationFixture{
		store: st,
		guard: newFakeGuard(),
		proc:  &fakeCapture{},
		pub:   &recordingPublisher{},
		alert: &recordingAlerter{},
	}
	f.svc = NewDonationService(DonationDeps{
		Orgs:          st,
		Proposals:     st,
		Distributions: st,
		Donations:     st,
		Guard:         f.guard,
		Processor:     f.proc,
		Publisher:     f.pub,
		Alert:         f.alert,
		IDs:           &seqIDs{},
	}, fee.DefaultSchedule(), "usd", time.Minute, quietLogger())
	return f
}

func donationReq() dto.CreateDonationReq {
	return dto.CreateDonationReq{
		Amount:         2000,
		OrgID:          orgA,
		DonorEmail:     "donor@example.org",
		Policy:         "donor_both",
		Recurrence:     "one_time",
		IdempotencyKey: "client-key-1",
	}
}

func TestDonationQuote(t *testing.T) {
	f := newDonationFixture()
	q, err := f.svc.Quote(dto.FeeQuoteReq{Amount: 2000, Policy: "donor_both"})
	if err != nil || q.Charge != 2112 || q.PlatformFee != 20 {
		t.Errorf("quote = %+v, %v", q, err)
	}
	if _, err := f.svc.Quote(dto.FeeQuoteReq{Amount: 2000, Policy: "bogus"}); constant.CodeOf(err) != constant.CodePolicyInvalid {
		t.Errorf("bad policy: got %v", err)
	}
}

func TestDonationSubmit_Success(t *testing.T) {
	f := newDonationFixture()
	vo, err := f.svc.Submit(context.Background(), donationReq())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(f.proc.calls) != 1 {
		t.Fatalf("processor calls = %d", len(f.proc.calls))
	}
	capture := f.proc.calls[0]
	if capture.Amount != 2112 || capture.PlatformFeeAmount != 20 || capture.DestinationAccount != "acct_a" || capture.DestinationAmount != 2092 {
		t.Errorf("capture = %+v", capture)
	}
	if f.proc.keys[0] != "1001" {
		t.Errorf("idempotency key = %s, want donation id", f.proc.keys[0])
	}
	if len(f.store.donations) != 1 {
		t.Fatalf("donations = %d", len(f.store.donations))
	}
	d := f.store.donations[0]
	if d.Status != "pending" || d.PaymentRef != "pi_1001" || d.Amount != 2000 || d.ChargeAmount != 2112 {
		t.Errorf("donation = %+v", d)
	}
	if vo.PaymentRef != "pi_1001" || vo.ClientSecret != "secret_1001" || vo.Quote.Charge != 2112 {
		t.Errorf("vo = %+v", vo)
	}
	if len(f.pub.events) != 1 || f.pub.events[0].topic != event.TopicDonationSubmitted {
		t.Errorf("events = %+v", f.pub.events)
	}
	if len(f.guard.released) != 0 {
		t.Error("guard released after success")
	}
}

func TestDonationSubmit_DuplicateInFlight(t *testing.T) {
	f := newDonationFixture()
	f.guard.held["client-key-1"] = true
	_, err := f.svc.Submit(context.Background(), donationReq())
	if constant.CodeOf(err) != constant.CodeDuplicateRequest {
		t.Errorf("got %v", err)
	}
	if len(f.proc.calls) != 0 {
		t.Error("processor called for duplicate")
	}
}

func TestDonationSubmit_GuardUnavailable(t *testing.T) {
	f := newDonationFixture()
	f.guard.err = errors.New("redis down")
	if _, err := f.svc.Submit(context.Background(), donationReq()); constant.CodeOf(err) != constant.CodeRedisError {
		t.Errorf("got %v", err)
	}
}

func TestDonationSubmit_FailFastWithoutSubAccount(t *testing.T) {
	f := newDonationFixture()
	req := donationReq()
	req.OrgID = orgC
	_, err := f.svc.Submit(context.Background(), req)
	if constant.CodeOf(err) != constant.CodeSubAccountMissing {
		t.Errorf("got %v", err)
	}
	if len(f.proc.calls) != 0 || len(f.store.donations) != 0 {
		t.Error("processor called or donation stored")
	}
	if len(f.guard.released) != 1 {
		t.Error("guard not released after failure")
	}
}

func TestDonationSubmit_UnknownOrganization(t *testing.T) {
	f := newDonationFixture()
	req := donationReq()
	req.OrgID = 404
	if _, err := f.svc.Submit(context.Background(), req); constant.CodeOf(err) != constant.CodeOrganizationNotFound {
		t.Errorf("got %v", err)
	}
}

func TestDonationSubmit_ProcessorFailureStoresNothing(t *testing.T) {
	f := newDonationFixture()
	f.proc.err = constant.ErrProcessor
	_, err := f.svc.Submit(context.Background(), donationReq())
	if !errors.Is(err, constant.ErrProcessor) {
		t.Errorf("got %v", err)
	}
	if len(f.store.donations) != 0 || len(f.pub.events) != 0 {
		t.Error("state written after processor failure")
	}
	if len(f.guard.released) != 1 {
		t.Error("guard not released")
	}
}

func TestDonationSubmit_PersistFailureAlerts(t *testing.T) {
	f := newDonationFixture()
	f.store.failDonation = errStoreDown
	_, err := f.svc.Submit(context.Background(), donationReq())
	if constant.CodeOf(err) != constant.CodeDatabaseError {
		t.Errorf("got %v", err)
	}
	if len(f.alert.titles) != 1 {
		t.Errorf("alerts = %v", f.alert.titles)
	}
}

func TestDonationSubmit_PublishFailureDoesNotFail(t *testing.T) {
	f := newDonationFixture()
	f.pub.err = errors.New("broker down")
	if _, err := f.svc.Submit(context.Background(), donationReq()); err != nil {
		t.Errorf("got %v", err)
	}
}

func TestDonationSubmit_WithAcceptedSplitAndDistribution(t *testing.T) {
	f := newDonationFixture()
	f.store.proposals[77] = &mainmodel.SplitProposal{
		ProposalID:          77,
		ProposerOrgID:       orgB,
		CounterpartyOrgID:   orgA,
		ProposerPercent:     decimal.NewFromInt(40),
		CounterpartyPercent: decimal.NewFromInt(60),
		Status:              mainmodel.SplitAccepted,
	}
	f.store.distributions[orgA] = &mainmodel.DistributionConfig{
		OrgID: orgA,
		Entries: []mainmodel.DistributionEntry{
			{Percentage: decimal.NewFromInt(50), AccountRef: "ops"},
			{Percentage: decimal.NewFromInt(50), AccountRef: "reserve"},
		},
	}
	req := donationReq()
	req.SplitID = 77
	if _, err := f.svc.Submit(context.Background(), req); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	legs := f.proc.calls[0].Legs()
	var total int64
	for _, l := range legs {
		total += l.Amount
	}
	if len(legs) != 3 || total != 2092 {
		t.Errorf("legs = %+v", legs)
	}
	if legs[0].Account != "ops" || legs[0].Amount != 628 || legs[2].Account != "acct_b" || legs[2].Amount != 837 {
		t.Errorf("legs = %+v", legs)
	}
	if legs[0].OrgID != orgA || legs[1].OrgID != orgA || legs[2].OrgID != orgB {
		t.Errorf("leg orgs = %+v", legs)
	}
}

func TestDonationSubmit_UnacceptedSplitRejected(t *testing.T) {
	f := newDonationFixture()
	f.store.proposals[77] = &mainmodel.SplitProposal{
		ProposalID:          77,
		ProposerOrgID:       orgA,
		CounterpartyOrgID:   orgB,
		ProposerPercent:     decimal.NewFromInt(50),
		CounterpartyPercent: decimal.NewFromInt(50),
		Status:              mainmodel.SplitProposed,
	}
	for _, id := range []uint64{77, 78} {
		req := donationReq()
		req.SplitID = id
		req.IdempotencyKey = ""
		if _, err := f.svc.Submit(context.Background(), req); constant.CodeOf(err) != constant.CodeSplitAgreementInvalid {
			t.Errorf("split %d: got %v", id, err)
		}
	}
	if len(f.proc.calls) != 0 {
		t.Error("processor called")
	}
}
