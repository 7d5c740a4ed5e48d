package service

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/constant"
	"donation-settle-api/internal/dto"
	"donation-settle-api/internal/event"
	"donation-settle-api/internal/fee"
	"donation-settle-api/internal/idgen"
	mainmodel "donation-settle-api/internal/model/main"
	ordermodel "donation-settle-api/internal/model/order"
	"donation-settle-api/internal/notify"
	"donation-settle-api/internal/settlement"
)

type DonationStore interface {
	CreateDonation(ctx context.Context, d *ordermodel.Donation) error
}

type ProposalReader interface {
	GetProposal(ctx context.Context, proposalID uint64) (*mainmodel.SplitProposal, error)
}

type DistributionReader interface {
	GetDistribution(ctx context.Context, orgID uint64) (*mainmodel.DistributionConfig, error)
}

// SubmissionGuard rejects a second submission with the same client key while the
// first is in flight.
type SubmissionGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// DonationDeps groups the collaborators of DonationService. Proposals and
// Distributions are nil when the matching feature is switched off.
type DonationDeps struct {
	Orgs          OrgReader
	Proposals     ProposalReader
	Distributions DistributionReader
	Donations     DonationStore
	Guard         SubmissionGuard
	Processor     CaptureClient
	Publisher     event.Publisher
	Alert         notify.Alerter
	IDs           idgen.Generator
}

type DonationService struct {
	deps     DonationDeps
	schedule fee.Schedule
	builder  *settlement.Builder
	guardTTL time.Duration
	log      *logrus.Logger
	now      func() time.Time
}

func NewDonationService(deps DonationDeps, schedule fee.Schedule, currency string, guardTTL time.Duration, log *logrus.Logger) *DonationService {
	return &DonationService{
		deps:     deps,
		schedule: schedule,
		builder:  settlement.NewBuilder(schedule, currency),
		guardTTL: guardTTL,
		log:      log,
		now:      time.Now,
	}
}

// Quote prices a donation without side effects.
func (s *DonationService) Quote(req dto.FeeQuoteReq) (fee.Quote, error) {
	policy, err := fee.ParsePolicy(req.Policy)
	if err != nil {
		return fee.Quote{}, err
	}
	return s.schedule.Calculate(req.Amount, policy)
}

// Submit builds the capture request, sends it to the processor once and records the
// donation as pending. Nothing is stored when the processor call fails.
func (s *DonationService) Submit(ctx context.Context, req dto.CreateDonationReq) (vo *dto.DonationVo, err error) {
	policy, err := fee.ParsePolicy(req.Policy)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		ok, gerr := s.deps.Guard.Acquire(ctx, req.IdempotencyKey, s.guardTTL)
		if gerr != nil {
			s.log.WithError(gerr).Error("donation guard unavailable")
			return nil, constant.NewError(constant.CodeRedisError)
		}
		if !ok {
			return nil, constant.NewError(constant.CodeDuplicateRequest)
		}
		defer func() {
			// keep the guard on success so a resubmission inside the TTL is refused
			if err != nil {
				_ = s.deps.Guard.Release(context.Background(), req.IdempotencyKey)
			}
		}()
	}

	org, err := s.deps.Orgs.GetOrganization(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, constant.NewError(constant.CodeOrganizationNotFound)
	}
	dest, err := s.party(ctx, org)
	if err != nil {
		return nil, err
	}
	var terms *settlement.SplitTerms
	if req.SplitID != 0 {
		if terms, err = s.splitTerms(ctx, req.SplitID, org.OrgID); err != nil {
			return nil, err
		}
	}

	intent := settlement.Intent{
		Amount:     req.Amount,
		OrgID:      org.OrgID,
		CampaignID: req.CampaignID,
		FundID:     req.FundID,
		DonorEmail: req.DonorEmail,
		DonorName:  req.DonorName,
		Policy:     policy,
		Anonymous:  req.Anonymous,
		Recurrence: settlement.Recurrence(req.Recurrence),
		SplitID:    req.SplitID,
		Currency:   req.Currency,
	}
	capture, quote, err := s.builder.Build(intent, dest, terms)
	if err != nil {
		return nil, err
	}

	donationID := s.deps.IDs.Next()
	result, err := s.deps.Processor.Capture(ctx, strconv.FormatUint(donationID, 10), capture)
	if err != nil {
		return nil, err
	}

	d := &ordermodel.Donation{
		DonationID:     donationID,
		OrgID:          org.OrgID,
		CampaignID:     req.CampaignID,
		FundID:         req.FundID,
		SplitID:        req.SplitID,
		DonorEmail:     req.DonorEmail,
		DonorName:      req.DonorName,
		Anonymous:      req.Anonymous,
		Recurrence:     capture.Metadata["recurrence"],
		Policy:         string(policy),
		Currency:       capture.Currency,
		Amount:         req.Amount,
		ChargeAmount:   quote.Charge,
		PlatformFee:    quote.PlatformFee,
		PaymentRef:     result.PaymentRef,
		IdempotencyKey: req.IdempotencyKey,
		Status:         ordermodel.DonationPending,
	}
	if err := s.deps.Donations.CreateDonation(ctx, d); err != nil {
		// the charge exists at the processor; operators must reconcile by payment_ref
		s.log.WithError(err).WithFields(logrus.Fields{"donation_id": donationID, "payment_ref": result.PaymentRef}).Error("persist donation failed after capture")
		s.deps.Alert.Alert("error", "donation not persisted after capture", map[string]string{
			"donation_id": strconv.FormatUint(donationID, 10),
			"payment_ref": result.PaymentRef,
			"error":       err.Error(),
		})
		return nil, constant.NewError(constant.CodeDatabaseError)
	}

	event.PublishBestEffort(s.deps.Publisher, s.log, event.TopicDonationSubmitted, event.DonationSubmitted{
		DonationID:   d.DonationID,
		OrgID:        d.OrgID,
		SplitID:      d.SplitID,
		PaymentRef:   d.PaymentRef,
		Amount:       d.Amount,
		ChargeAmount: d.ChargeAmount,
		PlatformFee:  d.PlatformFee,
		Currency:     d.Currency,
		Policy:       d.Policy,
		SubmittedAt:  s.now(),
	})
	s.log.WithFields(logrus.Fields{
		"donation_id": d.DonationID,
		"org_id":      d.OrgID,
		"charge":      d.ChargeAmount,
		"policy":      d.Policy,
		"payment_ref": d.PaymentRef,
	}).Info("donation submitted")

	return &dto.DonationVo{
		DonationID:   d.DonationID,
		OrgID:        d.OrgID,
		PaymentRef:   d.PaymentRef,
		ClientSecret: result.ClientSecret,
		Status:       d.Status,
		Currency:     d.Currency,
		Quote:        quote,
	}, nil
}

// party loads an organization's sub-account and internal distribution.
func (s *DonationService) party(ctx context.Context, org *mainmodel.Organization) (settlement.Party, error) {
	p := settlement.Party{OrgID: org.OrgID, SubAccount: org.SubAccount}
	if s.deps.Distributions == nil {
		return p, nil
	}
	cfg, err := s.deps.Distributions.GetDistribution(ctx, org.OrgID)
	if err != nil {
		return p, err
	}
	if cfg != nil {
		for _, e := range cfg.Entries {
			p.Distribution = append(p.Distribution, settlement.Share{AccountRef: e.AccountRef, Percentage: e.Percentage})
		}
	}
	return p, nil
}

// splitTerms resolves an agreement from the destination's point of view. An agreement
// that does not exist or does not involve the destination is reported as not accepted.
func (s *DonationService) splitTerms(ctx context.Context, splitID, destOrgID uint64) (*settlement.SplitTerms, error) {
	if s.deps.Proposals == nil {
		return nil, nil
	}
	p, err := s.deps.Proposals.GetProposal(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.Involves(destOrgID) {
		return nil, nil
	}
	partnerID := p.CounterpartyOrgID
	if partnerID == destOrgID {
		partnerID = p.ProposerOrgID
	}
	partnerOrg, err := s.deps.Orgs.GetOrganization(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partnerOrg == nil {
		return nil, constant.Newf(constant.CodeSplitAgreementInvalid, "split partner %d no longer exists", partnerID)
	}
	partner, err := s.party(ctx, partnerOrg)
	if err != nil {
		return nil, err
	}
	return &settlement.SplitTerms{
		ID:             p.ProposalID,
		Accepted:       p.Status == mainmodel.SplitAccepted,
		DestPercent:    p.PercentFor(destOrgID),
		Partner:        partner,
		PartnerPercent: p.PercentFor(partnerID),
	}, nil
}
