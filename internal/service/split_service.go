package service

import (
	"context"
	"time"

	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/constant"
	"donation-settle-api/internal/dto"
	"donation-settle-api/internal/idgen"
	mainmodel "donation-settle-api/internal/model/main"
)

type SplitStore interface {
	GetConnection(ctx context.Context, connectionID uint64) (*mainmodel.Connection, error)
	CreateProposal(ctx context.Context, p *mainmodel.SplitProposal) error
	GetProposal(ctx context.Context, proposalID uint64) (*mainmodel.SplitProposal, error)
	ResolveProposal(ctx context.Context, proposalID uint64, status, userID string, at time.Time) (bool, error)
	ListProposalsByOrg(ctx context.Context, orgID uint64) ([]mainmodel.SplitProposal, error)
}

type SplitOptions struct {
	Enabled bool
	// StrictPercentages rejects pairs that do not sum to 100 instead of falling back to 50/50.
	StrictPercentages bool
}

var (
	hundred          = decimal.NewFromInt(100)
	fifty            = decimal.NewFromInt(50)
	percentTolerance = decimal.RequireFromString("0.01")
)

// fitsColumn reports whether d survives a decimal(5,2) column unchanged.
func fitsColumn(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}

// SplitService negotiates split agreements between two connected organizations.
type SplitService struct {
	store SplitStore
	authz *Authorizer
	ids   idgen.Generator
	opts  SplitOptions
	log   *logrus.Logger
	now   func() time.Time
}

func NewSplitService(store SplitStore, authz *Authorizer, ids idgen.Generator, opts SplitOptions, log *logrus.Logger) *SplitService {
	return &SplitService{store: store, authz: authz, ids: ids, opts: opts, log: log, now: time.Now}
}

func (s *SplitService) enabled() error {
	if !s.opts.Enabled {
		return constant.ErrFeatureDisabled.WithMessage("split agreements are not enabled")
	}
	return nil
}

// Create records a proposal from proposerOrgID to the other side of the connection.
func (s *SplitService) Create(ctx context.Context, actor string, req dto.CreateSplitReq) (*dto.SplitVo, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	if req.Amount < 1 {
		return nil, constant.Newf(constant.CodeParamsRangeError, "amount must be at least 1")
	}
	if err := s.authz.RequireRepresentative(ctx, actor, req.ProposerOrgID); err != nil {
		return nil, err
	}

	conn, err := s.store.GetConnection(ctx, req.ConnectionID)
	if err != nil {
		return nil, err
	}
	if conn == nil || conn.Status != mainmodel.ConnectionActive || conn.OrgAID == conn.OrgBID || !conn.Links(req.ProposerOrgID) {
		return nil, constant.NewError(constant.CodeConnectionInvalid)
	}

	proposerPct, counterPct, err := s.normalizePercentages(req.ProposerPercent, req.CounterpartyPercent)
	if err != nil {
		return nil, err
	}

	p := &mainmodel.SplitProposal{
		ProposalID:          s.ids.Next(),
		ConnectionID:        conn.ConnectionID,
		ProposerOrgID:       req.ProposerOrgID,
		CounterpartyOrgID:   conn.Other(req.ProposerOrgID),
		ProposerPercent:     proposerPct,
		CounterpartyPercent: counterPct,
		Amount:              req.Amount,
		Description:         req.Description,
		Status:              mainmodel.SplitProposed,
		CreatedBy:           actor,
		CreateTime:          s.now(),
	}
	if err := s.store.CreateProposal(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"proposal_id": p.ProposalID,
		"proposer":    p.ProposerOrgID,
		"counterpart": p.CounterpartyOrgID,
		"percent":     p.ProposerPercent.String() + "/" + p.CounterpartyPercent.String(),
	}).Info("split proposed")
	return toSplitVo(p), nil
}

// normalizePercentages keeps a pair of two-decimal values within 0.01 of 100.
// Anything else becomes 50/50, or an error in strict mode.
func (s *SplitService) normalizePercentages(a, b decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	inRange := func(d decimal.Decimal) bool {
		return !d.IsNegative() && d.LessThanOrEqual(hundred) && fitsColumn(d)
	}
	if inRange(a) && inRange(b) && a.Add(b).Sub(hundred).Abs().LessThanOrEqual(percentTolerance) {
		return a, b, nil
	}
	if s.opts.StrictPercentages {
		return a, b, constant.Newf(constant.CodeSplitPercentInvalid, "percentages %s and %s must sum to 100", a, b)
	}
	return fifty, fifty, nil
}

func (s *SplitService) Accept(ctx context.Context, actor string, proposalID uint64) (*dto.SplitVo, error) {
	return s.resolve(ctx, actor, proposalID, mainmodel.SplitAccepted)
}

func (s *SplitService) Reject(ctx context.Context, actor string, proposalID uint64) (*dto.SplitVo, error) {
	return s.resolve(ctx, actor, proposalID, mainmodel.SplitRejected)
}

// resolve is only open to the counterparty's representative. Missing, already
// resolved and foreign proposals all look the same to the caller.
func (s *SplitService) resolve(ctx context.Context, actor string, proposalID uint64, status string) (*dto.SplitVo, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	if actor == "" {
		return nil, constant.NewError(constant.CodeUnauthorized)
	}
	p, err := s.store.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, constant.ErrProposalMissing
	}
	ok, err := s.authz.IsRepresentative(ctx, actor, p.CounterpartyOrgID)
	if err != nil {
		return nil, err
	}
	if !ok || p.Status != mainmodel.SplitProposed {
		return nil, constant.ErrProposalMissing
	}

	at := s.now()
	resolved, err := s.store.ResolveProposal(ctx, proposalID, status, actor, at)
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, constant.ErrProposalMissing
	}
	p.Status = status
	p.ResolvedBy = actor
	p.ResolvedAt = &at
	s.log.WithFields(logrus.Fields{"proposal_id": proposalID, "status": status, "by": actor}).Info("split resolved")
	return toSplitVo(p), nil
}

// Get is visible to the representative of either party only.
func (s *SplitService) Get(ctx context.Context, actor string, proposalID uint64) (*dto.SplitVo, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	p, err := s.store.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, constant.ErrProposalMissing
	}
	for _, org := range []uint64{p.ProposerOrgID, p.CounterpartyOrgID} {
		ok, err := s.authz.IsRepresentative(ctx, actor, org)
		if err != nil {
			return nil, err
		}
		if ok {
			return toSplitVo(p), nil
		}
	}
	return nil, constant.ErrProposalMissing
}

func (s *SplitService) ListForOrganization(ctx context.Context, actor string, orgID uint64) ([]dto.SplitVo, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRepresentative(ctx, actor, orgID); err != nil {
		return nil, err
	}
	list, err := s.store.ListProposalsByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SplitVo, 0, len(list))
	for i := range list {
		out = append(out, *toSplitVo(&list[i]))
	}
	return out, nil
}

func toSplitVo(p *mainmodel.SplitProposal) *dto.SplitVo {
	var vo dto.SplitVo
	_ = copier.Copy(&vo, p)
	return &vo
}
