package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/constant"
	"donation-settle-api/internal/dto"
	"donation-settle-api/internal/idgen"
	mainmodel "donation-settle-api/internal/model/main"
)

type DistributionStore interface {
	GetDistribution(ctx context.Context, orgID uint64) (*mainmodel.DistributionConfig, error)
	ReplaceDistribution(ctx context.Context, cfg *mainmodel.DistributionConfig) error
}

// DistributionService maintains each organization's internal fund-distribution config.
type DistributionService struct {
	store   DistributionStore
	authz   *Authorizer
	ids     idgen.Generator
	enabled bool
	log     *logrus.Logger
}

func NewDistributionService(store DistributionStore, authz *Authorizer, ids idgen.Generator, enabled bool, log *logrus.Logger) *DistributionService {
	return &DistributionService{store: store, authz: authz, ids: ids, enabled: enabled, log: log}
}

func (s *DistributionService) checkEnabled() error {
	if !s.enabled {
		return constant.ErrFeatureDisabled.WithMessage("internal distributions are not enabled")
	}
	return nil
}

// Replace validates entries completely before writing, then swaps the whole config.
func (s *DistributionService) Replace(ctx context.Context, actor string, orgID uint64, entries []dto.DistributionEntryReq) (*dto.DistributionVo, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRepresentative(ctx, actor, orgID); err != nil {
		return nil, err
	}
	clean, err := validateEntries(entries)
	if err != nil {
		return nil, err
	}

	cfg := &mainmodel.DistributionConfig{
		ConfigID:  s.ids.Next(),
		OrgID:     orgID,
		UpdatedBy: actor,
		Entries:   clean,
	}
	if err := s.store.ReplaceDistribution(ctx, cfg); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"org_id": orgID, "entries": len(clean), "by": actor}).Info("distribution replaced")
	return toDistributionVo(cfg), nil
}

func (s *DistributionService) Get(ctx context.Context, actor string, orgID uint64) (*dto.DistributionVo, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRepresentative(ctx, actor, orgID); err != nil {
		return nil, err
	}
	cfg, err := s.store.GetDistribution(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, constant.NewError(constant.CodeDistributionNotFound)
	}
	return toDistributionVo(cfg), nil
}

// validateEntries requires positive two-decimal percentages, distinct non-empty
// account refs and a sum of exactly 100.
func validateEntries(entries []dto.DistributionEntryReq) ([]mainmodel.DistributionEntry, error) {
	if len(entries) == 0 {
		return nil, constant.NewError(constant.CodeDistributionEmpty)
	}
	seen := make(map[string]struct{}, len(entries))
	out := make([]mainmodel.DistributionEntry, 0, len(entries))
	total := decimal.Zero
	for i, e := range entries {
		ref := strings.TrimSpace(e.AccountRef)
		if ref == "" {
			return nil, constant.Newf(constant.CodeDistributionEntryInvalid, "entry %d: account_ref is required", i)
		}
		if !e.Percentage.IsPositive() {
			return nil, constant.Newf(constant.CodeDistributionEntryInvalid, "entry %d: percentage must be greater than 0", i)
		}
		if !fitsColumn(e.Percentage) {
			return nil, constant.Newf(constant.CodeDistributionEntryInvalid, "entry %d: percentage %s has more than 2 decimals", i, e.Percentage)
		}
		if _, dup := seen[ref]; dup {
			return nil, constant.Newf(constant.CodeDistributionEntryInvalid, "entry %d: account_ref %q repeated", i, ref)
		}
		seen[ref] = struct{}{}
		total = total.Add(e.Percentage)
		out = append(out, mainmodel.DistributionEntry{Seq: i, Percentage: e.Percentage, AccountRef: ref})
	}
	if !total.Equal(hundred) {
		return nil, constant.Newf(constant.CodeDistributionPercentSum, "percentages sum to %s, must be exactly 100", total)
	}
	return out, nil
}

func toDistributionVo(cfg *mainmodel.DistributionConfig) *dto.DistributionVo {
	vo := &dto.DistributionVo{
		OrgID:      cfg.OrgID,
		UpdatedBy:  cfg.UpdatedBy,
		UpdateTime: cfg.UpdateTime,
		Entries:    make([]dto.DistributionEntryVo, 0, len(cfg.Entries)),
	}
	for _, e := range cfg.Entries {
		vo.Entries = append(vo.Entries, dto.DistributionEntryVo{Percentage: e.Percentage, AccountRef: e.AccountRef})
	}
	return vo
}
