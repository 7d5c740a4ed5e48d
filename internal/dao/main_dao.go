package dao

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"donation-settle-api/internal/dal"
	mainmodel "donation-settle-api/internal/model/main"
)

// MainDao covers organizations, connections, split proposals and distribution configs.
// Lookups return (nil, nil) when the row does not exist.
type MainDao struct {
	DB *gorm.DB
}

// NewMainDao uses dal.MainDB.
func NewMainDao() *MainDao {
	if dal.MainDB == nil {
		log.Panic("[FATAL] dal.MainDB is nil - database not initialized")
	}
	return &MainDao{DB: dal.MainDB}
}

func NewMainDaoWithDB(db *gorm.DB) *MainDao {
	if db == nil {
		log.Panic("[FATAL] db cannot be nil")
	}
	return &MainDao{DB: db}
}

func (r *MainDao) checkDB() error {
	if r == nil {
		return errors.New("MainDao is nil")
	}
	if r.DB == nil {
		return errors.New("DB connection is nil")
	}
	return nil
}

func (r *MainDao) GetOrganization(ctx context.Context, orgID uint64) (*mainmodel.Organization, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	var o mainmodel.Organization
	err := r.DB.WithContext(ctx).Where("org_id = ?", orgID).First(&o).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get organization %d: %w", orgID, err)
	}
	return &o, nil
}

func (r *MainDao) GetConnection(ctx context.Context, connectionID uint64) (*mainmodel.Connection, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	var c mainmodel.Connection
	err := r.DB.WithContext(ctx).Where("connection_id = ?", connectionID).First(&c).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get connection %d: %w", connectionID, err)
	}
	return &c, nil
}

func (r *MainDao) CreateProposal(ctx context.Context, p *mainmodel.SplitProposal) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create proposal: %w", err)
	}
	return nil
}

func (r *MainDao) GetProposal(ctx context.Context, proposalID uint64) (*mainmodel.SplitProposal, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	var p mainmodel.SplitProposal
	err := r.DB.WithContext(ctx).Where("proposal_id = ?", proposalID).First(&p).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get proposal %d: %w", proposalID, err)
	}
	return &p, nil
}

// ResolveProposal moves a proposal out of "proposed". It reports false when another
// resolution got there first.
func (r *MainDao) ResolveProposal(ctx context.Context, proposalID uint64, status, userID string, at time.Time) (bool, error) {
	if err := r.checkDB(); err != nil {
		return false, err
	}
	res := r.DB.WithContext(ctx).Model(&mainmodel.SplitProposal{}).
		Where("proposal_id = ? AND status = ?", proposalID, mainmodel.SplitProposed).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_by": userID,
			"resolved_at": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("resolve proposal %d: %w", proposalID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *MainDao) ListProposalsByOrg(ctx context.Context, orgID uint64) ([]mainmodel.SplitProposal, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	var list []mainmodel.SplitProposal
	err := r.DB.WithContext(ctx).
		Where("proposer_org_id = ? OR counterparty_org_id = ?", orgID, orgID).
		Order("create_time DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list proposals for org %d: %w", orgID, err)
	}
	return list, nil
}

func (r *MainDao) GetDistribution(ctx context.Context, orgID uint64) (*mainmodel.DistributionConfig, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	var cfg mainmodel.DistributionConfig
	err := r.DB.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where("org_id = ?", orgID).
		First(&cfg).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get distribution for org %d: %w", orgID, err)
	}
	return &cfg, nil
}

// ReplaceDistribution upserts the organization's config and swaps all of its entries
// in one transaction. cfg.ConfigID is used only when no config exists yet.
func (r *MainDao) ReplaceDistribution(ctx context.Context, cfg *mainmodel.DistributionConfig) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing mainmodel.DistributionConfig
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("org_id = ?", cfg.OrgID).
			First(&existing).Error
		switch {
		case isNotFound(err):
			entries := cfg.Entries
			cfg.Entries = nil
			if err := tx.Create(cfg).Error; err != nil {
				return fmt.Errorf("create distribution config: %w", err)
			}
			cfg.Entries = entries
		case err != nil:
			return fmt.Errorf("lock distribution config: %w", err)
		default:
			if err := tx.Model(&existing).Updates(adoptDistribution(cfg, &existing, time.Now())).Error; err != nil {
				return fmt.Errorf("update distribution config: %w", err)
			}
			if err := tx.Where("config_id = ?", existing.ConfigID).Delete(&mainmodel.DistributionEntry{}).Error; err != nil {
				return fmt.Errorf("clear distribution entries: %w", err)
			}
		}

		for i := range cfg.Entries {
			cfg.Entries[i].ID = 0
			cfg.Entries[i].ConfigID = cfg.ConfigID
			cfg.Entries[i].Seq = i
		}
		if len(cfg.Entries) > 0 {
			if err := tx.Create(&cfg.Entries).Error; err != nil {
				return fmt.Errorf("insert distribution entries: %w", err)
			}
		}
		return nil
	})
}

// adoptDistribution points cfg at the stored row and returns the columns to update.
func adoptDistribution(cfg, existing *mainmodel.DistributionConfig, now time.Time) map[string]interface{} {
	cfg.ConfigID = existing.ConfigID
	cfg.CreateTime = existing.CreateTime
	cfg.UpdateTime = now
	return map[string]interface{}{
		"updated_by":  cfg.UpdatedBy,
		"update_time": now,
	}
}
