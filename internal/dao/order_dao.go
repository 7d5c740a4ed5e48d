package dao

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"donation-settle-api/internal/dal"
	ordermodel "donation-settle-api/internal/model/order"
)

// OrderDao covers donations, bank transfers and the settlement event log.
type OrderDao struct {
	DB *gorm.DB
}

// NewOrderDao uses dal.MainDB.
func NewOrderDao() *OrderDao {
	if dal.MainDB == nil {
		log.Panic("[FATAL] dal.MainDB is nil - database not initialized")
	}
	return &OrderDao{DB: dal.MainDB}
}

func NewOrderDaoWithDB(db *gorm.DB) *OrderDao {
	if db == nil {
		log.Panic("[FATAL] db cannot be nil")
	}
	return &OrderDao{DB: db}
}

func (r *OrderDao) checkDB() error {
	if r == nil {
		return errors.New("OrderDao is nil")
	}
	if r.DB == nil {
		return errors.New("DB connection is nil")
	}
	return nil
}

func (r *OrderDao) CreateDonation(ctx context.Context, d *ordermodel.Donation) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("create donation: %w", err)
	}
	return nil
}

func (r *OrderDao) GetDonation(ctx context.Context, donationID uint64) (*ordermodel.Donation, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	var d ordermodel.Donation
	err := r.DB.WithContext(ctx).Where("donation_id = ?", donationID).First(&d).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get donation %d: %w", donationID, err)
	}
	return &d, nil
}

// TargetKind names the record type a rail settles.
type TargetKind string

const (
	TargetTransfer TargetKind = "transfer"
	TargetDonation TargetKind = "donation"
)

// Target is a locked settlement target.
type Target struct {
	Kind   TargetKind
	ID     uint64
	Status string
}

// SettlementTx is the view of one reconciliation transaction.
type SettlementTx interface {
	// InsertEvent reports false when the event id was already logged.
	InsertEvent(evt *ordermodel.SettlementEvent) (bool, error)
	// LockTarget returns nil when no record matches externalID.
	LockTarget(kind TargetKind, externalID string) (*Target, error)
	SetStatus(t *Target, status string) error
}

// SettlementStore runs fn inside one database transaction.
type SettlementStore interface {
	InSettlementTx(ctx context.Context, fn func(tx SettlementTx) error) error
}

func (r *OrderDao) InSettlementTx(ctx context.Context, fn func(tx SettlementTx) error) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&settlementTx{tx: tx})
	})
}

type settlementTx struct {
	tx *gorm.DB
}

func (s *settlementTx) InsertEvent(evt *ordermodel.SettlementEvent) (bool, error) {
	// a savepoint keeps the outer transaction usable after a duplicate-key failure
	err := s.tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(evt).Error
	})
	if IsDuplicateKey(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert settlement event %s: %w", evt.EventID, err)
	}
	return true, nil
}

func lockTransferByExternalID(tx *gorm.DB, externalID string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("external_id = ?", externalID)
}

// lockTransferByResourceURL finds rows written before external_id existed; they
// only carry the resource URL ending in the id.
func lockTransferByResourceURL(tx *gorm.DB, externalID string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(`external_id = '' AND resource_url LIKE ? ESCAPE '\\'`, "%/"+escapeLike(externalID))
}

func lockDonationByPaymentRef(tx *gorm.DB, paymentRef string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("payment_ref = ?", paymentRef)
}

func (s *settlementTx) LockTarget(kind TargetKind, externalID string) (*Target, error) {
	switch kind {
	case TargetTransfer:
		var t ordermodel.Transfer
		err := lockTransferByExternalID(s.tx, externalID).First(&t).Error
		if isNotFound(err) {
			err = lockTransferByResourceURL(s.tx, externalID).First(&t).Error
		}
		if isNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("lock transfer %s: %w", externalID, err)
		}
		return &Target{Kind: kind, ID: t.TransferID, Status: t.Status}, nil
	case TargetDonation:
		var d ordermodel.Donation
		err := lockDonationByPaymentRef(s.tx, externalID).First(&d).Error
		if isNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("lock donation %s: %w", externalID, err)
		}
		return &Target{Kind: kind, ID: d.DonationID, Status: d.Status}, nil
	}
	return nil, fmt.Errorf("unknown target kind %q", kind)
}

func (s *settlementTx) SetStatus(t *Target, status string) error {
	var err error
	switch t.Kind {
	case TargetTransfer:
		err = s.tx.Model(&ordermodel.Transfer{}).Where("transfer_id = ?", t.ID).Update("status", status).Error
	case TargetDonation:
		err = s.tx.Model(&ordermodel.Donation{}).Where("donation_id = ?", t.ID).Update("status", status).Error
	default:
		err = fmt.Errorf("unknown target kind %q", t.Kind)
	}
	if err != nil {
		return fmt.Errorf("set %s %d status: %w", t.Kind, t.ID, err)
	}
	t.Status = status
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
