package callback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/constant"
	"donation-settle-api/internal/dao"
	"donation-settle-api/internal/event"
	ordermodel "donation-settle-api/internal/model/order"
	"donation-settle-api/internal/notify"
)

// Outcome describes what a notification did. Every outcome is acknowledged.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeNoTarget  Outcome = "not_found"
	OutcomeUnchanged Outcome = "unchanged"
)

// SeenCache remembers notification ids whose effect already committed.
type SeenCache interface {
	Seen(ctx context.Context, rail, eventID string) (bool, error)
	Mark(ctx context.Context, rail, eventID string) error
}

type ReconcilerOptions struct {
	// TerminalGuard keeps completed/failed targets from being overwritten by late
	// notifications. Off means the last notification wins.
	TerminalGuard bool
}

// Reconciler applies rail notifications to transfers and donations. It keeps no state
// between calls; deduplication and ordering live in the database.
type Reconciler struct {
	store dao.SettlementStore
	seen  SeenCache
	pub   event.Publisher
	alert notify.Alerter
	log   *logrus.Logger
	opts  ReconcilerOptions
	now   func() time.Time
}

func NewReconciler(store dao.SettlementStore, seen SeenCache, pub event.Publisher, alert notify.Alerter, opts ReconcilerOptions, log *logrus.Logger) *Reconciler {
	if pub == nil {
		pub = event.Nop{}
	}
	if alert == nil {
		alert = notify.Nop{}
	}
	return &Reconciler{store: store, seen: seen, pub: pub, alert: alert, log: log, opts: opts, now: time.Now}
}

// Handle processes one raw notification. A non-nil error is either constant.ErrSignature
// or a storage failure the sender should redeliver.
func (r *Reconciler) Handle(ctx context.Context, rail Rail, h http.Header, body []byte) (Outcome, error) {
	now := r.now()
	if err := rail.Verify(h, body, now); err != nil {
		r.log.WithFields(logrus.Fields{"rail": rail.Name(), "bytes": len(body)}).Warn("webhook signature rejected")
		r.alert.Alert("warn", "webhook signature rejected", map[string]string{"rail": rail.Name()})
		return "", constant.ErrSignature
	}

	n, err := rail.Parse(h, body)
	if err != nil {
		r.log.WithError(err).WithField("rail", rail.Name()).Warn("webhook body unreadable")
		return OutcomeIgnored, nil
	}
	fields := logrus.Fields{"rail": rail.Name(), "event_id": n.ID, "category": n.Category, "external_id": n.ExternalID}
	status, ok := rail.Status(n.Category)
	if !ok {
		r.log.WithFields(fields).Info("webhook category ignored")
		return OutcomeIgnored, nil
	}
	if n.ID == "" || n.ExternalID == "" {
		r.log.WithFields(fields).Warn("webhook missing identifiers")
		return OutcomeIgnored, nil
	}

	if r.seen != nil {
		seen, err := r.seen.Seen(ctx, rail.Name(), n.ID)
		if err != nil {
			r.log.WithError(err).WithFields(fields).Warn("seen cache unavailable")
		} else if seen {
			r.log.WithFields(fields).Info("webhook already processed")
			return OutcomeDuplicate, nil
		}
	}

	var (
		outcome Outcome
		target  *dao.Target
		old     string
	)
	err = r.store.InSettlementTx(ctx, func(tx dao.SettlementTx) error {
		inserted, err := tx.InsertEvent(&ordermodel.SettlementEvent{
			EventID:     rail.Name() + ":" + n.ID,
			Rail:        rail.Name(),
			Category:    n.Category,
			ExternalRef: n.ExternalID,
			Payload:     string(body),
			ReceivedAt:  now,
		})
		if err != nil {
			return err
		}
		if !inserted {
			outcome = OutcomeDuplicate
			return nil
		}
		target, err = tx.LockTarget(rail.Target(), n.ExternalID)
		if err != nil {
			return err
		}
		if target == nil {
			outcome = OutcomeNoTarget
			return nil
		}
		old = target.Status
		if old == status || (r.opts.TerminalGuard && rail.Terminal(old)) {
			outcome = OutcomeUnchanged
			return nil
		}
		if err := tx.SetStatus(target, status); err != nil {
			return err
		}
		outcome = OutcomeApplied
		return nil
	})
	if err != nil {
		r.log.WithError(err).WithFields(fields).Error("webhook reconcile failed")
		return "", fmt.Errorf("reconcile %s %s: %w", rail.Name(), n.ID, err)
	}

	if r.seen != nil {
		if err := r.seen.Mark(ctx, rail.Name(), n.ID); err != nil {
			r.log.WithError(err).WithFields(fields).Warn("mark seen failed")
		}
	}
	fields["outcome"] = outcome
	if outcome != OutcomeApplied {
		r.log.WithFields(fields).Info("webhook acknowledged")
		return outcome, nil
	}

	fields["old_status"], fields["new_status"] = old, status
	r.log.WithFields(fields).Info("settlement status updated")
	event.PublishBestEffort(r.pub, r.log, event.TopicStatusChanged, event.StatusChanged{
		Rail:       rail.Name(),
		EventID:    n.ID,
		Category:   n.Category,
		TargetKind: string(target.Kind),
		TargetID:   target.ID,
		ExternalID: n.ExternalID,
		OldStatus:  old,
		NewStatus:  status,
		OccurredAt: now,
	})
	return outcome, nil
}

// IsAuthFailure reports whether err came from signature verification.
func IsAuthFailure(err error) bool {
	return errors.Is(err, constant.ErrSignature)
}
