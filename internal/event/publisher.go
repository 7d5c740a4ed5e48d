// Package event defines what the service announces after a state change commits.
package event

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	TopicStatusChanged     = "settlement.status_changed"
	TopicDonationSubmitted = "donation.submitted"
)

type Publisher interface {
	Publish(topic string, msg any) error
}

// StatusChanged is published after a notification changed a settlement target.
type StatusChanged struct {
	Rail       string    `json:"rail"`
	EventID    string    `json:"event_id"`
	Category   string    `json:"category"`
	TargetKind string    `json:"target_kind"`
	TargetID   uint64    `json:"target_id,string"`
	ExternalID string    `json:"external_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DonationSubmitted is published once the processor accepted a capture.
type DonationSubmitted struct {
	DonationID   uint64    `json:"donation_id,string"`
	OrgID        uint64    `json:"org_id,string"`
	SplitID      uint64    `json:"split_id,string,omitempty"`
	PaymentRef   string    `json:"payment_ref"`
	Amount       int64     `json:"amount"`
	ChargeAmount int64     `json:"charge_amount"`
	PlatformFee  int64     `json:"platform_fee"`
	Currency     string    `json:"currency"`
	Policy       string    `json:"policy"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// PublishBestEffort publishes and only logs a failure; callers have already committed.
func PublishBestEffort(pub Publisher, log *logrus.Logger, topic string, msg any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(topic, msg); err != nil {
		log.WithError(err).WithField("topic", topic).Warn("publish event failed")
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(string, any) error { return nil }
