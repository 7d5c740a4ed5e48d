// Package callback ingests settlement notifications from the card and bank rails.
package callback

import (
	"net/http"
	"time"

	"donation-settle-api/internal/dao"
)

// Notification is the rail-neutral part of an inbound notification.
type Notification struct {
	ID         string
	Category   string
	ExternalID string
}

// Rail knows one sender's signature scheme, body shape and category vocabulary.
type Rail interface {
	Name() string
	Target() dao.TargetKind
	// Verify authenticates the raw body before anything else looks at it.
	Verify(h http.Header, body []byte, now time.Time) error
	Parse(h http.Header, body []byte) (*Notification, error)
	// Status maps a category to the target status; ok is false for categories the
	// rail does not handle.
	Status(category string) (status string, ok bool)
	Terminal(status string) bool
}
