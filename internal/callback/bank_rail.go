package callback

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"donation-settle-api/internal/constant"
	"donation-settle-api/internal/dao"
	ordermodel "donation-settle-api/internal/model/order"
	"donation-settle-api/internal/utils"
)

const (
	BankSignatureHeader = "X-Request-Signature-SHA-256"
	BankTopicHeader     = "X-Topic"
)

var bankTransferKinds = []string{"transfer", "customer_transfer", "customer_bank_transfer"}

var bankStatuses = func() map[string]string {
	m := make(map[string]string)
	for _, kind := range bankTransferKinds {
		m[kind+"_created"] = ordermodel.TransferProcessing
		m[kind+"_pending"] = ordermodel.TransferProcessing
		m[kind+"_completed"] = ordermodel.TransferCompleted
		m[kind+"_failed"] = ordermodel.TransferFailed
		m[kind+"_cancelled"] = ordermodel.TransferFailed
		m[kind+"_returned"] = ordermodel.TransferFailed
	}
	return m
}()

type bankBody struct {
	ID         string               `json:"id"`
	Created    string               `json:"created"`
	Topic      string               `json:"topic"`
	ResourceID utils.StringOrNumber `json:"resourceId"`
	Links      struct {
		Resource struct {
			Href string `json:"href"`
		} `json:"resource"`
	} `json:"_links"`
}

// BankRail handles bank-transfer notifications signed with a hex HMAC of the body.
type BankRail struct {
	secret string
}

func NewBankRail(secret string) *BankRail {
	return &BankRail{secret: secret}
}

func (b *BankRail) Name() string { return "bank" }
func (b *BankRail) Target() dao.TargetKind { return dao.TargetTransfer }

func (b *BankRail) Verify(h http.Header, body []byte, _ time.Time) error {
	sig := h.Get(BankSignatureHeader)
	if sig == "" || !utils.VerifyHmacHex(b.secret, body, sig) {
		return constant.ErrSignature
	}
	return nil
}

// Parse takes the external id from the resource link's last path segment, falling
// back to resourceId. The topic header wins over the body's topic.
func (b *BankRail) Parse(h http.Header, body []byte) (*Notification, error) {
	var in bankBody
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("bank notification: %w", err)
	}
	topic := strings.TrimSpace(h.Get(BankTopicHeader))
	if topic == "" {
		topic = in.Topic
	}
	ext := utils.LastPathSegment(in.Links.Resource.Href)
	if ext == "" {
		ext = in.ResourceID.String()
	}
	return &Notification{ID: in.ID, Category: topic, ExternalID: ext}, nil
}

func (b *BankRail) Status(category string) (string, bool) {
	s, ok := bankStatuses[category]
	return s, ok
}

func (b *BankRail) Terminal(status string) bool {
	return status == ordermodel.TransferCompleted || status == ordermodel.TransferFailed
}
