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

const CardSignatureHeader = "Processor-Signature"

var cardStatuses = map[string]string{
	"payment_intent.created":        ordermodel.DonationPending,
	"payment_intent.processing":     ordermodel.DonationPending,
	"payment_intent.succeeded":      ordermodel.DonationSucceeded,
	"payment_intent.payment_failed": ordermodel.DonationFailed,
	"payment_intent.canceled":       ordermodel.DonationFailed,
}

type cardBody struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// CardRail handles card processor notifications. The signature header carries a
// timestamp and one or more v1 signatures over "<timestamp>.<body>".
type CardRail struct {
	secret    string
	tolerance time.Duration
}

func NewCardRail(secret string, tolerance time.Duration) *CardRail {
	return &CardRail{secret: secret, tolerance: tolerance}
}

func (c *CardRail) Name() string { return "card" }
func (c *CardRail) Target() dao.TargetKind { return dao.TargetDonation }

func (c *CardRail) Verify(h http.Header, body []byte, now time.Time) error {
	ts, sigs := parseCardSignature(h.Get(CardSignatureHeader))
	if ts == "" || len(sigs) == 0 {
		return constant.ErrSignature
	}
	at, err := utils.ParseUnixSeconds(ts)
	if err != nil || !utils.IsTimestampValid(at, now, c.tolerance) {
		return constant.ErrSignature
	}
	signed := make([]byte, 0, len(ts)+1+len(body))
	signed = append(signed, ts...)
	signed = append(signed, '.')
	signed = append(signed, body...)
	for _, sig := range sigs {
		if utils.VerifyHmacHex(c.secret, signed, sig) {
			return nil
		}
	}
	return constant.ErrSignature
}

func parseCardSignature(header string) (ts string, sigs []string) {
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sigs = append(sigs, v)
		}
	}
	return ts, sigs
}

// SignCard builds a header value for body at ts; senders and tests use it.
func SignCard(secret string, body []byte, ts time.Time) string {
	t := fmt.Sprintf("%d", ts.Unix())
	return "t=" + t + ",v1=" + utils.HmacSHA256Hex(secret, append([]byte(t+"."), body...))
}

func (c *CardRail) Parse(_ http.Header, body []byte) (*Notification, error) {
	var in cardBody
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("card notification: %w", err)
	}
	return &Notification{ID: in.ID, Category: in.Type, ExternalID: in.Data.Object.ID}, nil
}

func (c *CardRail) Status(category string) (string, bool) {
	s, ok := cardStatuses[category]
	return s, ok
}

func (c *CardRail) Terminal(status string) bool {
	return status == ordermodel.DonationSucceeded || status == ordermodel.DonationFailed
}
