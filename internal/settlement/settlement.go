// Package settlement turns a donation intent into the single capture request sent
// to the card processor.
package settlement

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"donation-settle-api/internal/constant"
	"donation-settle-api/internal/fee"
)

type Recurrence string

const (
	OneTime Recurrence = "one_time"
	Monthly Recurrence = "monthly"
	Yearly  Recurrence = "yearly"
)

// ParseRecurrence treats an empty value as one_time.
func ParseRecurrence(s string) (Recurrence, error) {
	switch r := Recurrence(s); r {
	case "":
		return OneTime, nil
	case OneTime, Monthly, Yearly:
		return r, nil
	}
	return "", constant.Newf(constant.CodeRecurrenceInvalid, "unknown recurrence %q", s)
}

func (r Recurrence) interval() string {
	switch r {
	case Monthly:
		return "month"
	case Yearly:
		return "year"
	}
	return ""
}

// Intent is what the donor asked for. It is not modified once built.
type Intent struct {
	Amount     int64
	OrgID      uint64
	CampaignID string
	FundID     string
	DonorEmail string
	DonorName  string
	Policy     fee.Policy
	Anonymous  bool
	Recurrence Recurrence
	SplitID    uint64
	Currency   string
}

// Share is one entry of an internal distribution.
type Share struct {
	AccountRef string
	Percentage decimal.Decimal
}

// Party is an organization that receives part of the destination transfer.
type Party struct {
	OrgID        uint64
	SubAccount   string
	Distribution []Share
}

// SplitTerms is an agreement as seen from the destination organization.
type SplitTerms struct {
	ID             uint64
	Accepted       bool
	DestPercent    decimal.Decimal
	Partner        Party
	PartnerPercent decimal.Decimal
}

type TransferLeg struct {
	OrgID   uint64 `json:"org_id,string"`
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

// CaptureRequest is the one outbound instruction per donation.
type CaptureRequest struct {
	Amount             int64             `json:"amount"`
	Currency           string            `json:"currency"`
	PlatformFeeAmount  int64             `json:"platform_fee_amount"`
	DestinationOrgID   uint64            `json:"destination_org_id,string"`
	DestinationAccount string            `json:"destination_account"`
	DestinationAmount  int64             `json:"destination_amount"`
	Transfers          []TransferLeg     `json:"transfers,omitempty"`
	ReceiptEmail       string            `json:"receipt_email,omitempty"`
	RecurringInterval  string            `json:"recurring_interval,omitempty"`
	Metadata           map[string]string `json:"metadata"`
}

// Legs returns every payout of the request, primary destination first.
func (r *CaptureRequest) Legs() []TransferLeg {
	legs := make([]TransferLeg, 0, len(r.Transfers)+1)
	legs = append(legs, TransferLeg{OrgID: r.DestinationOrgID, Account: r.DestinationAccount, Amount: r.DestinationAmount})
	return append(legs, r.Transfers...)
}

type Builder struct {
	schedule fee.Schedule
	currency string
}

func NewBuilder(schedule fee.Schedule, currency string) *Builder {
	return &Builder{schedule: schedule, currency: strings.ToLower(currency)}
}

// Build validates the intent and produces the capture request. dest must carry the
// destination's processor sub-account; split is nil when no agreement is referenced.
func (b *Builder) Build(in Intent, dest Party, split *SplitTerms) (*CaptureRequest, fee.Quote, error) {
	if strings.TrimSpace(in.DonorEmail) == "" {
		return nil, fee.Quote{}, constant.NewError(constant.CodeDonorEmailMissing)
	}
	rec, err := ParseRecurrence(string(in.Recurrence))
	if err != nil {
		return nil, fee.Quote{}, err
	}
	if dest.SubAccount == "" {
		return nil, fee.Quote{}, constant.Newf(constant.CodeSubAccountMissing, "organization %d has no processor sub-account", dest.OrgID)
	}
	q, err := b.schedule.Calculate(in.Amount, in.Policy)
	if err != nil {
		return nil, fee.Quote{}, err
	}

	parties := []Party{dest}
	weights := []decimal.Decimal{decimal.NewFromInt(100)}
	if in.SplitID != 0 {
		if split == nil || split.ID != in.SplitID || !split.Accepted {
			return nil, fee.Quote{}, constant.Newf(constant.CodeSplitAgreementInvalid, "split agreement %d is not accepted for organization %d", in.SplitID, dest.OrgID)
		}
		if split.Partner.SubAccount == "" {
			return nil, fee.Quote{}, constant.Newf(constant.CodeSubAccountMissing, "organization %d has no processor sub-account", split.Partner.OrgID)
		}
		parties = append(parties, split.Partner)
		weights = []decimal.Decimal{split.DestPercent, split.PartnerPercent}
	}

	legs, err := allocateLegs(q.Charge-q.PlatformFee, parties, weights)
	if err != nil {
		return nil, fee.Quote{}, constant.Newf(constant.CodeSplitAgreementInvalid, "allocate destination transfer: %v", err)
	}
	legs = dropEmpty(legs)

	currency := strings.ToLower(in.Currency)
	if currency == "" {
		currency = b.currency
	}
	req := &CaptureRequest{
		Amount:             q.Charge,
		Currency:           currency,
		PlatformFeeAmount:  q.PlatformFee,
		DestinationOrgID:   legs[0].OrgID,
		DestinationAccount: legs[0].Account,
		DestinationAmount:  legs[0].Amount,
		Transfers:          legs[1:],
		ReceiptEmail:       in.DonorEmail,
		RecurringInterval:  rec.interval(),
		Metadata:           metadata(in, rec),
	}
	if len(req.Transfers) == 0 {
		req.Transfers = nil
	}
	return req, q, nil
}

func allocateLegs(net int64, parties []Party, weights []decimal.Decimal) ([]TransferLeg, error) {
	shares, err := Allocate(net, weights)
	if err != nil {
		return nil, err
	}
	var legs []TransferLeg
	for i, p := range parties {
		if len(p.Distribution) == 0 {
			legs = append(legs, TransferLeg{OrgID: p.OrgID, Account: p.SubAccount, Amount: shares[i]})
			continue
		}
		pw := make([]decimal.Decimal, len(p.Distribution))
		for j, s := range p.Distribution {
			pw[j] = s.Percentage
		}
		parts, err := Allocate(shares[i], pw)
		if err != nil {
			return nil, err
		}
		for j, s := range p.Distribution {
			legs = append(legs, TransferLeg{OrgID: p.OrgID, Account: s.AccountRef, Amount: parts[j]})
		}
	}
	return legs, nil
}

// dropEmpty removes zero-amount legs, keeping at least one.
func dropEmpty(legs []TransferLeg) []TransferLeg {
	out := legs[:0:0]
	for _, l := range legs {
		if l.Amount > 0 {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return legs[:1]
	}
	return out
}

func metadata(in Intent, rec Recurrence) map[string]string {
	md := map[string]string{
		"destination_org": strconv.FormatUint(in.OrgID, 10),
		"donation_amount": strconv.FormatInt(in.Amount, 10),
		"fee_policy":      string(in.Policy),
		"recurrence":      string(rec),
		"anonymous":       strconv.FormatBool(in.Anonymous),
	}
	if !in.Anonymous {
		md["donor_email"] = in.DonorEmail
		if in.DonorName != "" {
			md["donor_name"] = in.DonorName
		}
	}
	if in.CampaignID != "" {
		md["campaign_id"] = in.CampaignID
	}
	if in.FundID != "" {
		md["fund_id"] = in.FundID
	}
	if in.SplitID != 0 {
		md["split_id"] = strconv.FormatUint(in.SplitID, 10)
	}
	return md
}
