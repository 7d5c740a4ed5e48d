package dto

// FeeQuoteReq asks for the charge of a donation under a policy.
type FeeQuoteReq struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Policy string `json:"policy" binding:"required,oneof=org_pays donor_platform donor_rail donor_both"`
}
