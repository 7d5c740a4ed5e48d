package constant

// Business codes (2xxx)

// Donation
const (
	CodeDonationAmountInvalid = 2000 // amount must be a positive number of minor units
	CodePolicyInvalid         = 2001 // unknown fee-coverage policy
	CodeRecurrenceInvalid     = 2002
	CodeDonorEmailMissing     = 2003
	CodeSubAccountMissing     = 2004 // destination has no processor sub-account
	CodeOrganizationNotFound  = 2005
)

// Split agreements. Missing and already-resolved proposals share one code.
const (
	CodeProposalNotFound      = 2100
	CodeConnectionInvalid     = 2101
	CodeSplitPercentInvalid   = 2102
	CodeSplitAgreementInvalid = 2103 // referenced agreement unusable for this donation
)

// Internal distribution
const (
	CodeDistributionEmpty        = 2200
	CodeDistributionPercentSum   = 2201
	CodeDistributionEntryInvalid = 2202
	CodeDistributionNotFound     = 2203
)

// Upstream processor codes (3xxx)
const (
	CodeProcessorError    = 3000 // processor unreachable or rejected the capture
	CodeProcessorRejected = 3002
)
