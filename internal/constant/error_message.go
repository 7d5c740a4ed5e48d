package constant

// ErrorInfo holds the caller-facing message of a code.
type ErrorInfo struct {
	EN string `json:"en"`
}

// ErrorMessages maps codes to messages.
var ErrorMessages = map[int]ErrorInfo{
	CodeSuccess:            {"Success"},
	CodeSystemError:        {"System error"},
	CodeDatabaseError:      {"Database error"},
	CodeRedisError:         {"Cache error"},
	CodeServiceUnavailable: {"Feature is not enabled"},
	CodeTimeout:            {"Request timed out"},

	CodeInvalidParams:    {"Invalid parameters"},
	CodeMissingParams:    {"Missing parameters"},
	CodeParamsRangeError: {"Parameter out of range"},
	CodeDuplicateRequest: {"Duplicate request"},

	CodeUnauthorized:   {"Unauthorized"},
	CodeSignatureError: {"Signature verification failed"},
	CodeAccessDenied:   {"Not permitted"},

	CodeDonationAmountInvalid: {"Donation amount must be a positive integer of minor units"},
	CodePolicyInvalid:         {"Unknown fee-coverage policy"},
	CodeRecurrenceInvalid:     {"Unknown recurrence"},
	CodeDonorEmailMissing:     {"Donor email is required"},
	CodeSubAccountMissing:     {"Destination organization cannot receive payments"},
	CodeOrganizationNotFound:  {"Organization not found"},

	CodeProposalNotFound:      {"Proposal not found"},
	CodeConnectionInvalid:     {"Connection not found"},
	CodeSplitPercentInvalid:   {"Split percentages must sum to 100"},
	CodeSplitAgreementInvalid: {"Split agreement cannot be applied"},

	CodeDistributionEmpty:        {"Distribution must have at least one entry"},
	CodeDistributionPercentSum:   {"Distribution percentages must sum to exactly 100"},
	CodeDistributionEntryInvalid: {"Distribution entry is invalid"},
	CodeDistributionNotFound:     {"Distribution not configured"},

	CodeProcessorError:    {"Payment processor unavailable"},
	CodeProcessorRejected: {"Payment processor rejected the request"},
}
