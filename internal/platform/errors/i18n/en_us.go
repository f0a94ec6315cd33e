package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodePageNameEmpty              = "PAGE_NAME_EMPTY"
	CodePageNotFound               = "PAGE_NOT_FOUND"
	CodePageFrozen                 = "PAGE_FROZEN"
	CodeContentInvalid             = "CONTENT_FORMAT_INVALID"
	CodeThumbnailInvalid           = "THUMBNAIL_FORMAT_INVALID"
	CodePolicyInvalidKind          = "POLICY_INVALID_KIND"
	CodePolicyInvalidConfig        = "POLICY_INVALID_CONFIG"
	CodePolicyTransitionNotAllowed = "POLICY_TRANSITION_NOT_ALLOWED"
	CodeUpdateEmpty                = "UPDATE_EMPTY"
	CodeFeeInsufficient            = "FEE_INSUFFICIENT"
	CodeRequestNotFound            = "REQUEST_NOT_FOUND"
	CodeRequestAlreadyExecuted     = "REQUEST_ALREADY_EXECUTED"
	CodeApprovalNotApplicable      = "APPROVAL_NOT_APPLICABLE"
	CodeApprovalDuplicate          = "APPROVAL_DUPLICATE"
	CodeTreasuryEmpty              = "TREASURY_EMPTY"
	CodeTreasuryNotWithdrawable    = "TREASURY_NOT_WITHDRAWABLE"
	CodeTreasuryNotDistributable   = "TREASURY_NOT_DISTRIBUTABLE"
	CodeParticipantLedgerEmpty     = "PARTICIPANT_LEDGER_EMPTY"
	CodeTransferFailed             = "TRANSFER_FAILED"
	CodeReactionInvalidKind        = "REACTION_INVALID_KIND"
	CodePrincipalMissing           = "PRINCIPAL_MISSING"
	CodeUnauthorized               = "UNAUTHORIZED"
	CodeNotFound                   = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Page errors
		CodePageNameEmpty:    "Page name cannot be empty",
		CodePageNotFound:     "Page {{.PageID}} was not found",
		CodePageFrozen:       "Page {{.PageID}} is immutable and cannot be updated",
		CodeContentInvalid:   "Page content does not match the required format",
		CodeThumbnailInvalid: "Thumbnail reference does not match an allowed prefix",

		// Ownership policy errors
		CodePolicyInvalidKind:          "Invalid ownership policy kind specified",
		CodePolicyInvalidConfig:        "Ownership policy owners and threshold are inconsistent",
		CodePolicyTransitionNotAllowed: "Ownership can only change while the page has a single owner",

		// Update request errors
		CodeUpdateEmpty:            "At least one proposed field must be set",
		CodeFeeInsufficient:        "Offered fee {{.Offered}} is below the page fee {{.Required}}",
		CodeRequestNotFound:        "Update request {{.RequestSeq}} was not found for page {{.PageID}}",
		CodeRequestAlreadyExecuted: "Update request {{.RequestSeq}} has already been executed",
		CodeApprovalNotApplicable:  "Permissionless pages execute updates immediately and take no approvals",
		CodeApprovalDuplicate:      "Caller has already approved this update request",

		// Treasury errors
		CodeTreasuryEmpty:            "The page treasury is empty",
		CodeTreasuryNotWithdrawable:  "Permissionless page fees can only leave via distribution",
		CodeTreasuryNotDistributable: "Only permissionless page treasuries can be distributed",
		CodeParticipantLedgerEmpty:   "No participants have contributed to this page",
		CodeTransferFailed:           "The payout transfer was rejected; no funds moved",

		// Reaction errors
		CodeReactionInvalidKind: "Invalid reaction kind specified",

		// Authorization errors
		CodePrincipalMissing: "A caller principal is required for this operation",
		CodeUnauthorized:     "Caller is not authorized for this operation",

		// Storage errors
		CodeNotFound: "The requested resource was not found",
	},
}
