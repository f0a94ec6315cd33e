// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Page errors
	CodePageNameEmpty    Code = "PAGE_NAME_EMPTY"
	CodePageNotFound     Code = "PAGE_NOT_FOUND"
	CodePageFrozen       Code = "PAGE_FROZEN"
	CodeContentInvalid   Code = "CONTENT_FORMAT_INVALID"
	CodeThumbnailInvalid Code = "THUMBNAIL_FORMAT_INVALID"

	// Ownership policy errors
	CodePolicyInvalidKind          Code = "POLICY_INVALID_KIND"
	CodePolicyInvalidConfig        Code = "POLICY_INVALID_CONFIG"
	CodePolicyTransitionNotAllowed Code = "POLICY_TRANSITION_NOT_ALLOWED"

	// Update request errors
	CodeUpdateEmpty            Code = "UPDATE_EMPTY"
	CodeFeeInsufficient        Code = "FEE_INSUFFICIENT"
	CodeRequestNotFound        Code = "REQUEST_NOT_FOUND"
	CodeRequestAlreadyExecuted Code = "REQUEST_ALREADY_EXECUTED"
	CodeApprovalNotApplicable  Code = "APPROVAL_NOT_APPLICABLE"
	CodeApprovalDuplicate      Code = "APPROVAL_DUPLICATE"

	// Treasury errors
	CodeTreasuryEmpty            Code = "TREASURY_EMPTY"
	CodeTreasuryNotWithdrawable  Code = "TREASURY_NOT_WITHDRAWABLE"
	CodeTreasuryNotDistributable Code = "TREASURY_NOT_DISTRIBUTABLE"
	CodeParticipantLedgerEmpty   Code = "PARTICIPANT_LEDGER_EMPTY"
	CodeTransferFailed           Code = "TRANSFER_FAILED"

	// Reaction errors
	CodeReactionInvalidKind Code = "REACTION_INVALID_KIND"

	// Authorization errors
	CodePrincipalMissing Code = "PRINCIPAL_MISSING"
	CodeUnauthorized     Code = "UNAUTHORIZED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodePageNameEmpty,
		CodeContentInvalid,
		CodeThumbnailInvalid,
		CodePolicyInvalidKind,
		CodePolicyInvalidConfig,
		CodeUpdateEmpty,
		CodeReactionInvalidKind:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodePageFrozen,
		CodePolicyTransitionNotAllowed,
		CodeFeeInsufficient,
		CodeRequestAlreadyExecuted,
		CodeApprovalNotApplicable,
		CodeApprovalDuplicate,
		CodeTreasuryEmpty,
		CodeTreasuryNotWithdrawable,
		CodeTreasuryNotDistributable,
		CodeParticipantLedgerEmpty:
		return codes.FailedPrecondition

	// Unauthenticated - no caller identity was supplied
	case CodePrincipalMissing:
		return codes.Unauthenticated

	// PermissionDenied - caller may not perform the operation
	case CodeUnauthorized:
		return codes.PermissionDenied

	// NotFound - resource doesn't exist
	case CodePageNotFound,
		CodeRequestNotFound,
		CodeNotFound:
		return codes.NotFound

	// Aborted - external payout rejected, operation rolled back as a unit
	case CodeTransferFailed:
		return codes.Aborted

	default:
		return codes.Internal
	}
}
