package domain

import apperrors "github.com/folioworks/folio/internal/platform/errors"

var (
	// ErrPageNameEmpty indicates a missing page name.
	ErrPageNameEmpty = apperrors.New(apperrors.CodePageNameEmpty, "page name is required")
	// ErrContentInvalid indicates content that fails the format predicate.
	ErrContentInvalid = apperrors.New(apperrors.CodeContentInvalid, "page content format is invalid")
	// ErrThumbnailInvalid indicates a thumbnail reference outside the allowed prefixes.
	ErrThumbnailInvalid = apperrors.New(apperrors.CodeThumbnailInvalid, "thumbnail reference is invalid")
	// ErrPolicyInvalidKind indicates an unrecognized ownership policy kind.
	ErrPolicyInvalidKind = apperrors.New(apperrors.CodePolicyInvalidKind, "ownership policy kind is invalid")
	// ErrPolicyInvalidConfig indicates an owners/threshold combination that violates the kind's constraints.
	ErrPolicyInvalidConfig = apperrors.New(apperrors.CodePolicyInvalidConfig, "ownership policy configuration is invalid")
	// ErrPolicyTransitionNotAllowed indicates a policy change from a terminal kind.
	ErrPolicyTransitionNotAllowed = apperrors.New(apperrors.CodePolicyTransitionNotAllowed, "ownership policy can only change from single-owner pages")
	// ErrUpdateEmpty indicates an update proposal with no fields set.
	ErrUpdateEmpty = apperrors.New(apperrors.CodeUpdateEmpty, "update proposal has no fields")
	// ErrApprovalDuplicate indicates a principal approving the same request twice.
	ErrApprovalDuplicate = apperrors.New(apperrors.CodeApprovalDuplicate, "principal already approved this request")
	// ErrRequestAlreadyExecuted indicates an approval against an executed request.
	ErrRequestAlreadyExecuted = apperrors.New(apperrors.CodeRequestAlreadyExecuted, "update request already executed")
	// ErrReactionInvalidKind indicates an unrecognized reaction kind.
	ErrReactionInvalidKind = apperrors.New(apperrors.CodeReactionInvalidKind, "reaction kind is invalid")
)
