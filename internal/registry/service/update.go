package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	apperrors "github.com/folioworks/folio/internal/platform/errors"
	"github.com/folioworks/folio/internal/registry/domain"
	"github.com/folioworks/folio/internal/storage"
	"github.com/folioworks/folio/internal/telemetry"
)

// SubmitUpdateParams describes a proposed page change. Fee is the amount
// the caller attaches; anything at or above the page's update fee is
// accepted and the full amount is credited to the treasury.
type SubmitUpdateParams struct {
	PageID uint64
	Fields domain.UpdateFields
	Fee    uint64
	Caller string
}

// SubmitUpdate accepts a proposed change. Anyone may propose; only
// approval is gated. Permissionless pages apply the change immediately
// and return an already-executed record; other policies enqueue a
// pending request at the page's next sequence number.
func (r *Registry) SubmitUpdate(ctx context.Context, params SubmitUpdateParams) (domain.UpdateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := requireCaller(params.Caller); err != nil {
		return domain.UpdateRequest{}, err
	}
	page, err := r.loadPage(ctx, params.PageID)
	if err != nil {
		return domain.UpdateRequest{}, err
	}

	if page.Immutable {
		return domain.UpdateRequest{}, apperrors.WithMetadata(apperrors.CodePageFrozen, "page is immutable", map[string]string{
			"PageID": strconv.FormatUint(params.PageID, 10),
		})
	}
	if params.Fee < page.UpdateFee {
		return domain.UpdateRequest{}, apperrors.WithMetadata(apperrors.CodeFeeInsufficient, "offered fee below page fee", map[string]string{
			"Offered":  strconv.FormatUint(params.Fee, 10),
			"Required": strconv.FormatUint(page.UpdateFee, 10),
		})
	}
	if params.Fields.Empty() {
		return domain.UpdateRequest{}, domain.ErrUpdateEmpty
	}
	if params.Fields.Content != "" && !r.checker.ContentOK(params.Fields.Content) {
		return domain.UpdateRequest{}, domain.ErrContentInvalid
	}
	if params.Fields.Thumbnail != "" && !r.checker.ThumbnailOK(params.Fields.Thumbnail) {
		return domain.UpdateRequest{}, domain.ErrThumbnailInvalid
	}

	// The full offered amount is credited, even above the configured fee.
	page.Balance += params.Fee
	seq := page.NextRequestSeq
	page.NextRequestSeq++

	now := r.clock().UTC()
	var request domain.UpdateRequest
	if page.Policy.Kind == domain.PolicyKindPermissionless {
		page.ApplyUpdate(params.Fields, now)
		page.RecordParticipant(params.Caller)
		request = domain.NewExecutedRequest(params.PageID, seq, params.Fields, params.Caller, now)
	} else {
		request = domain.NewUpdateRequest(params.PageID, seq, params.Fields, params.Caller, now)
	}

	if err := r.stores.Page.PutPageWithRequest(ctx, page, request); err != nil {
		return domain.UpdateRequest{}, fmt.Errorf("persist update request: %w", err)
	}

	r.emit(ctx, storage.TelemetryEvent{
		Name:      telemetry.EventUpdateRequested,
		PageID:    params.PageID,
		Principal: params.Caller,
		Amount:    params.Fee,
		Attributes: map[string]string{
			"seq": strconv.FormatUint(seq, 10),
		},
	})
	if request.Executed {
		r.emit(ctx, storage.TelemetryEvent{
			Name:      telemetry.EventUpdateExecuted,
			PageID:    params.PageID,
			Principal: params.Caller,
			Attributes: map[string]string{
				"seq": strconv.FormatUint(seq, 10),
			},
		})
	}
	return request, nil
}

// ApproveRequest records one authorized principal's approval vote. When
// distinct approvals reach the policy threshold the proposed fields are
// copied into the live page and the request becomes terminal; the
// executed flag guarantees execution happens at most once.
func (r *Registry) ApproveRequest(ctx context.Context, pageID, seq uint64, caller string) (domain.UpdateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := requireCaller(caller); err != nil {
		return domain.UpdateRequest{}, err
	}
	page, err := r.loadPage(ctx, pageID)
	if err != nil {
		return domain.UpdateRequest{}, err
	}

	request, err := r.stores.Request.GetRequest(ctx, pageID, seq)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.UpdateRequest{}, apperrors.WithMetadata(apperrors.CodeRequestNotFound, "update request not found", map[string]string{
				"PageID":     strconv.FormatUint(pageID, 10),
				"RequestSeq": strconv.FormatUint(seq, 10),
			})
		}
		return domain.UpdateRequest{}, fmt.Errorf("load request %d/%d: %w", pageID, seq, err)
	}

	if request.Executed {
		return domain.UpdateRequest{}, apperrors.WithMetadata(apperrors.CodeRequestAlreadyExecuted, "update request already executed", map[string]string{
			"RequestSeq": strconv.FormatUint(seq, 10),
		})
	}
	if page.Policy.Kind == domain.PolicyKindPermissionless {
		return domain.UpdateRequest{}, apperrors.New(apperrors.CodeApprovalNotApplicable, "permissionless pages take no approvals")
	}
	if !page.Policy.IsAuthorized(caller) {
		return domain.UpdateRequest{}, errUnauthorized(caller)
	}

	if err := request.RecordApproval(caller); err != nil {
		return domain.UpdateRequest{}, err
	}

	now := r.clock().UTC()
	executed := request.Approvals >= page.Policy.RequiredApprovals()
	if executed {
		page.ApplyUpdate(request.Fields, now)
		request.MarkExecuted(now)
	}

	if err := r.stores.Page.PutPageWithRequest(ctx, page, request); err != nil {
		return domain.UpdateRequest{}, fmt.Errorf("persist approval: %w", err)
	}

	r.emit(ctx, storage.TelemetryEvent{
		Name:      telemetry.EventApprovalRecorded,
		PageID:    pageID,
		Principal: caller,
		Attributes: map[string]string{
			"seq":       strconv.FormatUint(seq, 10),
			"approvals": strconv.Itoa(request.Approvals),
		},
	})
	if executed {
		r.emit(ctx, storage.TelemetryEvent{
			Name:      telemetry.EventUpdateExecuted,
			PageID:    pageID,
			Principal: caller,
			Attributes: map[string]string{
				"seq": strconv.FormatUint(seq, 10),
			},
		})
	}
	return request, nil
}
