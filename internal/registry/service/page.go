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

// CreatePageParams describes a new page.
type CreatePageParams struct {
	Name       string
	Thumbnail  string
	Content    string
	PolicyKind domain.PolicyKind
	Owners     []string
	Threshold  int
	UpdateFee  uint64
	Immutable  bool
}

// CreatePage validates the ownership configuration and content format,
// stores the page, and returns it with its assigned id. Ids start at 1
// and only advance on success.
func (r *Registry) CreatePage(ctx context.Context, params CreatePageParams) (domain.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.checker.ContentOK(params.Content) {
		return domain.Page{}, domain.ErrContentInvalid
	}
	if !r.checker.ThumbnailOK(params.Thumbnail) {
		return domain.Page{}, domain.ErrThumbnailInvalid
	}

	policy, err := domain.NewPolicy(params.PolicyKind, params.Owners, params.Threshold)
	if err != nil {
		return domain.Page{}, err
	}

	page, err := domain.CreatePage(domain.CreatePageInput{
		Name:      params.Name,
		Thumbnail: params.Thumbnail,
		Content:   params.Content,
		Policy:    policy,
		UpdateFee: params.UpdateFee,
		Immutable: params.Immutable,
	}, r.clock)
	if err != nil {
		return domain.Page{}, err
	}

	id, err := r.stores.Page.CreatePage(ctx, page)
	if err != nil {
		return domain.Page{}, fmt.Errorf("persist page: %w", err)
	}
	page.ID = id

	r.emit(ctx, storage.TelemetryEvent{
		Name:      telemetry.EventPageCreated,
		PageID:    page.ID,
		Attributes: map[string]string{
			"policy": page.Policy.Kind.String(),
			"fee":    strconv.FormatUint(page.UpdateFee, 10),
		},
	})
	return page, nil
}

// ChangeOwnership replaces a single-owner page's policy with a new
// configuration. Only the current sole owner may transition, and only
// single-owner policies may change at all.
func (r *Registry) ChangeOwnership(ctx context.Context, pageID uint64, kind domain.PolicyKind, owners []string, threshold int, caller string) (domain.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := requireCaller(caller); err != nil {
		return domain.Page{}, err
	}
	page, err := r.loadPage(ctx, pageID)
	if err != nil {
		return domain.Page{}, err
	}

	if page.Policy.Kind != domain.PolicyKindSingle {
		return domain.Page{}, domain.ErrPolicyTransitionNotAllowed
	}
	if !page.Policy.IsAuthorized(caller) {
		return domain.Page{}, errUnauthorized(caller)
	}

	next, err := page.Policy.Transition(kind, owners, threshold)
	if err != nil {
		return domain.Page{}, err
	}

	page.Policy = next
	page.UpdatedAt = r.clock().UTC()
	if err := r.stores.Page.PutPage(ctx, page); err != nil {
		return domain.Page{}, fmt.Errorf("persist page %d: %w", pageID, err)
	}

	r.emit(ctx, storage.TelemetryEvent{
		Name:      telemetry.EventOwnershipChanged,
		PageID:    pageID,
		Principal: caller,
		Attributes: map[string]string{
			"policy": next.Kind.String(),
		},
	})
	return page, nil
}

// loadPage fetches a page, mapping a missing record to a domain error.
func (r *Registry) loadPage(ctx context.Context, pageID uint64) (domain.Page, error) {
	page, err := r.stores.Page.GetPage(ctx, pageID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Page{}, errPageNotFound(pageID)
		}
		return domain.Page{}, fmt.Errorf("load page %d: %w", pageID, err)
	}
	return page, nil
}

func errPageNotFound(pageID uint64) error {
	return apperrors.WithMetadata(apperrors.CodePageNotFound, "page not found", map[string]string{
		"PageID": strconv.FormatUint(pageID, 10),
	})
}

// requireCaller rejects mutating calls that arrive with no principal.
// An empty caller must never reach the participant ledger or a payout.
func requireCaller(caller string) error {
	if caller == "" {
		return apperrors.New(apperrors.CodePrincipalMissing, "caller principal is required")
	}
	return nil
}

func errUnauthorized(caller string) error {
	return apperrors.WithMetadata(apperrors.CodeUnauthorized, "caller is not authorized", map[string]string{
		"Principal": caller,
	})
}
