package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	apperrors "github.com/folioworks/folio/internal/platform/errors"
	"github.com/folioworks/folio/internal/registry/domain"
	"github.com/folioworks/folio/internal/storage"
)

// GetPageInfo returns the full page record.
func (r *Registry) GetPageInfo(ctx context.Context, pageID uint64) (domain.Page, error) {
	return r.loadPage(ctx, pageID)
}

// GetCurrentContent returns the page's live content body.
func (r *Registry) GetCurrentContent(ctx context.Context, pageID uint64) (string, error) {
	page, err := r.loadPage(ctx, pageID)
	if err != nil {
		return "", err
	}
	return page.Content, nil
}

// GetOwners returns the owner set of the page's current policy. A
// permissionless page has no owners.
func (r *Registry) GetOwners(ctx context.Context, pageID uint64) ([]string, error) {
	page, err := r.loadPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return page.Policy.Owners, nil
}

// GetBalance returns the page's current fee treasury balance.
func (r *Registry) GetBalance(ctx context.Context, pageID uint64) (uint64, error) {
	page, err := r.loadPage(ctx, pageID)
	if err != nil {
		return 0, err
	}
	return page.Balance, nil
}

// GetPageCount returns the number of pages ever created.
func (r *Registry) GetPageCount(ctx context.Context) (uint64, error) {
	count, err := r.stores.Page.CountPages(ctx)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return count, nil
}

// GetUpdateRequest returns one update request by page and sequence number.
func (r *Registry) GetUpdateRequest(ctx context.Context, pageID, seq uint64) (domain.UpdateRequest, error) {
	if _, err := r.loadPage(ctx, pageID); err != nil {
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
	return request, nil
}

// ListUpdateRequests returns every update request for a page in
// sequence order.
func (r *Registry) ListUpdateRequests(ctx context.Context, pageID uint64) ([]domain.UpdateRequest, error) {
	if _, err := r.loadPage(ctx, pageID); err != nil {
		return nil, err
	}
	requests, err := r.stores.Request.ListRequests(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("list requests for page %d: %w", pageID, err)
	}
	return requests, nil
}

// ListParticipants returns the page's participant ledger in first-seen order.
func (r *Registry) ListParticipants(ctx context.Context, pageID uint64) ([]string, error) {
	page, err := r.loadPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return page.Participants, nil
}

// GetReaction returns one principal's vote record for a page. A
// principal with no recorded vote gets a zero-value record.
func (r *Registry) GetReaction(ctx context.Context, pageID uint64, principal string) (domain.Reaction, error) {
	if _, err := r.loadPage(ctx, pageID); err != nil {
		return domain.Reaction{}, err
	}
	reaction, err := r.stores.Reaction.GetReaction(ctx, pageID, principal)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Reaction{PageID: pageID, Principal: principal}, nil
		}
		return domain.Reaction{}, fmt.Errorf("load reaction: %w", err)
	}
	return reaction, nil
}
