package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/folioworks/folio/internal/registry/domain"
	"github.com/folioworks/folio/internal/storage"
	"github.com/folioworks/folio/internal/telemetry"
)

// CastVote toggles the caller's like or dislike on a page. Repeating a
// vote clears it; switching kinds moves it. The page counters and the
// per-principal record are written together.
func (r *Registry) CastVote(ctx context.Context, pageID uint64, caller string, kind domain.ReactionKind) (domain.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := requireCaller(caller); err != nil {
		return domain.Reaction{}, err
	}
	page, err := r.loadPage(ctx, pageID)
	if err != nil {
		return domain.Reaction{}, err
	}

	reaction, err := r.stores.Reaction.GetReaction(ctx, pageID, caller)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return domain.Reaction{}, fmt.Errorf("load reaction: %w", err)
		}
		reaction = domain.Reaction{PageID: pageID, Principal: caller}
	}

	next, likeDelta, dislikeDelta, err := reaction.Toggle(kind)
	if err != nil {
		return domain.Reaction{}, err
	}
	page.ApplyReactionDeltas(likeDelta, dislikeDelta)
	page.UpdatedAt = r.clock().UTC()

	if err := r.stores.Reaction.PutPageWithReaction(ctx, page, next); err != nil {
		return domain.Reaction{}, fmt.Errorf("persist vote: %w", err)
	}

	r.emit(ctx, storage.TelemetryEvent{
		Name:      telemetry.EventVoteChanged,
		PageID:    pageID,
		Principal: caller,
		Attributes: map[string]string{
			"kind":     kind.String(),
			"likes":    strconv.FormatUint(page.LikeCount, 10),
			"dislikes": strconv.FormatUint(page.DislikeCount, 10),
		},
	})
	return next, nil
}
