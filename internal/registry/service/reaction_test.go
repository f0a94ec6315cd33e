package service

import (
	"context"
	"testing"

	apperrors "github.com/folioworks/folio/internal/platform/errors"
	"github.com/folioworks/folio/internal/registry/domain"
)

func TestCastVoteToggleAndSwap(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	page := h.createPage(t, CreatePageParams{
		PolicyKind: domain.PolicyKindSingle,
		Owners:     []string{"alice"},
		Threshold:  1,
	})

	reaction, err := h.registry.CastVote(ctx, page.ID, "bob", domain.ReactionKindLike)
	if err != nil {
		t.Fatalf("CastVote like: %v", err)
	}
	if !reaction.Liked || reaction.Disliked {
		t.Fatalf("reaction after like = %+v", reaction)
	}
	assertCounts(t, h, page.ID, 1, 0)

	// Swapping to dislike moves the vote in one step.
	reaction, err = h.registry.CastVote(ctx, page.ID, "bob", domain.ReactionKindDislike)
	if err != nil {
		t.Fatalf("CastVote dislike: %v", err)
	}
	if reaction.Liked || !reaction.Disliked {
		t.Fatalf("reaction after swap = %+v", reaction)
	}
	assertCounts(t, h, page.ID, 0, 1)

	// Repeating the same vote clears it.
	reaction, err = h.registry.CastVote(ctx, page.ID, "bob", domain.ReactionKindDislike)
	if err != nil {
		t.Fatalf("CastVote clear: %v", err)
	}
	if reaction.Liked || reaction.Disliked {
		t.Fatalf("reaction after clear = %+v", reaction)
	}
	assertCounts(t, h, page.ID, 0, 0)
}

func TestCastVoteCountsPrincipalsIndependently(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	page := h.createPage(t, CreatePageParams{
		PolicyKind: domain.PolicyKindPermissionless,
	})

	for _, voter := range []string{"a", "b", "c"} {
		if _, err := h.registry.CastVote(ctx, page.ID, voter, domain.ReactionKindLike); err != nil {
			t.Fatalf("CastVote %s: %v", voter, err)
		}
	}
	if _, err := h.registry.CastVote(ctx, page.ID, "d", domain.ReactionKindDislike); err != nil {
		t.Fatalf("CastVote d: %v", err)
	}
	assertCounts(t, h, page.ID, 3, 1)

	stored, err := h.registry.GetReaction(ctx, page.ID, "b")
	if err != nil {
		t.Fatalf("GetReaction: %v", err)
	}
	if !stored.Liked {
		t.Fatalf("stored reaction = %+v, want liked", stored)
	}

	// A principal who never voted reads back a zero record.
	blank, err := h.registry.GetReaction(ctx, page.ID, "nobody")
	if err != nil {
		t.Fatalf("GetReaction blank: %v", err)
	}
	if blank.Liked || blank.Disliked {
		t.Fatalf("blank reaction = %+v", blank)
	}
}

func TestCastVoteRejectsUnknownKind(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	page := h.createPage(t, CreatePageParams{
		PolicyKind: domain.PolicyKindSingle,
		Owners:     []string{"alice"},
		Threshold:  1,
	})

	_, err := h.registry.CastVote(ctx, page.ID, "bob", domain.ReactionKindUnspecified)
	wantCode(t, err, apperrors.CodeReactionInvalidKind)

	_, err = h.registry.CastVote(ctx, 99, "bob", domain.ReactionKindLike)
	wantCode(t, err, apperrors.CodePageNotFound)
}

func assertCounts(t *testing.T, h *harness, pageID uint64, likes, dislikes uint64) {
	t.Helper()
	info, err := h.registry.GetPageInfo(context.Background(), pageID)
	if err != nil {
		t.Fatalf("GetPageInfo: %v", err)
	}
	if info.LikeCount != likes || info.DislikeCount != dislikes {
		t.Fatalf("counts = %d/%d, want %d/%d", info.LikeCount, info.DislikeCount, likes, dislikes)
	}
}
