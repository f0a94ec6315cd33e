package domain

import (
	"errors"
	"testing"
	"time"
)

func TestToggleReactionFlipsAndSwaps(t *testing.T) {
	reaction := Reaction{PageID: 1, Principal: "alice"}

	liked, likeDelta, dislikeDelta, err := reaction.Toggle(ReactionKindLike)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !liked.Liked || liked.Disliked || likeDelta != 1 || dislikeDelta != 0 {
		t.Fatalf("unexpected like result %+v deltas %d/%d", liked, likeDelta, dislikeDelta)
	}

	// Disliking a liked page swaps the flags and moves both counters.
	swapped, likeDelta, dislikeDelta, err := liked.Toggle(ReactionKindDislike)
	if err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if swapped.Liked || !swapped.Disliked || likeDelta != -1 || dislikeDelta != 1 {
		t.Fatalf("unexpected swap result %+v deltas %d/%d", swapped, likeDelta, dislikeDelta)
	}

	// Disliking again clears the dislike.
	cleared, likeDelta, dislikeDelta, err := swapped.Toggle(ReactionKindDislike)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared.Liked || cleared.Disliked || likeDelta != 0 || dislikeDelta != -1 {
		t.Fatalf("unexpected clear result %+v deltas %d/%d", cleared, likeDelta, dislikeDelta)
	}
}

func TestToggleRejectsUnknownKind(t *testing.T) {
	_, _, _, err := (Reaction{}).Toggle(ReactionKindUnspecified)
	if !errors.Is(err, ErrReactionInvalidKind) {
		t.Fatalf("expected invalid kind error, got %v", err)
	}
}

func TestApplyReactionDeltasClampsAtZero(t *testing.T) {
	page := Page{LikeCount: 1}
	page.ApplyReactionDeltas(-1, -1)
	if page.LikeCount != 0 || page.DislikeCount != 0 {
		t.Fatalf("expected clamped counters, got %d/%d", page.LikeCount, page.DislikeCount)
	}
}

func TestDrawParticipantStaysInRange(t *testing.T) {
	at := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	for count := 1; count <= 5; count++ {
		index := DrawParticipant(count, "caller", 12345, at)
		if index < 0 || index >= count {
			t.Fatalf("index %d out of range for count %d", index, count)
		}
	}
	if DrawParticipant(0, "caller", 0, at) != 0 {
		t.Fatal("expected zero for empty ledger")
	}
}

func TestDrawParticipantIsDeterministicPerInputs(t *testing.T) {
	at := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	first := DrawParticipant(7, "caller", 999, at)
	second := DrawParticipant(7, "caller", 999, at)
	if first != second {
		t.Fatal("expected identical inputs to draw the same index")
	}
}
