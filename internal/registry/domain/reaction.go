package domain

// ReactionKind is a like or dislike toward a page.
type ReactionKind int

const (
	// ReactionKindUnspecified represents an invalid reaction kind value.
	ReactionKindUnspecified ReactionKind = iota
	// ReactionKindLike marks the page as liked.
	ReactionKindLike
	// ReactionKindDislike marks the page as disliked.
	ReactionKindDislike
)

// String returns the lowercase wire name of the reaction kind.
func (k ReactionKind) String() string {
	switch k {
	case ReactionKindLike:
		return "like"
	case ReactionKindDislike:
		return "dislike"
	default:
		return "unspecified"
	}
}

// Reaction is one principal's like/dislike state for one page. The two
// flags are mutually exclusive; setting one clears the other. Reactions
// are independent of the approval and fee machinery.
type Reaction struct {
	PageID    uint64
	Principal string
	Liked     bool
	Disliked  bool
}

// Toggle flips the given reaction kind: reacting with the kind already set
// clears it, reacting with the other kind swaps the flags. The returned
// deltas say how the page's running counters move.
func (r Reaction) Toggle(kind ReactionKind) (Reaction, int, int, error) {
	likeDelta, dislikeDelta := 0, 0
	switch kind {
	case ReactionKindLike:
		if r.Liked {
			r.Liked = false
			likeDelta = -1
		} else {
			r.Liked = true
			likeDelta = 1
			if r.Disliked {
				r.Disliked = false
				dislikeDelta = -1
			}
		}
	case ReactionKindDislike:
		if r.Disliked {
			r.Disliked = false
			dislikeDelta = -1
		} else {
			r.Disliked = true
			dislikeDelta = 1
			if r.Liked {
				r.Liked = false
				likeDelta = -1
			}
		}
	default:
		return Reaction{}, 0, 0, ErrReactionInvalidKind
	}
	return r, likeDelta, dislikeDelta, nil
}

// ApplyReactionDeltas moves the page's like/dislike counters, clamping
// at zero so a stale negative delta can never underflow the counters.
func (p *Page) ApplyReactionDeltas(likeDelta, dislikeDelta int) {
	p.LikeCount = applyDelta(p.LikeCount, likeDelta)
	p.DislikeCount = applyDelta(p.DislikeCount, dislikeDelta)
}

func applyDelta(counter uint64, delta int) uint64 {
	if delta >= 0 {
		return counter + uint64(delta)
	}
	decrement := uint64(-delta)
	if decrement > counter {
		return 0
	}
	return counter - decrement
}
