package domain

import (
	"strings"
	"time"
)

// Page represents one governed page resource. Content is mutated only
// through an executed update request; the balance is the page's fee
// treasury. Participants is the insertion-ordered ledger of principals
// that have submitted to a permissionless page.
type Page struct {
	ID        uint64
	Name      string
	Thumbnail string
	Content   string
	// Immutable freezes the page permanently against any update.
	Immutable bool
	// UpdateFee is the minimum fee a submission must attach.
	UpdateFee uint64
	Policy    Policy
	// Balance is the accumulated fee treasury.
	Balance uint64
	// NextRequestSeq is the sequence number the next update request receives.
	NextRequestSeq uint64
	Participants   []string
	LikeCount      uint64
	DislikeCount   uint64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreatePageInput describes the metadata needed to create a page.
type CreatePageInput struct {
	Name      string
	Thumbnail string
	Content   string
	Policy    Policy
	UpdateFee uint64
	Immutable bool
}

// CreatePage creates a page from validated input. Content and thumbnail
// format checks are the caller's concern; the policy must already have
// passed NewPolicy. The ID is assigned by storage on first write.
func CreatePage(input CreatePageInput, now func() time.Time) (Page, error) {
	if now == nil {
		now = time.Now
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Page{}, ErrPageNameEmpty
	}

	createdAt := now().UTC()
	return Page{
		Name:      input.Name,
		Thumbnail: input.Thumbnail,
		Content:   input.Content,
		Immutable: input.Immutable,
		UpdateFee: input.UpdateFee,
		Policy:    input.Policy.Clone(),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// ApplyUpdate copies every non-empty proposed field into the live page state.
func (p *Page) ApplyUpdate(fields UpdateFields, at time.Time) {
	if fields.Name != "" {
		p.Name = fields.Name
	}
	if fields.Thumbnail != "" {
		p.Thumbnail = fields.Thumbnail
	}
	if fields.Content != "" {
		p.Content = fields.Content
	}
	p.UpdatedAt = at.UTC()
}

// RecordParticipant appends the principal to the participant ledger the
// first time it submits. Returns true when the principal was added.
func (p *Page) RecordParticipant(principal string) bool {
	for _, existing := range p.Participants {
		if existing == principal {
			return false
		}
	}
	p.Participants = append(p.Participants, principal)
	return true
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	cloned := p
	cloned.Policy = p.Policy.Clone()
	if p.Participants != nil {
		cloned.Participants = append([]string(nil), p.Participants...)
	}
	return cloned
}
