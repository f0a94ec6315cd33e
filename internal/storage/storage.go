package storage

import (
	"context"
	"errors"
	"time"

	"github.com/folioworks/folio/internal/registry/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// PageStore persists page records. CreatePage assigns ids monotonically
// starting at 1; ids are never reused and the counter only advances on a
// successful write.
type PageStore interface {
	CreatePage(ctx context.Context, page domain.Page) (uint64, error)
	PutPage(ctx context.Context, page domain.Page) error
	GetPage(ctx context.Context, id uint64) (domain.Page, error)
	CountPages(ctx context.Context) (uint64, error)
	// PutPageWithRequest atomically persists a page mutation together with
	// the update request it produced or consumed.
	PutPageWithRequest(ctx context.Context, page domain.Page, request domain.UpdateRequest) error
}

// RequestStore persists update request records keyed by page and sequence.
type RequestStore interface {
	GetRequest(ctx context.Context, pageID, seq uint64) (domain.UpdateRequest, error)
	ListRequests(ctx context.Context, pageID uint64) ([]domain.UpdateRequest, error)
}

// ReactionStore persists per-principal page reactions.
type ReactionStore interface {
	GetReaction(ctx context.Context, pageID uint64, principal string) (domain.Reaction, error)
	// PutPageWithReaction atomically persists the reaction flip and the
	// page counter move it caused.
	PutPageWithReaction(ctx context.Context, page domain.Page, reaction domain.Reaction) error
}

// TelemetryEvent is one operational fact emitted for off-system indexing.
type TelemetryEvent struct {
	ID         int64
	Timestamp  time.Time
	Name       string
	Severity   string
	PageID     uint64
	Principal  string
	Amount     uint64
	Attributes map[string]string
}

// TelemetryStore persists telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
	ListTelemetryEvents(ctx context.Context, pageID uint64) ([]TelemetryEvent, error)
}
