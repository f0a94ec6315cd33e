// Package memory provides an in-memory store for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/folioworks/folio/internal/registry/domain"
	"github.com/folioworks/folio/internal/storage"
)

type requestKey struct {
	pageID uint64
	seq    uint64
}

type reactionKey struct {
	pageID    uint64
	principal string
}

// Store implements every storage interface with mutex-protected maps.
// Records are deep-copied on the way in and out so callers never share
// state with the store.
type Store struct {
	mu        sync.RWMutex
	nextID    uint64
	pages     map[uint64]domain.Page
	requests  map[requestKey]domain.UpdateRequest
	reactions map[reactionKey]domain.Reaction
	events    []storage.TelemetryEvent
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:    1,
		pages:     map[uint64]domain.Page{},
		requests:  map[requestKey]domain.UpdateRequest{},
		reactions: map[reactionKey]domain.Reaction{},
	}
}

// CreatePage assigns the next page id and persists the record.
func (s *Store) CreatePage(ctx context.Context, page domain.Page) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	page.ID = s.nextID
	s.nextID++
	s.pages[page.ID] = page.Clone()
	return page.ID, nil
}

// PutPage persists a page record by id.
func (s *Store) PutPage(ctx context.Context, page domain.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if page.ID == 0 {
		return fmt.Errorf("page id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages[page.ID] = page.Clone()
	return nil
}

// GetPage fetches a page record by id.
func (s *Store) GetPage(ctx context.Context, id uint64) (domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.pages[id]
	if !ok {
		return domain.Page{}, storage.ErrNotFound
	}
	return page.Clone(), nil
}

// CountPages returns the number of stored pages.
func (s *Store) CountPages(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.pages)), nil
}

// PutPageWithRequest persists a page and an update request as one write.
func (s *Store) PutPageWithRequest(ctx context.Context, page domain.Page, request domain.UpdateRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if page.ID == 0 {
		return fmt.Errorf("page id is required")
	}
	if request.PageID != page.ID {
		return fmt.Errorf("request page id %d does not match page %d", request.PageID, page.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages[page.ID] = page.Clone()
	s.requests[requestKey{pageID: request.PageID, seq: request.Seq}] = request.Clone()
	return nil
}

// GetRequest fetches an update request by page id and sequence.
func (s *Store) GetRequest(ctx context.Context, pageID, seq uint64) (domain.UpdateRequest, error) {
	if err := ctx.Err(); err != nil {
		return domain.UpdateRequest{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, ok := s.requests[requestKey{pageID: pageID, seq: seq}]
	if !ok {
		return domain.UpdateRequest{}, storage.ErrNotFound
	}
	return request.Clone(), nil
}

// ListRequests returns a page's update requests ordered by sequence.
func (s *Store) ListRequests(ctx context.Context, pageID uint64) ([]domain.UpdateRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var requests []domain.UpdateRequest
	for key, request := range s.requests {
		if key.pageID == pageID {
			requests = append(requests, request.Clone())
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].Seq < requests[j].Seq })
	return requests, nil
}

// GetReaction fetches one principal's reaction to a page.
func (s *Store) GetReaction(ctx context.Context, pageID uint64, principal string) (domain.Reaction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reaction{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	reaction, ok := s.reactions[reactionKey{pageID: pageID, principal: principal}]
	if !ok {
		return domain.Reaction{}, storage.ErrNotFound
	}
	return reaction, nil
}

// PutPageWithReaction persists a page and a reaction as one write.
func (s *Store) PutPageWithReaction(ctx context.Context, page domain.Page, reaction domain.Reaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if page.ID == 0 {
		return fmt.Errorf("page id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages[page.ID] = page.Clone()
	s.reactions[reactionKey{pageID: reaction.PageID, principal: reaction.Principal}] = reaction
	return nil
}

// AppendTelemetryEvent records one telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	evt.ID = int64(len(s.events) + 1)
	s.events = append(s.events, evt)
	return nil
}

// ListTelemetryEvents returns the events recorded for a page in append order.
func (s *Store) ListTelemetryEvents(ctx context.Context, pageID uint64) ([]storage.TelemetryEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []storage.TelemetryEvent
	for _, evt := range s.events {
		if evt.PageID == pageID {
			events = append(events, evt)
		}
	}
	return events, nil
}
