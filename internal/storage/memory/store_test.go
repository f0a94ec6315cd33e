package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/folioworks/folio/internal/registry/domain"
	"github.com/folioworks/folio/internal/storage"
)

func TestCreatePageAssignsMonotonicIDs(t *testing.T) {
	store := New()
	ctx := context.Background()

	first, err := store.CreatePage(ctx, domain.Page{Name: "a"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	second, err := store.CreatePage(ctx, domain.Page{Name: "b"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first, second)
	}

	count, err := store.CountPages(ctx)
	if err != nil {
		t.Fatalf("count pages: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 pages, got %d", count)
	}
}

func TestGetPageMissing(t *testing.T) {
	store := New()
	_, err := store.GetPage(context.Background(), 42)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPutPageWithRequestRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	id, err := store.CreatePage(ctx, domain.Page{Name: "a"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	page, err := store.GetPage(ctx, id)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	page.Balance = 1000
	page.NextRequestSeq = 1
	request := domain.NewUpdateRequest(id, 0, domain.UpdateFields{Content: "c"}, "alice", time.Now())

	if err := store.PutPageWithRequest(ctx, page, request); err != nil {
		t.Fatalf("put page with request: %v", err)
	}

	storedPage, err := store.GetPage(ctx, id)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if storedPage.Balance != 1000 || storedPage.NextRequestSeq != 1 {
		t.Fatalf("unexpected page state %+v", storedPage)
	}

	storedRequest, err := store.GetRequest(ctx, id, 0)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if storedRequest.Submitter != "alice" {
		t.Fatalf("unexpected request %+v", storedRequest)
	}
}

func TestPutPageWithRequestRejectsMismatchedIDs(t *testing.T) {
	store := New()
	ctx := context.Background()

	id, err := store.CreatePage(ctx, domain.Page{Name: "a"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	page, _ := store.GetPage(ctx, id)
	request := domain.NewUpdateRequest(id+1, 0, domain.UpdateFields{Content: "c"}, "alice", time.Now())

	if err := store.PutPageWithRequest(ctx, page, request); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestListRequestsOrderedBySeq(t *testing.T) {
	store := New()
	ctx := context.Background()

	id, _ := store.CreatePage(ctx, domain.Page{Name: "a"})
	page, _ := store.GetPage(ctx, id)
	for seq := uint64(0); seq < 3; seq++ {
		request := domain.NewUpdateRequest(id, seq, domain.UpdateFields{Content: "c"}, "alice", time.Now())
		if err := store.PutPageWithRequest(ctx, page, request); err != nil {
			t.Fatalf("put request %d: %v", seq, err)
		}
	}

	requests, err := store.ListRequests(ctx, id)
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(requests))
	}
	for i, request := range requests {
		if request.Seq != uint64(i) {
			t.Fatalf("expected ordered sequences, got %v", requests)
		}
	}
}

func TestStoredRecordsDoNotAliasCallerState(t *testing.T) {
	store := New()
	ctx := context.Background()

	page := domain.Page{Name: "a", Participants: []string{"alice"}}
	id, _ := store.CreatePage(ctx, page)
	page.Participants[0] = "mallory"

	stored, _ := store.GetPage(ctx, id)
	if stored.Participants[0] != "alice" {
		t.Fatal("expected store to deep-copy records")
	}
}

func TestReactionRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	id, _ := store.CreatePage(ctx, domain.Page{Name: "a"})
	page, _ := store.GetPage(ctx, id)
	page.LikeCount = 1
	reaction := domain.Reaction{PageID: id, Principal: "alice", Liked: true}

	if err := store.PutPageWithReaction(ctx, page, reaction); err != nil {
		t.Fatalf("put page with reaction: %v", err)
	}

	stored, err := store.GetReaction(ctx, id, "alice")
	if err != nil {
		t.Fatalf("get reaction: %v", err)
	}
	if !stored.Liked || stored.Disliked {
		t.Fatalf("unexpected reaction %+v", stored)
	}

	if _, err := store.GetReaction(ctx, id, "bob"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for missing reaction, got %v", err)
	}
}

func TestTelemetryEventsFilterByPage(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, pageID := range []uint64{1, 2, 1} {
		evt := storage.TelemetryEvent{Name: "page.created", PageID: pageID, Timestamp: time.Now()}
		if err := store.AppendTelemetryEvent(ctx, evt); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	events, err := store.ListTelemetryEvents(ctx, 1)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events for page 1, got %d", len(events))
	}
	if events[0].ID >= events[1].ID {
		t.Fatal("expected append order preserved")
	}
}
