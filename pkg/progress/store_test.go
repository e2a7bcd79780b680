package progress

import (
	"context"
	"testing"
	"time"

	"github.com/kerbaras/yomu/pkg/api"
	"github.com/kerbaras/yomu/pkg/data"
)

type mockService struct {
	api.Service

	authed     bool
	batches    [][]string
	records    []data.MangaProgress
	batchError bool
}

func (m *mockService) Authenticated() bool { return m.authed }

func (m *mockService) BatchProgress(ctx context.Context, mangaIDs []string) api.Result[[]data.MangaProgress] {
	m.batches = append(m.batches, mangaIDs)
	if m.batchError {
		return api.Result[[]data.MangaProgress]{Envelope: api.Envelope{Type: "error", Code: 500, Description: "Boom"}}
	}
	return api.Result[[]data.MangaProgress]{Envelope: api.Envelope{Code: 200}, Data: m.records}
}

func newTestStore(svc *mockService) (*Store, *time.Time) {
	s := NewStore(svc, nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestLoadRegistersWithoutFetching(t *testing.T) {
	svc := &mockService{authed: true}
	s, _ := newTestStore(svc)

	s.Load("m1", "m2")
	if len(svc.batches) != 0 {
		t.Errorf("Expected no fetch from Load, got %d batches", len(svc.batches))
	}
	if s.Get("m1") != nil {
		t.Error("Expected empty placeholder for m1")
	}
}

func TestTapFetchesMissingInOneBatch(t *testing.T) {
	svc := &mockService{
		authed: true,
		records: []data.MangaProgress{
			{MangaID: "m1", ProgressPercentage: 10},
			{MangaID: "m2", ProgressPercentage: 20},
		},
	}
	s, _ := newTestStore(svc)

	s.Load("m1", "m2", "m3")
	if err := s.Tap(context.Background()); err != nil {
		t.Fatalf("Tap failed: %v", err)
	}

	if len(svc.batches) != 1 {
		t.Fatalf("Expected a single batched call, got %d", len(svc.batches))
	}
	if len(svc.batches[0]) != 3 {
		t.Errorf("Expected all 3 IDs in the batch, got %v", svc.batches[0])
	}

	if p := s.Get("m1"); p == nil || p.ProgressPercentage != 10 {
		t.Errorf("Expected m1 at 10%%, got %+v", p)
	}
	// m3 was requested but absent from the response; it stays empty.
	if s.Get("m3") != nil {
		t.Error("Expected m3 to stay empty")
	}
}

func TestTapSkipsFreshEntries(t *testing.T) {
	svc := &mockService{
		authed:  true,
		records: []data.MangaProgress{{MangaID: "m1", ProgressPercentage: 10}},
	}
	s, now := newTestStore(svc)

	s.Load("m1")
	s.Tap(context.Background())

	// Within the expiration window nothing is stale.
	*now = now.Add(expiration)
	s.Tap(context.Background())
	if len(svc.batches) != 1 {
		t.Fatalf("Expected fresh entry to be skipped, got %d batches", len(svc.batches))
	}

	// One tick past the window the record expires.
	*now = now.Add(time.Second)
	s.Tap(context.Background())
	if len(svc.batches) != 2 {
		t.Errorf("Expected refetch after expiration, got %d batches", len(svc.batches))
	}
}

func TestTapUnauthenticatedIsNoop(t *testing.T) {
	svc := &mockService{}
	s, _ := newTestStore(svc)

	s.Load("m1")
	if err := s.Tap(context.Background()); err != nil {
		t.Errorf("Expected no-op, got %v", err)
	}
	if len(svc.batches) != 0 {
		t.Errorf("Expected no fetch, got %d", len(svc.batches))
	}
}

func TestTapErrorLeavesEntriesRetryable(t *testing.T) {
	svc := &mockService{authed: true, batchError: true}
	s, _ := newTestStore(svc)

	s.Load("m1")
	if err := s.Tap(context.Background()); err == nil {
		t.Fatal("Expected batch error")
	}

	svc.batchError = false
	svc.records = []data.MangaProgress{{MangaID: "m1", ProgressPercentage: 5}}
	if err := s.Tap(context.Background()); err != nil {
		t.Fatalf("Tap failed: %v", err)
	}
	if p := s.Get("m1"); p == nil || p.ProgressPercentage != 5 {
		t.Errorf("Expected retry to succeed, got %+v", p)
	}
}

func TestGetRegistersUnknownID(t *testing.T) {
	svc := &mockService{
		authed:  true,
		records: []data.MangaProgress{{MangaID: "m9", ProgressPercentage: 70}},
	}
	s, _ := newTestStore(svc)

	if s.Get("m9") != nil {
		t.Error("Expected nil before any fetch")
	}
	s.Tap(context.Background())
	if p := s.Get("m9"); p == nil || p.ProgressPercentage != 70 {
		t.Errorf("Expected Get to have registered m9 for the tap, got %+v", p)
	}
}

func TestClear(t *testing.T) {
	svc := &mockService{
		authed: true,
		records: []data.MangaProgress{
			{MangaID: "m1"}, {MangaID: "m2"},
		},
	}
	s, _ := newTestStore(svc)
	s.Load("m1", "m2")
	s.Tap(context.Background())

	s.Clear("m1")
	if len(s.Snapshot()) != 1 {
		t.Errorf("Expected one record left, got %d", len(s.Snapshot()))
	}

	s.Clear()
	if len(s.Snapshot()) != 0 {
		t.Errorf("Expected empty store, got %d", len(s.Snapshot()))
	}
}
