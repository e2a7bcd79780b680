package catalog

import (
	"context"
	"testing"

	"github.com/kerbaras/yomu/pkg/api"
	"github.com/kerbaras/yomu/pkg/data"
)

// mockService satisfies api.Service with canned results and call counters.
type mockService struct {
	authed bool

	mangaResult    api.Result[data.MangaDetail]
	chaptersResult api.Result[data.MangaVolumes]
	chapterResult  api.Result[data.ChapterDetail]
	progressResult api.Result[data.ProgressUpdate]

	mangaCalls    int
	refreshCalls  int
	chaptersCalls int
	chapterCalls  int
}

func ok[T any](v T) api.Result[T] {
	return api.Result[T]{Envelope: api.Envelope{Type: "success", Code: 200}, Data: v}
}

func fail[T any](desc string, errs ...string) api.Result[T] {
	return api.Result[T]{Envelope: api.Envelope{Type: "error", Code: 500, Description: desc, Errors: errs}}
}

func (m *mockService) Authenticated() bool { return m.authed }

func (m *mockService) SearchManga(ctx context.Context, filter api.SearchFilter) api.Result[api.Paged[data.MangaDetail]] {
	return ok(api.Paged[data.MangaDetail]{})
}

func (m *mockService) Manga(ctx context.Context, id string) api.Result[data.MangaDetail] {
	m.mangaCalls++
	return m.mangaResult
}

func (m *mockService) RefreshManga(ctx context.Context, id string) api.Result[data.MangaDetail] {
	m.refreshCalls++
	return m.mangaResult
}

func (m *mockService) MangaChapters(ctx context.Context, id string, order data.ChapterOrder, asc bool) api.Result[data.MangaVolumes] {
	m.chaptersCalls++
	return m.chaptersResult
}

func (m *mockService) Chapter(ctx context.Context, id string, refetch bool) api.Result[data.ChapterDetail] {
	m.chapterCalls++
	return m.chapterResult
}

func (m *mockService) UpdateProgress(ctx context.Context, chapterID string, pageOrdinal int) api.Result[data.ProgressUpdate] {
	return m.progressResult
}

func (m *mockService) Bookmark(ctx context.Context, chapterID string, pages []int) api.Result[data.ProgressUpdate] {
	return m.progressResult
}

func (m *mockService) BatchProgress(ctx context.Context, mangaIDs []string) api.Result[[]data.MangaProgress] {
	return ok([]data.MangaProgress{})
}

func (m *mockService) Favorite(ctx context.Context, mangaID string) api.Result[data.ProgressUpdate] {
	return m.progressResult
}

func (m *mockService) Unfavorite(ctx context.Context, mangaID string) api.Result[data.ProgressUpdate] {
	return m.progressResult
}

func (m *mockService) MarkRead(ctx context.Context, mangaID string) api.Result[data.ProgressUpdate] {
	return m.progressResult
}

func (m *mockService) ResetProgress(ctx context.Context, mangaID string) api.Result[data.ProgressUpdate] {
	return m.progressResult
}

func (m *mockService) Me(ctx context.Context) api.Result[data.Profile] {
	return ok(data.Profile{})
}

func serverVolumes(mangaID string) data.MangaVolumes {
	return data.MangaVolumes{
		Progress: &data.MangaProgress{MangaID: mangaID},
		Chapters: map[string]*data.ProgressChapter{
			"c1": {Chapter: data.Chapter{ID: "c1", MangaID: mangaID, Ordinal: 1, PageCount: 10}},
		},
		Volumes: []*data.MangaVolume{
			{Chapters: []data.VolumeChapter{{Ordinal: 1, Versions: []string{"c1"}}}},
		},
	}
}

func newTestCache(svc *mockService) *Cache {
	return NewCache(svc, nil)
}

func TestEnsureFetchesAndCaches(t *testing.T) {
	svc := &mockService{
		authed:         true,
		mangaResult:    ok(data.MangaDetail{Manga: data.Manga{ID: "m1", Title: "One"}}),
		chaptersResult: ok(serverVolumes("m1")),
	}
	cache := newTestCache(svc)
	p := Params{MangaID: "m1", Sort: data.OrderOrdinal, Ascending: true}

	manga, err := cache.Ensure(context.Background(), p, false, false)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if manga.Manga.ID != "m1" {
		t.Errorf("Expected m1, got %s", manga.Manga.ID)
	}

	// Second call with identical params is served from cache.
	if _, err := cache.Ensure(context.Background(), p, false, false); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if svc.mangaCalls != 1 || svc.chaptersCalls != 1 {
		t.Errorf("Expected 1 fetch, got %d/%d", svc.mangaCalls, svc.chaptersCalls)
	}
}

func TestEnsureStaleOnSortChange(t *testing.T) {
	svc := &mockService{
		authed:         true,
		mangaResult:    ok(data.MangaDetail{Manga: data.Manga{ID: "m1"}}),
		chaptersResult: ok(serverVolumes("m1")),
	}
	cache := newTestCache(svc)

	cache.Ensure(context.Background(), Params{MangaID: "m1", Sort: data.OrderOrdinal, Ascending: true}, false, false)
	cache.Ensure(context.Background(), Params{MangaID: "m1", Sort: data.OrderDate, Ascending: true}, false, false)

	if svc.chaptersCalls != 2 {
		t.Errorf("Expected refetch after sort change, got %d calls", svc.chaptersCalls)
	}
}

func TestEnsureStaleAfterUnauthedFetch(t *testing.T) {
	svc := &mockService{
		mangaResult:    ok(data.MangaDetail{Manga: data.Manga{ID: "m1"}}),
		chaptersResult: ok(serverVolumes("m1")),
	}
	cache := newTestCache(svc)
	p := Params{MangaID: "m1", Sort: data.OrderOrdinal, Ascending: true}

	cache.Ensure(context.Background(), p, false, false)

	// Logging in invalidates the anonymous fetch.
	svc.authed = true
	cache.Ensure(context.Background(), p, false, false)

	if svc.chaptersCalls != 2 {
		t.Errorf("Expected refetch after auth change, got %d calls", svc.chaptersCalls)
	}
}

func TestEnsureResetUsesRefresh(t *testing.T) {
	svc := &mockService{
		authed:         true,
		mangaResult:    ok(data.MangaDetail{Manga: data.Manga{ID: "m1"}}),
		chaptersResult: ok(serverVolumes("m1")),
	}
	cache := newTestCache(svc)
	p := Params{MangaID: "m1", Sort: data.OrderOrdinal, Ascending: true}

	cache.Ensure(context.Background(), p, true, true)

	if svc.refreshCalls != 1 {
		t.Errorf("Expected 1 refresh call, got %d", svc.refreshCalls)
	}
	if svc.mangaCalls != 0 {
		t.Errorf("Expected no plain manga call on reset, got %d", svc.mangaCalls)
	}
}

func TestEnsurePartialFailureKeepsSuccessfulPayload(t *testing.T) {
	svc := &mockService{
		authed:         true,
		mangaResult:    ok(data.MangaDetail{Manga: data.Manga{ID: "m1", Title: "One"}}),
		chaptersResult: fail[data.MangaVolumes]("Boom", "chapters unavailable"),
	}
	cache := newTestCache(svc)
	p := Params{MangaID: "m1", Sort: data.OrderOrdinal, Ascending: true}

	if _, err := cache.Ensure(context.Background(), p, false, false); err == nil {
		t.Fatal("Expected error from failed chapter fetch")
	}

	if cache.Manga() == nil {
		t.Error("Expected successful manga payload to be stored")
	}
	if cache.Err() != "Boom. chapters unavailable" {
		t.Errorf("Unexpected error message: %q", cache.Err())
	}
}

func TestEnsureFailureDoesNotClearPriorData(t *testing.T) {
	svc := &mockService{
		authed:         true,
		mangaResult:    ok(data.MangaDetail{Manga: data.Manga{ID: "m1"}}),
		chaptersResult: ok(serverVolumes("m1")),
	}
	cache := newTestCache(svc)
	p := Params{MangaID: "m1", Sort: data.OrderOrdinal, Ascending: true}
	cache.Ensure(context.Background(), p, false, false)

	svc.mangaResult = fail[data.MangaDetail]("Gone")
	svc.chaptersResult = fail[data.MangaVolumes]("Gone")
	cache.Ensure(context.Background(), p, true, false)

	if cache.Manga() == nil || cache.Volumes() == nil {
		t.Error("Expected prior data to survive a failed refetch")
	}
}

func TestChapterFetchOnMissThenCached(t *testing.T) {
	svc := &mockService{
		authed: true,
		chapterResult: ok(data.ChapterDetail{
			Chapter: data.Chapter{ID: "c1", MangaID: "m1"},
		}),
	}
	cache := newTestCache(svc)

	if _, err := cache.Chapter(context.Background(), "c1"); err != nil {
		t.Fatalf("Chapter failed: %v", err)
	}
	if _, err := cache.Chapter(context.Background(), "c1"); err != nil {
		t.Fatalf("Chapter failed: %v", err)
	}
	if svc.chapterCalls != 1 {
		t.Errorf("Expected 1 fetch, got %d", svc.chapterCalls)
	}

	if _, err := cache.RefetchChapter(context.Background(), "c1"); err != nil {
		t.Fatalf("RefetchChapter failed: %v", err)
	}
	if svc.chapterCalls != 2 {
		t.Errorf("Expected refetch to bypass cache, got %d calls", svc.chapterCalls)
	}
}

func TestChapterEvictionOnMangaSwitch(t *testing.T) {
	svc := &mockService{
		authed:         true,
		mangaResult:    ok(data.MangaDetail{Manga: data.Manga{ID: "m1"}}),
		chaptersResult: ok(serverVolumes("m1")),
	}
	cache := newTestCache(svc)
	cache.Ensure(context.Background(), Params{MangaID: "m1", Sort: data.OrderOrdinal, Ascending: true}, false, false)

	cache.StoreChapter(&data.ChapterDetail{Chapter: data.Chapter{ID: "c1", MangaID: "m1"}})
	cache.StoreChapter(&data.ChapterDetail{Chapter: data.Chapter{ID: "x9", MangaID: "m2"}})

	// Switching manga evicts the other manga's chapters.
	svc.mangaResult = ok(data.MangaDetail{Manga: data.Manga{ID: "m2"}})
	svc.chaptersResult = ok(serverVolumes("m2"))
	cache.Ensure(context.Background(), Params{MangaID: "m2", Sort: data.OrderOrdinal, Ascending: true}, false, false)

	if _, ok := cache.CachedChapter("c1"); ok {
		t.Error("Expected m1 chapter to be evicted")
	}
	if _, ok := cache.CachedChapter("x9"); !ok {
		t.Error("Expected m2 chapter to survive")
	}
}

func TestProgressCallSkipsWhenUnauthenticated(t *testing.T) {
	svc := &mockService{
		progressResult: fail[data.ProgressUpdate]("should not be called"),
	}
	cache := newTestCache(svc)

	if err := cache.MarkRead(context.Background()); err != nil {
		t.Errorf("Expected unauthenticated no-op, got %v", err)
	}
}

func TestFavoriteMergesSnapshot(t *testing.T) {
	svc := &mockService{
		authed:         true,
		mangaResult:    ok(data.MangaDetail{Manga: data.Manga{ID: "m1"}}),
		chaptersResult: ok(serverVolumes("m1")),
	}
	cache := newTestCache(svc)
	cache.Ensure(context.Background(), Params{MangaID: "m1", Sort: data.OrderOrdinal, Ascending: true}, false, false)

	svc.progressResult = ok(data.ProgressUpdate{
		Progress: &data.MangaProgress{MangaID: "m1", Favorited: true},
	})
	if err := cache.Favorite(context.Background(), true); err != nil {
		t.Fatalf("Favorite failed: %v", err)
	}

	if v := cache.Volumes(); v.Progress == nil || !v.Progress.Favorited {
		t.Error("Expected favorited snapshot to be merged")
	}
}

func TestMergeDoesNotMutateEscapedSnapshot(t *testing.T) {
	svc := &mockService{
		authed:         true,
		mangaResult:    ok(data.MangaDetail{Manga: data.Manga{ID: "m1"}}),
		chaptersResult: ok(serverVolumes("m1")),
	}
	cache := newTestCache(svc)
	cache.Ensure(context.Background(), Params{MangaID: "m1", Sort: data.OrderOrdinal, Ascending: true}, false, false)

	before := cache.Volumes()

	cache.Merge(data.ProgressUpdate{
		Progress: &data.MangaProgress{MangaID: "m1"},
		Chapters: []data.ChapterProgress{{ChapterID: "c1", PageOrdinal: 5, LastRead: ts()}},
	})

	if before.Volumes[0].State != data.VolumeNotStarted {
		t.Errorf("Expected escaped snapshot state unchanged, got %v", before.Volumes[0].State)
	}
	if before.Volumes[0].Chapters[0].Percent != 0 {
		t.Errorf("Expected escaped snapshot percent 0, got %v", before.Volumes[0].Chapters[0].Percent)
	}
	if before.Chapters["c1"].Progress != nil {
		t.Error("Expected escaped snapshot fragment to stay empty")
	}

	after := cache.Volumes()
	if after == before {
		t.Fatal("Expected Merge to swap in a new hierarchy")
	}
	if after.Volumes[0].State != data.VolumeCompleted {
		t.Errorf("Expected completed volume after merge, got %v", after.Volumes[0].State)
	}
	if after.Volumes[0].Chapters[0].Percent != 50 {
		t.Errorf("Expected percent 50, got %v", after.Volumes[0].Chapters[0].Percent)
	}
}

func TestConcurrentMergeAndSnapshotReads(t *testing.T) {
	svc := &mockService{
		authed:         true,
		mangaResult:    ok(data.MangaDetail{Manga: data.Manga{ID: "m1"}}),
		chaptersResult: ok(serverVolumes("m1")),
	}
	cache := newTestCache(svc)
	cache.Ensure(context.Background(), Params{MangaID: "m1", Sort: data.OrderOrdinal, Ascending: true}, false, false)

	update := data.ProgressUpdate{
		Progress: &data.MangaProgress{MangaID: "m1"},
		Chapters: []data.ChapterProgress{{ChapterID: "c1", PageOrdinal: 5, LastRead: ts()}},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			cache.Merge(update)
		}
	}()

	for i := 0; i < 200; i++ {
		v := cache.Volumes()
		_ = v.Volumes[0].State
		_ = v.Volumes[0].Chapters[0].Percent
		if entry := v.Chapters["c1"]; entry != nil && entry.Progress != nil {
			_ = entry.Progress.PageOrdinal
		}
	}
	<-done
}
