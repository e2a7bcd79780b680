package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/kerbaras/yomu/pkg/api"
	"github.com/kerbaras/yomu/pkg/data"
)

// Params identify one manga listing request.
type Params struct {
	MangaID   string
	Sort      data.ChapterOrder
	Ascending bool
}

// Cache is the normalized in-memory store for the manga being browsed: the
// manga entity, its volume/chapter hierarchy, and the full chapter payloads
// fetched so far. One instance is shared per session; the reader and the
// detail views both go through it.
//
// All methods take the lock for the whole read-modify-write sequence, since
// the volume-state recomputation in MergeProgress is not atomic on its own.
// Accessors hand out the cached pointers directly; that is safe because the
// cache only ever swaps them for freshly built values (fetch replaces both
// wholesale, Merge replaces the hierarchy copy-on-write) and never writes
// through an escaped pointer.
type Cache struct {
	mu  sync.Mutex
	svc api.Service
	log *log.Logger

	params   *Params
	unauthed bool
	manga    *data.MangaDetail
	volumes  *data.MangaVolumes
	chapters map[string]*data.ChapterDetail

	pending bool
	errMsg  string
}

func NewCache(svc api.Service, logger *log.Logger) *Cache {
	return &Cache{
		svc:      svc,
		log:      logger,
		chapters: map[string]*data.ChapterDetail{},
	}
}

// Manga returns the cached manga detail, or nil when nothing is loaded.
func (c *Cache) Manga() *data.MangaDetail {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manga
}

// Volumes returns the cached hierarchy, or nil when nothing is loaded.
func (c *Cache) Volumes() *data.MangaVolumes {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volumes
}

// Err returns the last user-facing load error, or "".
func (c *Cache) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Pending reports whether a fetch is in flight.
func (c *Cache) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// usable reports whether the cached data satisfies p. The cache is stale
// when the sort parameters changed, or when the previous fetch ran
// unauthenticated and so lacks the progress data an authenticated view needs.
func (c *Cache) usable(p Params) bool {
	if c.params == nil || c.manga == nil ||
		c.volumes == nil || c.volumes.Progress == nil || c.unauthed {
		return false
	}
	if c.params.Sort != p.Sort || c.params.Ascending != p.Ascending {
		return false
	}
	return c.manga.Manga.ID == p.MangaID
}

// Ensure returns the cached manga when it still matches p, fetching
// otherwise. force bypasses the cache; reset additionally asks the server to
// re-scrape the manga. Overlapping calls are rejected: a call arriving while
// a fetch is pending returns whatever is currently cached.
func (c *Cache) Ensure(ctx context.Context, p Params, force, reset bool) (*data.MangaDetail, error) {
	c.mu.Lock()
	if !force && c.usable(p) {
		m := c.manga
		c.mu.Unlock()
		return m, nil
	}
	if c.pending {
		m := c.manga
		c.mu.Unlock()
		return m, nil
	}
	c.pending = true
	c.params = &p
	c.unauthed = !c.svc.Authenticated()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pending = false
		c.mu.Unlock()
	}()

	return c.fetch(ctx, p, reset)
}

// EnsureFor is the reader-side entry point: it loads the manga a chapter
// belongs to, reusing the cache whenever the active manga already matches,
// with no sort or auth staleness checks. The reader always lists chapters by
// ordinal ascending.
func (c *Cache) EnsureFor(ctx context.Context, mangaID string) (*data.MangaDetail, error) {
	c.mu.Lock()
	if c.manga != nil && c.volumes != nil && c.errMsg == "" && c.manga.Manga.ID == mangaID {
		m := c.manga
		c.mu.Unlock()
		return m, nil
	}
	if c.pending {
		m := c.manga
		c.mu.Unlock()
		return m, nil
	}
	c.pending = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pending = false
		c.mu.Unlock()
	}()

	return c.fetch(ctx, Params{MangaID: mangaID, Sort: data.OrderOrdinal, Ascending: true}, false)
}

// fetch loads the manga detail and the chapter hierarchy concurrently.
// Whichever payload succeeds is stored even when the other fails; prior
// cached data is never cleared by a failure.
func (c *Cache) fetch(ctx context.Context, p Params, reset bool) (*data.MangaDetail, error) {
	var (
		mres api.Result[data.MangaDetail]
		vres api.Result[data.MangaVolumes]
	)

	if reset {
		// A forced reset re-scrapes before listing, so the chapter list
		// reflects the refreshed manga.
		mres = c.svc.RefreshManga(ctx, p.MangaID)
		vres = c.svc.MangaChapters(ctx, p.MangaID, p.Sort, p.Ascending)
	} else {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			mres = c.svc.Manga(ctx, p.MangaID)
		}()
		go func() {
			defer wg.Done()
			vres = c.svc.MangaChapters(ctx, p.MangaID, p.Sort, p.Ascending)
		}()
		wg.Wait()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.errMsg = ""
	if !mres.Success() || !vres.Success() {
		parts := make([]string, 0, 2)
		for _, msg := range []string{mres.ErrorMessage(), vres.ErrorMessage()} {
			if msg != "" {
				parts = append(parts, msg)
			}
		}
		c.errMsg = strings.Join(parts, "; ")
		if c.errMsg == "" {
			c.errMsg = "An error occurred while loading manga!"
		}
	}

	if mres.Success() {
		m := mres.Data
		c.manga = &m
	}
	if vres.Success() {
		v := vres.Data
		if v.Chapters == nil {
			v.Chapters = map[string]*data.ProgressChapter{}
		}
		c.volumes = &v
	}

	c.cleanupLocked()

	if c.errMsg != "" {
		return c.manga, errors.New(c.errMsg)
	}
	return c.manga, nil
}

// Chapter returns the full payload for one chapter, fetching on miss. The
// fetch neither blocks on nor invalidates the wider manga cache.
func (c *Cache) Chapter(ctx context.Context, id string) (*data.ChapterDetail, error) {
	return c.chapter(ctx, id, false)
}

// RefetchChapter forces the server to re-scrape the chapter's pages.
func (c *Cache) RefetchChapter(ctx context.Context, id string) (*data.ChapterDetail, error) {
	return c.chapter(ctx, id, true)
}

func (c *Cache) chapter(ctx context.Context, id string, refetch bool) (*data.ChapterDetail, error) {
	c.mu.Lock()
	if cached, ok := c.chapters[id]; ok && !refetch {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	res := c.svc.Chapter(ctx, id, refetch)
	if !res.Success() {
		msg := res.ErrorMessage()
		c.mu.Lock()
		c.errMsg = "Failed to load chapter! " + msg
		c.mu.Unlock()
		return nil, errors.New(msg)
	}

	detail := res.Data
	c.mu.Lock()
	c.chapters[id] = &detail
	c.mu.Unlock()
	return &detail, nil
}

// StoreChapter inserts an already-fetched payload, used by the prefetcher.
func (c *Cache) StoreChapter(detail *data.ChapterDetail) {
	if detail == nil {
		return
	}
	c.mu.Lock()
	c.chapters[detail.Chapter.ID] = detail
	c.mu.Unlock()
}

// CachedChapter returns the payload for id without fetching.
func (c *Cache) CachedChapter(id string) (*data.ChapterDetail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	detail, ok := c.chapters[id]
	return detail, ok
}

// cleanupLocked evicts chapter payloads belonging to a manga other than the
// active one. This bounds memory over a long session without an LRU.
func (c *Cache) cleanupLocked() {
	if c.manga == nil {
		return
	}
	for id, detail := range c.chapters {
		if detail.Chapter.MangaID == c.manga.Manga.ID {
			continue
		}
		delete(c.chapters, id)
	}
}

// Merge applies a progress snapshot to the cached hierarchy copy-on-write:
// the merge runs on a clone which then replaces the cached pointer, so
// snapshots already returned by Volumes are never written. Readers see
// either the old generation or the new one in full.
func (c *Cache) Merge(update data.ProgressUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.volumes == nil {
		return
	}
	next := c.volumes.Clone()
	MergeProgress(next, update)
	c.volumes = next
}

// Favorite sets or clears the favorited flag, merging the returned snapshot.
func (c *Cache) Favorite(ctx context.Context, value bool) error {
	return c.progressCall(ctx, func(ctx context.Context, id string) api.Result[data.ProgressUpdate] {
		if value {
			return c.svc.Favorite(ctx, id)
		}
		return c.svc.Unfavorite(ctx, id)
	})
}

// MarkRead marks every chapter of the active manga as read.
func (c *Cache) MarkRead(ctx context.Context) error {
	return c.progressCall(ctx, c.svc.MarkRead)
}

// ResetProgress clears all reading progress for the active manga.
func (c *Cache) ResetProgress(ctx context.Context) error {
	return c.progressCall(ctx, c.svc.ResetProgress)
}

func (c *Cache) progressCall(ctx context.Context, call func(context.Context, string) api.Result[data.ProgressUpdate]) error {
	c.mu.Lock()
	if !c.svc.Authenticated() || c.params == nil {
		c.mu.Unlock()
		return nil
	}
	id := c.params.MangaID
	c.mu.Unlock()

	res := call(ctx, id)
	if !res.Success() {
		return errors.New(res.ErrorMessage())
	}

	c.Merge(res.Data)
	return nil
}
