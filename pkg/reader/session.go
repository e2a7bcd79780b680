package reader

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/kerbaras/yomu/pkg/api"
	"github.com/kerbaras/yomu/pkg/catalog"
	"github.com/kerbaras/yomu/pkg/data"
)

const (
	// preloadImages is how many page images each side of the current page
	// are exposed for eager loading.
	preloadImages = 5
	// preloadChapters is how many chapters each side of the current one are
	// prefetched after settling on a chapter.
	preloadChapters = 2
	// progressInterval is the leading-edge throttle window around progress
	// pushes; rapid page turns collapse into one update per window.
	progressInterval = 200 * time.Millisecond
)

// PageLast is the page sentinel that resolves to the chapter's final page
// once the chapter has loaded. Backwards navigation uses it to land on the
// end of the previous chapter.
const PageLast = -1

// Params identify the live reading position: a chapter version and a page
// ordinal within it.
type Params struct {
	ChapterID string
	Page      int
}

// Position is everything the reader derives from the caches for the current
// Params. It is recomputed wholesale after every navigation or merge;
// consumers read it and never mutate it.
type Position struct {
	Manga    *data.MangaDetail
	Volumes  *data.MangaVolumes
	Progress *data.MangaProgress
	Ext      *data.MangaExt

	Volume        *data.MangaVolume
	VolumeChapter *data.VolumeChapter

	Pages     []data.Image
	Page      *data.Image
	Preload   []data.Image
	Bookmarks []int

	// Flat is every volume-chapter across all volumes, sorted by ordinal;
	// the chapter prefetch window slides over it.
	Flat []data.VolumeChapter

	Summary catalog.Summary
	Links   Links
}

// Session is the reader-side navigation engine. It owns the live position
// and drives the shared catalog cache; one instance exists per running app.
type Session struct {
	mu     sync.Mutex
	svc    api.Service
	cache  *catalog.Cache
	log    *log.Logger
	margin func() float64

	params  *Params
	chapter *data.ChapterDetail
	pending bool
	errMsg  string
	pos     Position

	progressThrottle rate.Sometimes
}

// NewSession wires a session over the shared cache. margin supplies the
// configured tap-region margin in percent.
func NewSession(svc api.Service, cache *catalog.Cache, margin func() float64, logger *log.Logger) *Session {
	if margin == nil {
		margin = func() float64 { return 30 }
	}
	return &Session{
		svc:              svc,
		cache:            cache,
		log:              logger,
		margin:           margin,
		progressThrottle: rate.Sometimes{Interval: progressInterval},
	}
}

// Position returns the current derived position.
func (s *Session) Position() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Chapter returns the currently open chapter payload, or nil.
func (s *Session) Chapter() *data.ChapterDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapter
}

// Params returns the live chapter/page position, or nil before the first
// load.
func (s *Session) Params() *Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.params == nil {
		return nil
	}
	p := *s.params
	return &p
}

// Err returns the last user-facing load error, or "".
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Pending reports whether a load is in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Regions returns the tap zones for the configured margin.
func (s *Session) Regions() []Rect {
	return Regions(s.margin())
}

// Hit returns the regions containing the point (x, y) in surface percent.
func (s *Session) Hit(x, y float64) []Region {
	return HitRegions(x, y, s.margin())
}

// Load opens a chapter at the given page. force refetches the chapter's
// pages from the source. A load arriving while another is pending is
// rejected; callers throttle their triggers rather than queueing here.
//
// Responses are applied in completion order. A superseded load simply lands
// last; the merge guard in the catalog is the only stale-response defense.
func (s *Session) Load(ctx context.Context, chapterID string, page int, force bool) error {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return nil
	}
	s.pending = true
	s.params = &Params{ChapterID: chapterID, Page: page}
	s.errMsg = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
	}()

	if chapterID == "" || !s.svc.Authenticated() {
		return s.fail("This chapter does not exist!")
	}

	var (
		detail *data.ChapterDetail
		err    error
	)
	if force {
		detail, err = s.cache.RefetchChapter(ctx, chapterID)
	} else {
		detail, err = s.cache.Chapter(ctx, chapterID)
	}
	if err != nil {
		return s.fail("Failed to load chapter! " + err.Error())
	}
	if detail.Chapter.MangaID == "" {
		s.afterNav(ctx)
		return s.fail("This chapter does not exist!")
	}

	s.mu.Lock()
	s.chapter = detail
	if page <= 0 {
		// PageLast resolves against the actual page list, not the entity's
		// declared count.
		pages := detail.SortedPages()
		resolved := 1
		if len(pages) > 0 {
			resolved = pages[len(pages)-1].Ordinal
		}
		s.params.Page = resolved
	}
	s.mu.Unlock()

	if _, err := s.cache.EnsureFor(ctx, detail.Chapter.MangaID); err != nil {
		s.afterNav(ctx)
		return s.fail("Failed to load chapter! " + err.Error())
	}

	s.afterNav(ctx)
	return nil
}

func (s *Session) fail(msg string) error {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
	return errors.New(msg)
}

// afterNav settles the session on a new position: rederive the view state,
// then kick off the best-effort background work.
func (s *Session) afterNav(ctx context.Context) {
	s.mu.Lock()
	s.deriveLocked()
	s.mu.Unlock()

	go s.preloadChapters(context.WithoutCancel(ctx))
	s.progressThrottle.Do(func() {
		go s.pushProgress(context.WithoutCancel(ctx))
	})
}

// deriveLocked recomputes every projection of the current position.
func (s *Session) deriveLocked() {
	pos := Position{}
	pos.Manga = s.cache.Manga()
	pos.Volumes = s.cache.Volumes()
	if pos.Manga != nil {
		pos.Ext = pos.Manga.Ext
	}
	if pos.Volumes != nil {
		pos.Progress = pos.Volumes.Progress
	}

	if s.params != nil && pos.Volumes != nil {
		for _, v := range pos.Volumes.Volumes {
			for i := range v.Chapters {
				if slices.Contains(v.Chapters[i].Versions, s.params.ChapterID) {
					pos.Volume = v
					pos.VolumeChapter = &v.Chapters[i]
					break
				}
			}
			if pos.Volume != nil {
				break
			}
		}

		for _, v := range pos.Volumes.Volumes {
			pos.Flat = append(pos.Flat, v.Chapters...)
		}
		slices.SortStableFunc(pos.Flat, func(a, b data.VolumeChapter) int {
			switch {
			case a.Ordinal < b.Ordinal:
				return -1
			case a.Ordinal > b.Ordinal:
				return 1
			default:
				return 0
			}
		})

		if entry, ok := pos.Volumes.Chapters[s.params.ChapterID]; ok && entry.Progress != nil {
			pos.Bookmarks = entry.Progress.Bookmarks
		}
	}

	if s.chapter != nil {
		pos.Pages = s.chapter.SortedPages()
	}
	if s.params != nil {
		for i := range pos.Pages {
			if pos.Pages[i].Ordinal == s.params.Page {
				pos.Page = &pos.Pages[i]
				break
			}
		}
	}

	pos.Preload = preloadWindow(pos.Pages, pos.Page)
	pos.Summary = catalog.Summarize(pos.Volumes, pos.Ext, len(pos.Pages))
	pos.Links = s.buildLinks(pos)
	s.pos = pos
}

// preloadWindow slices the pages around the current one for eager image
// loading. No network is touched here; the image loader consumes the window.
func preloadWindow(pages []data.Image, current *data.Image) []data.Image {
	if current == nil || len(pages) == 0 {
		return nil
	}
	idx := slices.IndexFunc(pages, func(p data.Image) bool { return p.Ordinal == current.Ordinal })
	if idx < 0 {
		return nil
	}
	start := max(0, idx-preloadImages)
	end := min(len(pages), idx+preloadImages+1)
	return pages[start:end]
}
