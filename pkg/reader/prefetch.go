package reader

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/kerbaras/yomu/pkg/data"
)

// preloadChapters fetches the window of chapters adjacent to the current one
// that are not yet cached. Best-effort: failures are swallowed, the next
// explicit navigation refetches on demand.
func (s *Session) preloadChapters(ctx context.Context) {
	s.mu.Lock()
	if s.chapter == nil || s.pos.Volumes == nil {
		s.mu.Unlock()
		return
	}
	current := s.chapter.Chapter
	volumes := s.pos.Volumes
	flat := s.pos.Flat
	s.mu.Unlock()

	idx := slices.IndexFunc(flat, func(c data.VolumeChapter) bool {
		return slices.Contains(c.Versions, current.ID)
	})
	if idx < 0 {
		return
	}

	start := max(0, idx-preloadChapters)
	end := min(len(flat), idx+preloadChapters+1)

	var g errgroup.Group
	g.SetLimit(2)
	for _, vc := range flat[start:end] {
		best := BestVersion(volumes, &current, vc.Versions)
		if best == nil {
			continue
		}
		if _, ok := s.cache.CachedChapter(best.ID); ok {
			continue
		}

		g.Go(func() error {
			res := s.svc.Chapter(ctx, best.ID, false)
			if !res.Success() {
				if s.log != nil {
					s.log.Debug("chapter preload failed", "chapter", best.ID, "error", res.ErrorMessage())
				}
				return nil
			}
			detail := res.Data
			s.cache.StoreChapter(&detail)
			return nil
		})
	}
	g.Wait()
}

// pushProgress reports the live position to the server and merges the
// returned snapshot. Failed updates are dropped without rollback; the next
// page turn retries naturally.
func (s *Session) pushProgress(ctx context.Context) {
	s.mu.Lock()
	params := s.params
	s.mu.Unlock()
	if params == nil || !s.svc.Authenticated() {
		return
	}

	res := s.svc.UpdateProgress(ctx, params.ChapterID, params.Page)
	if !res.Success() {
		if s.log != nil {
			s.log.Warn("progress update dropped", "chapter", params.ChapterID, "error", res.ErrorMessage())
		}
		return
	}
	s.merge(res.Data)
}

// Bookmark toggles the current page in the chapter's bookmark list and
// pushes the full new list.
func (s *Session) Bookmark(ctx context.Context) error {
	s.mu.Lock()
	params := s.params
	page := s.pos.Page
	marks := slices.Clone(s.pos.Bookmarks)
	s.mu.Unlock()

	if params == nil || page == nil || !s.svc.Authenticated() {
		return nil
	}

	if i := slices.Index(marks, params.Page); i >= 0 {
		marks = slices.Delete(marks, i, i+1)
	} else {
		marks = append(marks, params.Page)
	}

	res := s.svc.Bookmark(ctx, params.ChapterID, marks)
	if err := res.Err(); err != nil {
		if s.log != nil {
			s.log.Warn("bookmark update dropped", "chapter", params.ChapterID, "error", err)
		}
		return err
	}

	s.merge(res.Data)
	return nil
}

// merge folds a progress snapshot into the shared cache and rederives the
// position so the HUD and menus reflect it.
func (s *Session) merge(update data.ProgressUpdate) {
	s.cache.Merge(update)
	s.mu.Lock()
	s.deriveLocked()
	s.mu.Unlock()
}
