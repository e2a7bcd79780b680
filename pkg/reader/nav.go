package reader

import (
	"fmt"
	"slices"

	"github.com/kerbaras/yomu/pkg/data"
)

// Granularity selects the step size for directional navigation.
type Granularity int

const (
	ByPage Granularity = iota
	ByChapter
	ByVolume
)

// Target is where a navigation lands: either a page within a chapter, or the
// manga's landing view when no further position exists in that direction.
type Target struct {
	ChapterID string
	Page      int
	MangaID   string
}

// Landing reports whether the target is the manga landing view.
func (t Target) Landing() bool {
	return t.ChapterID == ""
}

// URL renders the target as a shareable route.
func (t Target) URL() string {
	if t.Landing() {
		return "/manga/" + t.MangaID
	}
	return fmt.Sprintf("/chapter/%s?page=%d", t.ChapterID, t.Page)
}

// GoNext computes the next position at the requested granularity. At a
// boundary it falls through to the next coarser granularity; past the final
// volume it returns the manga landing target. It never fails.
func (s *Session) GoNext(g Granularity) Target {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *Target
	switch g {
	case ByChapter:
		target = s.nextChapterLocked()
	case ByVolume:
		target = s.nextVolumeLocked()
	default:
		target = s.nextPageLocked()
	}
	if target == nil {
		return s.landingLocked()
	}
	return *target
}

// GoPrev mirrors GoNext in the backwards direction. Crossing into an earlier
// chapter lands on its last page.
func (s *Session) GoPrev(g Granularity) Target {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *Target
	switch g {
	case ByChapter:
		target = s.prevChapterLocked()
	case ByVolume:
		target = s.prevVolumeLocked()
	default:
		target = s.prevPageLocked()
	}
	if target == nil {
		return s.landingLocked()
	}
	return *target
}

// GoStart targets the first page of the current chapter.
func (s *Session) GoStart() Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chapter == nil {
		return s.landingLocked()
	}
	return Target{ChapterID: s.chapter.Chapter.ID, Page: 1}
}

func (s *Session) landingLocked() Target {
	t := Target{}
	if s.pos.Manga != nil {
		t.MangaID = s.pos.Manga.Manga.ID
	}
	return t
}

func (s *Session) currentChapterLocked() *data.Chapter {
	if s.chapter == nil {
		return nil
	}
	return &s.chapter.Chapter
}

func (s *Session) nextPageLocked() *Target {
	if s.pos.Page == nil {
		return nil
	}
	idx := slices.IndexFunc(s.pos.Pages, func(p data.Image) bool {
		return p.Ordinal == s.pos.Page.Ordinal
	})
	if idx < 0 {
		return nil
	}
	if idx == len(s.pos.Pages)-1 {
		return s.nextChapterLocked()
	}
	return &Target{ChapterID: s.chapter.Chapter.ID, Page: s.pos.Pages[idx+1].Ordinal}
}

func (s *Session) nextChapterLocked() *Target {
	if s.pos.VolumeChapter == nil || s.pos.Volume == nil {
		return nil
	}
	idx := indexOfChapter(s.pos.Volume.Chapters, s.pos.VolumeChapter)
	if idx < 0 {
		return nil
	}
	if idx == len(s.pos.Volume.Chapters)-1 {
		return s.nextVolumeLocked()
	}

	next := s.pos.Volume.Chapters[idx+1]
	best := BestVersion(s.pos.Volumes, s.currentChapterLocked(), next.Versions)
	if best == nil {
		return nil
	}
	return &Target{ChapterID: best.ID, Page: 1}
}

func (s *Session) nextVolumeLocked() *Target {
	if s.pos.Volume == nil || s.pos.Volumes == nil {
		return nil
	}
	idx := slices.Index(s.pos.Volumes.Volumes, s.pos.Volume)
	if idx < 0 || idx == len(s.pos.Volumes.Volumes)-1 {
		return nil
	}

	next := s.pos.Volumes.Volumes[idx+1]
	if len(next.Chapters) == 0 {
		return nil
	}
	best := BestVersion(s.pos.Volumes, s.currentChapterLocked(), next.Chapters[0].Versions)
	if best == nil {
		return nil
	}
	return &Target{ChapterID: best.ID, Page: 1}
}

func (s *Session) prevPageLocked() *Target {
	if s.pos.Page == nil {
		return nil
	}
	idx := slices.IndexFunc(s.pos.Pages, func(p data.Image) bool {
		return p.Ordinal == s.pos.Page.Ordinal
	})
	if idx < 0 {
		return nil
	}
	if idx == 0 {
		return s.prevChapterLocked()
	}
	return &Target{ChapterID: s.chapter.Chapter.ID, Page: s.pos.Pages[idx-1].Ordinal}
}

func (s *Session) prevChapterLocked() *Target {
	if s.pos.VolumeChapter == nil || s.pos.Volume == nil {
		return nil
	}
	idx := indexOfChapter(s.pos.Volume.Chapters, s.pos.VolumeChapter)
	if idx < 0 {
		return nil
	}
	if idx == 0 {
		return s.prevVolumeLocked()
	}

	prev := s.pos.Volume.Chapters[idx-1]
	best := BestVersion(s.pos.Volumes, s.currentChapterLocked(), prev.Versions)
	if best == nil {
		return nil
	}
	return &Target{ChapterID: best.ID, Page: PageLast}
}

func (s *Session) prevVolumeLocked() *Target {
	if s.pos.Volume == nil || s.pos.Volumes == nil {
		return nil
	}
	idx := slices.Index(s.pos.Volumes.Volumes, s.pos.Volume)
	if idx <= 0 {
		return nil
	}

	prev := s.pos.Volumes.Volumes[idx-1]
	if len(prev.Chapters) == 0 {
		return nil
	}
	last := prev.Chapters[len(prev.Chapters)-1]
	best := BestVersion(s.pos.Volumes, s.currentChapterLocked(), last.Versions)
	if best == nil {
		return nil
	}
	return &Target{ChapterID: best.ID, Page: PageLast}
}

func indexOfChapter(chapters []data.VolumeChapter, want *data.VolumeChapter) int {
	for i := range chapters {
		if &chapters[i] == want {
			return i
		}
	}
	// The derived pointer may come from an older snapshot; fall back to
	// matching the version set.
	return slices.IndexFunc(chapters, func(c data.VolumeChapter) bool {
		return slices.Equal(c.Versions, want.Versions)
	})
}
