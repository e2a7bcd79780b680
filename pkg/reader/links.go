package reader

import (
	"fmt"

	"github.com/kerbaras/yomu/pkg/data"
)

// Link is one entry of a selector menu. URLs are valid even when the target
// chapter has not been fetched yet; content loads at navigation time.
type Link struct {
	Name    string
	URL     string
	Index   int
	Current bool
}

// Links bundles the selector menus for the current position.
type Links struct {
	Volumes  []Link
	Chapters []Link
	Versions []Link
	Pages    []Link
}

func chapterURL(id string, page int) string {
	return fmt.Sprintf("/chapter/%s?page=%d", id, page)
}

// buildLinks derives the four selector menus from a position snapshot.
func (s *Session) buildLinks(pos Position) Links {
	var links Links
	current := s.currentChapterLocked()

	if pos.Volumes != nil && pos.Volume != nil {
		for i, v := range pos.Volumes.Volumes {
			if len(v.Chapters) == 0 {
				continue
			}
			best := BestVersion(pos.Volumes, current, v.Chapters[0].Versions)
			if best == nil {
				continue
			}
			links.Volumes = append(links.Volumes, Link{
				Name:    data.VolumeTitle(v.Ordinal),
				URL:     chapterURL(best.ID, 1),
				Index:   i,
				Current: v == pos.Volume,
			})
		}
	}

	if pos.Volume != nil && pos.VolumeChapter != nil {
		for i := range pos.Volume.Chapters {
			c := &pos.Volume.Chapters[i]
			best := BestVersion(pos.Volumes, current, c.Versions)
			if best == nil {
				continue
			}
			links.Chapters = append(links.Chapters, Link{
				Name:    data.ChapterTitle(*best),
				URL:     chapterURL(best.ID, 1),
				Index:   i,
				Current: c == pos.VolumeChapter,
			})
		}
	}

	if pos.VolumeChapter != nil && len(pos.VolumeChapter.Versions) > 1 && pos.Volumes != nil {
		for i, id := range pos.VolumeChapter.Versions {
			entry, ok := pos.Volumes.Chapters[id]
			if !ok {
				continue
			}
			links.Versions = append(links.Versions, Link{
				Name:    data.ChapterTitle(entry.Chapter),
				URL:     chapterURL(entry.Chapter.ID, 1),
				Index:   i,
				Current: current != nil && id == current.ID,
			})
		}
	}

	if len(pos.Pages) > 1 && s.params != nil && current != nil {
		for i, p := range pos.Pages {
			links.Pages = append(links.Pages, Link{
				Name:    fmt.Sprintf("Page %d", p.Ordinal),
				URL:     chapterURL(current.ID, p.Ordinal),
				Index:   i,
				Current: p.Ordinal == s.params.Page,
			})
		}
	}

	return links
}
