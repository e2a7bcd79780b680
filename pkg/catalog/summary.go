package catalog

import (
	"fmt"
	"slices"

	"github.com/kerbaras/yomu/pkg/data"
)

// Summary is the reading-position readout shown in the reader HUD: one
// percentage (with an "i/n (p%)" slug) per granularity.
type Summary struct {
	Total       float64 // overall manga completion, from the server aggregate
	TotalSlug   string
	Volume      float64 // position of the current volume within the manga
	VolumeSlug  string
	Chapter     float64 // position of the current chapter within its volume
	ChapterSlug string
	Page        float64 // position of the current page within the chapter
	PageSlug    string
}

// Summarize derives a Summary from the cached hierarchy. pages overrides the
// chapter's page count when the entity does not carry one (the fetched
// payload is authoritative for how many pages actually loaded).
func Summarize(volumes *data.MangaVolumes, ext *data.MangaExt, pages int) Summary {
	var out Summary
	if volumes == nil || ext == nil || volumes.Progress == nil ||
		volumes.Progress.LastReadChapterID == "" {
		return out
	}

	currentID := volumes.Progress.LastReadChapterID
	entry := volumes.Chapters[currentID]

	volIdx := slices.IndexFunc(volumes.Volumes, func(v *data.MangaVolume) bool {
		return slices.ContainsFunc(v.Chapters, func(c data.VolumeChapter) bool {
			return slices.Contains(c.Versions, currentID)
		})
	})
	if entry == nil || volIdx < 0 {
		return out
	}

	volume := volumes.Volumes[volIdx]
	chapIdx := slices.IndexFunc(volume.Chapters, func(c data.VolumeChapter) bool {
		return slices.Contains(c.Versions, currentID)
	})
	if chapIdx < 0 {
		return out
	}

	out.Total = volumes.Progress.ProgressPercentage
	out.TotalSlug = fmt.Sprintf("%g/%d (%.2f%%)",
		volumes.Progress.LastReadOrdinal, ext.UniqueChapterCount, out.Total)

	out.Volume = float64(volIdx+1) / float64(len(volumes.Volumes)) * 100
	out.VolumeSlug = fmt.Sprintf("%d/%d (%.2f%%)", volIdx+1, len(volumes.Volumes), out.Volume)

	out.Chapter = float64(chapIdx+1) / float64(len(volume.Chapters)) * 100
	out.ChapterSlug = fmt.Sprintf("%d/%d (%.2f%%)", chapIdx+1, len(volume.Chapters), out.Chapter)

	pageCount := entry.Chapter.PageCount
	if pageCount == 0 {
		pageCount = pages
	}
	pageIdx := 0
	if entry.Progress != nil {
		pageIdx = entry.Progress.PageOrdinal
	}
	if pageCount > 0 {
		out.Page = float64(pageIdx) / float64(pageCount) * 100
	}
	out.PageSlug = fmt.Sprintf("%d/%d (%.2f%%)", pageIdx, pageCount, out.Page)

	return out
}
