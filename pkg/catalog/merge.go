package catalog

import (
	"math"

	"github.com/kerbaras/yomu/pkg/data"
)

// MergeProgress folds a progress snapshot into the volume hierarchy and
// recomputes the derived per-chapter percentages and per-volume states.
//
// The merge is a no-op when there is nothing loaded, when the snapshot
// carries no entity, or when the snapshot belongs to a different manga than
// the one already recorded; the last guard is what keeps a stale response
// from corrupting the cache after the user navigates away. Applying the same
// snapshot twice leaves the hierarchy unchanged.
func MergeProgress(volumes *data.MangaVolumes, update data.ProgressUpdate) {
	if volumes == nil || update.Progress == nil {
		return
	}
	if volumes.Progress != nil && volumes.Progress.MangaID != "" &&
		volumes.Progress.MangaID != update.Progress.MangaID {
		return
	}

	// Last write wins; sub-fields are never merged.
	volumes.Progress = update.Progress

	// Chapter fragments only land on chapters already in the cache. A
	// progress response never synthesizes new chapter entries.
	for i := range update.Chapters {
		frag := update.Chapters[i]
		entry, ok := volumes.Chapters[frag.ChapterID]
		if !ok {
			continue
		}
		entry.Progress = &frag
	}

	for _, volume := range volumes.Volumes {
		readCount := 0
		for i := range volume.Chapters {
			vc := &volume.Chapters[i]

			// First version with a recorded read wins, regardless of
			// which version the resolver would prefer.
			read := firstRead(volumes, vc.Versions)
			if read == nil {
				continue
			}

			vc.Percent = ChapterPercent(read)
			if vc.Percent > 0 {
				readCount++
			}
		}

		switch {
		case readCount == 0:
			volume.State = data.VolumeNotStarted
		case readCount == len(volume.Chapters):
			volume.State = data.VolumeCompleted
		default:
			volume.State = data.VolumeInProgress
		}
	}
}

func firstRead(volumes *data.MangaVolumes, versions []string) *data.ProgressChapter {
	for _, id := range versions {
		entry, ok := volumes.Chapters[id]
		if !ok || entry.Progress == nil || entry.Progress.LastRead == nil {
			continue
		}
		return entry
	}
	return nil
}

// ChapterPercent derives the completion percentage for one chapter. A page
// ordinal at or past the page count is exactly 100; missing or zero progress
// and unknown page counts are 0.
func ChapterPercent(entry *data.ProgressChapter) float64 {
	if entry.Progress == nil || entry.Progress.PageOrdinal <= 0 {
		return 0
	}

	count := entry.Chapter.PageCount
	if count <= 0 {
		return 0
	}
	if entry.Progress.PageOrdinal >= count {
		return 100
	}

	percent := clamp(float64(entry.Progress.PageOrdinal)/float64(count)*100, 0, 100)
	return math.Round(percent*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
