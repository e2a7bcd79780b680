package catalog

import (
	"testing"
	"time"

	"github.com/kerbaras/yomu/pkg/data"
)

func ts() *time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &t
}

func testVolumes() *data.MangaVolumes {
	return &data.MangaVolumes{
		Progress: &data.MangaProgress{MangaID: "m1"},
		Chapters: map[string]*data.ProgressChapter{
			"c1": {Chapter: data.Chapter{ID: "c1", MangaID: "m1", Ordinal: 1, PageCount: 10}},
			"c2": {Chapter: data.Chapter{ID: "c2", MangaID: "m1", Ordinal: 2, PageCount: 20}},
			"c3": {Chapter: data.Chapter{ID: "c3", MangaID: "m1", Ordinal: 3, PageCount: 8}},
		},
		Volumes: []*data.MangaVolume{
			{Chapters: []data.VolumeChapter{
				{Ordinal: 1, Versions: []string{"c1"}},
				{Ordinal: 2, Versions: []string{"c2"}},
			}},
			{Chapters: []data.VolumeChapter{
				{Ordinal: 3, Versions: []string{"c3"}},
			}},
		},
	}
}

func TestMergeProgressNilGuards(t *testing.T) {
	// Must not panic.
	MergeProgress(nil, data.ProgressUpdate{Progress: &data.MangaProgress{MangaID: "m1"}})

	volumes := testVolumes()
	MergeProgress(volumes, data.ProgressUpdate{})
	if volumes.Progress.ProgressPercentage != 0 {
		t.Errorf("Expected untouched progress, got %v", volumes.Progress.ProgressPercentage)
	}
}

func TestMergeProgressMangaMismatch(t *testing.T) {
	volumes := testVolumes()
	MergeProgress(volumes, data.ProgressUpdate{
		Progress: &data.MangaProgress{MangaID: "other", ProgressPercentage: 99},
	})

	if volumes.Progress.MangaID != "m1" {
		t.Errorf("Expected progress to stay on m1, got %s", volumes.Progress.MangaID)
	}
	if volumes.Progress.ProgressPercentage != 0 {
		t.Error("Expected stale snapshot to be rejected")
	}
}

func TestMergeProgressReplacesWholesale(t *testing.T) {
	volumes := testVolumes()
	volumes.Progress.Favorited = true

	MergeProgress(volumes, data.ProgressUpdate{
		Progress: &data.MangaProgress{MangaID: "m1", ProgressPercentage: 40},
	})

	if volumes.Progress.ProgressPercentage != 40 {
		t.Errorf("Expected percentage 40, got %v", volumes.Progress.ProgressPercentage)
	}
	if volumes.Progress.Favorited {
		t.Error("Expected favorited flag to be replaced, not merged")
	}
}

func TestMergeProgressIgnoresUnknownChapters(t *testing.T) {
	volumes := testVolumes()
	MergeProgress(volumes, data.ProgressUpdate{
		Progress: &data.MangaProgress{MangaID: "m1"},
		Chapters: []data.ChapterProgress{
			{ChapterID: "ghost", PageOrdinal: 5, LastRead: ts()},
		},
	})

	if _, ok := volumes.Chapters["ghost"]; ok {
		t.Error("Expected unknown chapter fragment to be dropped")
	}
	if len(volumes.Chapters) != 3 {
		t.Errorf("Expected 3 chapters, got %d", len(volumes.Chapters))
	}
}

func TestMergeProgressVolumeStates(t *testing.T) {
	volumes := testVolumes()
	update := data.ProgressUpdate{
		Progress: &data.MangaProgress{MangaID: "m1"},
		Chapters: []data.ChapterProgress{
			{ChapterID: "c1", PageOrdinal: 10, LastRead: ts()},
		},
	}
	MergeProgress(volumes, update)

	if volumes.Volumes[0].State != data.VolumeInProgress {
		t.Errorf("Expected volume 1 in-progress, got %s", volumes.Volumes[0].State)
	}
	if volumes.Volumes[1].State != data.VolumeNotStarted {
		t.Errorf("Expected volume 2 not-started, got %s", volumes.Volumes[1].State)
	}
	if volumes.Volumes[0].Chapters[0].Percent != 100 {
		t.Errorf("Expected chapter percent 100, got %v", volumes.Volumes[0].Chapters[0].Percent)
	}

	update.Chapters = append(update.Chapters,
		data.ChapterProgress{ChapterID: "c2", PageOrdinal: 20, LastRead: ts()})
	MergeProgress(volumes, update)

	if volumes.Volumes[0].State != data.VolumeCompleted {
		t.Errorf("Expected volume 1 completed, got %s", volumes.Volumes[0].State)
	}
}

func TestMergeProgressIdempotent(t *testing.T) {
	volumes := testVolumes()
	update := data.ProgressUpdate{
		Progress: &data.MangaProgress{MangaID: "m1", ProgressPercentage: 33},
		Chapters: []data.ChapterProgress{
			{ChapterID: "c1", PageOrdinal: 4, LastRead: ts()},
		},
	}

	MergeProgress(volumes, update)
	firstPercent := volumes.Volumes[0].Chapters[0].Percent
	firstState := volumes.Volumes[0].State

	MergeProgress(volumes, update)
	if volumes.Volumes[0].Chapters[0].Percent != firstPercent {
		t.Errorf("Expected stable percent %v, got %v", firstPercent, volumes.Volumes[0].Chapters[0].Percent)
	}
	if volumes.Volumes[0].State != firstState {
		t.Errorf("Expected stable state %s, got %s", firstState, volumes.Volumes[0].State)
	}
}

func TestMergeProgressFirstVersionWithReadWins(t *testing.T) {
	volumes := &data.MangaVolumes{
		Progress: &data.MangaProgress{MangaID: "m1"},
		Chapters: map[string]*data.ProgressChapter{
			"a": {Chapter: data.Chapter{ID: "a", MangaID: "m1", PageCount: 10}},
			"b": {Chapter: data.Chapter{ID: "b", MangaID: "m1", PageCount: 10}},
		},
		Volumes: []*data.MangaVolume{
			{Chapters: []data.VolumeChapter{{Ordinal: 1, Versions: []string{"a", "b"}}}},
		},
	}

	// Only the second version has a recorded read.
	MergeProgress(volumes, data.ProgressUpdate{
		Progress: &data.MangaProgress{MangaID: "m1"},
		Chapters: []data.ChapterProgress{
			{ChapterID: "b", PageOrdinal: 5, LastRead: ts()},
		},
	})

	if got := volumes.Volumes[0].Chapters[0].Percent; got != 50 {
		t.Errorf("Expected percent from version b (50), got %v", got)
	}
}

func TestChapterPercent(t *testing.T) {
	cases := []struct {
		name    string
		entry   data.ProgressChapter
		want    float64
	}{
		{"no progress", data.ProgressChapter{Chapter: data.Chapter{PageCount: 10}}, 0},
		{"zero ordinal", data.ProgressChapter{
			Chapter:  data.Chapter{PageCount: 10},
			Progress: &data.ChapterProgress{PageOrdinal: 0},
		}, 0},
		{"zero page count", data.ProgressChapter{
			Chapter:  data.Chapter{PageCount: 0},
			Progress: &data.ChapterProgress{PageOrdinal: 5},
		}, 0},
		{"midway", data.ProgressChapter{
			Chapter:  data.Chapter{PageCount: 3},
			Progress: &data.ChapterProgress{PageOrdinal: 1},
		}, 33.33},
		{"at end", data.ProgressChapter{
			Chapter:  data.Chapter{PageCount: 10},
			Progress: &data.ChapterProgress{PageOrdinal: 10},
		}, 100},
		{"past end", data.ProgressChapter{
			Chapter:  data.Chapter{PageCount: 10},
			Progress: &data.ChapterProgress{PageOrdinal: 15},
		}, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ChapterPercent(&tc.entry); got != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}
