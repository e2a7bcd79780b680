package components

import (
	"errors"
	"strings"
	"testing"

	"github.com/kerbaras/yomu/pkg/export"
)

func TestExportTrackerUpdate(t *testing.T) {
	tracker := NewExportTracker(40)

	if tracker.HasActive() {
		t.Error("Expected no active exports initially")
	}

	tracker.Update(export.Progress{
		MangaID:     "m1",
		ChapterID:   "c1",
		Ordinal:     1,
		Status:      "downloading",
		CurrentPage: 3,
		TotalPages:  10,
	})

	if !tracker.HasActive() {
		t.Error("Expected an active export")
	}

	view := tracker.View()
	if !strings.Contains(view, "downloading (3/10 pages - 30%)") {
		t.Errorf("Expected page progress in view, got:\n%s", view)
	}
	if !strings.Contains(view, "Ch. 1") {
		t.Errorf("Expected chapter title in view, got:\n%s", view)
	}
}

func TestExportTrackerCompleteRemovesChapter(t *testing.T) {
	tracker := NewExportTracker(40)

	tracker.Update(export.Progress{MangaID: "m1", ChapterID: "c1", Status: "downloading"})
	tracker.Update(export.Progress{MangaID: "m1", ChapterID: "c2", Status: "downloading"})
	tracker.Update(export.Progress{MangaID: "m1", ChapterID: "c1", Status: "complete"})

	if !tracker.HasActive() {
		t.Error("Expected c2 to remain active")
	}

	// A manga-level complete clears the rest.
	tracker.Update(export.Progress{MangaID: "m1", Status: "complete"})
	if tracker.HasActive() {
		t.Error("Expected no active exports after manga complete")
	}
}

func TestExportTrackerError(t *testing.T) {
	tracker := NewExportTracker(40)

	tracker.Update(export.Progress{
		MangaID:   "m1",
		ChapterID: "c1",
		Status:    "error",
		Err:       errors.New("page download failed"),
	})

	view := tracker.View()
	if !strings.Contains(view, "page download failed") {
		t.Errorf("Expected error text in view, got:\n%s", view)
	}
}

func TestExportTrackerClear(t *testing.T) {
	tracker := NewExportTracker(40)
	tracker.Update(export.Progress{MangaID: "m1", ChapterID: "c1", Status: "processing"})

	tracker.Clear()
	if tracker.HasActive() {
		t.Error("Expected no active exports after clear")
	}
	if tracker.View() != "" {
		t.Error("Expected empty view after clear")
	}
}

func TestSimpleProgress(t *testing.T) {
	bar := SimpleProgress(5, 10, 10)
	if strings.Count(bar, "█") != 5 || strings.Count(bar, "░") != 5 {
		t.Errorf("Expected a half-filled bar, got %q", bar)
	}

	if SimpleProgress(1, 0, 10) != "" {
		t.Error("Expected empty bar for zero total")
	}
}
