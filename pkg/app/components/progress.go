package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/yomu/pkg/app/styles"
	"github.com/kerbaras/yomu/pkg/data"
	"github.com/kerbaras/yomu/pkg/export"
)

// ExportTracker accumulates per-chapter export progress for display.
type ExportTracker struct {
	exports map[string]*export.Progress
	width   int
}

func NewExportTracker(width int) *ExportTracker {
	return &ExportTracker{
		exports: make(map[string]*export.Progress),
		width:   width,
	}
}

func (p *ExportTracker) Update(progress export.Progress) {
	key := progress.MangaID + ":" + progress.ChapterID
	if progress.Status == "complete" {
		// A manga-level complete clears everything for that manga.
		if progress.ChapterID == "" {
			for k := range p.exports {
				if strings.HasPrefix(k, progress.MangaID+":") {
					delete(p.exports, k)
				}
			}
		}
		delete(p.exports, key)
		return
	}
	prog := progress
	p.exports[key] = &prog
}

func (p *ExportTracker) Clear() {
	p.exports = make(map[string]*export.Progress)
}

func (p *ExportTracker) HasActive() bool {
	return len(p.exports) > 0
}

func (p *ExportTracker) View() string {
	if len(p.exports) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Exporting"))
	b.WriteString("\n\n")

	for _, progress := range p.exports {
		chapterText := "Preparing"
		if progress.ChapterID != "" {
			chapterText = data.ChapterTitle(data.Chapter{Ordinal: progress.Ordinal})
		}
		b.WriteString(styles.TextStyle.Render(chapterText))
		b.WriteString("\n")

		statusText := progress.Status
		if progress.TotalPages > 0 {
			percentage := float64(progress.CurrentPage) / float64(progress.TotalPages) * 100
			statusText = fmt.Sprintf("%s (%d/%d pages - %.0f%%)",
				progress.Status, progress.CurrentPage, progress.TotalPages, percentage)

			bar := renderProgressBar(progress.CurrentPage, progress.TotalPages, p.width-4)
			b.WriteString(bar)
			b.WriteString("\n")
		}

		b.WriteString(styles.ExportStatusStyle(progress.Status).Render(statusText))
		b.WriteString("\n")

		if progress.Err != nil {
			b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", progress.Err)))
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	bar := styles.ProgressBarStyle.Render(strings.Repeat("█", filled))
	bar += styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
	return bar
}

// SimpleProgress renders a standalone progress bar.
func SimpleProgress(current, total, width int) string {
	return renderProgressBar(current, total, width)
}
