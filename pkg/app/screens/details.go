package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/yomu/pkg/app/components"
	"github.com/kerbaras/yomu/pkg/app/styles"
	"github.com/kerbaras/yomu/pkg/catalog"
	"github.com/kerbaras/yomu/pkg/data"
	"github.com/kerbaras/yomu/pkg/export"
)

// chapterRow is one selectable line in the chapter list: a logical chapter
// within its volume.
type chapterRow struct {
	volume  *data.MangaVolume
	chapter data.VolumeChapter
}

type DetailsScreen struct {
	deps    Deps
	mangaID string

	manga   *data.MangaDetail
	volumes *data.MangaVolumes
	rows    []chapterRow

	selected int
	inLib    bool

	exportTracker *components.ExportTracker
	width         int
	height        int
	err           error
}

func NewDetailsScreen(deps Deps, mangaID string) *DetailsScreen {
	return &DetailsScreen{
		deps:          deps,
		mangaID:       mangaID,
		exportTracker: components.NewExportTracker(80),
	}
}

func (s *DetailsScreen) Init() tea.Cmd {
	return tea.Batch(
		s.loadDetails(false),
		s.listenForExports,
	)
}

func (s *DetailsScreen) params() catalog.Params {
	return catalog.Params{
		MangaID:   s.mangaID,
		Sort:      data.OrderOrdinal,
		Ascending: true,
	}
}

func (s *DetailsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.exportTracker = components.NewExportTracker(msg.Width - 4)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.rows)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.rows) {
				row := s.rows[s.selected]
				if len(row.chapter.Versions) > 0 {
					return s, openChapter(row.chapter.Versions[0], 1)
				}
			}
		case "c":
			return s, s.continueReading()
		case "f":
			return s, s.toggleFavorite()
		case "m":
			return s, s.markRead()
		case "x":
			return s, s.resetProgress()
		case "s":
			return s, s.toggleLibrary()
		case "e":
			return s, s.exportManga()
		case "r":
			return s, s.loadDetails(true)
		case "esc", "backspace":
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: "library", Data: nil}
			}
		}

	case detailsLoadedMsg:
		s.manga = msg.manga
		s.volumes = msg.volumes
		s.inLib = msg.inLib
		s.err = msg.err
		s.rebuildRows()

	case progressChangedMsg:
		s.err = msg.err
		s.volumes = s.deps.Catalog.Volumes()
		s.rebuildRows()

	case libraryChangedMsg:
		s.err = msg.err
		s.inLib = msg.inLib

	case export.Progress:
		s.exportTracker.Update(msg)
		return s, s.listenForExports

	case exportDoneMsg:
		s.err = msg.err
	}

	return s, nil
}

func (s *DetailsScreen) rebuildRows() {
	s.rows = s.rows[:0]
	if s.volumes == nil {
		return
	}
	for _, vol := range s.volumes.Volumes {
		for _, ch := range vol.Chapters {
			s.rows = append(s.rows, chapterRow{volume: vol, chapter: ch})
		}
	}
	if s.selected >= len(s.rows) && len(s.rows) > 0 {
		s.selected = len(s.rows) - 1
	}
}

func (s *DetailsScreen) View() string {
	if s.width == 0 || s.manga == nil {
		if s.err != nil {
			return styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		}
		return "Loading..."
	}

	title := s.manga.Manga.Title
	if s.volumes != nil && s.volumes.Progress != nil && s.volumes.Progress.Favorited {
		title = "★ " + title
	}
	header := styles.TitleStyle.Render(fmt.Sprintf("📖 %s", title))

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	info := s.renderMangaInfo()
	chaptersList := s.renderChaptersList()
	exportView := s.exportTracker.View()

	help := styles.HelpStyle.Render(
		"↑/k ↓/j: navigate • enter: read • c: continue • f: favorite • m: mark read • x: reset • s: save • e: export • r: refresh • esc: back",
	)

	return fmt.Sprintf("%s\n\n%s%s\n%s\n%s\n%s",
		header,
		errorMsg,
		info,
		chaptersList,
		exportView,
		help,
	)
}

func (s *DetailsScreen) renderMangaInfo() string {
	desc := s.manga.Manga.Description
	if len(desc) > 200 {
		desc = desc[:197] + "..."
	}

	var meta []string
	meta = append(meta, s.manga.Manga.ContentRating.String())
	if s.manga.Ext != nil {
		meta = append(meta, fmt.Sprintf("%d chapters in %d volumes",
			s.manga.Ext.UniqueChapterCount, s.manga.Ext.VolumeCount))
	}
	if s.manga.Source != nil {
		meta = append(meta, s.manga.Source.Name)
	}
	if s.inLib {
		meta = append(meta, "in library")
	}

	rows := []string{
		styles.TextStyle.Render(desc),
		"",
		styles.MutedStyle.Render(strings.Join(meta, " • ")),
	}

	if s.volumes != nil && s.volumes.Progress != nil {
		p := s.volumes.Progress
		bar := components.SimpleProgress(int(p.ProgressPercentage), 100, s.width-10)
		rows = append(rows,
			styles.SubtitleStyle.Render(fmt.Sprintf("%.0f%% read", p.ProgressPercentage)),
			bar,
		)
	}

	info := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return styles.CardStyle.Width(s.width - 4).Render(info)
}

func (s *DetailsScreen) renderChaptersList() string {
	if len(s.rows) == 0 {
		return styles.MutedStyle.Render("No chapters available")
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Chapters (%d total):", len(s.rows))))
	b.WriteString("\n\n")

	start := 0
	end := len(s.rows)
	if end > 12 {
		start = s.selected - 6
		if start < 0 {
			start = 0
		}
		end = start + 12
		if end > len(s.rows) {
			end = len(s.rows)
			start = end - 12
			if start < 0 {
				start = 0
			}
		}
	}

	var lastVolume *data.MangaVolume
	for i := start; i < end; i++ {
		row := s.rows[i]
		if row.volume != lastVolume {
			lastVolume = row.volume
			volLine := fmt.Sprintf("%s [%s]",
				data.VolumeTitle(row.volume.Ordinal), row.volume.State)
			b.WriteString(styles.VolumeStateStyle(row.volume.State.String()).Render(volLine))
			b.WriteString("\n")
		}

		chapterText := fmt.Sprintf("Ch. %g", row.chapter.Ordinal)
		if len(row.chapter.Versions) > 1 {
			chapterText = fmt.Sprintf("%s (%d versions)", chapterText, len(row.chapter.Versions))
		}

		statusIcon := "○"
		statusColor := styles.MutedStyle
		switch {
		case row.chapter.Percent >= 100:
			statusIcon = "●"
			statusColor = styles.StatusCompleted
		case row.chapter.Percent > 0:
			statusIcon = "◐"
			statusColor = styles.StatusInProgress
			chapterText = fmt.Sprintf("%s - %.0f%%", chapterText, row.chapter.Percent)
		}

		line := fmt.Sprintf("  %s %s", statusIcon, chapterText)
		if i == s.selected {
			line = styles.SelectedStyle.Render(line)
		} else {
			line = statusColor.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(s.rows) > 12 {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(
			fmt.Sprintf("Showing %d-%d of %d chapters", start+1, end, len(s.rows)),
		))
	}

	return b.String()
}

// Messages
type detailsLoadedMsg struct {
	manga   *data.MangaDetail
	volumes *data.MangaVolumes
	inLib   bool
	err     error
}

type progressChangedMsg struct {
	err error
}

type libraryChangedMsg struct {
	inLib bool
	err   error
}

type exportDoneMsg struct {
	path string
	err  error
}

func openChapter(chapterID string, page int) tea.Cmd {
	return func() tea.Msg {
		return OpenChapterMsg{ChapterID: chapterID, Page: page}
	}
}

// Commands
func (s *DetailsScreen) loadDetails(force bool) tea.Cmd {
	return func() tea.Msg {
		manga, err := s.deps.Catalog.Ensure(context.Background(), s.params(), force, force)
		if err != nil {
			return detailsLoadedMsg{err: err}
		}

		var inLib bool
		if ids, err := s.deps.Store.LibraryIDs(); err == nil {
			for _, id := range ids {
				if id == s.mangaID {
					inLib = true
					break
				}
			}
		}

		return detailsLoadedMsg{
			manga:   manga,
			volumes: s.deps.Catalog.Volumes(),
			inLib:   inLib,
		}
	}
}

func (s *DetailsScreen) continueReading() tea.Cmd {
	if s.volumes == nil || s.volumes.Progress == nil || s.volumes.Progress.LastReadChapterID == "" {
		if len(s.rows) > 0 && len(s.rows[0].chapter.Versions) > 0 {
			return openChapter(s.rows[0].chapter.Versions[0], 1)
		}
		return nil
	}
	return openChapter(s.volumes.Progress.LastReadChapterID, 1)
}

func (s *DetailsScreen) toggleFavorite() tea.Cmd {
	value := true
	if s.volumes != nil && s.volumes.Progress != nil {
		value = !s.volumes.Progress.Favorited
	}
	return func() tea.Msg {
		err := s.deps.Catalog.Favorite(context.Background(), value)
		return progressChangedMsg{err: err}
	}
}

func (s *DetailsScreen) markRead() tea.Cmd {
	return func() tea.Msg {
		err := s.deps.Catalog.MarkRead(context.Background())
		return progressChangedMsg{err: err}
	}
}

func (s *DetailsScreen) resetProgress() tea.Cmd {
	return func() tea.Msg {
		err := s.deps.Catalog.ResetProgress(context.Background())
		return progressChangedMsg{err: err}
	}
}

func (s *DetailsScreen) toggleLibrary() tea.Cmd {
	manga := s.manga
	inLib := s.inLib
	return func() tea.Msg {
		if manga == nil {
			return libraryChangedMsg{inLib: inLib}
		}
		if inLib {
			err := s.deps.Store.RemoveFromLibrary(manga.Manga.ID)
			return libraryChangedMsg{inLib: err != nil, err: err}
		}
		entry := data.LibraryEntry{
			MangaID:       manga.Manga.ID,
			Title:         manga.Manga.Title,
			ContentRating: manga.Manga.ContentRating,
		}
		if manga.Cover != nil {
			entry.CoverURL = manga.Cover.URL
		}
		err := s.deps.Store.SaveToLibrary(entry)
		return libraryChangedMsg{inLib: err == nil, err: err}
	}
}

func (s *DetailsScreen) exportManga() tea.Cmd {
	manga := s.manga
	rows := s.rows
	return func() tea.Msg {
		if manga == nil || len(rows) == 0 {
			return exportDoneMsg{err: fmt.Errorf("nothing to export")}
		}

		var ids []string
		for _, row := range rows {
			if len(row.chapter.Versions) > 0 {
				ids = append(ids, row.chapter.Versions[0])
			}
		}

		go func() {
			if _, err := s.deps.Exporter.ExportChapters(context.Background(), *manga, ids); err != nil {
				s.deps.Log.Error("export failed", "manga", manga.Manga.ID, "error", err)
			}
		}()
		return nil
	}
}

func (s *DetailsScreen) listenForExports() tea.Msg {
	return <-s.deps.Exporter.ProgressChannel()
}
