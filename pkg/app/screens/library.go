package screens

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kerbaras/yomu/pkg/app/components"
	"github.com/kerbaras/yomu/pkg/app/styles"
	"github.com/kerbaras/yomu/pkg/data"
)

type LibraryScreen struct {
	deps      Deps
	mangaList *components.MangaList
	width     int
	height    int
	err       error
}

func NewLibraryScreen(deps Deps) *LibraryScreen {
	return &LibraryScreen{
		deps:      deps,
		mangaList: components.NewMangaList("No manga in library"),
	}
}

func (s *LibraryScreen) Init() tea.Cmd {
	return s.loadLibrary
}

func (s *LibraryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.mangaList.Width = msg.Width - 4
		s.mangaList.Height = msg.Height - 10

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.mangaList.Prev()
		case "down", "j":
			s.mangaList.Next()
		case "r":
			s.deps.Progress.Clear()
			return s, s.loadLibrary
		case "d":
			selected := s.mangaList.Selected()
			if selected != nil {
				return s, s.removeManga(selected.Manga.ID)
			}
		case "enter":
			selected := s.mangaList.Selected()
			if selected != nil {
				id := selected.Manga.ID
				return s, func() tea.Msg {
					return SwitchScreenMsg{Screen: "details", Data: id}
				}
			}
		}

	case libraryLoadedMsg:
		s.mangaList.SetItems(msg.items)
		s.err = msg.err

	case mangaRemovedMsg:
		if msg.err != nil {
			s.err = msg.err
		}
		return s, s.loadLibrary
	}

	return s, nil
}

func (s *LibraryScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("📚 Library")

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	listView := s.mangaList.View()

	help := styles.HelpStyle.Render(
		"↑/k ↓/j: navigate • enter: details • d: remove • r: refresh • tab: switch view • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s%s\n%s", header, errorMsg, listView, help)
}

// Messages
type libraryLoadedMsg struct {
	items []components.MangaListItem
	err   error
}

type mangaRemovedMsg struct {
	err error
}

// Commands
func (s *LibraryScreen) loadLibrary() tea.Msg {
	entries, err := s.deps.Store.ListLibrary()
	if err != nil {
		return libraryLoadedMsg{err: err}
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.MangaID
	}
	s.deps.Progress.Load(ids...)
	if err := s.deps.Progress.Tap(context.Background()); err != nil {
		s.deps.Log.Warn("progress refresh failed", "error", err)
	}

	items := make([]components.MangaListItem, len(entries))
	for i, e := range entries {
		items[i] = components.MangaListItem{
			Manga: data.Manga{
				ID:            e.MangaID,
				Title:         e.Title,
				ContentRating: e.ContentRating,
			},
			Progress: s.deps.Progress.Get(e.MangaID),
		}
	}

	return libraryLoadedMsg{items: items}
}

func (s *LibraryScreen) removeManga(mangaID string) tea.Cmd {
	return func() tea.Msg {
		err := s.deps.Store.RemoveFromLibrary(mangaID)
		s.deps.Progress.Clear(mangaID)
		return mangaRemovedMsg{err: err}
	}
}
