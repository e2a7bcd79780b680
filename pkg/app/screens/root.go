package screens

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/kerbaras/yomu/pkg/api"
	"github.com/kerbaras/yomu/pkg/app/styles"
	"github.com/kerbaras/yomu/pkg/catalog"
	"github.com/kerbaras/yomu/pkg/config"
	"github.com/kerbaras/yomu/pkg/data"
	"github.com/kerbaras/yomu/pkg/export"
	"github.com/kerbaras/yomu/pkg/progress"
	"github.com/kerbaras/yomu/pkg/reader"
)

// Deps are the shared singletons every screen draws on.
type Deps struct {
	Config   config.Config
	Service  api.Service
	Store    *data.Store
	Catalog  *catalog.Cache
	Session  *reader.Session
	Progress *progress.Store
	Exporter *export.Exporter
	Log      *log.Logger
}

type screenType int

const (
	libraryView screenType = iota
	searchView
	detailsView
	readerView
)

// SwitchScreenMsg asks the root screen to change views.
type SwitchScreenMsg struct {
	Screen string
	Data   interface{}
}

// OpenChapterMsg asks the root screen to open the reader at a position.
type OpenChapterMsg struct {
	ChapterID string
	Page      int
}

type RootScreen struct {
	deps Deps

	currentView screenType
	library     *LibraryScreen
	search      *SearchScreen
	details     *DetailsScreen
	reader      *ReaderScreen

	width  int
	height int
}

func NewRootScreen(deps Deps) *RootScreen {
	return &RootScreen{
		deps:        deps,
		currentView: libraryView,
		library:     NewLibraryScreen(deps),
		search:      NewSearchScreen(deps),
	}
}

func (r *RootScreen) Init() tea.Cmd {
	return r.library.Init()
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return r, tea.Quit
		case "q":
			// The reader and search input consume plain keys themselves.
			if r.currentView == libraryView {
				return r, tea.Quit
			}
		case "tab":
			if r.currentView == detailsView || r.currentView == readerView {
				break
			}
			r.currentView = (r.currentView + 1) % 2
			if r.currentView == searchView {
				cmd = r.search.Init()
			} else {
				cmd = r.library.Init()
			}
			return r, cmd
		}

	case SwitchScreenMsg:
		switch msg.Screen {
		case "library":
			r.currentView = libraryView
			cmd = r.library.Init()
		case "search":
			r.currentView = searchView
			cmd = r.search.Init()
		case "details":
			if mangaID, ok := msg.Data.(string); ok {
				r.details = NewDetailsScreen(r.deps, mangaID)
				r.currentView = detailsView
				cmd = r.details.Init()
			}
		}
		return r, cmd

	case OpenChapterMsg:
		r.reader = NewReaderScreen(r.deps, msg.ChapterID, msg.Page)
		r.currentView = readerView
		return r, r.reader.Init()
	}

	switch r.currentView {
	case libraryView:
		newModel, newCmd := r.library.Update(msg)
		r.library = newModel.(*LibraryScreen)
		return r, newCmd
	case searchView:
		newModel, newCmd := r.search.Update(msg)
		r.search = newModel.(*SearchScreen)
		return r, newCmd
	case detailsView:
		if r.details != nil {
			newModel, newCmd := r.details.Update(msg)
			r.details = newModel.(*DetailsScreen)
			return r, newCmd
		}
	case readerView:
		if r.reader != nil {
			newModel, newCmd := r.reader.Update(msg)
			r.reader = newModel.(*ReaderScreen)
			return r, newCmd
		}
	}

	return r, cmd
}

func (r *RootScreen) View() string {
	tabs := r.renderTabs()

	var content string
	switch r.currentView {
	case libraryView:
		content = r.library.View()
	case searchView:
		content = r.search.View()
	case detailsView:
		if r.details != nil {
			content = r.details.View()
		}
	case readerView:
		if r.reader != nil {
			return r.reader.View()
		}
	}

	return fmt.Sprintf("%s\n\n%s", tabs, content)
}

func (r *RootScreen) renderTabs() string {
	if r.currentView == detailsView {
		return ""
	}

	libraryTab := "Library"
	searchTab := "Search"

	if r.currentView == libraryView {
		libraryTab = styles.ActiveTabStyle.Render(libraryTab)
		searchTab = styles.InactiveTabStyle.Render(searchTab)
	} else {
		libraryTab = styles.InactiveTabStyle.Render(libraryTab)
		searchTab = styles.ActiveTabStyle.Render(searchTab)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, libraryTab, searchTab)
}
