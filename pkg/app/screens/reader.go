package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/yomu/pkg/app/components"
	"github.com/kerbaras/yomu/pkg/app/styles"
	"github.com/kerbaras/yomu/pkg/images"
	"github.com/kerbaras/yomu/pkg/reader"
)

// ReaderScreen drives a reader.Session. Keys and click regions map to page,
// chapter, and volume navigation; the links overlay lists every jump target
// for the current position.
type ReaderScreen struct {
	deps   Deps
	loader *images.Loader

	chapterID string
	page      int

	showLinks bool
	pageInfo  *images.Fetched
	width     int
	height    int
	err       error
}

func NewReaderScreen(deps Deps, chapterID string, page int) *ReaderScreen {
	return &ReaderScreen{
		deps:      deps,
		loader:    images.NewLoader(),
		chapterID: chapterID,
		page:      page,
	}
}

func (s *ReaderScreen) Init() tea.Cmd {
	return s.load(s.chapterID, s.page, false)
}

func (s *ReaderScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "right", "l", " ":
			return s, s.follow(s.deps.Session.GoNext(reader.ByPage))
		case "left", "h":
			return s, s.follow(s.deps.Session.GoPrev(reader.ByPage))
		case "n":
			return s, s.follow(s.deps.Session.GoNext(reader.ByChapter))
		case "p":
			return s, s.follow(s.deps.Session.GoPrev(reader.ByChapter))
		case "]":
			return s, s.follow(s.deps.Session.GoNext(reader.ByVolume))
		case "[":
			return s, s.follow(s.deps.Session.GoPrev(reader.ByVolume))
		case "g":
			return s, s.follow(s.deps.Session.GoStart())
		case "b":
			return s, s.toggleBookmark()
		case "v":
			s.showLinks = !s.showLinks
		case "r":
			return s, s.load(s.chapterID, s.page, true)
		case "q", "esc", "backspace":
			s.loader.Abort()
			return s, s.back()
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			break
		}
		return s, s.click(msg.X, msg.Y)

	case readerLoadedMsg:
		s.err = msg.err
		if msg.err == nil {
			s.chapterID = msg.chapterID
			s.page = msg.page
		}
		return s, s.fetchPage()

	case pageFetchedMsg:
		s.pageInfo = msg.fetched

	case readerNavMsg:
		return s, s.load(msg.target.ChapterID, msg.target.Page, false)

	case bookmarkedMsg:
		s.err = msg.err
	}

	return s, nil
}

// click resolves terminal cell coordinates into percentage space and asks
// the session which regions were hit.
func (s *ReaderScreen) click(x, y int) tea.Cmd {
	if s.width == 0 || s.height == 0 {
		return nil
	}
	px := float64(x) / float64(s.width) * 100
	py := float64(y) / float64(s.height) * 100

	for _, region := range s.deps.Session.Hit(px, py) {
		switch region {
		case reader.RegionLeft:
			return s.follow(s.deps.Session.GoPrev(reader.ByPage))
		case reader.RegionRight:
			return s.follow(s.deps.Session.GoNext(reader.ByPage))
		case reader.RegionCenter:
			s.showLinks = !s.showLinks
			return nil
		}
	}
	return nil
}

func (s *ReaderScreen) View() string {
	if s.deps.Session.Pending() {
		return styles.StatusLoading.Render("Loading chapter...")
	}
	if msg := s.deps.Session.Err(); msg != "" {
		return styles.StatusError.Render(msg) + "\n\n" +
			styles.HelpStyle.Render("esc: back")
	}

	pos := s.deps.Session.Position()
	detail := s.deps.Session.Chapter()
	if detail == nil {
		return "Loading..."
	}

	title := styles.TitleStyle.Render(pos.Summary.ChapterSlug)
	if pos.Manga != nil {
		title = styles.TitleStyle.Render(
			fmt.Sprintf("%s • %s", pos.Manga.Manga.Title, pos.Summary.ChapterSlug))
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(s.renderPage(pos))
	b.WriteString("\n")

	b.WriteString(s.renderStatus(pos))

	if s.showLinks {
		b.WriteString("\n")
		b.WriteString(s.renderLinks(pos.Links))
	}

	var errorMsg string
	if s.err != nil {
		errorMsg = "\n" + styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
	}

	help := styles.HelpStyle.Render(
		"←/h →/l: page • p/n: chapter • [/]: volume • g: start • b: bookmark • v: links • esc: back",
	)

	return fmt.Sprintf("%s%s\n%s", b.String(), errorMsg, help)
}

func (s *ReaderScreen) renderPage(pos reader.Position) string {
	if pos.Page == nil {
		return styles.MutedStyle.Render("No pages in this chapter")
	}

	var rows []string
	rows = append(rows, styles.SubtitleStyle.Render(pos.Summary.PageSlug))
	rows = append(rows, styles.TextStyle.Render(pos.Page.URL))

	if s.pageInfo != nil {
		rows = append(rows, styles.MutedStyle.Render(fmt.Sprintf(
			"%s • %d KB • fetched in %s",
			s.pageInfo.ContentType, len(s.pageInfo.Data)/1024, s.pageInfo.Duration.Round(1e6),
		)))
	}

	bookmarked := false
	for _, mark := range pos.Bookmarks {
		if mark == pos.Page.Ordinal {
			bookmarked = true
			break
		}
	}
	if bookmarked {
		rows = append(rows, styles.FavoriteStyle.Render("🔖 bookmarked"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return styles.CardStyle.Width(s.width - 4).Render(content)
}

func (s *ReaderScreen) renderStatus(pos reader.Position) string {
	var parts []string
	if pos.Summary.VolumeSlug != "" {
		parts = append(parts, "Vol "+pos.Summary.VolumeSlug)
	}
	parts = append(parts, "Ch "+pos.Summary.ChapterSlug, "Pg "+pos.Summary.PageSlug)
	parts = append(parts, fmt.Sprintf("%.0f%% total", pos.Summary.Total))

	bar := components.SimpleProgress(int(pos.Summary.Page), 100, s.width-6)
	return styles.MutedStyle.Render(strings.Join(parts, " • ")) + "\n" + bar
}

func (s *ReaderScreen) renderLinks(links reader.Links) string {
	var b strings.Builder

	section := func(name string, items []reader.Link) {
		if len(items) == 0 {
			return
		}
		b.WriteString(styles.SubtitleStyle.Render(name))
		b.WriteString("\n")
		for _, l := range items {
			line := l.Name
			if l.Current {
				line = styles.SelectedStyle.Render(line)
			} else {
				line = styles.MutedStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}

	section("Volumes", links.Volumes)
	section("Chapters", links.Chapters)
	section("Versions", links.Versions)
	section("Pages", links.Pages)

	return b.String()
}

// Messages
type readerLoadedMsg struct {
	chapterID string
	page      int
	err       error
}

type pageFetchedMsg struct {
	fetched *images.Fetched
}

type readerNavMsg struct {
	target reader.Target
}

type bookmarkedMsg struct {
	err error
}

// Commands
func (s *ReaderScreen) load(chapterID string, page int, force bool) tea.Cmd {
	return func() tea.Msg {
		err := s.deps.Session.Load(context.Background(), chapterID, page, force)
		return readerLoadedMsg{chapterID: chapterID, page: page, err: err}
	}
}

// follow routes a navigation target: landing targets leave the reader, the
// rest reload the session in place.
func (s *ReaderScreen) follow(target reader.Target) tea.Cmd {
	if target.Landing() {
		s.loader.Abort()
		mangaID := target.MangaID
		return func() tea.Msg {
			return SwitchScreenMsg{Screen: "details", Data: mangaID}
		}
	}
	return func() tea.Msg {
		return readerNavMsg{target: target}
	}
}

func (s *ReaderScreen) back() tea.Cmd {
	pos := s.deps.Session.Position()
	mangaID := ""
	if pos.Manga != nil {
		mangaID = pos.Manga.Manga.ID
	}
	if mangaID == "" {
		return func() tea.Msg {
			return SwitchScreenMsg{Screen: "library", Data: nil}
		}
	}
	return func() tea.Msg {
		return SwitchScreenMsg{Screen: "details", Data: mangaID}
	}
}

func (s *ReaderScreen) fetchPage() tea.Cmd {
	pos := s.deps.Session.Position()
	if pos.Page == nil {
		return nil
	}
	url := pos.Page.URL
	return func() tea.Msg {
		fetched, err := s.loader.Fetch(context.Background(), url)
		if err != nil {
			return pageFetchedMsg{}
		}
		return pageFetchedMsg{fetched: fetched}
	}
}

func (s *ReaderScreen) toggleBookmark() tea.Cmd {
	return func() tea.Msg {
		err := s.deps.Session.Bookmark(context.Background())
		return bookmarkedMsg{err: err}
	}
}
