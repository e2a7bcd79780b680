package screens

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/yomu/pkg/api"
	"github.com/kerbaras/yomu/pkg/app/styles"
	"github.com/kerbaras/yomu/pkg/data"
)

type SearchScreen struct {
	deps      Deps
	input     textinput.Model
	results   []data.MangaDetail
	selected  int
	searching bool
	width     int
	height    int
	err       error
}

func NewSearchScreen(deps Deps) *SearchScreen {
	ti := textinput.New()
	ti.Placeholder = "Search manga..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	return &SearchScreen{
		deps:    deps,
		input:   ti,
		results: []data.MangaDetail{},
	}
}

func (s *SearchScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *SearchScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		if s.searching {
			return s, nil
		}

		switch msg.String() {
		case "enter":
			if s.input.Focused() {
				query := s.input.Value()
				if query != "" {
					s.searching = true
					return s, s.performSearch(query)
				}
			} else if len(s.results) > 0 {
				id := s.results[s.selected].Manga.ID
				return s, func() tea.Msg {
					return SwitchScreenMsg{Screen: "details", Data: id}
				}
			}

		case "esc":
			if s.input.Focused() {
				s.input.Blur()
			} else {
				s.input.Focus()
				cmd = textinput.Blink
			}

		case "up", "k":
			if !s.input.Focused() && len(s.results) > 0 {
				s.selected--
				if s.selected < 0 {
					s.selected = len(s.results) - 1
				}
			}

		case "down", "j":
			if !s.input.Focused() && len(s.results) > 0 {
				s.selected++
				if s.selected >= len(s.results) {
					s.selected = 0
				}
			}
		}

	case searchResultMsg:
		s.searching = false
		s.results = msg.results
		s.selected = 0
		s.err = msg.err
		if len(s.results) > 0 {
			s.input.Blur()
		}
	}

	if s.input.Focused() {
		s.input, cmd = s.input.Update(msg)
	}

	return s, cmd
}

func (s *SearchScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("🔍 Search")

	inputStyle := styles.InputStyle
	if s.input.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	inputView := inputStyle.Render(s.input.View())

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	var resultsView string
	if s.searching {
		resultsView = styles.StatusLoading.Render("Searching...")
	} else if len(s.results) > 0 {
		resultsView = s.renderResults()
	} else if s.input.Value() != "" {
		resultsView = styles.MutedStyle.Render("No results found")
	}

	help := styles.HelpStyle.Render(
		"enter: search/open • esc: switch focus • ↑/k ↓/j: navigate • tab: switch view",
	)

	return fmt.Sprintf("%s\n\n%s\n\n%s%s\n\n%s",
		header,
		inputView,
		errorMsg,
		resultsView,
		help,
	)
}

func (s *SearchScreen) renderResults() string {
	var result string
	result += styles.SubtitleStyle.Render(fmt.Sprintf("Found %d results:", len(s.results)))
	result += "\n\n"

	for i, detail := range s.results {
		cardStyle := styles.CardStyle
		if i == s.selected && !s.input.Focused() {
			cardStyle = styles.ActiveCardStyle
		}

		title := styles.TitleStyle.Render(detail.Manga.Title)

		desc := detail.Manga.Description
		if len(desc) > 120 {
			desc = desc[:117] + "..."
		}
		description := styles.TextStyle.Render(desc)

		meta := detail.Manga.ContentRating.String()
		if detail.Ext != nil {
			meta = fmt.Sprintf("%s • %d chapters", meta, detail.Ext.UniqueChapterCount)
		}
		if detail.Source != nil {
			meta = fmt.Sprintf("%s • %s", meta, detail.Source.Name)
		}
		info := styles.MutedStyle.Render(meta)

		cardContent := lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			description,
			info,
		)

		card := cardStyle.Width(s.width - 6).Render(cardContent)
		result += card + "\n"
	}

	return result
}

// Messages
type searchResultMsg struct {
	results []data.MangaDetail
	err     error
}

// Commands
func (s *SearchScreen) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		res := s.deps.Service.SearchManga(context.Background(), api.SearchFilter{
			Search: query,
			Size:   20,
		})
		if err := res.Err(); err != nil {
			return searchResultMsg{err: err}
		}
		return searchResultMsg{results: res.Data.Data}
	}
}
