package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/yomu/pkg/app/styles"
	"github.com/kerbaras/yomu/pkg/data"
)

type MangaListItem struct {
	Manga    data.Manga
	Ext      *data.MangaExt
	Progress *data.MangaProgress
}

type MangaList struct {
	Items         []MangaListItem
	SelectedIndex int
	Width         int
	Height        int
	Empty         string
}

func NewMangaList(empty string) *MangaList {
	return &MangaList{
		Items:  []MangaListItem{},
		Width:  80,
		Height: 20,
		Empty:  empty,
	}
}

func (m *MangaList) SetItems(items []MangaListItem) {
	m.Items = items
	if m.SelectedIndex >= len(items) {
		m.SelectedIndex = 0
	}
}

func (m *MangaList) Next() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex++
	if m.SelectedIndex >= len(m.Items) {
		m.SelectedIndex = 0
	}
}

func (m *MangaList) Prev() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex--
	if m.SelectedIndex < 0 {
		m.SelectedIndex = len(m.Items) - 1
	}
}

func (m *MangaList) Selected() *MangaListItem {
	if len(m.Items) == 0 || m.SelectedIndex >= len(m.Items) {
		return nil
	}
	return &m.Items[m.SelectedIndex]
}

func (m *MangaList) View() string {
	if len(m.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render(m.Empty)
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	var b strings.Builder

	for i, item := range m.Items {
		cardStyle := styles.CardStyle
		if i == m.SelectedIndex {
			cardStyle = styles.ActiveCardStyle
		}

		title := item.Manga.Title
		if item.Progress != nil && item.Progress.Favorited {
			title = "★ " + title
		}
		header := styles.TitleStyle.Render(title)

		desc := item.Manga.Description
		if len(desc) > 120 {
			desc = desc[:117] + "..."
		}
		description := styles.TextStyle.Render(desc)

		var meta []string
		if item.Ext != nil {
			meta = append(meta, fmt.Sprintf("%d chapters", item.Ext.UniqueChapterCount))
		}
		meta = append(meta, item.Manga.ContentRating.String())
		info := styles.MutedStyle.Render(strings.Join(meta, " • "))

		rows := []string{header, description, "", info}
		if item.Progress != nil {
			bar := renderProgressBar(int(item.Progress.ProgressPercentage), 100, m.Width-10)
			pct := styles.SubtitleStyle.Render(fmt.Sprintf("%.0f%% read", item.Progress.ProgressPercentage))
			rows = append(rows, pct, bar)
		}

		cardContent := lipgloss.JoinVertical(lipgloss.Left, rows...)

		card := cardStyle.Width(m.Width - 4).Render(cardContent)
		b.WriteString(card)
		b.WriteString("\n")
	}

	return b.String()
}
