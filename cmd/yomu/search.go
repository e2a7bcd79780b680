package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/kerbaras/yomu/pkg/api"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for manga",
	Long:  "Search the server's catalog and display results in a table",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := strings.Join(args, " ")
		a := loadApp()
		defer a.Close()

		res := a.Deps().Service.SearchManga(context.Background(), api.SearchFilter{
			Search: query,
			Size:   30,
		})
		if err := res.Err(); err != nil {
			cobra.CheckErr(fmt.Errorf("search failed: %w", err))
		}

		if len(res.Data.Data) == 0 {
			fmt.Println("No results found.")
			return
		}

		var (
			purple = lipgloss.Color("99")

			headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
			cellStyle   = lipgloss.NewStyle().Padding(0, 1)
		)

		t := table.New().
			Border(lipgloss.HiddenBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(purple)).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				default:
					return cellStyle
				}
			}).
			Headers("#", "Title", "Chapters", "ID")

		for i, detail := range res.Data.Data {
			chapters := "-"
			if detail.Ext != nil {
				chapters = fmt.Sprintf("%d", detail.Ext.UniqueChapterCount)
			}
			t.Row(fmt.Sprintf("%d", i+1), truncateString(detail.Manga.Title, 48), chapters, detail.Manga.ID)
		}

		fmt.Println(t)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
