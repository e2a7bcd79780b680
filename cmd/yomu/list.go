package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all manga in your library",
	Long:  "Display your library in a formatted table with reading progress",
	Run: func(cmd *cobra.Command, args []string) {
		a := loadApp()
		defer a.Close()
		deps := a.Deps()

		entries, err := deps.Store.ListLibrary()
		if err != nil {
			cobra.CheckErr(err)
		}

		if len(entries) == 0 {
			fmt.Println("📚 No manga in library. Use 'yomu search' to find manga to add.")
			return
		}

		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.MangaID
		}
		deps.Progress.Load(ids...)
		if err := deps.Progress.Tap(context.Background()); err != nil {
			fmt.Printf("⚠️  Could not refresh progress: %s\n", err)
		}

		columns := []table.Column{
			{Title: "Title", Width: 40},
			{Title: "Rating", Width: 12},
			{Title: "Progress", Width: 10},
			{Title: "Favorite", Width: 8},
		}

		rows := []table.Row{}
		for _, e := range entries {
			progress := "-"
			favorite := ""
			if p := deps.Progress.Get(e.MangaID); p != nil {
				progress = fmt.Sprintf("%.0f%%", p.ProgressPercentage)
				if p.Favorited {
					favorite = "★"
				}
			}

			rows = append(rows, table.Row{
				truncateString(e.Title, 38),
				e.ContentRating.String(),
				progress,
				favorite,
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(s)

		fmt.Printf("\n📚 Library (%d manga)\n\n", len(entries))
		fmt.Println(t.View())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
