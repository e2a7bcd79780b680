package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kerbaras/yomu/pkg/api"
	"github.com/kerbaras/yomu/pkg/data"
)

var addCmd = &cobra.Command{
	Use:   "add [manga-name]",
	Short: "Add a manga to your library",
	Long:  "Search for a manga and add the first match to your library",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := strings.Join(args, " ")
		a := loadApp()
		defer a.Close()
		deps := a.Deps()

		fmt.Printf("🔍 Searching for '%s'...\n", query)

		res := deps.Service.SearchManga(context.Background(), api.SearchFilter{
			Search: query,
			Size:   5,
		})
		if err := res.Err(); err != nil {
			cobra.CheckErr(fmt.Errorf("search failed: %w", err))
		}

		if len(res.Data.Data) == 0 {
			fmt.Println("❌ No results found.")
			return
		}

		detail := res.Data.Data[0]
		entry := data.LibraryEntry{
			MangaID:       detail.Manga.ID,
			Title:         detail.Manga.Title,
			ContentRating: detail.Manga.ContentRating,
		}
		if detail.Cover != nil {
			entry.CoverURL = detail.Cover.URL
		}

		if err := deps.Store.SaveToLibrary(entry); err != nil {
			cobra.CheckErr(fmt.Errorf("could not save to library: %w", err))
		}

		fmt.Printf("✅ Added '%s' to library\n", detail.Manga.Title)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
