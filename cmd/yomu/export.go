package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kerbaras/yomu/pkg/catalog"
	"github.com/kerbaras/yomu/pkg/data"
)

var exportCmd = &cobra.Command{
	Use:   "export [manga-id]",
	Short: "Export a manga to EPUB",
	Long:  "Download every chapter of a manga and package it as an EPUB for e-readers",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mangaID := args[0]
		a := loadApp()
		defer a.Close()
		deps := a.Deps()

		ctx := context.Background()
		manga, err := deps.Catalog.Ensure(ctx, catalog.Params{
			MangaID:   mangaID,
			Sort:      data.OrderOrdinal,
			Ascending: true,
		}, false, false)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("could not load manga: %w", err))
		}

		volumes := deps.Catalog.Volumes()
		var ids []string
		for _, vol := range volumes.Volumes {
			for _, ch := range vol.Chapters {
				if len(ch.Versions) > 0 {
					ids = append(ids, ch.Versions[0])
				}
			}
		}

		if len(ids) == 0 {
			fmt.Println("❌ No chapters to export.")
			return
		}

		fmt.Printf("📥 Exporting '%s' (%d chapters)\n", manga.Manga.Title, len(ids))

		go func() {
			for progress := range deps.Exporter.ProgressChannel() {
				if progress.Status == "downloading" && progress.TotalPages > 0 {
					fmt.Printf("  Chapter %g: %d/%d pages\n", progress.Ordinal, progress.CurrentPage, progress.TotalPages)
				}
			}
		}()

		path, err := deps.Exporter.ExportChapters(ctx, *manga, ids)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("export failed: %w", err))
		}

		fmt.Printf("\n📖 EPUB created: %s\n", path)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
