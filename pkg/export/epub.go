package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"

	"github.com/kerbaras/yomu/pkg/data"
)

// Book accumulates downloaded chapters into one EPUB file.
type Book struct {
	epub     *epub.Epub
	workDir  string
	outDir   string
	sections int
}

// NewBook starts an EPUB for the given manga. Page images are staged in a
// temp directory until Write.
func NewBook(manga data.MangaDetail, outDir string) (*Book, error) {
	e, err := epub.NewEpub(manga.Manga.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to create EPUB: %w", err)
	}
	e.SetLang("en")
	if manga.Manga.Description != "" {
		e.SetDescription(manga.Manga.Description)
	}
	if author := firstAuthor(manga.People); author != "" {
		e.SetAuthor(author)
	}

	workDir, err := os.MkdirTemp("", "yomu-epub-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	return &Book{epub: e, workDir: workDir, outDir: outDir}, nil
}

func firstAuthor(people []data.Person) string {
	for _, p := range people {
		if p.Author {
			return p.Name
		}
	}
	if len(people) > 0 {
		return people[0].Name
	}
	return ""
}

// SetCover attaches the manga cover image.
func (b *Book) SetCover(content []byte, contentType string) error {
	path := filepath.Join(b.workDir, "cover"+extensionFor(contentType))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to stage cover: %w", err)
	}
	internal, err := b.epub.AddImage(path, "")
	if err != nil {
		return fmt.Errorf("failed to add cover: %w", err)
	}
	b.epub.SetCover(internal, "")
	return nil
}

// AddChapter appends one chapter's pages as a new section.
func (b *Book) AddChapter(chapter data.Chapter, pages []Page) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages for chapter %g", chapter.Ordinal)
	}

	title := data.ChapterTitle(chapter)
	var html strings.Builder
	fmt.Fprintf(&html, "<h1>%s</h1>\n", title)

	for i, page := range pages {
		name := fmt.Sprintf("ch%03d-p%03d%s", b.sections, i, extensionFor(page.ContentType))
		path := filepath.Join(b.workDir, name)
		if err := os.WriteFile(path, page.Content, 0o644); err != nil {
			return fmt.Errorf("failed to stage page %d: %w", i+1, err)
		}

		internal, err := b.epub.AddImage(path, name)
		if err != nil {
			return fmt.Errorf("failed to add page %d: %w", i+1, err)
		}
		fmt.Fprintf(&html,
			`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>%s`,
			internal, i+1, "\n")
	}

	if _, err := b.epub.AddSection(html.String(), title, "", ""); err != nil {
		return fmt.Errorf("failed to add section: %w", err)
	}
	b.sections++
	return nil
}

// Write finalizes the EPUB into the output directory and cleans the staging
// area.
func (b *Book) Write(name string) (string, error) {
	defer os.RemoveAll(b.workDir)

	if err := os.MkdirAll(b.outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(b.outDir, sanitizeFilename(name)+".epub")
	if err := b.epub.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPUB: %w", err)
	}
	return outputPath, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// sanitizeFilename replaces characters that are invalid in filenames.
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	return strings.Trim(result, ".")
}
