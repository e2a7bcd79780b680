package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/kerbaras/yomu/pkg/api"
	"github.com/kerbaras/yomu/pkg/data"
)

// Page is one downloaded, possibly optimized, page image.
type Page struct {
	Content     []byte
	ContentType string
	Index       int
}

// Progress reports export state over the exporter's channel.
type Progress struct {
	MangaID     string
	ChapterID   string
	Ordinal     float64
	CurrentPage int
	TotalPages  int
	Status      string // "downloading", "processing", "complete", "error"
	Err         error
}

// Exporter downloads chapter pages through the API cache and packages them
// into an EPUB. Downloads are rate limited to stay polite to the image
// hosts.
type Exporter struct {
	svc       api.Service
	client    *http.Client
	limiter   *rate.Limiter
	optimizer *Optimizer
	outDir    string
	log       *log.Logger
	progress  chan Progress
}

func NewExporter(svc api.Service, outDir string, opt *Optimizer, logger *log.Logger) *Exporter {
	return &Exporter{
		svc:       svc,
		client:    &http.Client{Timeout: 60 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		optimizer: opt,
		outDir:    outDir,
		log:       logger,
		progress:  make(chan Progress, 100),
	}
}

// ProgressChannel streams per-page export updates.
func (e *Exporter) ProgressChannel() <-chan Progress {
	return e.progress
}

// Close releases the progress channel.
func (e *Exporter) Close() {
	close(e.progress)
}

// ExportChapters fetches each chapter's pages and writes one EPUB named
// after the manga.
func (e *Exporter) ExportChapters(ctx context.Context, manga data.MangaDetail, chapterIDs []string) (string, error) {
	if len(chapterIDs) == 0 {
		return "", fmt.Errorf("no chapters to export")
	}

	book, err := NewBook(manga, e.outDir)
	if err != nil {
		return "", err
	}

	if manga.Cover != nil {
		if cover, contentType, err := e.download(ctx, manga.Cover.URL); err == nil {
			// Cover failures are not fatal.
			if err := book.SetCover(cover, contentType); err != nil && e.log != nil {
				e.log.Debug("cover skipped", "manga", manga.Manga.ID, "error", err)
			}
		}
	}

	for _, id := range chapterIDs {
		res := e.svc.Chapter(ctx, id, false)
		if err := res.Err(); err != nil {
			e.send(Progress{MangaID: manga.Manga.ID, ChapterID: id, Status: "error", Err: err})
			return "", fmt.Errorf("chapter %s: %w", id, err)
		}

		detail := res.Data
		pages, err := e.downloadPages(ctx, detail)
		if err != nil {
			e.send(Progress{MangaID: manga.Manga.ID, ChapterID: id, Ordinal: detail.Chapter.Ordinal, Status: "error", Err: err})
			return "", fmt.Errorf("chapter %g: %w", detail.Chapter.Ordinal, err)
		}

		e.send(Progress{MangaID: manga.Manga.ID, ChapterID: id, Ordinal: detail.Chapter.Ordinal, TotalPages: len(pages), Status: "processing"})
		if err := book.AddChapter(detail.Chapter, pages); err != nil {
			return "", err
		}
	}

	path, err := book.Write(manga.Manga.Title)
	if err != nil {
		return "", err
	}

	e.send(Progress{MangaID: manga.Manga.ID, Status: "complete"})
	return path, nil
}

func (e *Exporter) downloadPages(ctx context.Context, detail data.ChapterDetail) ([]Page, error) {
	sorted := detail.SortedPages()
	if len(sorted) == 0 {
		return nil, fmt.Errorf("no pages found for chapter")
	}

	pages := make([]Page, 0, len(sorted))
	for i, img := range sorted {
		e.send(Progress{
			MangaID:     detail.Chapter.MangaID,
			ChapterID:   detail.Chapter.ID,
			Ordinal:     detail.Chapter.Ordinal,
			CurrentPage: i + 1,
			TotalPages:  len(sorted),
			Status:      "downloading",
		})

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		content, contentType, err := e.download(ctx, img.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to download page %d: %w", i+1, err)
		}

		if e.optimizer != nil {
			optimized, err := e.optimizer.Process(bytes.NewReader(content))
			if err != nil {
				// Keep the original bytes when optimization chokes on an
				// unusual encoding.
				if e.log != nil {
					e.log.Debug("page optimization skipped", "page", i+1, "error", err)
				}
			} else {
				content = optimized
				contentType = http.DetectContentType(optimized)
			}
		}

		pages = append(pages, Page{Content: content, ContentType: contentType, Index: i})
	}
	return pages, nil
}

func (e *Exporter) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("bad status: %s", resp.Status)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image content: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return content, contentType, nil
}

// send delivers a progress update without blocking; slow consumers just
// miss intermediate states.
func (e *Exporter) send(p Progress) {
	select {
	case e.progress <- p:
	default:
	}
}
