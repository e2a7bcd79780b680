package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/kerbaras/yomu/pkg/data"
)

// Service is the narrow contract the caches and the reader consume. Tests
// substitute a mock; production code uses *Client.
type Service interface {
	Authenticated() bool

	SearchManga(ctx context.Context, filter SearchFilter) Result[Paged[data.MangaDetail]]
	Manga(ctx context.Context, id string) Result[data.MangaDetail]
	RefreshManga(ctx context.Context, id string) Result[data.MangaDetail]
	MangaChapters(ctx context.Context, id string, order data.ChapterOrder, asc bool) Result[data.MangaVolumes]
	Chapter(ctx context.Context, id string, refetch bool) Result[data.ChapterDetail]

	UpdateProgress(ctx context.Context, chapterID string, pageOrdinal int) Result[data.ProgressUpdate]
	Bookmark(ctx context.Context, chapterID string, pages []int) Result[data.ProgressUpdate]
	BatchProgress(ctx context.Context, mangaIDs []string) Result[[]data.MangaProgress]
	Favorite(ctx context.Context, mangaID string) Result[data.ProgressUpdate]
	Unfavorite(ctx context.Context, mangaID string) Result[data.ProgressUpdate]
	MarkRead(ctx context.Context, mangaID string) Result[data.ProgressUpdate]
	ResetProgress(ctx context.Context, mangaID string) Result[data.ProgressUpdate]

	Me(ctx context.Context) Result[data.Profile]
}

// SearchFilter narrows a catalog search.
type SearchFilter struct {
	Search  string               `json:"search,omitempty"`
	Page    int                  `json:"page,omitempty"`
	Size    int                  `json:"size,omitempty"`
	Ratings []data.ContentRating `json:"ratings,omitempty"`
	Tags    []string             `json:"tags,omitempty"`
	Asc     bool                 `json:"asc,omitempty"`
}

func (c *Client) SearchManga(ctx context.Context, filter SearchFilter) Result[Paged[data.MangaDetail]] {
	return request[Paged[data.MangaDetail]](ctx, c, "POST", "manga", nil, filter)
}

func (c *Client) Manga(ctx context.Context, id string) Result[data.MangaDetail] {
	return request[data.MangaDetail](ctx, c, "GET", "manga/"+id, nil, nil)
}

// RefreshManga asks the server to re-scrape the manga before returning it.
func (c *Client) RefreshManga(ctx context.Context, id string) Result[data.MangaDetail] {
	return request[data.MangaDetail](ctx, c, "GET", "manga/"+id+"/refresh", nil, nil)
}

func (c *Client) MangaChapters(ctx context.Context, id string, order data.ChapterOrder, asc bool) Result[data.MangaVolumes] {
	params := url.Values{}
	params.Set("order", strconv.Itoa(int(order)))
	params.Set("asc", strconv.FormatBool(asc))
	return request[data.MangaVolumes](ctx, c, "GET", "manga/"+id+"/chapters", params, nil)
}

// Chapter fetches one chapter with its pages. refetch bypasses the
// server-side page cache.
func (c *Client) Chapter(ctx context.Context, id string, refetch bool) Result[data.ChapterDetail] {
	var params url.Values
	if refetch {
		params = url.Values{"refetch": {"true"}}
	}
	return request[data.ChapterDetail](ctx, c, "GET", "chapter/"+id, params, nil)
}

func (c *Client) UpdateProgress(ctx context.Context, chapterID string, pageOrdinal int) Result[data.ProgressUpdate] {
	body := map[string]any{"chapterId": chapterID, "pageOrdinal": pageOrdinal}
	return request[data.ProgressUpdate](ctx, c, "PUT", "progress", nil, body)
}

// Bookmark replaces the chapter's bookmark list wholesale; the caller
// computes the new list by toggling membership.
func (c *Client) Bookmark(ctx context.Context, chapterID string, pages []int) Result[data.ProgressUpdate] {
	body := map[string]any{"chapterId": chapterID, "bookmarks": pages}
	return request[data.ProgressUpdate](ctx, c, "PUT", "chapter/bookmarks", nil, body)
}

// BatchProgress returns the subset of the requested manga that have progress
// records; missing IDs are simply absent from the response.
func (c *Client) BatchProgress(ctx context.Context, mangaIDs []string) Result[[]data.MangaProgress] {
	params := url.Values{"ids": mangaIDs}
	return request[[]data.MangaProgress](ctx, c, "GET", "progress", params, nil)
}

func (c *Client) Favorite(ctx context.Context, mangaID string) Result[data.ProgressUpdate] {
	return request[data.ProgressUpdate](ctx, c, "GET", "manga/"+mangaID+"/favorite", nil, nil)
}

func (c *Client) Unfavorite(ctx context.Context, mangaID string) Result[data.ProgressUpdate] {
	return request[data.ProgressUpdate](ctx, c, "DELETE", "manga/"+mangaID+"/favorite", nil, nil)
}

func (c *Client) MarkRead(ctx context.Context, mangaID string) Result[data.ProgressUpdate] {
	return request[data.ProgressUpdate](ctx, c, "GET", "progress/"+mangaID+"/read", nil, nil)
}

func (c *Client) ResetProgress(ctx context.Context, mangaID string) Result[data.ProgressUpdate] {
	return request[data.ProgressUpdate](ctx, c, "DELETE", "progress/"+mangaID+"/read", nil, nil)
}

func (c *Client) Me(ctx context.Context) Result[data.Profile] {
	return request[data.Profile](ctx, c, "GET", "auth/me", nil, nil)
}
