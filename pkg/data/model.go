package data

import "time"

// ContentRating indicates whether a user advisory is recommended for a manga.
type ContentRating int

const (
	RatingSafe ContentRating = iota
	RatingSuggestive
	RatingErotica
	RatingPornographic
)

func (r ContentRating) String() string {
	switch r {
	case RatingSuggestive:
		return "suggestive"
	case RatingErotica:
		return "erotica"
	case RatingPornographic:
		return "pornographic"
	default:
		return "safe"
	}
}

// ChapterOrder selects the sort key for chapter listings.
type ChapterOrder int

const (
	OrderOrdinal ChapterOrder = iota
	OrderDate
	OrderLanguage
	OrderTitle
	OrderRead
)

// VolumeState is the derived completion state of a volume.
type VolumeState int

const (
	VolumeNotStarted VolumeState = iota
	VolumeInProgress
	VolumeCompleted
)

func (s VolumeState) String() string {
	switch s {
	case VolumeInProgress:
		return "in-progress"
	case VolumeCompleted:
		return "completed"
	default:
		return "not-started"
	}
}

// Attribute is a free-form name/value pair attached to a manga or chapter.
// Chapter attributes carry the uploader and scanlation group used for
// version matching.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Manga is a series, the top-level catalog entity.
type Manga struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	AltTitles          []string      `json:"altTitles"`
	Description        string        `json:"description"`
	URL                string        `json:"url"`
	Attributes         []Attribute   `json:"attributes"`
	ContentRating      ContentRating `json:"contentRating"`
	NSFW               bool          `json:"nsfw"`
	SourceID           string        `json:"sourceId"`
	OriginalSourceID   string        `json:"originalSourceId"`
	OrdinalVolumeReset bool          `json:"ordinalVolumeReset"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// MangaExt carries the precomputed statistics the server keeps per manga.
type MangaExt struct {
	MangaID             string  `json:"mangaId"`
	ChapterCount        int     `json:"chapterCount"`
	UniqueChapterCount  int     `json:"uniqueChapterCount"`
	FirstChapterOrdinal float64 `json:"firstChapterOrdinal"`
	LastChapterOrdinal  float64 `json:"lastChapterOrdinal"`
	VolumeCount         int     `json:"volumeCount"`
	Views               int     `json:"views"`
	Favorites           int     `json:"favorites"`
	DisplayTitle        string  `json:"displayTitle,omitempty"`
}

// Chapter is one concrete uploaded version of a logical chapter.
type Chapter struct {
	ID          string      `json:"id"`
	MangaID     string      `json:"mangaId"`
	Title       string      `json:"title,omitempty"`
	SourceID    string      `json:"sourceId"`
	Ordinal     float64     `json:"ordinal"`
	Volume      *float64    `json:"volume,omitempty"`
	Language    string      `json:"language"`
	PageCount   int         `json:"pageCount"`
	ExternalURL string      `json:"externalUrl,omitempty"`
	Attributes  []Attribute `json:"attributes"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Image is a chapter page or a manga cover.
type Image struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	ChapterID string `json:"chapterId,omitempty"`
	MangaID   string `json:"mangaId"`
	Ordinal   int    `json:"ordinal"`
	FileName  string `json:"fileName,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	Width     int    `json:"imageWidth,omitempty"`
	Height    int    `json:"imageHeight,omitempty"`
	Size      int    `json:"imageSize,omitempty"`
}

// MangaProgress is the per-profile, per-manga reading aggregate. There is
// exactly one per (profile, manga) pair.
type MangaProgress struct {
	ID                 string     `json:"id"`
	ProfileID          string     `json:"profileId"`
	MangaID            string     `json:"mangaId"`
	LastReadOrdinal    float64    `json:"lastReadOrdinal,omitempty"`
	LastReadChapterID  string     `json:"lastReadChapterId,omitempty"`
	LastReadAt         *time.Time `json:"lastReadAt,omitempty"`
	IsCompleted        bool       `json:"isCompleted"`
	Favorited          bool       `json:"favorited"`
	ProgressPercentage float64    `json:"progressPercentage"`
}

// ChapterProgress is the per-profile position within a single chapter.
type ChapterProgress struct {
	ID          string     `json:"id"`
	ProgressID  string     `json:"progressId"`
	ChapterID   string     `json:"chapterId"`
	PageOrdinal int        `json:"pageOrdinal,omitempty"`
	Bookmarks   []int      `json:"bookmarks"`
	LastRead    *time.Time `json:"lastRead,omitempty"`
}

// Profile is the authenticated user.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Email    string `json:"email,omitempty"`
	Admin    bool   `json:"admin"`
	CanRead  bool   `json:"canRead"`
}

// Source is a provider the server scrapes manga from.
type Source struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	BaseURL string `json:"baseUrl"`
	Enabled bool   `json:"enabled"`
}

type Tag struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Person is an author, artist or uploader related to a manga.
type Person struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Artist bool   `json:"artist"`
	Author bool   `json:"author"`
}
