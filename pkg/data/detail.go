package data

import (
	"fmt"
	"sort"
	"strings"
)

// MangaDetail is a manga entity together with the related records the server
// returns alongside it. The server wire format is a heterogeneous
// `{type, data}` list; the client resolves it into this struct at decode time
// so call sites never scan a relationship bag.
type MangaDetail struct {
	Manga  Manga     `json:"manga"`
	Ext    *MangaExt `json:"ext,omitempty"`
	Source *Source   `json:"source,omitempty"`
	Cover  *Image    `json:"cover,omitempty"`
	Tags   []Tag     `json:"tags,omitempty"`
	People []Person  `json:"people,omitempty"`
}

// ChapterDetail is a chapter entity plus its page images.
type ChapterDetail struct {
	Chapter Chapter `json:"chapter"`
	Pages   []Image `json:"pages,omitempty"`
}

// SortedPages returns the chapter's pages ordered by ordinal.
func (d *ChapterDetail) SortedPages() []Image {
	pages := make([]Image, len(d.Pages))
	copy(pages, d.Pages)
	sort.Slice(pages, func(i, j int) bool { return pages[i].Ordinal < pages[j].Ordinal })
	return pages
}

// ProgressUpdate is a progress snapshot returned by every progress-mutating
// endpoint: the manga-level aggregate plus the chapter-level fragments the
// server has for the profile.
type ProgressUpdate struct {
	Progress *MangaProgress    `json:"progress,omitempty"`
	Chapters []ChapterProgress `json:"chapters,omitempty"`
}

// ProgressChapter pairs a cached chapter with the profile's progress in it.
type ProgressChapter struct {
	Chapter  Chapter          `json:"chapter"`
	Progress *ChapterProgress `json:"progress,omitempty"`
}

// VolumeChapter is a logical chapter position within a volume. Versions holds
// the chapter IDs of every duplicate upload of the same logical chapter.
// Percent is derived from chapter-level progress and never set directly.
type VolumeChapter struct {
	Ordinal  float64  `json:"ordinal"`
	Percent  float64  `json:"progress"`
	Versions []string `json:"versions"`
}

// MangaVolume is an ordered group of chapters. A nil Ordinal means the
// chapters belong to no volume.
type MangaVolume struct {
	Ordinal  *float64        `json:"ordinal,omitempty"`
	State    VolumeState     `json:"state"`
	Chapters []VolumeChapter `json:"chapters"`
}

// MangaVolumes is the volume/chapter hierarchy for one manga together with
// the caller's progress snapshot. Chapters indexes every version by its ID.
type MangaVolumes struct {
	Progress *MangaProgress              `json:"progress,omitempty"`
	Chapters map[string]*ProgressChapter `json:"chapters"`
	Volumes  []*MangaVolume              `json:"volumes"`
}

// Clone deep-copies the hierarchy. Progress merges replace the hierarchy
// copy-on-write, so snapshots already handed to readers are never written.
// Leaf pointers (Progress, ChapterProgress) are shared: merges swap them,
// never mutate through them.
func (v *MangaVolumes) Clone() *MangaVolumes {
	if v == nil {
		return nil
	}
	out := &MangaVolumes{
		Progress: v.Progress,
		Chapters: make(map[string]*ProgressChapter, len(v.Chapters)),
		Volumes:  make([]*MangaVolume, len(v.Volumes)),
	}
	for id, entry := range v.Chapters {
		e := *entry
		out.Chapters[id] = &e
	}
	for i, vol := range v.Volumes {
		nv := *vol
		nv.Chapters = append([]VolumeChapter(nil), vol.Chapters...)
		out.Volumes[i] = &nv
	}
	return out
}

// ChapterTitle renders the display title for a chapter, e.g.
// "Vol. 2 Ch. 14 - The Promise".
func ChapterTitle(c Chapter) string {
	var b strings.Builder
	if c.Volume != nil {
		fmt.Fprintf(&b, "Vol. %s ", trimFloat(*c.Volume))
	}
	fmt.Fprintf(&b, "Ch. %s ", trimFloat(c.Ordinal))
	if c.Title != "" {
		fmt.Fprintf(&b, "- %s", c.Title)
	}
	return strings.TrimSpace(b.String())
}

// VolumeTitle renders the display title for a volume ordinal.
func VolumeTitle(ordinal *float64) string {
	if ordinal == nil {
		return "No Volume #"
	}
	return "Vol. " + trimFloat(*ordinal)
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}
