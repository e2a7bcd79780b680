package reader

import (
	"strings"

	"github.com/kerbaras/yomu/pkg/data"
)

// versionKeys are the chapter attributes that identify who uploaded a
// version, in match-priority order.
var versionKeys = []string{"group", "scanlation group", "uploader"}

// FindBestChapter picks the candidate version that best matches the chapter
// the user is currently reading, so navigation stays within the same
// scanlation group where possible.
//
// The current chapter's first attribute whose lowercased name is a version
// key decides the comparison; the first candidate whose own first attribute
// of that name carries an identical value wins. With no usable attribute or
// no match, the first candidate is returned. Callers rely on that positional
// fallback as the deterministic default.
func FindBestChapter(current *data.Chapter, candidates []*data.Chapter) *data.Chapter {
	if current == nil {
		return nil
	}

	chaps := make([]*data.Chapter, 0, len(candidates))
	for _, c := range candidates {
		if c != nil {
			chaps = append(chaps, c)
		}
	}
	if len(chaps) == 0 {
		return nil
	}
	if len(chaps) == 1 {
		return chaps[0]
	}

	attr := versionAttribute(current)
	if attr == nil {
		return chaps[0]
	}

	name := strings.ToLower(attr.Name)
	for _, chap := range chaps {
		// Only the candidate's first attribute of that name counts.
		for _, ca := range chap.Attributes {
			if strings.ToLower(ca.Name) != name {
				continue
			}
			if ca.Value == attr.Value {
				return chap
			}
			break
		}
	}
	return chaps[0]
}

func versionAttribute(c *data.Chapter) *data.Attribute {
	for i := range c.Attributes {
		name := strings.ToLower(c.Attributes[i].Name)
		for _, key := range versionKeys {
			if name == key {
				return &c.Attributes[i]
			}
		}
	}
	return nil
}

// BestVersion resolves version IDs against the cached hierarchy and picks
// the best match for the current chapter.
func BestVersion(volumes *data.MangaVolumes, current *data.Chapter, versions []string) *data.Chapter {
	if volumes == nil {
		return nil
	}
	candidates := make([]*data.Chapter, 0, len(versions))
	for _, id := range versions {
		if entry, ok := volumes.Chapters[id]; ok {
			candidates = append(candidates, &entry.Chapter)
		}
	}
	return FindBestChapter(current, candidates)
}
