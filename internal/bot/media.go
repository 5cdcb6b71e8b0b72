package bot

import (
	"strings"

	"github.com/TuniLagunero/phirst-bot/internal/catalog"
)

// mediaKind is the category of media the user asked for.
type mediaKind int

const (
	mediaNone mediaKind = iota
	mediaPhotos
	mediaVideo
	mediaTour
)

var photoKeywords = []string{"photo", "picture", "pic", "image", "litrato", "interior", "dressed", "turnover"}
var videoKeywords = []string{"video", "vid"}
var tourKeywords = []string{"virtual tour", "walkthrough", "360", "tour"}

// detectMediaIntent classifies the media request in free text, if any.
func detectMediaIntent(text string) mediaKind {
	lower := strings.ToLower(text)
	for _, kw := range tourKeywords {
		if strings.Contains(lower, kw) {
			return mediaTour
		}
	}
	for _, kw := range videoKeywords {
		if strings.Contains(lower, kw) {
			return mediaVideo
		}
	}
	for _, kw := range photoKeywords {
		if strings.Contains(lower, kw) {
			return mediaPhotos
		}
	}
	return mediaNone
}

// matchHouseByName finds the first active house whose name appears in the
// text, case-insensitively.
func matchHouseByName(text string, houses []catalog.House) *catalog.House {
	lower := strings.ToLower(text)
	for i := range houses {
		name := strings.ToLower(houses[i].Name)
		if name != "" && strings.Contains(lower, name) {
			return &houses[i]
		}
	}
	return nil
}

// mediaImages picks up to max images for the request: dressed set first,
// then turnover, then the cover image.
func mediaImages(h *catalog.House, text string, max int) []string {
	lower := strings.ToLower(text)
	var pool []string
	switch {
	case strings.Contains(lower, "turnover") || strings.Contains(lower, "bare"):
		pool = h.TurnoverImages
	case len(h.DressedImages) > 0:
		pool = h.DressedImages
	default:
		pool = h.TurnoverImages
	}
	if len(pool) == 0 && h.ImageURL != "" {
		pool = []string{h.ImageURL}
	}
	if max > 0 && len(pool) > max {
		pool = pool[:max]
	}
	return pool
}

// mediaLink returns the tour/video link for the house, preferring the video
// for video intents.
func mediaLink(h *catalog.House, kind mediaKind) string {
	if kind == mediaVideo && h.VideoLink != "" {
		return h.VideoLink
	}
	if h.GalleryLink != "" {
		return h.GalleryLink
	}
	return h.VideoLink
}
