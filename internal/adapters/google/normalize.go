package google

import (
	"time"

	"flexreviews/internal/domain"
)

// NormalizeReviews converts raw Google place reviews into the canonical
// Review shape so the UI can render both sources with one component. Google
// rates on a 5-star scale; values are doubled onto 0–10. Google reviews
// carry no stable numeric id, so ID stays nil and they are never eligible
// for display approval.
func NormalizeReviews(placeName string, raws []map[string]any) []domain.Review {
	out := make([]domain.Review, 0, len(raws))
	for _, raw := range raws {
		rv := domain.Review{
			Type:           domain.GuestToHost,
			Status:         "published",
			ReviewCategory: []domain.CategoryRating{},
			ListingName:    placeName,
			GuestName:      domain.DefaultGuestName,
		}
		if placeName == "" {
			rv.ListingName = domain.DefaultListingName
		}
		if name, ok := raw["author_name"].(string); ok && name != "" {
			rv.GuestName = name
		}
		if text, ok := raw["text"].(string); ok {
			rv.PublicReview = text
		}
		if stars, ok := raw["rating"].(float64); ok {
			scaled := stars * 2
			rv.Rating = &scaled
		}
		if unix, ok := raw["time"].(float64); ok {
			rv.SubmittedAt = time.Unix(int64(unix), 0).UTC().Format("2006-01-02 15:04:05")
		}
		out = append(out, rv)
	}
	return out
}
