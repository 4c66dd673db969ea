package domain

// Defaults applied by the normalizer when a source field is absent or has
// the wrong type.
const (
	DefaultGuestName   = "Unknown Guest"
	DefaultListingName = "Unknown Property"
	DefaultString      = "unknown"
)

// GuestToHost is the only review type retained from the upstream source.
const GuestToHost = "guest-to-host"

// ChannelHostaway is the single booking channel reviews currently come from.
const ChannelHostaway = "hostaway"

// CategoryRating is one named sub-score attached to a review, 0–10.
type CategoryRating struct {
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
}

// Review is the canonical normalized guest feedback record. The JSON field
// names are wire-visible and depended on by both the management view and the
// public property page; do not rename.
type Review struct {
	ID               *int64           `json:"id"`
	Type             string           `json:"type"`
	Status           string           `json:"status"`
	Rating           *float64         `json:"rating"`
	PublicReview     string           `json:"publicReview"`
	ReviewCategory   []CategoryRating `json:"reviewCategory"`
	SubmittedAt      string           `json:"submittedAt"`
	GuestName        string           `json:"guestName"`
	ListingName      string           `json:"listingName"`
	DisplayOnWebsite bool             `json:"displayOnWebsite"`
}

// CategoryValue returns the review's rating for the named category and
// whether the review has that category at all. With duplicate entries the
// first one wins.
func (r Review) CategoryValue(name string) (float64, bool) {
	for _, c := range r.ReviewCategory {
		if c.Category == name {
			return c.Rating, true
		}
	}
	return 0, false
}
