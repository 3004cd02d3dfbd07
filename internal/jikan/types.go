package jikan

import "strings"

// Status is the three-value airing status plus unknown.
type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusUpcoming  Status = "upcoming"
	StatusUnknown   Status = "unknown"
)

// MapStatus folds a raw catalog status string onto the Status enum. Any
// unrecognized value maps to unknown.
func MapStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "currently airing":
		return StatusOngoing
	case "finished airing":
		return StatusCompleted
	case "not yet aired":
		return StatusUpcoming
	default:
		return StatusUnknown
	}
}

// Anime is the canonical metadata record for one catalog entry. After a
// successful match the worker overwrites Slug with the originating listing
// identifier, turning the record into the join between the two systems.
type Anime struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Slug   string  `json:"slug"`
	Status Status  `json:"status,omitempty"`
	Rating float64 `json:"rating,omitempty"`
	Cover  string  `json:"cover,omitempty"`
}

// animePayload models the raw catalog API anime object.
type animePayload struct {
	MalID  int64   `json:"mal_id"`
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Score  float64 `json:"score"`
	Status string  `json:"status"`
	Images struct {
		JPG struct {
			ImageURL string `json:"image_url"`
		} `json:"jpg"`
	} `json:"images"`
	ImageURL string `json:"image_url"`
}

// searchResponse models GET /anime?q=...
type searchResponse struct {
	Data []animePayload `json:"data"`
}

// detailResponse models GET /anime/{id}.
type detailResponse struct {
	Data *animePayload `json:"data"`
}
