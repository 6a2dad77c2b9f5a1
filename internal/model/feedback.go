package model

// OutfitFeedback is a scored assessment of a set of clothing items.
// It is never persisted.
type OutfitFeedback struct {
	Rating     int    `json:"rating"`
	Feedback   string `json:"feedback"`
	Suggestion string `json:"suggestion"`
}
