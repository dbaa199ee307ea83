package client

// Field names on the wire are lower-case-with-underscores. The json tags
// below are the only mapping between wire names and Go names.

// Slot is a fixed clothing role used as a recommendation map key
type Slot string

const (
	SlotTop         Slot = "top"
	SlotBottom      Slot = "bottom"
	SlotFootwear    Slot = "footwear"
	SlotAccessories Slot = "accessories"
	SlotDress       Slot = "dress"
	SlotJacket      Slot = "jacket"
)

// Slots lists every recognised slot in display order
var Slots = []Slot{SlotTop, SlotBottom, SlotFootwear, SlotAccessories, SlotDress, SlotJacket}

// Valid reports whether s is a recognised slot
func (s Slot) Valid() bool {
	for _, known := range Slots {
		if s == known {
			return true
		}
	}
	return false
}

// ClothingItem is a stored wardrobe item. ID is assigned by the backend.
type ClothingItem struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
	Color    string `json:"color"`
	Material string `json:"material"`
	Occasion string `json:"occasion"`
	ImageURL string `json:"image_url"`
}

// UploadConfirmation is returned after a successful upload
type UploadConfirmation struct {
	Message  string `json:"message"`
	ID       int    `json:"id"`
	ImageURL string `json:"image_url,omitempty"`
}

// RecommendationRequest asks for an outfit. Blank optional fields are not sent.
type RecommendationRequest struct {
	Occasion string   `json:"occasion" validate:"notblank"`
	Category string   `json:"category,omitempty"`
	Color    string   `json:"color,omitempty"`
	Material string   `json:"material,omitempty"`
	Keywords []string `json:"keywords,omitempty" validate:"max=3,dive,required"`
}

// OutfitItem is the garment recommended for one slot
type OutfitItem struct {
	ID       int      `json:"id"`
	Color    string   `json:"color"`
	Material string   `json:"material"`
	ImageURL string   `json:"image_url"`
	Labels   []string `json:"labels,omitempty"`
}

// RecommendationResponse is a complete outfit. A nil item means no garment
// was recommended for that slot.
type RecommendationResponse struct {
	OutfitID string               `json:"outfit_id"`
	Weather  string               `json:"weather"`
	Occasion string               `json:"occasion"`
	Items    map[Slot]*OutfitItem `json:"items"`
}

// SlotItem pairs a slot with its recommended garment
type SlotItem struct {
	Slot Slot
	Item *OutfitItem
}

// Ordered returns the present items in display order, ignoring unknown slots
func (r *RecommendationResponse) Ordered() []SlotItem {
	if r == nil {
		return nil
	}
	var out []SlotItem
	for _, slot := range Slots {
		if item := r.Items[slot]; item != nil {
			out = append(out, SlotItem{Slot: slot, Item: item})
		}
	}
	return out
}

// HasItems reports whether at least one recognised slot holds a garment
func (r *RecommendationResponse) HasItems() bool {
	return len(r.Ordered()) > 0
}

// ItemIDs maps every present slot to its item id. It is nil when no slot
// holds a garment.
func (r *RecommendationResponse) ItemIDs() map[Slot]int {
	var ids map[Slot]int
	for _, si := range r.Ordered() {
		if ids == nil {
			ids = make(map[Slot]int)
		}
		ids[si.Slot] = si.Item.ID
	}
	return ids
}

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// RatingRequest rates a recommended outfit
type RatingRequest struct {
	OutfitID string       `json:"outfit_id"`
	Rating   int          `json:"rating"`
	Items    map[Slot]int `json:"items,omitempty"`
	UserID   string       `json:"user_id,omitempty"`
}

// ClampRating forces stars into [MinRating, MaxRating]
func ClampRating(stars int) int {
	if stars < MinRating {
		return MinRating
	}
	if stars > MaxRating {
		return MaxRating
	}
	return stars
}

// NewRatingRequest builds a rating for resp. Item ids come only from resp.
func NewRatingRequest(resp *RecommendationResponse, stars int) RatingRequest {
	req := RatingRequest{Rating: ClampRating(stars)}
	if resp != nil {
		req.OutfitID = resp.OutfitID
		req.Items = resp.ItemIDs()
	}
	return req
}

// UploadRequest describes a captured photo and its metadata
type UploadRequest struct {
	ImagePath string `json:"-" validate:"required"`
	Category  string `json:"category" validate:"notblank"`
	Color     string `json:"color" validate:"notblank"`
	Material  string `json:"material" validate:"notblank"`
	Occasion  string `json:"occasion" validate:"notblank"`
}

// WardrobeFilter narrows a wardrobe listing. Values may be comma separated.
type WardrobeFilter struct {
	Occasion    string
	Preferences string
}
