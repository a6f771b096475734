package models

type RoomType string

const (
	RoomStandard RoomType = "Standard"
	RoomDeluxe   RoomType = "Deluxe"
	RoomSuite    RoomType = "Suite"
)

// Hotel is an immutable seed record. Created once at startup, never mutated.
type Hotel struct {
	ID            int64    `json:"hotel_id" yaml:"hotel_id"`
	Name          string   `json:"hotel_name" yaml:"hotel_name"`
	Location      string   `json:"location" yaml:"location"`
	PricePerNight float64  `json:"price_per_night" yaml:"price_per_night"`
	RoomType      RoomType `json:"room_type" yaml:"room_type"`
	Availability  bool     `json:"availability" yaml:"availability"`
	ImageURL      string   `json:"image_url" yaml:"image_url"`
	Amenities     []string `json:"amenities" yaml:"amenities"`
}

// HotelSummary is the search-result shape sent back to the model.
// Amenities are dropped to keep tool results short.
type HotelSummary struct {
	ID            int64    `json:"hotel_id"`
	Name          string   `json:"hotel_name"`
	Location      string   `json:"location"`
	PricePerNight float64  `json:"price_per_night"`
	RoomType      RoomType `json:"room_type"`
	Availability  bool     `json:"availability"`
	ImageURL      string   `json:"image_url"`
}

func (h Hotel) Summary() HotelSummary {
	return HotelSummary{
		ID:            h.ID,
		Name:          h.Name,
		Location:      h.Location,
		PricePerNight: h.PricePerNight,
		RoomType:      h.RoomType,
		Availability:  h.Availability,
		ImageURL:      h.ImageURL,
	}
}
