package store

import "basera/internal/models"

// DefaultHotels is the compiled-in seed used when no hotels file is
// configured. Cities mirror the chain's coverage: Pokhara, Kathmandu,
// Chitwan, Butwal.
func DefaultHotels() []models.Hotel {
	return []models.Hotel{
		{
			ID: 1, Name: "Lakeside Paradise", Location: "Pokhara",
			PricePerNight: 120, RoomType: models.RoomDeluxe, Availability: true,
			ImageURL:  "https://picsum.photos/seed/pokhara1/400/300",
			Amenities: []string{"WiFi", "Pool", "Lake View", "Breakfast"},
		},
		{
			ID: 2, Name: "Annapurna Vista Inn", Location: "Pokhara",
			PricePerNight: 75, RoomType: models.RoomStandard, Availability: true,
			ImageURL:  "https://picsum.photos/seed/pokhara2/400/300",
			Amenities: []string{"WiFi", "Breakfast", "Mountain View"},
		},
		{
			ID: 3, Name: "Peace Pagoda Suites", Location: "Pokhara",
			PricePerNight: 210, RoomType: models.RoomSuite, Availability: true,
			ImageURL:  "https://picsum.photos/seed/pokhara3/400/300",
			Amenities: []string{"WiFi", "Spa", "Rooftop Bar", "Airport Pickup"},
		},
		{
			ID: 4, Name: "Thamel Boutique Hotel", Location: "Kathmandu",
			PricePerNight: 95, RoomType: models.RoomStandard, Availability: true,
			ImageURL:  "https://picsum.photos/seed/ktm1/400/300",
			Amenities: []string{"WiFi", "Breakfast", "City Tours"},
		},
		{
			ID: 5, Name: "Durbar Heritage Palace", Location: "Kathmandu",
			PricePerNight: 180, RoomType: models.RoomDeluxe, Availability: true,
			ImageURL:  "https://picsum.photos/seed/ktm2/400/300",
			Amenities: []string{"WiFi", "Garden", "Restaurant", "Spa"},
		},
		{
			ID: 6, Name: "Everest Grand Suites", Location: "Kathmandu",
			PricePerNight: 260, RoomType: models.RoomSuite, Availability: false,
			ImageURL:  "https://picsum.photos/seed/ktm3/400/300",
			Amenities: []string{"WiFi", "Pool", "Gym", "Concierge"},
		},
		{
			ID: 7, Name: "Jungle Safari Lodge", Location: "Chitwan",
			PricePerNight: 140, RoomType: models.RoomDeluxe, Availability: true,
			ImageURL:  "https://picsum.photos/seed/chitwan1/400/300",
			Amenities: []string{"WiFi", "Safari Tours", "Restaurant"},
		},
		{
			ID: 8, Name: "Rhino Riverside Resort", Location: "Chitwan",
			PricePerNight: 85, RoomType: models.RoomStandard, Availability: true,
			ImageURL:  "https://picsum.photos/seed/chitwan2/400/300",
			Amenities: []string{"WiFi", "River View", "Breakfast"},
		},
		{
			ID: 9, Name: "Siddhartha Business Hotel", Location: "Butwal",
			PricePerNight: 70, RoomType: models.RoomStandard, Availability: true,
			ImageURL:  "https://picsum.photos/seed/butwal1/400/300",
			Amenities: []string{"WiFi", "Conference Room", "Breakfast"},
		},
		{
			ID: 10, Name: "Tinau Executive Suites", Location: "Butwal",
			PricePerNight: 150, RoomType: models.RoomSuite, Availability: true,
			ImageURL:  "https://picsum.photos/seed/butwal2/400/300",
			Amenities: []string{"WiFi", "Gym", "Restaurant", "Laundry"},
		},
	}
}
