package models

import "time"

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "Confirmed"
	StatusCancelled BookingStatus = "Cancelled"
)

// Booking is owned by the store. HotelName is a snapshot taken at booking
// time so later seed changes never rewrite history. Status only ever moves
// Confirmed -> Cancelled.
type Booking struct {
	ID        string        `json:"booking_id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	HotelID   int64         `json:"hotel_id"`
	HotelName string        `json:"hotel_name"`
	CheckIn   string        `json:"check_in"`
	CheckOut  string        `json:"check_out"`
	Guests    int           `json:"guests"`
	RoomType  RoomType      `json:"room_type"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BookingRequest carries the arguments of a book_hotel tool call.
type BookingRequest struct {
	HotelID  int64
	FullName string
	Email    string
	CheckIn  string
	CheckOut string
	Guests   int
	RoomType RoomType
}
