package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"basera/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNotAvailable: hotel missing or not available at booking time.
	ErrNotAvailable = errors.New("hotel not found or not available")
	// ErrNotFound: unknown booking id.
	ErrNotFound = errors.New("booking not found")
)

// Store holds the hotel seed and all bookings for the process lifetime.
// Single-writer updates; reads may come concurrently from the surfaces.
type Store struct {
	mu       sync.RWMutex
	hotels   []models.Hotel
	bookings []models.Booking
	byID     map[string]int
	logger   *zerolog.Logger
}

func New(hotels []models.Hotel, logger *zerolog.Logger) *Store {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "store").Logger()
	return &Store{
		hotels: hotels,
		byID:   make(map[string]int),
		logger: &l,
	}
}

// SearchHotels returns available hotels matching the location and, when
// non-empty, the room type. Both matches are case-insensitive. An empty
// result is not an error.
func (s *Store) SearchHotels(location string, roomType string) []models.HotelSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HotelSummary, 0)
	for _, h := range s.hotels {
		if !strings.EqualFold(h.Location, location) {
			continue
		}
		if roomType != "" && !strings.EqualFold(string(h.RoomType), roomType) {
			continue
		}
		if !h.Availability {
			continue
		}
		out = append(out, h.Summary())
	}
	return out
}

// BookHotel creates a Confirmed booking for an available hotel. The store is
// untouched when the hotel is missing or unavailable.
func (s *Store) BookHotel(req models.BookingRequest) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hotel *models.Hotel
	for i := range s.hotels {
		if s.hotels[i].ID == req.HotelID {
			hotel = &s.hotels[i]
			break
		}
	}
	if hotel == nil || !hotel.Availability {
		return nil, ErrNotAvailable
	}

	now := time.Now()
	booking := models.Booking{
		ID:        newBookingID(),
		Name:      req.FullName,
		Email:     req.Email,
		HotelID:   hotel.ID,
		HotelName: hotel.Name,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Guests:    req.Guests,
		RoomType:  req.RoomType,
		Status:    models.StatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.bookings = append(s.bookings, booking)
	s.byID[booking.ID] = len(s.bookings) - 1

	s.logger.Info().
		Str("booking_id", booking.ID).
		Int64("hotel_id", hotel.ID).
		Str("hotel", hotel.Name).
		Msg("booking created")

	return &booking, nil
}

// GetBooking returns the booking with the given id or ErrNotFound.
func (s *Store) GetBooking(id string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	b := s.bookings[idx]
	return &b, nil
}

// CancelBooking moves a booking to Cancelled. Cancelling an already
// cancelled booking succeeds again; the transition is one-way either way.
func (s *Store) CancelBooking(id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	s.bookings[idx].Status = models.StatusCancelled
	s.bookings[idx].UpdatedAt = time.Now()
	b := s.bookings[idx]

	s.logger.Info().Str("booking_id", id).Msg("booking cancelled")
	return &b, nil
}

// Hotels returns a copy of the seed for rendering.
func (s *Store) Hotels() []models.Hotel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Hotel, len(s.hotels))
	copy(out, s.hotels)
	return out
}

// AvailableHotels filters the seed to availability=true.
func (s *Store) AvailableHotels() []models.Hotel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Hotel, 0, len(s.hotels))
	for _, h := range s.hotels {
		if h.Availability {
			out = append(out, h)
		}
	}
	return out
}

// Bookings returns a copy of all bookings in creation order.
func (s *Store) Bookings() []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out
}

func newBookingID() string {
	return fmt.Sprintf("H-%s", uuid.NewString())
}
