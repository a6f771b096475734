package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"basera/internal/domain"
	"basera/internal/events"
	"basera/internal/metrics"
	"basera/internal/models"
	"basera/internal/store"

	"github.com/rs/zerolog"
)

// Dispatcher routes backend tool calls onto the domain store. Domain
// failures come back as {error: ...} payloads so the model can recover in
// conversation; only the permissive default keeps unknown tools alive.
type Dispatcher struct {
	store    domain.HotelStore
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewDispatcher(hotelStore domain.HotelStore, eventBus domain.EventPublisher, logger *zerolog.Logger) *Dispatcher {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "dispatcher").Logger()
	return &Dispatcher{store: hotelStore, eventBus: eventBus, logger: &l}
}

func (d *Dispatcher) Dispatch(ctx context.Context, call models.FunctionCall) models.FunctionResponse {
	metrics.IncToolDispatch(call.Name)

	var result map[string]any
	switch call.Name {
	case models.ToolSearchHotels:
		result = d.searchHotels(call.Args)
	case models.ToolBookHotel:
		result = d.bookHotel(call.Args)
	case models.ToolGetBookingDetails:
		result = d.getBookingDetails(call.Args)
	case models.ToolCancelBooking:
		result = d.cancelBooking(call.Args)
	default:
		// Unrecognized tools have no backend state to touch; acknowledge so
		// the model never stalls waiting for a result.
		d.logger.Debug().Str("tool", call.Name).Msg("no backend handler, acknowledging")
		result = map[string]any{"success": true}
	}

	return models.FunctionResponse{Name: call.Name, Response: result}
}

func (d *Dispatcher) searchHotels(args map[string]any) map[string]any {
	location := argString(args, "location")
	roomType := argString(args, "room_type")
	hotels := d.store.SearchHotels(location, roomType)
	return map[string]any{"hotels": hotels}
}

func (d *Dispatcher) bookHotel(args map[string]any) map[string]any {
	hotelID, ok := argInt64(args, "hotel_id")
	if !ok {
		return errorResult("Hotel not found or not available.")
	}

	guests, ok := argInt(args, "guests")
	if !ok || guests <= 0 {
		return errorResult("A positive number of guests is required.")
	}

	req := models.BookingRequest{
		HotelID:  hotelID,
		FullName: argString(args, "full_name"),
		Email:    argString(args, "email"),
		CheckIn:  argString(args, "check_in_date"),
		CheckOut: argString(args, "check_out_date"),
		Guests:   guests,
		RoomType: models.RoomType(argString(args, "room_type")),
	}

	booking, err := d.store.BookHotel(req)
	if err != nil {
		if errors.Is(err, store.ErrNotAvailable) {
			return errorResult("Hotel not found or not available.")
		}
		d.logger.Error().Err(err).Int64("hotel_id", hotelID).Msg("book hotel failed")
		return errorResult(err.Error())
	}

	metrics.IncBooking(string(booking.Status))
	d.publishBookingEvent(events.EventBookingCreated, booking)
	return map[string]any{"booking": booking}
}

func (d *Dispatcher) getBookingDetails(args map[string]any) map[string]any {
	booking, err := d.store.GetBooking(argString(args, "booking_id"))
	if err != nil {
		return errorResult("Booking not found.")
	}
	return map[string]any{"booking": booking}
}

func (d *Dispatcher) cancelBooking(args map[string]any) map[string]any {
	id := argString(args, "booking_id")
	booking, err := d.store.CancelBooking(id)
	if err != nil {
		return errorResult("Booking not found.")
	}

	metrics.IncBooking(string(booking.Status))
	d.publishBookingEvent(events.EventBookingCancelled, booking)
	return map[string]any{"success": true, "booking_id": id}
}

func (d *Dispatcher) publishBookingEvent(eventType string, booking *models.Booking) {
	if d.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		HotelID:   booking.HotelID,
		HotelName: booking.HotelName,
		Name:      booking.Name,
		Email:     booking.Email,
		CheckIn:   booking.CheckIn,
		CheckOut:  booking.CheckOut,
		Guests:    booking.Guests,
		RoomType:  string(booking.RoomType),
		Status:    string(booking.Status),
		At:        booking.UpdatedAt,
	}

	if err := d.eventBus.PublishJSON(eventType, payload); err != nil {
		d.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func errorResult(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// Tool arguments arrive as decoded JSON, so numbers are float64 and the
// model occasionally sends numerics as strings.
func argString(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	switch v := args[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func argInt64(args map[string]any, key string) (int64, bool) {
	if args == nil {
		return 0, false
	}
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func argInt(args map[string]any, key string) (int, bool) {
	n, ok := argInt64(args, key)
	if !ok {
		return 0, false
	}
	return int(n), true
}

// BookingFromArgs rebuilds the receipt payload out of a
// display_booking_confirmation call.
func BookingFromArgs(args map[string]any) (*models.Booking, error) {
	raw, ok := args["booking"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("booking payload missing")
	}

	guests, _ := argInt(raw, "guests")
	hotelID, _ := argInt64(raw, "hotel_id")
	b := &models.Booking{
		ID:        argString(raw, "booking_id"),
		Name:      argString(raw, "name"),
		Email:     argString(raw, "email"),
		HotelID:   hotelID,
		HotelName: argString(raw, "hotel_name"),
		CheckIn:   argString(raw, "check_in"),
		CheckOut:  argString(raw, "check_out"),
		Guests:    guests,
		RoomType:  models.RoomType(argString(raw, "room_type")),
		Status:    models.StatusConfirmed,
	}
	if b.ID == "" {
		return nil, fmt.Errorf("booking payload missing booking_id")
	}
	return b, nil
}
