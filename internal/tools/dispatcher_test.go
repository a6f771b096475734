package tools

import (
	"context"
	"testing"

	"basera/internal/events"
	"basera/internal/models"
	"basera/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *store.Store, *events.EventBus) {
	t.Helper()
	s := store.New(store.DefaultHotels(), nil)
	bus := events.NewEventBus()
	return NewDispatcher(s, bus, nil), s, bus
}

func bookingArgs(hotelID int64) map[string]any {
	return map[string]any{
		"hotel_id":       float64(hotelID),
		"full_name":      "Asha Gurung",
		"email":          "asha@example.com",
		"check_in_date":  "2026-09-10",
		"check_out_date": "2026-09-12",
		"guests":         float64(2),
		"room_type":      "Deluxe",
	}
}

func TestDispatcherSearchHotels(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	resp := d.Dispatch(context.Background(), models.FunctionCall{
		Name: models.ToolSearchHotels,
		Args: map[string]any{"location": "pokhara"},
	})

	assert.Equal(t, models.ToolSearchHotels, resp.Name)
	hotels, ok := resp.Response["hotels"].([]models.HotelSummary)
	require.True(t, ok)
	assert.NotEmpty(t, hotels)
	for _, h := range hotels {
		assert.Equal(t, "Pokhara", h.Location)
	}
}

func TestDispatcherSearchHotelsNoMatch(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	resp := d.Dispatch(context.Background(), models.FunctionCall{
		Name: models.ToolSearchHotels,
		Args: map[string]any{"location": "Lumbini"},
	})

	hotels, ok := resp.Response["hotels"].([]models.HotelSummary)
	require.True(t, ok)
	assert.NotNil(t, hotels)
	assert.Empty(t, hotels)
}

func TestDispatcherBookHotel(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		d, s, bus := newTestDispatcher(t)

		var published []string
		bus.Subscribe(events.EventBookingCreated, func(event *events.Event) error {
			published = append(published, string(event.Payload))
			return nil
		})

		resp := d.Dispatch(context.Background(), models.FunctionCall{
			Name: models.ToolBookHotel,
			Args: bookingArgs(1),
		})

		booking, ok := resp.Response["booking"].(*models.Booking)
		require.True(t, ok)
		assert.NotEmpty(t, booking.ID)
		assert.Equal(t, models.StatusConfirmed, booking.Status)
		assert.Equal(t, "Asha Gurung", booking.Name)
		assert.Len(t, published, 1)

		stored, err := s.GetBooking(booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.ID, stored.ID)
	})

	t.Run("UnknownHotel", func(t *testing.T) {
		d, _, _ := newTestDispatcher(t)

		resp := d.Dispatch(context.Background(), models.FunctionCall{
			Name: models.ToolBookHotel,
			Args: bookingArgs(999),
		})

		assert.Equal(t, "Hotel not found or not available.", resp.Response["error"])
	})

	t.Run("UnavailableHotel", func(t *testing.T) {
		d, _, _ := newTestDispatcher(t)

		resp := d.Dispatch(context.Background(), models.FunctionCall{
			Name: models.ToolBookHotel,
			Args: bookingArgs(6),
		})

		assert.Equal(t, "Hotel not found or not available.", resp.Response["error"])
	})

	t.Run("MissingHotelID", func(t *testing.T) {
		d, _, _ := newTestDispatcher(t)

		args := bookingArgs(1)
		delete(args, "hotel_id")
		resp := d.Dispatch(context.Background(), models.FunctionCall{
			Name: models.ToolBookHotel,
			Args: args,
		})

		assert.Equal(t, "Hotel not found or not available.", resp.Response["error"])
	})

	t.Run("StringHotelID", func(t *testing.T) {
		d, _, _ := newTestDispatcher(t)

		args := bookingArgs(1)
		args["hotel_id"] = "1"
		resp := d.Dispatch(context.Background(), models.FunctionCall{
			Name: models.ToolBookHotel,
			Args: args,
		})

		_, ok := resp.Response["booking"].(*models.Booking)
		assert.True(t, ok)
	})

	t.Run("ZeroGuests", func(t *testing.T) {
		d, _, _ := newTestDispatcher(t)

		args := bookingArgs(1)
		args["guests"] = float64(0)
		resp := d.Dispatch(context.Background(), models.FunctionCall{
			Name: models.ToolBookHotel,
			Args: args,
		})

		assert.Contains(t, resp.Response, "error")
	})
}

func TestDispatcherGetBookingDetails(t *testing.T) {
	d, s, _ := newTestDispatcher(t)

	booking, err := s.BookHotel(models.BookingRequest{
		HotelID: 2, FullName: "Ram Thapa", Email: "ram@example.com",
		CheckIn: "2026-10-01", CheckOut: "2026-10-03", Guests: 1, RoomType: "Standard",
	})
	require.NoError(t, err)

	resp := d.Dispatch(context.Background(), models.FunctionCall{
		Name: models.ToolGetBookingDetails,
		Args: map[string]any{"booking_id": booking.ID},
	})
	got, ok := resp.Response["booking"].(*models.Booking)
	require.True(t, ok)
	assert.Equal(t, booking.ID, got.ID)

	resp = d.Dispatch(context.Background(), models.FunctionCall{
		Name: models.ToolGetBookingDetails,
		Args: map[string]any{"booking_id": "H-missing"},
	})
	assert.Equal(t, "Booking not found.", resp.Response["error"])
}

func TestDispatcherCancelBooking(t *testing.T) {
	d, s, bus := newTestDispatcher(t)

	var cancelled int
	bus.Subscribe(events.EventBookingCancelled, func(*events.Event) error {
		cancelled++
		return nil
	})

	booking, err := s.BookHotel(models.BookingRequest{
		HotelID: 3, FullName: "Sita Rai", Email: "sita@example.com",
		CheckIn: "2026-11-05", CheckOut: "2026-11-07", Guests: 2, RoomType: "Suite",
	})
	require.NoError(t, err)

	resp := d.Dispatch(context.Background(), models.FunctionCall{
		Name: models.ToolCancelBooking,
		Args: map[string]any{"booking_id": booking.ID},
	})
	assert.Equal(t, true, resp.Response["success"])
	assert.Equal(t, booking.ID, resp.Response["booking_id"])
	assert.Equal(t, 1, cancelled)

	stored, err := s.GetBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)

	// Cancelling again stays a success.
	resp = d.Dispatch(context.Background(), models.FunctionCall{
		Name: models.ToolCancelBooking,
		Args: map[string]any{"booking_id": booking.ID},
	})
	assert.Equal(t, true, resp.Response["success"])

	resp = d.Dispatch(context.Background(), models.FunctionCall{
		Name: models.ToolCancelBooking,
		Args: map[string]any{"booking_id": "H-missing"},
	})
	assert.Equal(t, "Booking not found.", resp.Response["error"])
}

func TestDispatcherUnknownTool(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	resp := d.Dispatch(context.Background(), models.FunctionCall{
		Name: "refresh_loyalty_points",
		Args: map[string]any{},
	})

	assert.Equal(t, map[string]any{"success": true}, resp.Response)
}

func TestBookingFromArgs(t *testing.T) {
	booking, err := BookingFromArgs(map[string]any{
		"booking": map[string]any{
			"booking_id": "H-abc",
			"hotel_name": "Lakeside Paradise Inn",
			"check_in":   "2026-09-10",
			"check_out":  "2026-09-12",
			"guests":     float64(2),
			"name":       "Asha Gurung",
			"email":      "asha@example.com",
			"room_type":  "Deluxe",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "H-abc", booking.ID)
	assert.Equal(t, 2, booking.Guests)
	assert.Equal(t, models.StatusConfirmed, booking.Status)

	_, err = BookingFromArgs(map[string]any{})
	assert.Error(t, err)

	_, err = BookingFromArgs(map[string]any{"booking": map[string]any{"name": "x"}})
	assert.Error(t, err)
}
