package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"basera/internal/chat"
	"basera/internal/config"
	"basera/internal/events"
	"basera/internal/models"
	"basera/internal/repository"
	"basera/internal/store"
	"basera/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGateway replays canned replies in order.
type scriptedGateway struct {
	replies []*models.ModelReply
	errs    []error
	calls   int
}

func (g *scriptedGateway) Generate(ctx context.Context, history []models.ChatMessage) (*models.ModelReply, error) {
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return nil, g.errs[i]
	}
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return &models.ModelReply{Text: "ok"}, nil
}

func newTestServer(t *testing.T, gw *scriptedGateway, cfg config.APIConfig) (*HTTPServer, *store.Store) {
	t.Helper()
	if gw == nil {
		gw = &scriptedGateway{}
	}
	s := store.New(store.DefaultHotels(), nil)
	bus := events.NewEventBus()
	dispatcher := tools.NewDispatcher(s, bus, nil)
	repo := repository.NewMemoryConversationRepository(time.Hour)
	orch := chat.NewOrchestrator(repo, gw, dispatcher, nil)
	return NewHTTPServer(cfg, orch, s, bus, nil), s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeConversation(t *testing.T, rec *httptest.ResponseRecorder) conversationResponse {
	t.Helper()
	var resp conversationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateAndGetConversation(t *testing.T) {
	srv, _ := newTestServer(t, nil, config.APIConfig{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/conversations", nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	conv := decodeConversation(t, rec)
	assert.NotEmpty(t, conv.ID)
	require.Len(t, conv.History, 1)
	assert.Equal(t, models.GreetingText, conv.History[0].Parts[0].Text)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/conversations/"+conv.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, conv.ID, decodeConversation(t, rec).ID)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/conversations/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostMessage(t *testing.T) {
	gw := &scriptedGateway{replies: []*models.ModelReply{{Text: "Which city?"}}}
	srv, _ := newTestServer(t, gw, config.APIConfig{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/conversations", nil, nil)
	conv := decodeConversation(t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages",
		map[string]string{"text": "I want a hotel"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeConversation(t, rec)
	assert.Equal(t, models.StateIdle, got.State)
	assert.Equal(t, "Which city?", got.History[len(got.History)-1].Parts[0].Text)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages",
		map[string]string{"text": "   "}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPromptAnswerFlow(t *testing.T) {
	gw := &scriptedGateway{replies: []*models.ModelReply{
		{FunctionCalls: []models.FunctionCall{{
			Name: models.ToolPromptDates,
			Args: map[string]any{"label": "Select your dates"},
		}}},
		{Text: "How many guests?"},
	}}
	srv, _ := newTestServer(t, gw, config.APIConfig{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/conversations", nil, nil)
	conv := decodeConversation(t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages",
		map[string]string{"text": "book a room"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeConversation(t, rec)
	assert.Equal(t, models.StateAwaitingUserChoice, got.State)
	require.NotNil(t, got.Pending)
	assert.Equal(t, models.PromptDates, got.Pending.Kind)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/answers",
		map[string]string{"start_date": "2024-01-01", "end_date": "2024-01-05"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeConversation(t, rec)
	assert.Equal(t, models.StateIdle, got.State)
	assert.Nil(t, got.Pending)

	var found bool
	for _, m := range got.History {
		if len(m.Parts) > 0 && m.Parts[0].Text == "I'd like to book from 2024-01-01 to 2024-01-05." {
			found = true
		}
	}
	assert.True(t, found)

	// No pending prompt anymore.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/answers",
		map[string]string{"choice": "Deluxe"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPostAnswerGuests(t *testing.T) {
	gw := &scriptedGateway{replies: []*models.ModelReply{
		{FunctionCalls: []models.FunctionCall{{
			Name: models.ToolPromptGuests,
			Args: map[string]any{"label": "How many guests?"},
		}}},
		{Text: "Noted."},
	}}
	srv, _ := newTestServer(t, gw, config.APIConfig{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/conversations", nil, nil)
	conv := decodeConversation(t, rec)

	doJSON(t, h, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages",
		map[string]string{"text": "book"}, nil)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/answers",
		map[string]int{"guests": 3}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeConversation(t, rec)

	var found bool
	for _, m := range got.History {
		if len(m.Parts) > 0 && m.Parts[0].Text == "I choose: 3" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestHotelsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil, config.APIConfig{})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/hotels", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Hotels []models.Hotel `json:"hotels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Hotels)
	for _, hotel := range resp.Hotels {
		assert.True(t, hotel.Availability)
	}
}

func TestBookingsEndpoints(t *testing.T) {
	srv, s := newTestServer(t, nil, config.APIConfig{})
	h := srv.Handler()

	booking, err := s.BookHotel(models.BookingRequest{
		HotelID: 1, FullName: "Asha Gurung", Email: "asha@example.com",
		CheckIn: "2026-09-10", CheckOut: "2026-09-12", Guests: 2, RoomType: "Deluxe",
	})
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/bookings", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Bookings []models.Booking `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Bookings, 1)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/bookings/"+booking.ID+"/cancel", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stored, err := s.GetBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/bookings/H-missing/cancel", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/bookings/export", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestAuth(t *testing.T) {
	cfg := config.APIConfig{
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
			APIKeys: []config.APIClientKey{
				{Key: "key-1", Extra: "extra-1", Name: "admin"},
				{Key: "key-2", Extra: "extra-2", Name: "reader", Permissions: []string{"read:hotels"}},
			},
		},
	}
	srv, _ := newTestServer(t, nil, cfg)
	h := srv.Handler()

	t.Run("HealthOpen", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/healthz", nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MissingHeaders", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/hotels", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("WrongExtra", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/hotels", nil, map[string]string{
			"x-api-key": "key-1", "x-api-extra": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Allowed", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/hotels", nil, map[string]string{
			"x-api-key": "key-1", "x-api-extra": "extra-1",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("PermissionDenied", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/bookings", nil, map[string]string{
			"x-api-key": "key-2", "x-api-extra": "extra-2",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("PermissionScoped", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/hotels", nil, map[string]string{
			"x-api-key": "key-2", "x-api-extra": "extra-2",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	cfg := config.APIConfig{
		RateLimit: config.APIRateLimitConfig{RPS: 1, Burst: 2},
	}
	srv, _ := newTestServer(t, nil, cfg)
	h := srv.Handler()

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/hotels", nil, map[string]string{
			"x-api-key": "key-1",
		})
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil, config.APIConfig{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/v1/conversations", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/hotels", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
