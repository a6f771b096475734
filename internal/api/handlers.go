package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"basera/internal/chat"
	"basera/internal/events"
	"basera/internal/export"
	"basera/internal/metrics"
	"basera/internal/models"
)

type conversationResponse struct {
	ID      string                   `json:"id"`
	State   models.ConversationState `json:"state"`
	History []models.ChatMessage     `json:"history"`
	Pending *models.PendingPrompt    `json:"pending,omitempty"`
}

func toConversationResponse(conv *models.Conversation) conversationResponse {
	return conversationResponse{
		ID:      conv.ID,
		State:   conv.State,
		History: conv.History,
		Pending: conv.Pending,
	}
}

func (s *HTTPServer) handleConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	conv, err := s.orchestrator.StartConversation(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("start conversation failed")
		writeError(w, http.StatusInternalServerError, "could not start conversation")
		return
	}
	writeJSON(w, http.StatusCreated, toConversationResponse(conv))
}

func (s *HTTPServer) handleConversation(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/conversations/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.getConversation(w, r, id)
	case "messages":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.postMessage(w, r, id)
	case "answers":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.postAnswer(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) getConversation(w http.ResponseWriter, r *http.Request, id string) {
	conv, err := s.orchestrator.GetConversation(r.Context(), id)
	if err != nil {
		s.writeConversationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toConversationResponse(conv))
}

func (s *HTTPServer) postMessage(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	conv, err := s.orchestrator.HandleUserMessage(r.Context(), id, body.Text)
	if err != nil {
		s.writeConversationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toConversationResponse(conv))
}

func (s *HTTPServer) postAnswer(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Choice    string `json:"choice"`
		Guests    *int   `json:"guests"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var answer models.PromptAnswer
	switch {
	case body.StartDate != "" && body.EndDate != "":
		answer = models.PromptAnswer{StartDate: body.StartDate, EndDate: body.EndDate}
	case body.Guests != nil:
		answer = models.PromptAnswer{Value: fmt.Sprintf("%d", *body.Guests)}
	case strings.TrimSpace(body.Choice) != "":
		answer = models.PromptAnswer{Value: body.Choice}
	default:
		writeError(w, http.StatusBadRequest, "choice, guests, or start_date/end_date is required")
		return
	}

	conv, err := s.orchestrator.HandlePromptAnswer(r.Context(), id, answer)
	if err != nil {
		s.writeConversationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toConversationResponse(conv))
}

func (s *HTTPServer) writeConversationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "conversation not found")
	case errors.Is(err, chat.ErrConversationBusy):
		writeError(w, http.StatusConflict, "conversation busy")
	case errors.Is(err, chat.ErrNoPendingPrompt):
		writeError(w, http.StatusConflict, "no pending prompt")
	default:
		s.logger.Error().Err(err).Msg("conversation handler error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *HTTPServer) handleHotels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hotels": s.store.AvailableHotels()})
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": s.store.Bookings()})
}

func (s *HTTPServer) handleBooking(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/bookings/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)

	if rest == "export" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.exportBookings(w, r)
		return
	}

	id, action, _ := strings.Cut(rest, "/")
	if id == "" || action != "cancel" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	booking, err := s.store.CancelBooking(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}

	metrics.IncBooking(string(booking.Status))
	if s.events != nil {
		if err := s.events.PublishJSON(events.EventBookingCancelled, events.BookingEventPayload{
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
		}); err != nil {
			s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("publish event error")
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking": booking})
}

func (s *HTTPServer) exportBookings(w http.ResponseWriter, r *http.Request) {
	f, err := export.BookingsReport(s.store.Bookings())
	if err != nil {
		s.logger.Error().Err(err).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("export write failed")
	}
}
