package domain

import (
	"context"
	"time"

	"basera/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HotelStore is the domain store: hotel seed queries plus booking mutations.
type HotelStore interface {
	SearchHotels(location string, roomType string) []models.HotelSummary
	BookHotel(req models.BookingRequest) (*models.Booking, error)
	GetBooking(id string) (*models.Booking, error)
	CancelBooking(id string) (*models.Booking, error)
	Hotels() []models.Hotel
	AvailableHotels() []models.Hotel
	Bookings() []models.Booking
}

// ConversationRepository keeps per-conversation chat state. Implementations:
// memory, redis, failover.
type ConversationRepository interface {
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	SaveConversation(ctx context.Context, conv *models.Conversation) error
	DeleteConversation(ctx context.Context, id string) error
	CheckRateLimit(ctx context.Context, id string, limit int, window time.Duration) (bool, error)
}

// ModelGateway sends the full history plus the fixed system instruction and
// tool schema to the language model. Stateless across calls.
type ModelGateway interface {
	Generate(ctx context.Context, history []models.ChatMessage) (*models.ModelReply, error)
}

// ToolDispatcher executes one backend tool call. Domain failures come back
// inside the FunctionResponse, never as an error.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, call models.FunctionCall) models.FunctionResponse
}

// Orchestrator drives one conversation cycle at a time.
type Orchestrator interface {
	StartConversation(ctx context.Context) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	HandleUserMessage(ctx context.Context, id string, text string) (*models.Conversation, error)
	HandlePromptAnswer(ctx context.Context, id string, answer models.PromptAnswer) (*models.Conversation, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SheetsWriter mirrors bookings into a spreadsheet.
type SheetsWriter interface {
	AppendBooking(ctx context.Context, booking *models.Booking) error
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID string, status models.BookingStatus) error
	ReplaceBookingsSheet(ctx context.Context, bookings []models.Booking) error
}

// SyncWorker queues spreadsheet sync work.
type SyncWorker interface {
	EnqueueUpsert(ctx context.Context, booking *models.Booking) error
	EnqueueStatus(ctx context.Context, bookingID string, status models.BookingStatus) error
}

// TelegramSender is the thin wrapper over the bot API client.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// TelegramService is what the bot package programs against.
type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	SendDocument(chatID int64, path string) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}
