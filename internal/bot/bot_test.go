package bot

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"basera/internal/chat"
	"basera/internal/config"
	"basera/internal/domain"
	"basera/internal/events"
	"basera/internal/models"
	"basera/internal/repository"
	"basera/internal/store"
	"basera/internal/tools"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTelegramService struct {
	domain.TelegramService
	mu           sync.Mutex
	updatesChan  chan tgbotapi.Update
	sentMessages []tgbotapi.Chattable
	sentDocs     []string
	callbacks    []string
}

func (m *mockTelegramService) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updatesChan
}

func (m *mockTelegramService) record(c tgbotapi.Chattable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentMessages = append(m.sentMessages, c)
}

func (m *mockTelegramService) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.record(c)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	m.record(tgbotapi.NewMessage(chatID, text))
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) SendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = models.ParseModeMarkdown
	m.record(msg)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	m.record(msg)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) SendDocument(chatID int64, path string) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentDocs = append(m.sentDocs, path)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) AnswerCallback(callbackID string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callbackID)
	return nil
}

func (m *mockTelegramService) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "test_bot"}
}

func (m *mockTelegramService) StopReceivingUpdates() {}

func (m *mockTelegramService) messages() []tgbotapi.Chattable {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), m.sentMessages...)
}

func (m *mockTelegramService) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	msgs := m.messages()
	require.NotEmpty(t, msgs)
	msg, ok := msgs[len(msgs)-1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	return msg
}

// scriptedGateway replays canned replies in order.
type scriptedGateway struct {
	replies []*models.ModelReply
	calls   int
}

func (g *scriptedGateway) Generate(ctx context.Context, history []models.ChatMessage) (*models.ModelReply, error) {
	i := g.calls
	g.calls++
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return &models.ModelReply{Text: "ok"}, nil
}

func newTestBot(t *testing.T, gw *scriptedGateway, cfg *config.Config) (*Bot, *mockTelegramService, *store.Store) {
	t.Helper()
	if gw == nil {
		gw = &scriptedGateway{}
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	if cfg.Chat.RateLimitMessages == 0 {
		cfg.Chat.RateLimitMessages = 100
		cfg.Chat.RateLimitWindow = 60
	}
	if cfg.Exports.Path == "" {
		cfg.Exports.Path = t.TempDir()
	}

	tg := &mockTelegramService{updatesChan: make(chan tgbotapi.Update, 4)}
	s := store.New(store.DefaultHotels(), nil)
	dispatcher := tools.NewDispatcher(s, events.NewEventBus(), nil)
	repo := repository.NewMemoryConversationRepository(time.Hour)
	orch := chat.NewOrchestrator(repo, gw, dispatcher, nil)
	logger := zerolog.New(io.Discard)

	b, err := NewBot(tg, cfg, orch, s, repo, &logger)
	require.NoError(t, err)
	return b, tg, s
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: chatID},
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
		},
	}
}

func commandUpdate(chatID int64, command string) tgbotapi.Update {
	u := textUpdate(chatID, command)
	u.Message.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: len(command)},
	}
	return u
}

func TestStartCommand(t *testing.T) {
	b, tg, _ := newTestBot(t, nil, nil)

	b.processUpdate(context.Background(), commandUpdate(123, "/start"))

	msg := tg.lastMessage(t)
	assert.Equal(t, models.GreetingText, msg.Text)

	_, ok := b.conversations.Load(int64(123))
	assert.True(t, ok)
}

func TestFreeTextReply(t *testing.T) {
	gw := &scriptedGateway{replies: []*models.ModelReply{{Text: "Which city would you like?"}}}
	b, tg, _ := newTestBot(t, gw, nil)

	b.processUpdate(context.Background(), textUpdate(123, "I want to book a hotel"))

	msg := tg.lastMessage(t)
	assert.Equal(t, "Which city would you like?", msg.Text)
}

func TestChoicePromptAndCallback(t *testing.T) {
	gw := &scriptedGateway{replies: []*models.ModelReply{
		{FunctionCalls: []models.FunctionCall{{
			Name: models.ToolPromptChoice,
			Args: map[string]any{
				"label":   "Which city?",
				"options": []any{"Pokhara", "Kathmandu"},
			},
		}}},
		{Text: "Great, searching Pokhara."},
	}}
	b, tg, _ := newTestBot(t, gw, nil)
	ctx := context.Background()

	b.processUpdate(ctx, textUpdate(123, "book a hotel"))

	msg := tg.lastMessage(t)
	assert.Equal(t, "Which city?", msg.Text)
	keyboard, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.InlineKeyboard, 2)
	assert.Equal(t, "Pokhara", keyboard.InlineKeyboard[0][0].Text)

	b.processUpdate(ctx, tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			From:    &tgbotapi.User{ID: 123},
			Data:    "choice:Pokhara",
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 123}},
		},
	})

	msg = tg.lastMessage(t)
	assert.Equal(t, "Great, searching Pokhara.", msg.Text)
	assert.Contains(t, tg.callbacks, "cb-1")
}

func TestDatesPromptAcceptsTextRange(t *testing.T) {
	gw := &scriptedGateway{replies: []*models.ModelReply{
		{FunctionCalls: []models.FunctionCall{{
			Name: models.ToolPromptDates,
			Args: map[string]any{"label": "Select your dates"},
		}}},
		{Text: "How many guests?"},
	}}
	b, tg, _ := newTestBot(t, gw, nil)
	ctx := context.Background()

	b.processUpdate(ctx, textUpdate(123, "book a room"))
	msg := tg.lastMessage(t)
	assert.Contains(t, msg.Text, "Select your dates")
	assert.Contains(t, msg.Text, "YYYY-MM-DD")

	b.processUpdate(ctx, textUpdate(123, "2024-01-01 2024-01-05"))
	msg = tg.lastMessage(t)
	assert.Equal(t, "How many guests?", msg.Text)
}

func TestReceiptRendering(t *testing.T) {
	gw := &scriptedGateway{replies: []*models.ModelReply{
		{FunctionCalls: []models.FunctionCall{{
			Name: models.ToolDisplayConfirmation,
			Args: map[string]any{
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
			},
		}}},
	}}
	b, tg, _ := newTestBot(t, gw, nil)

	b.processUpdate(context.Background(), textUpdate(123, "yes, book it"))

	msg := tg.lastMessage(t)
	assert.Equal(t, models.ParseModeMarkdown, msg.ParseMode)
	assert.Contains(t, msg.Text, models.ConfirmationText)
	assert.Contains(t, msg.Text, "H-abc")
	assert.Contains(t, msg.Text, "Lakeside Paradise Inn")
}

func TestManagerCommands(t *testing.T) {
	cfg := &config.Config{Managers: []int64{777}}
	b, tg, s := newTestBot(t, nil, cfg)
	ctx := context.Background()

	_, err := s.BookHotel(models.BookingRequest{
		HotelID: 1, FullName: "Asha Gurung", Email: "asha@example.com",
		CheckIn: "2026-09-10", CheckOut: "2026-09-12", Guests: 2, RoomType: "Deluxe",
	})
	require.NoError(t, err)

	t.Run("DeniedForUser", func(t *testing.T) {
		b.processUpdate(ctx, commandUpdate(123, "/bookings"))
		msg := tg.lastMessage(t)
		assert.Contains(t, msg.Text, "managers only")
	})

	t.Run("BookingsList", func(t *testing.T) {
		b.processUpdate(ctx, commandUpdate(777, "/bookings"))
		msg := tg.lastMessage(t)
		assert.Contains(t, msg.Text, "Lakeside Paradise Inn")
		assert.Contains(t, msg.Text, "Asha Gurung")
	})

	t.Run("Export", func(t *testing.T) {
		b.processUpdate(ctx, commandUpdate(777, "/export"))
		tg.mu.Lock()
		defer tg.mu.Unlock()
		require.Len(t, tg.sentDocs, 1)
		assert.Contains(t, tg.sentDocs[0], ".xlsx")
	})
}

func TestRateLimit(t *testing.T) {
	cfg := &config.Config{}
	cfg.Chat.RateLimitMessages = 1
	cfg.Chat.RateLimitWindow = 60
	b, tg, _ := newTestBot(t, nil, cfg)
	ctx := context.Background()

	b.processUpdate(ctx, textUpdate(123, "hello"))
	b.processUpdate(ctx, textUpdate(123, "hello again"))

	msg := tg.lastMessage(t)
	assert.Contains(t, msg.Text, "too quickly")
}

func TestBotStartLoop(t *testing.T) {
	b, tg, _ := newTestBot(t, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Start(ctx)
		close(done)
	}()

	tg.updatesChan <- commandUpdate(123, "/start")

	require.Eventually(t, func() bool {
		return len(tg.messages()) > 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestParseDateRange(t *testing.T) {
	start, end, ok := parseDateRange("2024-01-01 2024-01-05")
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", start)
	assert.Equal(t, "2024-01-05", end)

	_, _, ok = parseDateRange("next week")
	assert.False(t, ok)

	_, _, ok = parseDateRange("2024-01-01")
	assert.False(t, ok)
}
