package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"basera/internal/chat"
	"basera/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const busyText = "One moment, I'm still working on your previous message."

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	chatID := message.Chat.ID

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	conv, err := b.conversationFor(ctx, chatID)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("conversation lookup failed")
		b.sendText(chatID, models.ApologyText)
		return
	}

	// A pending date prompt accepts a plain "YYYY-MM-DD YYYY-MM-DD" message.
	if conv.Pending != nil && conv.Pending.Kind == models.PromptDates {
		if start, end, ok := parseDateRange(text); ok {
			b.submitAnswer(ctx, chatID, conv.ID, models.PromptAnswer{StartDate: start, EndDate: end})
			return
		}
	}

	updated, err := b.orchestrator.HandleUserMessage(ctx, conv.ID, text)
	if err != nil {
		b.reportOrchestratorError(chatID, err)
		return
	}
	b.render(chatID, updated)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		b.resetConversation(ctx, chatID)
	case "bookings":
		if !b.isManager(message.From.ID) {
			b.sendText(chatID, "This command is for managers only.")
			return
		}
		b.handleBookingsCommand(chatID)
	case "export":
		if !b.isManager(message.From.ID) {
			b.sendText(chatID, "This command is for managers only.")
			return
		}
		b.handleExportCommand(chatID)
	default:
		b.sendText(chatID, "Unknown command. Just tell me what you need, or use /start to begin again.")
	}
}

// resetConversation drops the chat's conversation and starts a fresh one.
func (b *Bot) resetConversation(ctx context.Context, chatID int64) {
	if prev, ok := b.conversations.Load(chatID); ok {
		if err := b.repo.DeleteConversation(ctx, prev.(string)); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("delete conversation failed")
		}
		b.conversations.Delete(chatID)
	}

	conv, err := b.orchestrator.StartConversation(ctx)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("start conversation failed")
		b.sendText(chatID, models.ApologyText)
		return
	}

	b.conversations.Store(chatID, conv.ID)
	b.sendText(chatID, models.GreetingText)
}

// conversationFor returns the chat's conversation, creating one on first
// contact.
func (b *Bot) conversationFor(ctx context.Context, chatID int64) (*models.Conversation, error) {
	if id, ok := b.conversations.Load(chatID); ok {
		conv, err := b.orchestrator.GetConversation(ctx, id.(string))
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, chat.ErrConversationNotFound) {
			return nil, err
		}
		// Expired from the repository; fall through and start over.
		b.conversations.Delete(chatID)
	}

	conv, err := b.orchestrator.StartConversation(ctx)
	if err != nil {
		return nil, err
	}
	b.conversations.Store(chatID, conv.ID)
	return conv, nil
}

func (b *Bot) submitAnswer(ctx context.Context, chatID int64, convID string, answer models.PromptAnswer) {
	updated, err := b.orchestrator.HandlePromptAnswer(ctx, convID, answer)
	if err != nil {
		b.reportOrchestratorError(chatID, err)
		return
	}
	b.render(chatID, updated)
}

func (b *Bot) reportOrchestratorError(chatID int64, err error) {
	switch {
	case errors.Is(err, chat.ErrConversationBusy):
		b.sendText(chatID, busyText)
	case errors.Is(err, chat.ErrNoPendingPrompt):
		b.sendText(chatID, "That choice is no longer waiting for an answer. Just tell me what you need.")
	default:
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("orchestrator error")
		b.sendText(chatID, models.ApologyText)
	}
}

// parseDateRange parses "YYYY-MM-DD YYYY-MM-DD".
func parseDateRange(text string) (string, string, bool) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return "", "", false
	}
	for _, f := range fields {
		if _, err := time.Parse(models.DateLayout, f); err != nil {
			return "", "", false
		}
	}
	return fields[0], fields[1], true
}
