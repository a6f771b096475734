package bot

import (
	"context"
	"strings"

	"basera/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	data := callback.Data

	if err := b.tgService.AnswerCallback(callback.ID, ""); err != nil {
		b.logger.Error().Err(err).Str("callback_id", callback.ID).Msg("answer callback failed")
	}

	var answer models.PromptAnswer
	switch {
	case strings.HasPrefix(data, callbackChoicePrefix):
		answer = models.PromptAnswer{Value: strings.TrimPrefix(data, callbackChoicePrefix)}
	case strings.HasPrefix(data, callbackGuestsPrefix):
		answer = models.PromptAnswer{Value: strings.TrimPrefix(data, callbackGuestsPrefix)}
	default:
		b.logger.Warn().Str("data", data).Msg("unknown callback data")
		return
	}

	id, ok := b.conversations.Load(chatID)
	if !ok {
		b.sendText(chatID, "This conversation has ended. Use /start to begin a new one.")
		return
	}

	b.submitAnswer(ctx, chatID, id.(string), answer)
}
