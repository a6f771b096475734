package bot

import (
	"fmt"
	"strings"

	"basera/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackChoicePrefix = "choice:"
	callbackGuestsPrefix = "guests:"

	maxGuestsKeyboard = 6
)

// render sends the visible outcome of a conversation cycle: either the
// pending prompt widget or the model's final turn.
func (b *Bot) render(chatID int64, conv *models.Conversation) {
	if conv.State == models.StateAwaitingUserChoice && conv.Pending != nil {
		b.renderPrompt(chatID, conv.Pending)
		return
	}

	if len(conv.History) == 0 {
		return
	}
	last := conv.History[len(conv.History)-1]

	if last.BookingDetails != nil {
		b.renderReceipt(chatID, last, last.BookingDetails)
		return
	}

	for _, part := range last.Parts {
		if part.Text != "" {
			b.sendText(chatID, part.Text)
		}
	}
}

func (b *Bot) renderPrompt(chatID int64, pending *models.PendingPrompt) {
	switch pending.Kind {
	case models.PromptChoice:
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, option := range pending.Options {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(option, callbackChoicePrefix+option),
			))
		}
		keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
		if _, err := b.tgService.SendWithInlineKeyboard(chatID, pending.Label, keyboard); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send choice prompt failed")
		}

	case models.PromptGuests:
		var buttons []tgbotapi.InlineKeyboardButton
		for i := 1; i <= maxGuestsKeyboard; i++ {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d", i), fmt.Sprintf("%s%d", callbackGuestsPrefix, i),
			))
		}
		keyboard := tgbotapi.NewInlineKeyboardMarkup(buttons[:3], buttons[3:])
		if _, err := b.tgService.SendWithInlineKeyboard(chatID, pending.Label, keyboard); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send guests prompt failed")
		}

	case models.PromptDates:
		text := pending.Label + "\n\nSend the dates as: YYYY-MM-DD YYYY-MM-DD"
		b.sendText(chatID, text)
	}
}

func (b *Bot) renderReceipt(chatID int64, turn models.ChatMessage, booking *models.Booking) {
	var sb strings.Builder
	for _, part := range turn.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString("*Booking Confirmation*\n")
	sb.WriteString(fmt.Sprintf("Booking ID: `%s`\n", booking.ID))
	sb.WriteString(fmt.Sprintf("Hotel: %s\n", booking.HotelName))
	if booking.RoomType != "" {
		sb.WriteString(fmt.Sprintf("Room: %s\n", booking.RoomType))
	}
	sb.WriteString(fmt.Sprintf("Check-in: %s\n", booking.CheckIn))
	sb.WriteString(fmt.Sprintf("Check-out: %s\n", booking.CheckOut))
	sb.WriteString(fmt.Sprintf("Guests: %d\n", booking.Guests))
	sb.WriteString(fmt.Sprintf("Name: %s\n", booking.Name))
	if booking.Email != "" {
		sb.WriteString(fmt.Sprintf("Email: %s\n", booking.Email))
	}

	if _, err := b.tgService.SendMarkdown(chatID, sb.String()); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send receipt failed")
	}
}
