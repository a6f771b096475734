package bot

import (
	"fmt"
	"strings"

	"basera/internal/export"
	"basera/internal/models"
)

const (
	statusIconConfirmed = "✅"
	statusIconCancelled = "❌"
)

func (b *Bot) handleBookingsCommand(chatID int64) {
	bookings := b.store.Bookings()
	if len(bookings) == 0 {
		b.sendText(chatID, "No bookings yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Bookings (%d)*\n\n", len(bookings)))
	for _, booking := range bookings {
		sb.WriteString(fmt.Sprintf("%s `%s` — %s\n", statusIcon(booking.Status), booking.ID, booking.HotelName))
		sb.WriteString(fmt.Sprintf("   %s, %s → %s, %d guest(s)\n",
			booking.Name, booking.CheckIn, booking.CheckOut, booking.Guests))
	}

	if _, err := b.tgService.SendMarkdown(chatID, sb.String()); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send bookings list failed")
	}
}

func (b *Bot) handleExportCommand(chatID int64) {
	bookings := b.store.Bookings()
	if len(bookings) == 0 {
		b.sendText(chatID, "No bookings to export.")
		return
	}

	path, err := export.SaveBookingsReport(b.config.Exports.Path, bookings, b.logger)
	if err != nil {
		b.logger.Error().Err(err).Msg("export failed")
		b.sendText(chatID, "Could not build the export file.")
		return
	}

	if _, err := b.tgService.SendDocument(chatID, path); err != nil {
		b.logger.Error().Err(err).Str("path", path).Msg("send export failed")
		b.sendText(chatID, "Could not send the export file.")
	}
}

func statusIcon(status models.BookingStatus) string {
	if status == models.StatusCancelled {
		return statusIconCancelled
	}
	return statusIconConfirmed
}
