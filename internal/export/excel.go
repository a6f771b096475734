package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"basera/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var reportHeaders = []string{
	"Booking ID", "Guest", "Email", "Hotel", "Room Type",
	"Check-in", "Check-out", "Guests", "Status", "Created",
}

// BookingsReport renders all bookings onto a single styled sheet. The caller
// owns the returned file and must Close it.
func BookingsReport(bookings []models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	cancelledStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
	})
	confirmedStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
	})

	for i, b := range bookings {
		row := i + 2
		values := []any{
			b.ID, b.Name, b.Email, b.HotelName, string(b.RoomType),
			b.CheckIn, b.CheckOut, b.Guests, string(b.Status),
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}

		statusCell, _ := excelize.CoordinatesToCellName(9, row)
		if b.Status == models.StatusCancelled {
			_ = f.SetCellStyle(sheetName, statusCell, statusCell, cancelledStyle)
		} else {
			_ = f.SetCellStyle(sheetName, statusCell, statusCell, confirmedStyle)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 26)
	_ = f.SetColWidth(sheetName, "B", "D", 22)
	_ = f.SetColWidth(sheetName, "E", "G", 14)
	_ = f.SetColWidth(sheetName, "H", "J", 12)

	_ = f.DeleteSheet("Sheet1")
	return f, nil
}

// SaveBookingsReport writes the report under dir and returns the file path.
func SaveBookingsReport(dir string, bookings []models.Booking, logger *zerolog.Logger) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f, err := BookingsReport(bookings)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	if logger != nil {
		logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("Excel file created")
	}
	return filePath, nil
}
