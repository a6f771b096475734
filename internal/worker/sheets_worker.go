package worker

import (
	"context"
	"errors"
	"time"

	"basera/internal/domain"
	"basera/internal/models"

	"github.com/rs/zerolog"
)

const (
	TaskUpsert       = "upsert"
	TaskUpdateStatus = "update_status"
)

// SheetTask describes a unit of spreadsheet work.
type SheetTask struct {
	Type      string
	BookingID string
	Booking   *models.Booking
	Status    models.BookingStatus
	CreatedAt time.Time
}

// SheetsWorker drains a task queue into the spreadsheet with retries.
// Tasks that exhaust their retries are logged and dropped; the spreadsheet
// is a mirror, not the store of record.
type SheetsWorker struct {
	sheets      domain.SheetsWriter
	retryPolicy RetryPolicy
	queue       chan SheetTask
	logger      *zerolog.Logger
}

func NewSheetsWorker(sheets domain.SheetsWriter, retry RetryPolicy, logger *zerolog.Logger) *SheetsWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "sheets_worker").Logger()

	return &SheetsWorker{
		sheets:      sheets,
		retryPolicy: retry,
		queue:       make(chan SheetTask, models.WorkerQueueSize),
		logger:      &l,
	}
}

// EnqueueUpsert schedules a booking row write.
func (w *SheetsWorker) EnqueueUpsert(ctx context.Context, booking *models.Booking) error {
	if booking == nil || booking.ID == "" {
		return errors.New("booking id is required")
	}
	b := *booking
	return w.enqueue(ctx, SheetTask{
		Type:      TaskUpsert,
		BookingID: b.ID,
		Booking:   &b,
		CreatedAt: time.Now(),
	})
}

// EnqueueStatus schedules a status-column update.
func (w *SheetsWorker) EnqueueStatus(ctx context.Context, bookingID string, status models.BookingStatus) error {
	if bookingID == "" {
		return errors.New("booking id is required")
	}
	return w.enqueue(ctx, SheetTask{
		Type:      TaskUpdateStatus,
		BookingID: bookingID,
		Status:    status,
		CreatedAt: time.Now(),
	})
}

func (w *SheetsWorker) enqueue(ctx context.Context, task SheetTask) error {
	select {
	case w.queue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		w.logger.Warn().Str("type", task.Type).Str("booking_id", task.BookingID).Msg("queue full, task dropped")
		return errors.New("sheets queue full")
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sheets worker started")
	defer w.logger.Info().Msg("sheets worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.processTask(ctx, task)
		}
	}
}

func (w *SheetsWorker) processTask(ctx context.Context, task SheetTask) {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		lastErr = w.handleSheetTask(ctx, task)
		if lastErr == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}

		delay := w.retryPolicy.NextDelay(attempt)
		w.logger.Warn().Err(lastErr).
			Str("type", task.Type).
			Str("booking_id", task.BookingID).
			Int("attempt", attempt).
			Dur("next_delay", delay).
			Msg("sheet task failed, retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	w.logger.Error().Err(lastErr).
		Str("type", task.Type).
		Str("booking_id", task.BookingID).
		Msg("sheet task dropped after retries")
}

func (w *SheetsWorker) handleSheetTask(ctx context.Context, task SheetTask) error {
	switch task.Type {
	case TaskUpsert:
		if task.Booking == nil {
			return errors.New("booking payload missing")
		}
		return w.sheets.UpsertBooking(ctx, task.Booking)
	case TaskUpdateStatus:
		if task.BookingID == "" || task.Status == "" {
			return errors.New("booking id or status missing")
		}
		return w.sheets.UpdateBookingStatus(ctx, task.BookingID, task.Status)
	default:
		return errors.New("unknown task type: " + task.Type)
	}
}
