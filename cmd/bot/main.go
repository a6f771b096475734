package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"basera/internal/bot"
	"basera/internal/chat"
	"basera/internal/config"
	"basera/internal/domain"
	"basera/internal/events"
	"basera/internal/gateway"
	"basera/internal/google"
	"basera/internal/logging"
	"basera/internal/metrics"
	"basera/internal/models"
	"basera/internal/repository"
	"basera/internal/service"
	"basera/internal/store"
	"basera/internal/tools"
	"basera/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, hotels, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("export directory create failed")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hotelStore := store.New(hotels, &logger)
	convRepo, redisClose := initConversationRepo(ctx, cfg, &logger)
	if redisClose != nil {
		defer redisClose()
	}

	modelGateway, err := gateway.NewGeminiGateway(ctx, cfg.Gemini, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("gemini gateway init failed")
		return err
	}

	eventBus := events.NewEventBus()
	dispatcher := tools.NewDispatcher(hotelStore, eventBus, &logger)
	orchestrator := chat.NewOrchestrator(convRepo, modelGateway, dispatcher, &logger)

	sheetsService := initGoogleSheets(ctx, cfg, &logger)
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		sheetsWorker := worker.NewSheetsWorker(sheetsService, retryPolicy, &logger)
		go sheetsWorker.Start(ctx)
		subscribeBookingEvents(ctx, eventBus, hotelStore, sheetsWorker, &logger)
	}

	startMetrics(ctx, cfg, &logger)

	return startBot(ctx, cfg, orchestrator, hotelStore, convRepo, &logger)
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	orchestrator domain.Orchestrator,
	hotelStore domain.HotelStore,
	convRepo domain.ConversationRepository,
	logger *zerolog.Logger,
) error {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return fmt.Errorf("telegram bot token is not set")
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("BotAPI create failed")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	tgService := service.NewTelegramService(bot.NewBotWrapper(botAPI))

	telegramBot, err := bot.NewBot(tgService, cfg, orchestrator, hotelStore, convRepo, logger)
	if err != nil {
		logger.Error().Err(err).Msg("bot create failed")
		return err
	}

	logger.Info().Msg("Bot started...")
	telegramBot.Start(ctx)
	telegramBot.Stop()

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, []models.Hotel, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	hotels, err := loadHotels(cfg, &logger)
	if err != nil {
		return nil, nil, zerolog.Logger{}, closer, err
	}

	return cfg, hotels, logger, closer, nil
}

func loadHotels(cfg *config.Config, logger *zerolog.Logger) ([]models.Hotel, error) {
	hotelsPath := os.Getenv("HOTELS_PATH")
	if hotelsPath == "" {
		hotelsPath = cfg.Hotels.Path
	}
	if hotelsPath == "" {
		hotelsPath = "configs/hotels.yaml"
	}

	data, err := os.ReadFile(hotelsPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", hotelsPath).Msg("hotels file missing, using built-in seed")
			return store.DefaultHotels(), nil
		}
		return nil, err
	}

	var hotelsConfig struct {
		Hotels []models.Hotel `yaml:"hotels"`
	}
	if err := yaml.Unmarshal(data, &hotelsConfig); err != nil {
		logger.Error().Err(err).Str("path", hotelsPath).Msg("hotels file parse failed")
		return nil, err
	}

	if err := config.ValidateHotels(hotelsConfig.Hotels); err != nil {
		logger.Error().Err(err).Msg("Hotels validation failed")
		return nil, err
	}

	return hotelsConfig.Hotels, nil
}

func initConversationRepo(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.ConversationRepository, func()) {
	ttl := time.Duration(cfg.Chat.ConversationTTL) * time.Second
	fallback := repository.NewMemoryConversationRepository(ttl)

	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, using in-memory conversation state")
		return fallback, nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable")
	}

	primary := repository.NewRedisConversationRepository(redisClient, ttl)
	return repository.NewFailoverConversationRepository(primary, fallback, logger), func() { _ = redisClient.Close() }
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets connection test failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func subscribeBookingEvents(
	ctx context.Context,
	bus *events.EventBus,
	hotelStore *store.Store,
	sheetsWorker *worker.SheetsWorker,
	logger *zerolog.Logger,
) {
	if bus == nil || sheetsWorker == nil {
		return
	}

	decode := func(ev *events.Event) (events.BookingEventPayload, error) {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return payload, err
		}
		return payload, nil
	}

	bus.Subscribe(events.EventBookingCreated, func(ev *events.Event) error {
		payload, err := decode(ev)
		if err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}

		booking, err := hotelStore.GetBooking(payload.BookingID)
		if err != nil {
			logger.Error().Err(err).Str("booking_id", payload.BookingID).Msg("event bus: load booking")
			return nil
		}

		if err := sheetsWorker.EnqueueUpsert(ctx, booking); err != nil {
			logger.Error().Err(err).Str("booking_id", booking.ID).Msg("event bus: enqueue upsert")
		}
		return nil
	})

	bus.Subscribe(events.EventBookingCancelled, func(ev *events.Event) error {
		payload, err := decode(ev)
		if err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}

		status := models.BookingStatus(payload.Status)
		if status == "" {
			status = models.StatusCancelled
		}

		if err := sheetsWorker.EnqueueStatus(ctx, payload.BookingID, status); err != nil {
			logger.Error().Err(err).Str("booking_id", payload.BookingID).Msg("event bus: enqueue status")
		}
		return nil
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
