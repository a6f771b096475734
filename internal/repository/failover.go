package repository

import (
	"context"
	"sync/atomic"
	"time"

	"basera/internal/domain"
	"basera/internal/models"

	"github.com/rs/zerolog"
)

// FailoverConversationRepository tries the primary (Redis) and falls back to
// memory when the primary errors, probing for recovery once a minute.
type FailoverConversationRepository struct {
	primary   domain.ConversationRepository
	fallback  domain.ConversationRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of the last failed recovery probe
}

func NewFailoverConversationRepository(primary, fallback domain.ConversationRepository, logger *zerolog.Logger) *FailoverConversationRepository {
	return &FailoverConversationRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverConversationRepository) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	if !r.isDown.Load() {
		conv, err := r.primary.GetConversation(ctx, id)
		if err == nil {
			return conv, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute {
		conv, err := r.primary.GetConversation(ctx, id)
		if err == nil {
			r.isDown.Store(false)
			return conv, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetConversation(ctx, id)
}

func (r *FailoverConversationRepository) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	if !r.isDown.Load() {
		err := r.primary.SaveConversation(ctx, conv)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SaveConversation(ctx, conv)
}

func (r *FailoverConversationRepository) DeleteConversation(ctx context.Context, id string) error {
	if !r.isDown.Load() {
		err := r.primary.DeleteConversation(ctx, id)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.DeleteConversation(ctx, id)
}

func (r *FailoverConversationRepository) CheckRateLimit(ctx context.Context, id string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, id, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, id, limit, window)
}

func (r *FailoverConversationRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary conversation repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}
