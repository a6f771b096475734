package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"basera/internal/models"
)

// MemoryConversationRepository keeps conversations in process memory.
// Used standalone in tests and as the failover fallback in production.
//
// Conversations are cloned on the way in and out so callers never share
// mutable state with the repository, matching the isolation the Redis
// path gets from its JSON round-trip.
type MemoryConversationRepository struct {
	conversations sync.Map
	rateLimits    sync.Map
	ttl           time.Duration
	lastSweep     atomic.Int64
}

func NewMemoryConversationRepository(ttl time.Duration) *MemoryConversationRepository {
	return &MemoryConversationRepository{ttl: ttl}
}

func (r *MemoryConversationRepository) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	val, ok := r.conversations.Load(id)
	if !ok {
		return nil, nil
	}
	conv := val.(*models.Conversation)
	if r.expired(conv) {
		r.conversations.Delete(id)
		return nil, nil
	}
	return conv.Clone(), nil
}

func (r *MemoryConversationRepository) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	conv.UpdatedAt = time.Now()
	r.conversations.Store(conv.ID, conv.Clone())
	r.sweep()
	return nil
}

func (r *MemoryConversationRepository) DeleteConversation(ctx context.Context, id string) error {
	r.conversations.Delete(id)
	return nil
}

func (r *MemoryConversationRepository) expired(conv *models.Conversation) bool {
	return r.ttl > 0 && time.Since(conv.UpdatedAt) > r.ttl
}

// sweep drops expired conversations, at most once per TTL interval.
func (r *MemoryConversationRepository) sweep() {
	if r.ttl <= 0 {
		return
	}
	now := time.Now().UnixNano()
	last := r.lastSweep.Load()
	if now-last < r.ttl.Nanoseconds() {
		return
	}
	if !r.lastSweep.CompareAndSwap(last, now) {
		return
	}
	r.conversations.Range(func(key, val any) bool {
		if r.expired(val.(*models.Conversation)) {
			r.conversations.Delete(key)
		}
		return true
	})
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryConversationRepository) CheckRateLimit(ctx context.Context, id string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(id)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(id, entry)
	return entry.count <= limit, nil
}
