package cache

import (
	"fmt"
	"time"

	"github.com/porchlight-app/porchlight-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const SummaryListTTL = 2 * time.Minute

// SummaryCache keeps each user's conversation-summary list hot so the list
// endpoint and the join-time backlog push avoid the store on repeat reads.
// All methods are nil-receiver safe, so the app runs unchanged without Redis.
type SummaryCache struct {
	redis *RedisCache
}

func NewSummaryCache(redis *RedisCache) *SummaryCache {
	return &SummaryCache{redis: redis}
}

func summaryKey(userID uint) string {
	return fmt.Sprintf("summaries:%d", userID)
}

func (sc *SummaryCache) Get(userID uint) ([]models.ConversationSummary, bool) {
	if sc == nil || sc.redis == nil {
		return nil, false
	}
	data, err := sc.redis.Get(summaryKey(userID))
	if err != nil || data == nil {
		return nil, false
	}

	var summaries []models.ConversationSummary
	if err := msgpack.Unmarshal(data, &summaries); err != nil {
		return nil, false
	}
	return summaries, true
}

func (sc *SummaryCache) Set(userID uint, summaries []models.ConversationSummary) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(summaries)
	if err != nil {
		return err
	}
	return sc.redis.Set(summaryKey(userID), data, SummaryListTTL)
}

func (sc *SummaryCache) Invalidate(userID uint) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	return sc.redis.Delete(summaryKey(userID))
}
