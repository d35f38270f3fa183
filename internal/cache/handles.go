package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oserockets-max/soken-quiz/internal/gen"
	"github.com/oserockets-max/soken-quiz/internal/telemetry"
)

// Handles caches the AI-side file handle per store document so a document
// picked twice is not re-uploaded to the file service. TTL must stay under
// the service's 48h file lifetime or we would serve dead handles.
type Handles struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewHandles(rdb *redis.Client, ttl time.Duration) *Handles {
	if ttl <= 0 || ttl >= 48*time.Hour {
		ttl = 47 * time.Hour
	}
	return &Handles{rdb: rdb, ttl: ttl}
}

func handleKey(docID string) string { return "aifile:" + docID }

// Get returns the cached handle for a document, if any. Cache errors are
// treated as misses.
func (h *Handles) Get(ctx context.Context, docID string) (gen.Handle, bool) {
	raw, err := h.rdb.Get(ctx, handleKey(docID)).Result()
	if err != nil {
		return gen.Handle{}, false
	}
	var handle gen.Handle
	if err := json.Unmarshal([]byte(raw), &handle); err != nil || handle.URI == "" {
		return gen.Handle{}, false
	}
	log := telemetry.L().With().Str("doc_id", docID).Logger()
	log.Debug().Msg("handle_cache_hit")
	return handle, true
}

// Put stores the handle; failures only cost a future re-registration.
func (h *Handles) Put(ctx context.Context, docID string, handle gen.Handle) {
	raw, err := json.Marshal(handle)
	if err != nil {
		return
	}
	if err := h.rdb.Set(ctx, handleKey(docID), raw, h.ttl).Err(); err != nil {
		log := telemetry.L().With().Str("doc_id", docID).Logger()
		log.Warn().Err(err).Msg("handle_cache_set_err")
	}
}
