package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/platform/envutil"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

// AnswerCache memoizes answers per (product, question). Catalog and index
// are immutable for the process lifetime, so a cached answer only goes stale
// when the TTL expires after a rebuild/redeploy.
type AnswerCache interface {
	Get(ctx context.Context, productID, question string) (*domain.AnswerResult, bool)
	Set(ctx context.Context, productID, question string, result *domain.AnswerResult)
}

type answerCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewAnswerCache connects using REDIS_ADDR. Callers gate construction on the
// variable being set; cache misses and redis failures both degrade to a
// normal uncached request.
func NewAnswerCache(log *logger.Logger) (AnswerCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR not set")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := time.Duration(envutil.Int("ANSWER_CACHE_TTL_SECONDS", 3600)) * time.Second
	slog := log.With("service", "AnswerCache")
	slog.Info("Answer cache connected", "addr", addr, "ttl", ttl.String())
	return &answerCache{log: slog, rdb: rdb, ttl: ttl}, nil
}

func cacheKey(productID, question string) string {
	sum := sha256.Sum256([]byte(productID + "\x00" + question))
	return "answer:" + hex.EncodeToString(sum[:16])
}

func (c *answerCache) Get(ctx context.Context, productID, question string) (*domain.AnswerResult, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(productID, question)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("Answer cache read failed", "error", err)
		}
		return nil, false
	}
	var result domain.AnswerResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.log.Warn("Answer cache entry corrupt, ignoring", "error", err)
		return nil, false
	}
	return &result, true
}

func (c *answerCache) Set(ctx context.Context, productID, question string, result *domain.AnswerResult) {
	if result == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(productID, question), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Answer cache write failed", "error", err)
	}
}
