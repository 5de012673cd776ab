package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/safetylink/coraudit-backend/internal/logger"
)

// SnapshotCache keeps the most recent compliance evaluation per company so
// dashboard reads do not hit the scoring path on every request.
type SnapshotCache interface {
	Get(ctx context.Context, companyID uuid.UUID, out interface{}) (bool, error)
	Set(ctx context.Context, companyID uuid.UUID, payload interface{}) error
	Invalidate(ctx context.Context, companyID uuid.UUID) error
	Close() error
}

type snapshotCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewSnapshotCache(log *logger.Logger) (SnapshotCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttl := 15 * time.Minute
	if raw := strings.TrimSpace(os.Getenv("SNAPSHOT_CACHE_TTL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err == nil && parsed > 0 {
			ttl = parsed
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &snapshotCache{
		log: log.With("service", "RedisSnapshotCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func snapshotKey(companyID uuid.UUID) string {
	return "compliance:snapshot:" + companyID.String()
}

func (c *snapshotCache) Get(ctx context.Context, companyID uuid.UUID, out interface{}) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, fmt.Errorf("snapshot cache not initialized")
	}
	if companyID == uuid.Nil {
		return false, nil
	}
	raw, err := c.rdb.Get(ctx, snapshotKey(companyID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn("Dropping unreadable cached snapshot", "company_id", companyID.String(), "error", err)
		_ = c.rdb.Del(ctx, snapshotKey(companyID)).Err()
		return false, nil
	}
	return true, nil
}

func (c *snapshotCache) Set(ctx context.Context, companyID uuid.UUID, payload interface{}) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("snapshot cache not initialized")
	}
	if companyID == uuid.Nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, snapshotKey(companyID), raw, c.ttl).Err()
}

func (c *snapshotCache) Invalidate(ctx context.Context, companyID uuid.UUID) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("snapshot cache not initialized")
	}
	if companyID == uuid.Nil {
		return nil
	}
	return c.rdb.Del(ctx, snapshotKey(companyID)).Err()
}

func (c *snapshotCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
