package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/waiwai24/free-ollama/internal/domain"
)

const DefaultRedisKey = "free-ollama:scans:latest"

// RedisStore shares the latest report between processes. The report is kept
// as a hash holding the encoded report next to a few summary fields.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}

	return &RedisStore{client: client, key: key}
}

// DialRedis connects to addr and checks the connection with a PING.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return client, nil
}

func (s *RedisStore) Publish(ctx context.Context, report domain.ScanReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode scan report: %w", err)
	}

	err = s.client.HSet(ctx, s.key, map[string]any{
		"scan_id":         report.ScanID,
		"finished_at":     report.FinishedAt.Format(time.RFC3339Nano),
		"total_targets":   report.TotalTargets,
		"active_services": report.ActiveServices,
		"report":          string(data),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to store scan report: %w", err)
	}

	return nil
}

func (s *RedisStore) Latest(ctx context.Context) (domain.ScanReport, bool, error) {
	data, err := s.client.HGet(ctx, s.key, "report").Result()
	if errors.Is(err, redis.Nil) {
		return domain.ScanReport{}, false, nil
	}

	if err != nil {
		return domain.ScanReport{}, false, fmt.Errorf("failed to load scan report: %w", err)
	}

	var report domain.ScanReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return domain.ScanReport{}, false, fmt.Errorf("failed to decode scan report: %w", err)
	}

	return report, true, nil
}
