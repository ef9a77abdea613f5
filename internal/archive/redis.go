package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verifact/verifact/internal/model"
)

// RedisArchive keeps a bounded list of raw oracle replies per subject
type RedisArchive struct {
	client        *redis.Client
	maxPerSubject int64
}

// NewRedisArchive connects to redis and verifies the connection
func NewRedisArchive(cfg model.ArchiveConfig) (*RedisArchive, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	maxPerSubject := cfg.MaxPerSubject
	if maxPerSubject <= 0 {
		maxPerSubject = 200
	}

	return &RedisArchive{
		client:        client,
		maxPerSubject: maxPerSubject,
	}, nil
}

// Append pushes one entry onto the subject's list and trims it to the
// configured bound, oldest entries first.
func (a *RedisArchive) Append(ctx context.Context, subjectID, oracleID, runID, rawText string) error {
	entry := Entry{
		SubjectID:  subjectID,
		OracleID:   oracleID,
		RunID:      runID,
		RawText:    rawText,
		ArchivedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	key := "verifact:raw:" + subjectID
	pipe := a.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -a.maxPerSubject, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append to %s: %w", key, err)
	}
	return nil
}

// Close closes the redis connection
func (a *RedisArchive) Close() error {
	return a.client.Close()
}
