package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"CrossAlert/internal/domain/models"
	drepo "CrossAlert/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// RedisDeviceStore persists devices directly in Redis for deployments that
// can reach the database without the REST proxy. Same layout as the REST
// store: one JSON string per device key plus the device_index set.
type RedisDeviceStore struct {
	client *redis.Client
}

func NewRedisDeviceStore(addr, password string, db int) (*RedisDeviceStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisDeviceStore{client: client}, nil
}

func (s *RedisDeviceStore) Load(ctx context.Context, key string) (*models.Device, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, drepo.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var d models.Device
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("redis parse %s: %w", key, err)
	}
	return &d, nil
}

func (s *RedisDeviceStore) Save(ctx context.Context, key string, d *models.Device) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("redis marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisDeviceStore) AddToIndex(ctx context.Context, key string) error {
	if err := s.client.SAdd(ctx, deviceIndexKey, key).Err(); err != nil {
		return fmt.Errorf("redis sadd %s: %w", key, err)
	}
	return nil
}

func (s *RedisDeviceStore) ListDeviceKeys(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, deviceIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	return keys, nil
}

func (s *RedisDeviceStore) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health: %w", err)
	}
	return nil
}

func (s *RedisDeviceStore) Close() error {
	return s.client.Close()
}

var _ drepo.DeviceStore = (*RedisDeviceStore)(nil)
