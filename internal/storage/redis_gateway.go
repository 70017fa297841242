package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisNamespace = "habitd"

type RedisGateway struct {
	client    *redis.Client
	namespace string
}

func NewRedisGateway(client *redis.Client, namespace string) (*RedisGateway, error) {
	if client == nil {
		return nil, errors.New("storage: nil redis client")
	}
	if namespace == "" {
		namespace = defaultRedisNamespace
	}
	return &RedisGateway{client: client, namespace: namespace}, nil
}

func OpenRedis(ctx context.Context, url, namespace string) (*RedisGateway, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisGateway(client, namespace)
}

func (g *RedisGateway) namespaceKey(key string) string {
	return g.namespace + ":" + key
}

func (g *RedisGateway) Load(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	val, err := g.client.Get(ctx, g.namespaceKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (g *RedisGateway) Save(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return g.client.Set(ctx, g.namespaceKey(key), value, 0).Err()
}

func (g *RedisGateway) Close() error {
	return g.client.Close()
}
