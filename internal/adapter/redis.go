package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	REDIS_DB_MARKET = 1
	REDIS_DB_LOOKUP = 2
)

var (
	clients   = make(map[int]*redis.Client)
	clientsMu sync.RWMutex
)

// InitRedisClients opens one client per logical database the service uses.
func InitRedisClients(ctx context.Context, addr string, password string) error {
	if addr == "" {
		return errors.New("Redis host is empty")
	}

	for _, db := range []int{REDIS_DB_MARKET, REDIS_DB_LOOKUP} {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})

		if _, err := client.Ping(ctx).Result(); err != nil {
			client.Close()
			return fmt.Errorf("failed to connect to Redis DB %d: %w", db, err)
		}

		SetRedisClient(db, client)
	}

	return nil
}

func SetRedisClient(db int, client *redis.Client) {
	clientsMu.Lock()
	defer clientsMu.Unlock()
	clients[db] = client
}

func GetRedisClient(db int) (*redis.Client, error) {
	clientsMu.RLock()
	defer clientsMu.RUnlock()

	client, exists := clients[db]
	if !exists {
		return nil, fmt.Errorf("redis client for DB %d is not initialized. call InitRedisClients first", db)
	}
	return client, nil
}

func CloseRedisClients() {
	clientsMu.Lock()
	defer clientsMu.Unlock()

	for db, client := range clients {
		client.Close()
		delete(clients, db)
	}
}
