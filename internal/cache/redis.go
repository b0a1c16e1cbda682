package cache

import (
	"context"
	"time"

	"filmsoc-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// Cache key prefixes
const (
	EquipmentListKeyFmt = "equipment:list:%s"
	EquipmentKeyFmt     = "equipment:item:%s"
	EventsUpcomingKey   = "events:upcoming"
	MembersListKey      = "members:list"
)

var client *redis.Client

// Init initializes the Redis connection
func Init(cfg *config.Config) error {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// InvalidateEquipmentCaches clears equipment listings and detail entries.
// Called when: CreateEquipment, UpdateEquipment, DeleteEquipment, and
// every lifecycle transition that changes a status
func InvalidateEquipmentCaches(ctx context.Context) {
	InvalidatePattern(ctx, "equipment:*")
}

// InvalidateEventCaches clears event listings
// Called when: CreateEvent, UpdateEvent, ApproveEvent, DeleteEvent, Join, Leave
func InvalidateEventCaches(ctx context.Context) {
	InvalidatePattern(ctx, "events:*")
}

// InvalidateMemberCaches clears member listings
// Called when: Signup, UpdateMember, DeleteMember, SetAdmin
func InvalidateMemberCaches(ctx context.Context) {
	InvalidateKeys(ctx, MembersListKey)
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
