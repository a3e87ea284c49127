package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"club18/models"
)

var Redis *redis.Client

const (
	presenceTTL  = 2 * time.Minute
	feedCacheTTL = 30 * time.Second
	feedCacheKey = "feed:recent"
)

func InitRedis(addr, password string) error {
	Redis = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Redis.Ping(ctx).Err(); err != nil {
		return err
	}

	log.Println("Redis connected successfully")
	return nil
}

// Touch marks a member online. The key expires on its own, so a member
// that stops heartbeating drops offline without a cleanup job.
func Touch(ctx context.Context, uid string) error {
	return Redis.Set(ctx, "presence:"+uid, time.Now().Unix(), presenceTTL).Err()
}

// IsOnline reports whether a member has heartbeated recently. Errors
// count as offline; presence is cosmetic.
func IsOnline(ctx context.Context, uid string) bool {
	n, err := Redis.Exists(ctx, "presence:"+uid).Result()
	return err == nil && n > 0
}

// CacheFeed stores the most recent feed page with a short TTL.
func CacheFeed(ctx context.Context, posts []models.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return Redis.Set(ctx, feedCacheKey, data, feedCacheTTL).Err()
}

// CachedFeed returns the cached feed page, or nil on a miss.
func CachedFeed(ctx context.Context) []models.Post {
	data, err := Redis.Get(ctx, feedCacheKey).Bytes()
	if err != nil {
		return nil
	}

	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil
	}
	return posts
}

// InvalidateFeed drops the cached feed page after a write.
func InvalidateFeed(ctx context.Context) {
	if err := Redis.Del(ctx, feedCacheKey).Err(); err != nil {
		log.Printf("[cache] feed invalidation failed: %v", err)
	}
}
