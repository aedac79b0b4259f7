package lib

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// CacheSetJSON stores a JSON document under key; failures are logged only,
// the cache is best effort.
func CacheSetJSON(key string, value any) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	if err := rdb.JSONSet(context.Background(), key, "$", value).Err(); err != nil {
		log.Printf("[redis] Failed to set value for key %s: %s\n", key, err.Error())
	}
}

func CacheGetJSON(key string) string {
	rdb := GetRedisClient()
	if rdb == nil {
		return ""
	}
	val, err := rdb.JSONGet(context.Background(), key).Result()
	if err != nil && err != redis.Nil {
		log.Printf("[redis] Error retrieving value for %s: %s\n", key, err.Error())
		return ""
	}
	return val
}

func CacheInvalidate(keys ...string) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	if err := rdb.Del(context.Background(), keys...).Err(); err != nil {
		log.Printf("[redis] Error deleting keys %v: %s\n", keys, err.Error())
	}
}
