package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// SetUserOnline marks a user as connected to the realtime channel.
func SetUserOnline(ctx context.Context, userID uint, online bool) error {
	if RedisClient == nil {
		return nil
	}
	key := fmt.Sprintf("user:online:%d", userID)
	if !online {
		return RedisClient.Del(ctx, key).Err()
	}
	return RedisClient.Set(ctx, key, "true", time.Hour).Err()
}

// IsUserOnline reports whether a user currently has a realtime connection.
func IsUserOnline(ctx context.Context, userID uint) (bool, error) {
	if RedisClient == nil {
		return false, nil
	}
	key := fmt.Sprintf("user:online:%d", userID)
	result, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return result == "true", nil
}

// PublishMatchUpdate publishes a match state change to Redis pub/sub so
// other instances can route it to their connected clients.
func PublishMatchUpdate(ctx context.Context, requestID uint, status string, data map[string]interface{}) error {
	if RedisClient == nil {
		return nil
	}
	updateData := map[string]interface{}{
		"requestId": requestID,
		"status":    status,
		"data":      data,
		"timestamp": time.Now().Unix(),
	}

	jsonData, err := json.Marshal(updateData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, "match:updates", jsonData).Err()
}

// PublishBookingUpdate publishes a booking state change to Redis pub/sub.
func PublishBookingUpdate(ctx context.Context, bookingID uint, status string, data map[string]interface{}) error {
	if RedisClient == nil {
		return nil
	}
	updateData := map[string]interface{}{
		"bookingId": bookingID,
		"status":    status,
		"data":      data,
		"timestamp": time.Now().Unix(),
	}

	jsonData, err := json.Marshal(updateData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, "booking:updates", jsonData).Err()
}
