package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ds124wfegd/meetup-service/internal/entity"

	"github.com/go-redis/redis/v8"
)

// SubscriptionCache кэширует списки подписок пользователей.
// Инвалидируется при каждом успешном join/leave.
type SubscriptionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSubscriptionCache(client *redis.Client, ttl time.Duration) *SubscriptionCache {
	return &SubscriptionCache{
		client: client,
		ttl:    ttl,
	}
}

func subscriptionsKey(userID int64) string {
	return "subscriptions:" + strconv.FormatInt(userID, 10)
}

func (c *SubscriptionCache) SetSubscriptions(ctx context.Context, userID int64, meetups []*entity.MeetupWithRelations) error {
	data, err := json.Marshal(meetups)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, subscriptionsKey(userID), data, c.ttl).Err()
}

func (c *SubscriptionCache) GetSubscriptions(ctx context.Context, userID int64) ([]*entity.MeetupWithRelations, error) {
	data, err := c.client.Get(ctx, subscriptionsKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	var meetups []*entity.MeetupWithRelations
	err = json.Unmarshal([]byte(data), &meetups)
	if err != nil {
		return nil, err
	}

	return meetups, nil
}

func (c *SubscriptionCache) Invalidate(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, subscriptionsKey(userID)).Err()
}
