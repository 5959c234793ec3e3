package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"codethium-server/internal/model"
)

// ChatListCache keeps each user's chat list in redis so repeated
// GET /api/chats calls skip the store. Every write path invalidates
// the owner's key before returning.
type ChatListCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

// chatRecord is the cache wire shape. model.Chat hides the raw message
// payload from API JSON, so the cache carries it explicitly.
type chatRecord struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	Messages  string    `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewChatListCache(client *redisv9.Client, ttl time.Duration) *ChatListCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &ChatListCache{client: client, ttl: ttl}
}

func (c *ChatListCache) GetList(ctx context.Context, userID uint) ([]model.Chat, bool, error) {
	raw, err := c.client.Get(ctx, c.listKey(userID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get chat list failed: %w", err)
	}

	var records []chatRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached chat list failed: %w", err)
	}

	chats := make([]model.Chat, 0, len(records))
	for _, rec := range records {
		chats = append(chats, model.Chat{
			ID:        rec.ID,
			UserID:    rec.UserID,
			Title:     rec.Title,
			Messages:  rec.Messages,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	return chats, true, nil
}

func (c *ChatListCache) SetList(ctx context.Context, userID uint, chats []model.Chat) error {
	records := make([]chatRecord, 0, len(chats))
	for _, chat := range chats {
		records = append(records, chatRecord{
			ID:        chat.ID,
			UserID:    chat.UserID,
			Title:     chat.Title,
			Messages:  chat.Messages,
			CreatedAt: chat.CreatedAt,
			UpdatedAt: chat.UpdatedAt,
		})
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal chat list failed: %w", err)
	}
	if err := c.client.Set(ctx, c.listKey(userID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set chat list failed: %w", err)
	}
	return nil
}

func (c *ChatListCache) Invalidate(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, c.listKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis invalidate chat list failed: %w", err)
	}
	return nil
}

func (c *ChatListCache) listKey(userID uint) string {
	return fmt.Sprintf("chat:list:%d", userID)
}
