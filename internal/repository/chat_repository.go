package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"codethium-server/internal/model"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(chat *model.Chat) error {
	if err := r.db.Create(chat).Error; err != nil {
		return fmt.Errorf("create chat failed: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListByUserID(userID uint) ([]model.Chat, error) {
	var chats []model.Chat
	if err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats failed: %w", err)
	}
	return chats, nil
}

func (r *ChatRepository) GetByIDAndUserID(chatID, userID uint) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.Where("id = ? AND user_id = ?", chatID, userID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat failed: %w", err)
	}
	return &chat, nil
}

// ReplaceMessages overwrites the message payload of the chat iff it is
// owned by userID. Ownership is a predicate of the UPDATE itself, never
// a separate check. Returns (nil, nil) when no owned row matched.
func (r *ChatRepository) ReplaceMessages(chatID, userID uint, messages string) (*model.Chat, error) {
	res := r.db.Model(&model.Chat{}).
		Where("id = ? AND user_id = ?", chatID, userID).
		Update("messages", messages)
	if res.Error != nil {
		return nil, fmt.Errorf("replace chat messages failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByIDAndUserID(chatID, userID)
}

// DeleteByIDAndUserID is idempotent: deleting a row that does not exist
// or is not owned by userID is not an error.
func (r *ChatRepository) DeleteByIDAndUserID(chatID, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", chatID, userID).Delete(&model.Chat{}).Error; err != nil {
		return fmt.Errorf("delete chat failed: %w", err)
	}
	return nil
}
