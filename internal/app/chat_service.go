package app

import (
	"context"
	"strings"

	"codethium-server/internal/model"
)

// ChatStore is the persistence surface ChatService needs. Every
// mutation carries the owner id as a predicate of the statement itself.
type ChatStore interface {
	Create(chat *model.Chat) error
	ListByUserID(userID uint) ([]model.Chat, error)
	ReplaceMessages(chatID, userID uint, messages string) (*model.Chat, error)
	DeleteByIDAndUserID(chatID, userID uint) error
}

// ChatListCache is optional; a nil cache degrades to the store.
type ChatListCache interface {
	GetList(ctx context.Context, userID uint) ([]model.Chat, bool, error)
	SetList(ctx context.Context, userID uint, chats []model.Chat) error
	Invalidate(ctx context.Context, userID uint) error
}

type ChatService struct {
	chatStore ChatStore
	listCache ChatListCache
}

type SaveChatInput struct {
	UserID   uint
	Title    string
	Messages []model.ChatMessage
}

func NewChatService(chatStore ChatStore, listCache ChatListCache) *ChatService {
	return &ChatService{
		chatStore: chatStore,
		listCache: listCache,
	}
}

func (s *ChatService) Create(ctx context.Context, input SaveChatInput) (*model.Chat, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "New Chat"
	}

	chat := &model.Chat{
		UserID: input.UserID,
		Title:  title,
	}
	chat.SetMessages(input.Messages)

	if err := s.chatStore.Create(chat); err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.UserID)
	return chat, nil
}

func (s *ChatService) List(ctx context.Context, userID uint) ([]model.Chat, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.listCache != nil {
		if cached, hit, err := s.listCache.GetList(ctx, userID); err == nil && hit {
			return cached, nil
		}
	}

	chats, err := s.chatStore.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	if s.listCache != nil {
		_ = s.listCache.SetList(ctx, userID, chats)
	}
	return chats, nil
}

// Replace overwrites the whole message sequence of an owned chat.
// When no owned row matches it returns (nil, nil): "not found" and
// "not yours" are one non-leaking outcome.
func (s *ChatService) Replace(ctx context.Context, userID, chatID uint, messages []model.ChatMessage) (*model.Chat, error) {
	if userID == 0 || chatID == 0 {
		return nil, ErrInvalidInput
	}

	chat, err := s.chatStore.ReplaceMessages(chatID, userID, model.EncodeMessages(messages))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return chat, nil
}

// Delete removes an owned chat; deleting a missing or foreign chat is
// a successful no-op.
func (s *ChatService) Delete(ctx context.Context, userID, chatID uint) error {
	if userID == 0 || chatID == 0 {
		return ErrInvalidInput
	}
	if err := s.chatStore.DeleteByIDAndUserID(chatID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *ChatService) invalidate(ctx context.Context, userID uint) {
	if s.listCache != nil {
		_ = s.listCache.Invalidate(ctx, userID)
	}
}
