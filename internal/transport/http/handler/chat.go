package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codethium-server/internal/app"
	"codethium-server/internal/model"
	"codethium-server/internal/transport/http/middleware"
	"codethium-server/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type SaveChatRequest struct {
	Title    string              `json:"title"`
	Messages []model.ChatMessage `json:"messages"`
}

type UpdateChatRequest struct {
	Messages []model.ChatMessage `json:"messages"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req SaveChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	chat, err := h.chatService.Create(c.Request.Context(), app.SaveChatInput{
		UserID:   userID,
		Title:    req.Title,
		Messages: req.Messages,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, "invalid request payload")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to save chat")
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat": chatView(chat)})
}

func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	chats, err := h.chatService.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to fetch chats")
		return
	}

	views := make([]gin.H, 0, len(chats))
	for i := range chats {
		views = append(views, chatView(&chats[i]))
	}
	c.JSON(http.StatusOK, gin.H{"chats": views})
}

func (h *ChatHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	chatID, ok := chatIDParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid chat id")
		return
	}

	var req UpdateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	chat, err := h.chatService.Replace(c.Request.Context(), userID, chatID, req.Messages)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, "invalid request payload")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to update chat")
		return
	}

	// No owned row matched: a silent no-op, not an error.
	if chat == nil {
		c.JSON(http.StatusOK, gin.H{"chat": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chatView(chat)})
}

func (h *ChatHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	chatID, ok := chatIDParam(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid chat id")
		return
	}

	if err := h.chatService.Delete(c.Request.Context(), userID, chatID); err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, "invalid chat id")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to delete chat")
		return
	}

	response.Message(c, "Chat deleted")
}

func chatIDParam(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

func chatView(chat *model.Chat) gin.H {
	messages := chat.MessageList()
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	return gin.H{
		"id":         chat.ID,
		"user_id":    chat.UserID,
		"title":      chat.Title,
		"messages":   messages,
		"created_at": chat.CreatedAt,
		"updated_at": chat.UpdatedAt,
	}
}
