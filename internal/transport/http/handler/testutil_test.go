package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"codethium-server/internal/app"
	"codethium-server/internal/model"
	"codethium-server/internal/repository"
	"codethium-server/internal/transport/http/middleware"
)

const testJWTSecret = "test-secret"

// memUserStore and memChatStore are in-memory doubles for the gorm
// repositories, matching their case-insensitivity and owner-predicate
// semantics.

type memUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{nextID: 1, users: map[uint]*model.User{}}
}

func (m *memUserStore) Create(user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, user.Username) ||
			strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicateIdentity
		}
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.nextID++
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memUserStore) GetByID(id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, nil
}

func (m *memUserStore) GetByUsername(username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Username, username) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserStore) GetByEmail(email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserStore) GetByIdentifier(username, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if (email != "" && strings.EqualFold(user.Email, email)) ||
			(username != "" && strings.EqualFold(user.Username, username)) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserStore) UpdatePasswordHash(id uint, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		user.PasswordHash = hash
	}
	return nil
}

type memChatStore struct {
	mu     sync.Mutex
	nextID uint
	chats  map[uint]*model.Chat
}

func newMemChatStore() *memChatStore {
	return &memChatStore{nextID: 1, chats: map[uint]*model.Chat{}}
}

func (m *memChatStore) Create(chat *model.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat.ID = m.nextID
	chat.CreatedAt = time.Now()
	chat.UpdatedAt = chat.CreatedAt
	m.nextID++
	stored := *chat
	m.chats[chat.ID] = &stored
	return nil
}

func (m *memChatStore) ListByUserID(userID uint) ([]model.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var chats []model.Chat
	for _, chat := range m.chats {
		if chat.UserID == userID {
			chats = append(chats, *chat)
		}
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats, nil
}

func (m *memChatStore) ReplaceMessages(chatID, userID uint, messages string) (*model.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[chatID]
	if !ok || chat.UserID != userID {
		return nil, nil
	}
	chat.Messages = messages
	chat.UpdatedAt = time.Now()
	cp := *chat
	return &cp, nil
}

func (m *memChatStore) DeleteByIDAndUserID(chatID, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if chat, ok := m.chats[chatID]; ok && chat.UserID == userID {
		delete(m.chats, chatID)
	}
	return nil
}

// newTestRouter wires the API route table against in-memory stores,
// mirroring transport/http/server.go.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userStore := newMemUserStore()
	chatStore := newMemChatStore()

	tokenTTL := 7 * 24 * time.Hour
	authService := app.NewAuthService(userStore, testJWTSecret, tokenTTL)
	chatService := app.NewChatService(chatStore, nil)

	authHandler := NewAuthHandler(authService, tokenTTL, false)
	chatHandler := NewChatHandler(chatService)
	authGate := middleware.AuthJWT(testJWTSecret)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/me", authGate, authHandler.Me)
	api.POST("/change-password", authGate, authHandler.ChangePassword)

	chats := api.Group("/chats")
	chats.Use(authGate)
	chats.POST("", chatHandler.Create)
	chats.GET("", chatHandler.List)
	chats.PUT("/:id", chatHandler.Update)
	chats.DELETE("/:id", chatHandler.Delete)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, fn := range mutate {
		fn(req)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func withBearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func withCookie(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookieName, Value: token})
	}
}

// registerAndLogin creates a user and returns the session token from
// the login cookie.
func registerAndLogin(t *testing.T, router *gin.Engine, username, email, password string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/register", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/login", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	return tokenCookie(t, rec)
}

func tokenCookie(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.TokenCookieName {
			return cookie.Value
		}
	}
	t.Fatalf("no %q cookie in response", middleware.TokenCookieName)
	return ""
}
