package model

import (
	"encoding/json"
	"time"
)

// ChatMessage is a single entry of a transcript.
type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Chat stores a whole transcript as one record. The message sequence is
// kept as a JSON text column and replaced wholesale on update.
type Chat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:128;not null" json:"title"`
	Messages  string    `gorm:"type:text;not null" json:"-"` // JSON array of ChatMessage
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageList returns the parsed transcript; empty on parse error.
func (c *Chat) MessageList() []ChatMessage {
	if c.Messages == "" {
		return nil
	}
	var msgs []ChatMessage
	_ = json.Unmarshal([]byte(c.Messages), &msgs)
	return msgs
}

// SetMessages stores the transcript as JSON.
func (c *Chat) SetMessages(msgs []ChatMessage) {
	if len(msgs) == 0 {
		c.Messages = "[]"
		return
	}
	b, _ := json.Marshal(msgs)
	c.Messages = string(b)
}

// EncodeMessages is SetMessages without a receiver, for callers that
// only need the column payload.
func EncodeMessages(msgs []ChatMessage) string {
	if len(msgs) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(msgs)
	return string(b)
}
