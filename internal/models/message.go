// Package models defines the data types shared by the chatbot packages.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies a transcript entry
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
	RoleSystem    Role = "system"
)

// Icon returns the glyph shown next to the role label
func (r Role) Icon() string {
	switch r {
	case RoleUser:
		return "👤"
	case RoleAssistant:
		return "🤖"
	case RoleError:
		return "❌"
	default:
		return ""
	}
}

// Label returns the display label for the role
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleError:
		return "Error"
	default:
		return ""
	}
}

// Message is a single transcript message. Messages are never mutated after creation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh ID
func NewMessage(role Role, text string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: at,
	}
}

// TimeFormat is the layout used for transcript timestamps
const TimeFormat = "15:04:05"

// FormattedTime returns the display timestamp
func (m Message) FormattedTime() string {
	if m.Timestamp.IsZero() {
		return ""
	}
	return m.Timestamp.Format(TimeFormat)
}

// ChatRequest is the body posted to a chat endpoint
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body returned by a chat endpoint
type ChatResponse struct {
	Response string `json:"response"`
}
