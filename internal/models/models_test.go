package models

import (
	"testing"
	"time"
)

func TestRoleIconAndLabel(t *testing.T) {
	tests := []struct {
		role  Role
		icon  string
		label string
	}{
		{RoleUser, "👤", "You"},
		{RoleAssistant, "🤖", "Assistant"},
		{RoleError, "❌", "Error"},
		{RoleSystem, "", ""},
		{Role("tool"), "", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.Icon(); got != tt.icon {
				t.Errorf("Icon() = %q, want %q", got, tt.icon)
			}
			if got := tt.role.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
		})
	}
}

func TestNewMessage(t *testing.T) {
	at := time.Date(2024, 5, 1, 14, 3, 9, 0, time.UTC)
	a := NewMessage(RoleUser, "hello", at)
	b := NewMessage(RoleUser, "hello", at)

	if a.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if a.ID == b.ID {
		t.Error("expected unique IDs")
	}
	if a.FormattedTime() != "14:03:09" {
		t.Errorf("FormattedTime() = %q, want 14:03:09", a.FormattedTime())
	}
	if (Message{}).FormattedTime() != "" {
		t.Error("zero timestamp should format as empty")
	}
}

func TestNewSystemInfo(t *testing.T) {
	tests := []struct {
		name   string
		health string
		info   string
		want   SystemInfo
	}{
		{
			name:   "healthy",
			health: `{"status":"healthy","ollama":"connected","openai_compatibility":"working"}`,
			info:   `{"status":"operational","model":"qwen3:0.6b","message":"ok"}`,
			want: SystemInfo{
				Status:              "healthy",
				Model:               "qwen3:0.6b",
				Ollama:              "connected",
				OpenAICompatibility: "working",
			},
		},
		{
			name:   "degraded with falsy fields",
			health: `{"status":"degraded","ollama_tags":true,"openai_compatibility":false}`,
			info:   `{"model":""}`,
			want: SystemInfo{
				Status:              "degraded",
				Model:               UnknownValue,
				Ollama:              UnknownValue,
				OpenAICompatibility: UnknownValue,
			},
		},
		{
			name:   "empty bodies",
			health: `{}`,
			info:   `{}`,
			want: SystemInfo{
				Status:              UnknownValue,
				Model:               UnknownValue,
				Ollama:              UnknownValue,
				OpenAICompatibility: UnknownValue,
			},
		},
		{
			name:   "non-string values pass through",
			health: `{"status":"healthy","ollama":1}`,
			info:   `{"model":null}`,
			want: SystemInfo{
				Status:              "healthy",
				Model:               UnknownValue,
				Ollama:              "1",
				OpenAICompatibility: UnknownValue,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSystemInfo(tt.health, tt.info)
			if got.Status != tt.want.Status ||
				got.Model != tt.want.Model ||
				got.Ollama != tt.want.Ollama ||
				got.OpenAICompatibility != tt.want.OpenAICompatibility {
				t.Errorf("NewSystemInfo() = %+v, want %+v", got, tt.want)
			}
			if got.Health != tt.health || got.Info != tt.info {
				t.Error("raw bodies should be preserved")
			}
		})
	}
}

func TestSystemInfoItems(t *testing.T) {
	info := NewSystemInfo(`{"status":"healthy"}`, `{"model":"m"}`)
	items := info.Items()

	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	labels := []string{"Status", "Model", "Ollama", "OpenAI Compatibility"}
	for i, label := range labels {
		if items[i].Label != label {
			t.Errorf("items[%d].Label = %q, want %q", i, items[i].Label, label)
		}
	}
	if !info.Healthy() {
		t.Error("expected Healthy() to be true")
	}
}

func TestParseEndpointListing(t *testing.T) {
	body := `{
		"message": "Vulnerable Chatbot API",
		"endpoints": {
			"/health": "GET - Check system health",
			"/chat-tools": "POST - Send a message"
		},
		"available_tools": ["fetch_url - Fetch content from URLs"]
	}`

	listing := ParseEndpointListing(body)

	if listing.Message != "Vulnerable Chatbot API" {
		t.Errorf("Message = %q", listing.Message)
	}
	if len(listing.Endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(listing.Endpoints))
	}
	if listing.Endpoints[0].Path != "/chat-tools" {
		t.Errorf("endpoints should be sorted, got %q first", listing.Endpoints[0].Path)
	}
	if len(listing.Tools) != 1 {
		t.Errorf("expected 1 tool, got %d", len(listing.Tools))
	}
}
