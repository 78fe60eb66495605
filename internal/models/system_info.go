package models

import (
	"sort"

	"github.com/tidwall/gjson"
)

// UnknownValue is shown for any status field the backend did not report
const UnknownValue = "Unknown"

// SystemInfo merges the /health and /system-info responses.
// Field names are a contract with the Ollama-backed server.
type SystemInfo struct {
	Status              string
	Model               string
	Ollama              string
	OpenAICompatibility string

	// Raw bodies, kept so callers can show extra backend-specific fields
	Health string
	Info   string
}

// InfoItem is one labeled row of the status panel
type InfoItem struct {
	Label string
	Value string
}

// NewSystemInfo builds SystemInfo from the raw JSON bodies of both endpoints
func NewSystemInfo(healthJSON, infoJSON string) SystemInfo {
	health := gjson.Parse(healthJSON)
	info := gjson.Parse(infoJSON)

	return SystemInfo{
		Status:              fieldOrUnknown(health, "status"),
		Model:               fieldOrUnknown(info, "model"),
		Ollama:              fieldOrUnknown(health, "ollama"),
		OpenAICompatibility: fieldOrUnknown(health, "openai_compatibility"),
		Health:              healthJSON,
		Info:                infoJSON,
	}
}

// Items returns the fixed-shape status block
func (s SystemInfo) Items() []InfoItem {
	return []InfoItem{
		{Label: "Status", Value: s.Status},
		{Label: "Model", Value: s.Model},
		{Label: "Ollama", Value: s.Ollama},
		{Label: "OpenAI Compatibility", Value: s.OpenAICompatibility},
	}
}

// Healthy reports whether the backend declared itself healthy
func (s SystemInfo) Healthy() bool {
	return s.Status == "healthy"
}

// fieldOrUnknown returns the field as a string, or UnknownValue when it is
// absent or falsy (null, false, "", 0).
func fieldOrUnknown(obj gjson.Result, path string) string {
	v := obj.Get(path)
	if !v.Exists() {
		return UnknownValue
	}
	switch v.Type {
	case gjson.Null, gjson.False:
		return UnknownValue
	case gjson.String:
		if v.Str == "" {
			return UnknownValue
		}
	case gjson.Number:
		if v.Num == 0 {
			return UnknownValue
		}
	}
	return v.String()
}

// EndpointListing is the backend's self-description served at GET /
type EndpointListing struct {
	Message   string
	Endpoints []EndpointDescription
	Tools     []string
}

// EndpointDescription describes one backend route
type EndpointDescription struct {
	Path        string
	Description string
}

// ParseEndpointListing parses the root listing body
func ParseEndpointListing(body string) EndpointListing {
	parsed := gjson.Parse(body)
	listing := EndpointListing{
		Message: parsed.Get("message").String(),
	}

	parsed.Get("endpoints").ForEach(func(key, value gjson.Result) bool {
		listing.Endpoints = append(listing.Endpoints, EndpointDescription{
			Path:        key.String(),
			Description: value.String(),
		})
		return true
	})
	sort.Slice(listing.Endpoints, func(i, j int) bool {
		return listing.Endpoints[i].Path < listing.Endpoints[j].Path
	})

	parsed.Get("available_tools").ForEach(func(_, value gjson.Result) bool {
		listing.Tools = append(listing.Tools, value.String())
		return true
	})

	return listing
}
