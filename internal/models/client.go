package models

import (
	"strings"
	"time"
)

// Permissions understood by the API
const (
	PermSessionsRead  = "sessions:read"
	PermSessionsWrite = "sessions:write"
	PermCatalogRead   = "catalog:read"
)

// ApiClient is an application (tutor UI, LMS bridge) allowed to call the API
type ApiClient struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	ApiKey      string            `json:"-"`
	IsActive    bool              `json:"is_active"`
	CreatedAt   time.Time         `json:"created_at"`
	LastUsedAt  *time.Time        `json:"last_used_at,omitempty"`
	Permissions []string          `json:"permissions"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// HasPermission checks a scope; "sessions:*" grants every sessions scope and "*" grants all
func (c *ApiClient) HasPermission(required string) bool {
	if c == nil || !c.IsActive {
		return false
	}
	for _, perm := range c.Permissions {
		switch {
		case perm == "*", perm == required:
			return true
		case strings.HasSuffix(perm, ":*") && strings.HasPrefix(required, strings.TrimSuffix(perm, "*")):
			return true
		}
	}
	return false
}

// MaskedApiKey returns a log-safe prefix of the key
func (c *ApiClient) MaskedApiKey() string {
	return MaskKey(c.ApiKey)
}

// MaskKey keeps the first 8 characters of a key
func MaskKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:8] + "..."
}
