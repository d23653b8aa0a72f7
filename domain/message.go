// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"group-chat/errors"

	"github.com/google/uuid"
)

// MaxContentLength is the maximum number of characters a message may carry.
const MaxContentLength = 1000

// Message represents an immutable chat event.
type Message struct {
	ID        uuid.UUID // unique identifier, assigned by the store
	UserID    string
	Username  string
	GroupID   GroupID
	Content   string
	CreatedAt time.Time
}

// NormalizeContent trims the raw content and enforces the length rules.
// The returned string is the exact content that will be stored and broadcast.
func NormalizeContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", errors.ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", errors.ErrContentTooLong
	}
	return content, nil
}
