package domain

import "time"

type SessionID string
type EntryID string

// Role is the author of a message submitted to the language model.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Sender is the author of a chat panel entry.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

type Timestamp = time.Time
