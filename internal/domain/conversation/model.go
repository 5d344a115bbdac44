package conversation

import (
	"time"
)

// Role tags who produced a turn. It is set once when the turn is created.
type Role string

const (
	RoleHuman Role = "Human"
	RoleAI    Role = "AI"
	RoleTool  Role = "Tool"
)

// Valid reports whether r is one of the persisted roles.
func (r Role) Valid() bool {
	switch r {
	case RoleHuman, RoleAI, RoleTool:
		return true
	}
	return false
}

// MaxIDLength bounds a conversation id to the width of the thread_id column.
const MaxIDLength = 64

// Conversation is a named container of turns.
type Conversation struct {
	ID          string    `json:"thread_id"`
	DisplayName string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Turn is one stored message. Turns are immutable once appended. Metadata is
// the stored metadata text; rows written by older clients may hold a loosely
// formatted mapping rather than strict JSON.
type Turn struct {
	SequenceID     uint
	ConversationID string
	Role           Role
	Content        string
	Metadata       string
	GroupID        string
	CreatedAt      time.Time
}

// NewTurn is the input to Repository.AppendTurn.
type NewTurn struct {
	ConversationID string
	Role           Role
	Content        string
	Metadata       map[string]any
	GroupID        string
}

// RawTurn is one turn as produced by an agent run, before any filtering.
// Roles other than Human, AI and Tool may appear and are never persisted.
type RawTurn struct {
	Role     Role
	Content  string
	Metadata map[string]any
}
