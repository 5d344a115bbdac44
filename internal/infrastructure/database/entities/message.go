package entities

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
)

// Message is the database row of a turn. ResponseMetadata is stored as text
// because rows written by older clients hold loosely formatted mappings.
type Message struct {
	ID               uint           `gorm:"column:id;primaryKey;autoIncrement"`
	ThreadID         string         `gorm:"column:thread_id;type:varchar(64);not null;index:idx_messages_thread_id"`
	Role             string         `gorm:"column:role;type:varchar(16);not null"`
	MessageContent   string         `gorm:"column:message_content;type:text;not null"`
	ResponseMetadata datatypes.JSON `gorm:"column:response_metadata;type:text"`
	MessageID        string         `gorm:"column:message_id;type:varchar(64);not null"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// EtoD converts the row into the domain turn.
func (m Message) EtoD() conversation.Turn {
	return conversation.Turn{
		SequenceID:     m.ID,
		ConversationID: m.ThreadID,
		Role:           conversation.Role(m.Role),
		Content:        m.MessageContent,
		Metadata:       string(m.ResponseMetadata),
		GroupID:        m.MessageID,
		CreatedAt:      m.CreatedAt,
	}
}
