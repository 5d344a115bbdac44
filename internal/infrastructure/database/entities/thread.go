package entities

import (
	"time"

	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
)

// Thread is the database row of a conversation.
type Thread struct {
	ThreadID  string    `gorm:"column:thread_id;type:varchar(64);primaryKey"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for Thread.
func (Thread) TableName() string {
	return "threads"
}

// EtoD converts the row into the domain conversation.
func (t Thread) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:          t.ThreadID,
		DisplayName: t.Name,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
