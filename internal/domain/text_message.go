package domain

import (
	"time"
)

// TextMessage is a free-text announcement shown on the public site.
type TextMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"column:text;type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
