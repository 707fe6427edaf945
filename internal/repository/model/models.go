package model

import "time"

type Room struct {
	Code      string    `gorm:"size:64;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	Messages  []Message `gorm:"foreignKey:RoomCode;references:Code;constraint:OnDelete:CASCADE"`
}

type Message struct {
	// Seq preserves insertion order independent of clock resolution.
	Seq        uint64    `gorm:"primaryKey;autoIncrement"`
	ID         string    `gorm:"size:36;uniqueIndex;not null"`
	RoomCode   string    `gorm:"size:64;index;not null"`
	AuthorID   string    `gorm:"size:64;not null"`
	AuthorName string    `gorm:"size:255;not null"`
	Content    string    `gorm:"size:1024;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}
