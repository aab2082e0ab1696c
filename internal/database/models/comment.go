package models

import "github.com/google/uuid"

type TaskComment struct {
	Base
	TaskID   uuid.UUID `gorm:"type:uuid;index;not null" json:"task_id"`
	AuthorID uuid.UUID `gorm:"type:uuid;index;not null" json:"author_id"`
	Content  string    `gorm:"type:text;not null" json:"content"`

	// Relationships
	Task   *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TaskComment) TableName() string {
	return "task_comments"
}
