package models

import "github.com/google/uuid"

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "to-do"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	Base
	BoardID     uuid.UUID    `gorm:"type:uuid;index;not null" json:"board"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"size:20;not null;index;default:'to-do'" json:"status"`
	Priority    TaskPriority `gorm:"size:10;not null;index;default:'medium'" json:"priority"`
	AssigneeID  *uuid.UUID   `gorm:"type:uuid;index" json:"assignee_id,omitempty"`
	ReviewerID  *uuid.UUID   `gorm:"type:uuid;index" json:"reviewer_id,omitempty"`
	DueDate     *Date        `json:"due_date"`

	// Maintained by the comment store with SQL increments, never recomputed
	CommentsCount int `gorm:"not null;default:0" json:"comments_count"`

	// Relationships
	Board    *Board        `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
	Assignee *User         `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"-"`
	Reviewer *User         `gorm:"foreignKey:ReviewerID;constraint:OnDelete:SET NULL" json:"-"`
	Comments []TaskComment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// IsReviewer reports whether userID is the task's reviewer.
func (t *Task) IsReviewer(userID uuid.UUID) bool {
	return t.ReviewerID != nil && *t.ReviewerID == userID
}
