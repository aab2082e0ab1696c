package models

import "github.com/google/uuid"

type Board struct {
	Base
	Title   string    `gorm:"size:255;not null" json:"title"`
	OwnerID uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`

	// Relationships
	Owner   *User  `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Members []User `gorm:"many2many:board_members;constraint:OnDelete:CASCADE" json:"-"`
	Tasks   []Task `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Board) TableName() string {
	return "boards"
}

// IsOwner reports whether userID owns the board.
func (b *Board) IsOwner(userID uuid.UUID) bool {
	return b.OwnerID == userID
}

// HasMember checks the loaded member set. Members must be preloaded.
func (b *Board) HasMember(userID uuid.UUID) bool {
	for _, m := range b.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// IsOwnerOrMember is the board access predicate; the owner counts as a member
// even when absent from Members.
func (b *Board) IsOwnerOrMember(userID uuid.UUID) bool {
	return b.IsOwner(userID) || b.HasMember(userID)
}

// BoardMember is the join row behind Board.Members
type BoardMember struct {
	BoardID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (BoardMember) TableName() string {
	return "board_members"
}
