package boards

import (
	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/database/models"
	"gorm.io/gorm"
)

// deleteBoards removes boards and everything they own. tx must be a
// transaction.
func deleteBoards(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	tasks := tx.Model(&models.Task{}).Select("id").Where("board_id IN ?", ids)
	if err := tx.Where("task_id IN (?)", tasks).Delete(&models.TaskComment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("board_id IN ?", ids).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	if err := tx.Where("board_id IN ?", ids).Delete(&models.BoardMember{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Board{}).Error
}

// DeleteOwnedBy removes every board owned by userID. tx must be a
// transaction.
func DeleteOwnedBy(tx *gorm.DB, userID uuid.UUID) error {
	var owned []uuid.UUID
	if err := tx.Model(&models.Board{}).Where("owner_id = ?", userID).Pluck("id", &owned).Error; err != nil {
		return err
	}
	return deleteBoards(tx, owned)
}

func replaceMembers(tx *gorm.DB, boardID uuid.UUID, users []models.User) error {
	if err := tx.Where("board_id = ?", boardID).Delete(&models.BoardMember{}).Error; err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}
	rows := make([]models.BoardMember, len(users))
	for i, u := range users {
		rows[i] = models.BoardMember{BoardID: boardID, UserID: u.ID}
	}
	return tx.Create(&rows).Error
}
